package token_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"
	"testing"

	"github.com/oarkflow/es256/token"
)

// Reference key pair and claim set shared across the package tests.
const (
	fixtureD = "hUQznqxINndxBHI8hMHvQmgSjYOCSqLUwMtzWCrh4ow"
	fixtureX = "ifSgGMkEIEDPsxFxdOjeJxhYsz0STsTT5bni_MXNEJs"
	fixtureY = "viFDEvB61K6zuj2iq23j0FCmVYYQ8tGJ_3f35XXUDZ0"
)

func fixtureClaims() map[string]any {
	return map[string]any{
		"iss":  "https://gemini.google.com",
		"sub":  "user-12345",
		"name": "Gemini AI",
	}
}

func fixtureScalar(t *testing.T) []byte {
	t.Helper()
	scalar, err := token.DecodeBase64URL(fixtureD)
	if err != nil {
		t.Fatalf("decode fixture scalar: %v", err)
	}
	return scalar
}

func fixturePublicJWK() *token.JWK {
	return &token.JWK{
		Kty: token.KeyTypeEC,
		Crv: token.CurveP256,
		X:   fixtureX,
		Y:   fixtureY,
	}
}

func fixturePoint(t *testing.T) []byte {
	t.Helper()
	point, err := token.JWKToPoint(fixturePublicJWK(), false)
	if err != nil {
		t.Fatalf("rebuild fixture point: %v", err)
	}
	return point
}

func fixtureECDSAPublicKey(t *testing.T) *ecdsa.PublicKey {
	t.Helper()
	xb, err := token.DecodeBase64URL(fixtureX)
	if err != nil {
		t.Fatalf("decode fixture x: %v", err)
	}
	yb, err := token.DecodeBase64URL(fixtureY)
	if err != nil {
		t.Fatalf("decode fixture y: %v", err)
	}
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xb),
		Y:     new(big.Int).SetBytes(yb),
	}
}

func fixtureECDSAPrivateKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	return &ecdsa.PrivateKey{
		PublicKey: *fixtureECDSAPublicKey(t),
		D:         new(big.Int).SetBytes(fixtureScalar(t)),
	}
}
