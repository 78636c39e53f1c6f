package token_test

import (
	"testing"
	"time"

	"github.com/oarkflow/es256"
	"github.com/oarkflow/es256/token"
)

func TestGeneratorStampsLifecycleClaims(t *testing.T) {
	key, err := es256.NewSecretKey(fixtureScalar(t))
	if err != nil {
		t.Fatalf("NewSecretKey failed: %v", err)
	}
	issuedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	gen, err := token.NewSigningGenerator(key, time.Hour,
		token.WithGeneratorNow(func() time.Time { return issuedAt }),
		token.WithGeneratorKeyID("primary"),
	)
	if err != nil {
		t.Fatalf("NewSigningGenerator failed: %v", err)
	}
	signed, err := gen.Generate(map[string]any{"sub": "user-12345"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	st, err := token.ParseToken(signed)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	claims, err := st.Claims()
	if err != nil {
		t.Fatalf("Claims failed: %v", err)
	}
	if got := int64(claims["iat"].(float64)); got != issuedAt.Unix() {
		t.Fatalf("iat = %d, want %d", got, issuedAt.Unix())
	}
	if got := int64(claims["exp"].(float64)); got != issuedAt.Add(time.Hour).Unix() {
		t.Fatalf("exp = %d, want %d", got, issuedAt.Add(time.Hour).Unix())
	}
	if claims["sub"] != "user-12345" {
		t.Fatalf("sub missing: %v", claims)
	}
	if jti, ok := claims["jti"].(string); !ok || jti == "" {
		t.Fatalf("jti missing: %v", claims)
	}
	if kid, ok := st.KeyID(); !ok || kid != "primary" {
		t.Fatalf("kid = %q, ok = %v", kid, ok)
	}
}

func TestGeneratorVerifierPair(t *testing.T) {
	key, err := es256.NewSecretKey(fixtureScalar(t))
	if err != nil {
		t.Fatalf("NewSecretKey failed: %v", err)
	}
	gen, err := token.NewSigningGenerator(key, time.Minute)
	if err != nil {
		t.Fatalf("NewSigningGenerator failed: %v", err)
	}
	signed, err := gen.Generate(map[string]any{"scope": "read"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	pub, err := es256.NewPublicKey(fixturePoint(t))
	if err != nil {
		t.Fatalf("NewPublicKey failed: %v", err)
	}
	verifier, err := token.NewSigningVerifier(pub)
	if err != nil {
		t.Fatalf("NewSigningVerifier failed: %v", err)
	}
	ok, err := verifier.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("generated token did not verify")
	}
}

func TestGeneratorCustomHeader(t *testing.T) {
	key, err := es256.NewSecretKey(fixtureScalar(t))
	if err != nil {
		t.Fatalf("NewSecretKey failed: %v", err)
	}
	gen, err := token.NewSigningGenerator(key, time.Minute)
	if err != nil {
		t.Fatalf("NewSigningGenerator failed: %v", err)
	}
	signed, err := gen.GenerateWithHeader(nil, map[string]any{
		"cty": "application/json",
		"alg": "none", // must not win
	})
	if err != nil {
		t.Fatalf("GenerateWithHeader failed: %v", err)
	}
	st, err := token.ParseToken(signed)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	header, err := st.Header()
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}
	if header["alg"] != token.AlgES256 {
		t.Fatalf("alg header overridden: %v", header["alg"])
	}
	if header["cty"] != "application/json" {
		t.Fatalf("cty header lost: %v", header)
	}
}

func TestGeneratorRequiresKeyMaterial(t *testing.T) {
	if _, err := token.NewSigningGenerator(nil, time.Minute); err == nil {
		t.Fatal("nil key accepted")
	}
	if _, err := token.NewKeyManagerGenerator(nil, time.Minute); err == nil {
		t.Fatal("nil key manager accepted")
	}
	if _, err := token.NewSigningVerifier(nil); err == nil {
		t.Fatal("nil public key accepted")
	}
	if _, err := token.NewKeyManagerVerifier(nil); err == nil {
		t.Fatal("nil key manager accepted")
	}
}
