package token_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/oarkflow/es256"
	"github.com/oarkflow/es256/token"
)

func TestScalarToJWKDerivesFixtureCoordinates(t *testing.T) {
	jwk, err := token.ScalarToJWK(fixtureScalar(t), "demo")
	if err != nil {
		t.Fatalf("ScalarToJWK failed: %v", err)
	}
	if jwk.Kty != token.KeyTypeEC || jwk.Crv != token.CurveP256 {
		t.Fatalf("unexpected key metadata: kty=%q crv=%q", jwk.Kty, jwk.Crv)
	}
	if jwk.Kid != "demo" {
		t.Fatalf("kid not carried: %q", jwk.Kid)
	}
	if jwk.X != fixtureX || jwk.Y != fixtureY {
		t.Fatalf("derived point mismatch:\n x=%s\n y=%s", jwk.X, jwk.Y)
	}
	if jwk.D != fixtureD {
		t.Fatalf("d not preserved: %s", jwk.D)
	}
}

func TestScalarJWKRoundTrip(t *testing.T) {
	scalar := fixtureScalar(t)
	jwk, err := token.ScalarToJWK(scalar)
	if err != nil {
		t.Fatalf("ScalarToJWK failed: %v", err)
	}
	back, err := token.JWKToScalar(jwk)
	if err != nil {
		t.Fatalf("JWKToScalar failed: %v", err)
	}
	if !bytes.Equal(back, scalar) {
		t.Fatalf("scalar round trip mismatch: %x != %x", back, scalar)
	}
}

func TestScalarToJWKRejectsBadScalars(t *testing.T) {
	if _, err := token.ScalarToJWK(make([]byte, 31)); !errors.Is(err, es256.ErrInvalidKeyLength) {
		t.Fatalf("short scalar: want ErrInvalidKeyLength, got %v", err)
	}
	if _, err := token.ScalarToJWK(make([]byte, 33)); !errors.Is(err, es256.ErrInvalidKeyLength) {
		t.Fatalf("long scalar: want ErrInvalidKeyLength, got %v", err)
	}
	if _, err := token.ScalarToJWK(make([]byte, 32)); !errors.Is(err, es256.ErrInvalidScalar) {
		t.Fatalf("zero scalar: want ErrInvalidScalar, got %v", err)
	}
	order := make([]byte, 32)
	es256.P256().Order().FillBytes(order)
	if _, err := token.ScalarToJWK(order); !errors.Is(err, es256.ErrInvalidScalar) {
		t.Fatalf("scalar == n: want ErrInvalidScalar, got %v", err)
	}
}

func TestJWKToScalarMissingD(t *testing.T) {
	if _, err := token.JWKToScalar(fixturePublicJWK()); !errors.Is(err, token.ErrMissingField) {
		t.Fatalf("want ErrMissingField, got %v", err)
	}
	if _, err := token.JWKToScalar(nil); !errors.Is(err, token.ErrMissingField) {
		t.Fatalf("nil jwk: want ErrMissingField, got %v", err)
	}
}

func TestJWKToScalarRejectsMismatchedCoordinates(t *testing.T) {
	// Coordinates of the base point do not belong to the fixture scalar.
	one := make([]byte, 32)
	one[31] = 1
	g, err := token.ScalarToJWK(one)
	if err != nil {
		t.Fatalf("ScalarToJWK(1) failed: %v", err)
	}
	bad := &token.JWK{
		Kty: token.KeyTypeEC,
		Crv: token.CurveP256,
		X:   g.X,
		Y:   g.Y,
		D:   fixtureD,
	}
	if _, err := token.JWKToScalar(bad); !errors.Is(err, es256.ErrInvalidPoint) {
		t.Fatalf("want ErrInvalidPoint for mismatched coordinates, got %v", err)
	}
}

func TestPointJWKRoundTripUncompressed(t *testing.T) {
	point := fixturePoint(t)
	if len(point) != es256.UncompressedPointSize {
		t.Fatalf("unexpected point length %d", len(point))
	}
	jwk, err := token.PointToJWK(point)
	if err != nil {
		t.Fatalf("PointToJWK failed: %v", err)
	}
	if jwk.X != fixtureX || jwk.Y != fixtureY {
		t.Fatalf("coordinate mismatch:\n x=%s\n y=%s", jwk.X, jwk.Y)
	}
	back, err := token.JWKToPoint(jwk, false)
	if err != nil {
		t.Fatalf("JWKToPoint failed: %v", err)
	}
	if !bytes.Equal(back, point) {
		t.Fatalf("uncompressed round trip mismatch")
	}
}

func TestPointJWKRoundTripCompressed(t *testing.T) {
	compressed, err := token.JWKToPoint(fixturePublicJWK(), true)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if len(compressed) != es256.CompressedPointSize {
		t.Fatalf("unexpected compressed length %d", len(compressed))
	}
	if compressed[0] != 0x02 && compressed[0] != 0x03 {
		t.Fatalf("unexpected compressed prefix %#x", compressed[0])
	}
	jwk, err := token.PointToJWK(compressed)
	if err != nil {
		t.Fatalf("PointToJWK on compressed input failed: %v", err)
	}
	// Coordinates are emitted the same way regardless of the input form.
	if jwk.X != fixtureX || jwk.Y != fixtureY {
		t.Fatalf("compressed decode coordinate mismatch")
	}
	back, err := token.JWKToPoint(jwk, true)
	if err != nil {
		t.Fatalf("re-compress failed: %v", err)
	}
	if !bytes.Equal(back, compressed) {
		t.Fatalf("compressed round trip mismatch")
	}
}

func TestPointToJWKRejectsBadInput(t *testing.T) {
	if _, err := token.PointToJWK(make([]byte, 64)); !errors.Is(err, es256.ErrInvalidKeyLength) {
		t.Fatalf("64-byte input: want ErrInvalidKeyLength, got %v", err)
	}
	if _, err := token.PointToJWK(nil); !errors.Is(err, es256.ErrInvalidKeyLength) {
		t.Fatalf("nil input: want ErrInvalidKeyLength, got %v", err)
	}
	badPrefix := fixturePoint(t)
	badPrefix[0] = 0x07
	if _, err := token.PointToJWK(badPrefix); !errors.Is(err, es256.ErrInvalidPoint) {
		t.Fatalf("bad prefix: want ErrInvalidPoint, got %v", err)
	}
	offCurve := fixturePoint(t)
	offCurve[len(offCurve)-1] ^= 0x01
	if _, err := token.PointToJWK(offCurve); !errors.Is(err, es256.ErrInvalidPoint) {
		t.Fatalf("off-curve point: want ErrInvalidPoint, got %v", err)
	}
}

func TestJWKToPointRejectsForeignKeyTypes(t *testing.T) {
	rsaLike := &token.JWK{Kty: "RSA", Crv: token.CurveP256, X: fixtureX, Y: fixtureY}
	if _, err := token.JWKToPoint(rsaLike, false); !errors.Is(err, es256.ErrInvalidPoint) {
		t.Fatalf("kty=RSA: want ErrInvalidPoint, got %v", err)
	}
	wrongCurve := fixturePublicJWK()
	wrongCurve.Crv = "P-384"
	if _, err := token.JWKToPoint(wrongCurve, false); !errors.Is(err, es256.ErrInvalidPoint) {
		t.Fatalf("crv=P-384: want ErrInvalidPoint, got %v", err)
	}
	missing := &token.JWK{Kty: token.KeyTypeEC, Crv: token.CurveP256, X: fixtureX}
	if _, err := token.JWKToPoint(missing, false); !errors.Is(err, token.ErrMissingField) {
		t.Fatalf("missing y: want ErrMissingField, got %v", err)
	}
}

func TestJWKPublicStripsScalar(t *testing.T) {
	jwk, err := token.ScalarToJWK(fixtureScalar(t))
	if err != nil {
		t.Fatalf("ScalarToJWK failed: %v", err)
	}
	if !jwk.IsPrivate() {
		t.Fatal("expected private jwk")
	}
	pub := jwk.Public()
	if pub.IsPrivate() {
		t.Fatal("Public() kept the scalar")
	}
	if pub.X != jwk.X || pub.Y != jwk.Y {
		t.Fatal("Public() altered coordinates")
	}
	if jwk.D == "" {
		t.Fatal("Public() mutated the receiver")
	}
}
