package token

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/oarkflow/es256"
)

// ErrMissingField is returned when a JWK lacks a member its use requires.
var ErrMissingField = errors.New("jwk missing required field")

const (
	// KeyTypeEC is the JWK key type for elliptic-curve keys.
	KeyTypeEC = "EC"
	// CurveP256 is the JWK curve name for secp256r1.
	CurveP256 = "P-256"
	// AlgES256 is the JWS algorithm identifier for ECDSA P-256 / SHA-256.
	AlgES256 = "ES256"
)

const (
	prefixEvenY        = 0x02
	prefixOddY         = 0x03
	prefixUncompressed = 0x04
)

// curve is the arithmetic backend shared by the codec and signing layers.
var curve = es256.P256()

// JWK is the wire representation of a JSON Web Key, restricted to EC keys on
// P-256. X and Y hold base64url 32-byte coordinates; D, when present, holds
// the base64url private scalar.
type JWK struct {
	Kty string `json:"kty" yaml:"kty"`
	Crv string `json:"crv" yaml:"crv"`
	Kid string `json:"kid,omitempty" yaml:"kid,omitempty"`
	Alg string `json:"alg,omitempty" yaml:"alg,omitempty"`
	Use string `json:"use,omitempty" yaml:"use,omitempty"`
	X   string `json:"x" yaml:"x"`
	Y   string `json:"y" yaml:"y"`
	D   string `json:"d,omitempty" yaml:"d,omitempty"`
}

// IsPrivate reports whether the key carries a private scalar.
func (j *JWK) IsPrivate() bool { return j != nil && j.D != "" }

// Public returns a copy of the key with the private scalar stripped.
func (j *JWK) Public() *JWK {
	if j == nil {
		return nil
	}
	pub := *j
	pub.D = ""
	return &pub
}

func (j *JWK) validateType() error {
	if j.Kty != KeyTypeEC {
		return fmt.Errorf("%w: kty %q", es256.ErrInvalidPoint, j.Kty)
	}
	if j.Crv != CurveP256 {
		return fmt.Errorf("%w: crv %q", es256.ErrInvalidPoint, j.Crv)
	}
	return nil
}

// ScalarToJWK derives the public point for a 32-byte private scalar and
// returns the full private JWK. The scalar must lie in [1, n-1].
func ScalarToJWK(scalar []byte, ids ...string) (*JWK, error) {
	var kid string
	if len(ids) > 0 {
		kid = strings.TrimSpace(ids[0])
	}
	if len(scalar) != es256.ScalarSize {
		return nil, es256.ErrInvalidKeyLength
	}
	if err := es256.ValidateScalar(curve, scalar); err != nil {
		return nil, err
	}
	x, y := curve.ScalarBaseMult(scalar)
	xb, err := coordinateBytes(x)
	if err != nil {
		return nil, err
	}
	yb, err := coordinateBytes(y)
	if err != nil {
		return nil, err
	}
	return &JWK{
		Kty: KeyTypeEC,
		Crv: CurveP256,
		Kid: kid,
		X:   EncodeBase64URL(xb),
		Y:   EncodeBase64URL(yb),
		D:   EncodeBase64URL(append([]byte(nil), scalar...)),
	}, nil
}

// JWKToScalar extracts and validates the private scalar from a JWK. When the
// key also carries public coordinates they must match the point derived from
// d, otherwise the key is rejected as inconsistent.
func JWKToScalar(j *JWK) ([]byte, error) {
	if j == nil || j.D == "" {
		return nil, fmt.Errorf("%w: d", ErrMissingField)
	}
	scalar, err := DecodeBase64URL(j.D)
	if err != nil {
		return nil, err
	}
	if len(scalar) != es256.ScalarSize {
		return nil, es256.ErrInvalidKeyLength
	}
	if err := es256.ValidateScalar(curve, scalar); err != nil {
		return nil, err
	}
	if j.X != "" && j.Y != "" {
		derived, err := ScalarToJWK(scalar)
		if err != nil {
			return nil, err
		}
		xMatch := subtle.ConstantTimeCompare([]byte(derived.X), []byte(j.X)) == 1
		yMatch := subtle.ConstantTimeCompare([]byte(derived.Y), []byte(j.Y)) == 1
		if !xMatch || !yMatch {
			return nil, fmt.Errorf("%w: public coordinates do not match d", es256.ErrInvalidPoint)
		}
	}
	return scalar, nil
}

// PointToJWK converts a compressed (33-byte) or uncompressed (65-byte) point
// encoding into a public JWK. The emitted x/y fields are always fixed-width
// regardless of the input form.
func PointToJWK(point []byte, ids ...string) (*JWK, error) {
	var kid string
	if len(ids) > 0 {
		kid = strings.TrimSpace(ids[0])
	}
	switch len(point) {
	case es256.CompressedPointSize, es256.UncompressedPointSize:
	default:
		return nil, es256.ErrInvalidKeyLength
	}
	x, y, err := curve.Decompress(point)
	if err != nil {
		return nil, err
	}
	xb, err := coordinateBytes(x)
	if err != nil {
		return nil, err
	}
	yb, err := coordinateBytes(y)
	if err != nil {
		return nil, err
	}
	return &JWK{
		Kty: KeyTypeEC,
		Crv: CurveP256,
		Kid: kid,
		X:   EncodeBase64URL(xb),
		Y:   EncodeBase64URL(yb),
	}, nil
}

// JWKToPoint rebuilds the raw point encoding from a public JWK, validating
// curve membership. With compressed set the 33-byte SEC 1 form is returned,
// prefix 0x02 for even y and 0x03 for odd.
func JWKToPoint(j *JWK, compressed bool) ([]byte, error) {
	if j == nil || j.X == "" || j.Y == "" {
		return nil, fmt.Errorf("%w: x/y", ErrMissingField)
	}
	if err := j.validateType(); err != nil {
		return nil, err
	}
	xb, err := DecodeBase64URL(j.X)
	if err != nil {
		return nil, err
	}
	yb, err := DecodeBase64URL(j.Y)
	if err != nil {
		return nil, err
	}
	if len(xb) != es256.CoordinateSize || len(yb) != es256.CoordinateSize {
		return nil, es256.ErrInvalidKeyLength
	}
	x := new(big.Int).SetBytes(xb)
	y := new(big.Int).SetBytes(yb)
	if !curve.IsOnCurve(x, y) {
		return nil, es256.ErrInvalidPoint
	}
	if compressed {
		return curve.Compress(x, y), nil
	}
	point := make([]byte, es256.UncompressedPointSize)
	point[0] = prefixUncompressed
	copy(point[1:1+es256.CoordinateSize], xb)
	copy(point[1+es256.CoordinateSize:], yb)
	return point, nil
}

// coordinateBytes renders a field element as fixed-width big-endian bytes.
// P-256 elements never exceed 32 bytes, so overflow means the backend handed
// back garbage.
func coordinateBytes(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() < 0 || v.BitLen() > 8*es256.CoordinateSize {
		return nil, es256.ErrIntegrity
	}
	out := make([]byte, es256.CoordinateSize)
	v.FillBytes(out)
	return out, nil
}
