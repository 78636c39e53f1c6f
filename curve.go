package es256

import (
	"crypto/elliptic"
	"math/big"
)

// Curve abstracts the elliptic-curve operations the codec and signing layers
// need, so the arithmetic backend stays swappable without touching either.
type Curve interface {
	Name() string
	// Order returns the order n of the base point.
	Order() *big.Int
	// ScalarBaseMult computes scalar * G in affine coordinates.
	ScalarBaseMult(scalar []byte) (x, y *big.Int)
	// Add computes (x1,y1) + (x2,y2).
	Add(x1, y1, x2, y2 *big.Int) (x, y *big.Int)
	// IsOnCurve reports whether (x,y) is a finite point on the curve.
	IsOnCurve(x, y *big.Int) bool
	// Compress encodes (x,y) into the 33-byte SEC 1 compressed form.
	Compress(x, y *big.Int) []byte
	// Decompress parses a compressed or uncompressed point encoding and
	// validates curve membership.
	Decompress(point []byte) (x, y *big.Int, err error)
}

// P256 returns the NIST P-256 backend used by ES256.
func P256() Curve { return p256Backend{} }

type p256Backend struct{}

func (p256Backend) Name() string { return "P-256" }

func (p256Backend) Order() *big.Int { return elliptic.P256().Params().N }

func (p256Backend) ScalarBaseMult(scalar []byte) (*big.Int, *big.Int) {
	return elliptic.P256().ScalarBaseMult(scalar)
}

func (p256Backend) Add(x1, y1, x2, y2 *big.Int) (*big.Int, *big.Int) {
	return elliptic.P256().Add(x1, y1, x2, y2)
}

func (p256Backend) IsOnCurve(x, y *big.Int) bool {
	if x == nil || y == nil {
		return false
	}
	// The point at infinity is never a valid public key.
	if x.Sign() == 0 && y.Sign() == 0 {
		return false
	}
	return elliptic.P256().IsOnCurve(x, y)
}

func (p256Backend) Compress(x, y *big.Int) []byte {
	return elliptic.MarshalCompressed(elliptic.P256(), x, y)
}

func (p256Backend) Decompress(point []byte) (*big.Int, *big.Int, error) {
	switch len(point) {
	case CompressedPointSize:
		x, y := elliptic.UnmarshalCompressed(elliptic.P256(), point)
		if x == nil {
			return nil, nil, ErrInvalidPoint
		}
		return x, y, nil
	case UncompressedPointSize:
		x, y := elliptic.Unmarshal(elliptic.P256(), point)
		if x == nil {
			return nil, nil, ErrInvalidPoint
		}
		return x, y, nil
	default:
		return nil, nil, ErrInvalidKeyLength
	}
}

// ValidateScalar checks that scalar is exactly ScalarSize bytes and decodes
// to a value in [1, n-1].
func ValidateScalar(c Curve, scalar []byte) error {
	if len(scalar) != ScalarSize {
		return ErrInvalidKeyLength
	}
	d := new(big.Int).SetBytes(scalar)
	if d.Sign() == 0 || d.Cmp(c.Order()) >= 0 {
		return ErrInvalidScalar
	}
	return nil
}
