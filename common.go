package es256

import (
	"errors"
)

// ErrInvalidKeyLength is returned when raw key material does not have the exact
// length its role requires (32-byte scalar, 33- or 65-byte point).
var ErrInvalidKeyLength = errors.New("invalid key length")

// ErrInvalidScalar is returned when a private scalar is zero or not below the
// curve order.
var ErrInvalidScalar = errors.New("scalar out of range for curve")

// ErrInvalidPoint is returned when public key bytes do not decode to a point
// on the curve.
var ErrInvalidPoint = errors.New("point is malformed or not on curve")

// ErrIntegrity indicates an internal invariant violation, such as the curve
// backend producing a coordinate wider than the field allows.
var ErrIntegrity = errors.New("internal curve integrity failure")

const (
	// ScalarSize is the byte length of a P-256 private scalar.
	ScalarSize = 32

	// CoordinateSize is the byte length of one affine coordinate.
	CoordinateSize = 32

	// CompressedPointSize is the length of a compressed point encoding.
	CompressedPointSize = 1 + CoordinateSize

	// UncompressedPointSize is the length of an uncompressed point encoding.
	UncompressedPointSize = 1 + 2*CoordinateSize
)

// key abstracts raw key material for extra safety.
type key struct {
	material []byte
}

func (k *key) bytes() []byte {
	return append([]byte(nil), k.material...)
}

// SecretKey is a private-scalar abstraction for usage on sign.
type SecretKey struct {
	key
}

// PublicKey is an encoded-point abstraction for usage on verify.
type PublicKey struct {
	key
}

// NewSecretKey validates the scalar range and wraps a copy of the material.
func NewSecretKey(material []byte) (*SecretKey, error) {
	if err := ValidateScalar(P256(), material); err != nil {
		return nil, err
	}
	return &SecretKey{key{material: append([]byte(nil), material...)}}, nil
}

// NewPublicKey checks that material encodes a point on P-256 and wraps a copy.
// Both compressed and uncompressed encodings are accepted.
func NewPublicKey(material []byte) (*PublicKey, error) {
	if _, _, err := P256().Decompress(material); err != nil {
		return nil, err
	}
	return &PublicKey{key{material: append([]byte(nil), material...)}}, nil
}

// Bytes returns a copy of the raw 32-byte scalar.
func (k *SecretKey) Bytes() []byte { return k.bytes() }

// Bytes returns a copy of the encoded point.
func (k *PublicKey) Bytes() []byte { return k.bytes() }

// Zero wipes the scalar material in place.
func (k *SecretKey) Zero() {
	for i := range k.material {
		k.material[i] = 0
	}
}
