package token

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/oarkflow/es256"
)

// ErrInvalidSignature is returned when a signature does not verify for the
// given signing input.
var ErrInvalidSignature = errors.New("invalid token signature")

// SignatureSize is the length of a compact r‖s ES256 signature.
const SignatureSize = 2 * es256.CoordinateSize

// SigningMethod is compatible with jwt.SigningMethod
// Provides methods for signing and verifying tokens
// Only ES256 supported here

type SigningMethod interface {
	Alg() string
	Sign(signingInput string, key any) ([]byte, error)
	Verify(signingInput string, sig []byte, key any) error
}

// SigningMethodES256 implements ECDSA over P-256 with SHA-256
var SigningMethodES256 = &signingMethodES256{}

type signingMethodES256 struct{}

func (m *signingMethodES256) Alg() string { return AlgES256 }

func (m *signingMethodES256) Sign(signingInput string, key any) ([]byte, error) {
	switch k := key.(type) {
	case []byte:
		return Sign(signingInput, k)
	case *es256.SecretKey:
		if k == nil {
			return nil, errors.New("invalid ES256 private key")
		}
		return Sign(signingInput, k.Bytes())
	default:
		return nil, errors.New("invalid ES256 private key")
	}
}

func (m *signingMethodES256) Verify(signingInput string, sig []byte, key any) error {
	var point []byte
	switch k := key.(type) {
	case []byte:
		point = k
	case *es256.PublicKey:
		if k == nil {
			return errors.New("invalid ES256 public key")
		}
		point = k.Bytes()
	default:
		return errors.New("invalid ES256 public key")
	}
	ok, err := Verify(signingInput, sig, point)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

// Sign hashes the ASCII signing input with SHA-256 and signs the digest with
// the 32-byte private scalar, returning the compact 64-byte r‖s signature
// with both halves left-padded to coordinate width.
func Sign(signingInput string, scalar []byte) ([]byte, error) {
	if len(scalar) != es256.ScalarSize {
		return nil, es256.ErrInvalidKeyLength
	}
	if err := es256.ValidateScalar(curve, scalar); err != nil {
		return nil, err
	}
	priv := privateKeyFromScalar(scalar)
	digest := sha256.Sum256([]byte(signingInput))
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("ecdsa sign: %w", err)
	}
	rb, err := coordinateBytes(r)
	if err != nil {
		return nil, err
	}
	sb, err := coordinateBytes(s)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, SignatureSize)
	copy(sig[:es256.CoordinateSize], rb)
	copy(sig[es256.CoordinateSize:], sb)
	return sig, nil
}

// Verify recomputes the digest and checks sig against the public point.
// A structurally invalid signature (wrong length, r or s outside [1, n-1])
// or a failed ECDSA check yields (false, nil): not verifying is a routine
// outcome. An undecodable public key is a caller error and yields an error.
func Verify(signingInput string, sig []byte, point []byte) (bool, error) {
	pub, err := publicKeyFromPoint(point)
	if err != nil {
		return false, err
	}
	if len(sig) != SignatureSize {
		return false, nil
	}
	r := new(big.Int).SetBytes(sig[:es256.CoordinateSize])
	s := new(big.Int).SetBytes(sig[es256.CoordinateSize:])
	n := curve.Order()
	if r.Sign() == 0 || s.Sign() == 0 || r.Cmp(n) >= 0 || s.Cmp(n) >= 0 {
		return false, nil
	}
	digest := sha256.Sum256([]byte(signingInput))
	return ecdsa.Verify(pub, digest[:], r, s), nil
}

func privateKeyFromScalar(scalar []byte) *ecdsa.PrivateKey {
	x, y := curve.ScalarBaseMult(scalar)
	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y},
		D:         new(big.Int).SetBytes(scalar),
	}
}

func publicKeyFromPoint(point []byte) (*ecdsa.PublicKey, error) {
	x, y, err := curve.Decompress(point)
	if err != nil {
		return nil, err
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}
