package token

import (
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/oarkflow/es256"
)

// SignatureToDER re-encodes a compact r‖s signature as an ASN.1 DER
// ECDSA-Sig-Value, the form X.509 tooling and crypto/ecdsa's *ASN1 helpers
// expect.
func SignatureToDER(sig []byte) ([]byte, error) {
	if len(sig) != SignatureSize {
		return nil, ErrInvalidSignature
	}
	r := new(big.Int).SetBytes(sig[:es256.CoordinateSize])
	s := new(big.Int).SetBytes(sig[es256.CoordinateSize:])
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.Bytes()
}

// SignatureFromDER parses an ASN.1 DER ECDSA-Sig-Value into the compact
// 64-byte form, left-padding both components to coordinate width.
func SignatureFromDER(der []byte) ([]byte, error) {
	var inner cryptobyte.String
	input := cryptobyte.String(der)
	r, s := new(big.Int), new(big.Int)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, ErrInvalidSignature
	}
	if r.Sign() <= 0 || s.Sign() <= 0 ||
		r.BitLen() > 8*es256.CoordinateSize || s.BitLen() > 8*es256.CoordinateSize {
		return nil, ErrInvalidSignature
	}
	sig := make([]byte, SignatureSize)
	r.FillBytes(sig[:es256.CoordinateSize])
	s.FillBytes(sig[es256.CoordinateSize:])
	return sig, nil
}
