package token

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedToken indicates that an obtained token does not split into
// exactly three non-empty dot-separated segments.
var ErrMalformedToken = errors.New("token is malformed")

// Header parameter names.
const (
	HeaderAlg   = "alg"
	HeaderType  = "typ"
	HeaderKeyID = "kid"
)

// TypeJWT is the conventional typ header value for compact JWTs.
const TypeJWT = "JWT"

// Token carries the header and claim sets of a compact JWT before signing.
// The library never interprets claim contents; they are signed as opaque
// JSON.
type Token struct {
	Header map[string]any
	Claims map[string]any
}

// NewToken issues a token with the ES256 header preset.
func NewToken(ids ...string) *Token {
	var keyID string
	if len(ids) > 0 {
		keyID = strings.TrimSpace(ids[0])
	}
	header := map[string]any{
		HeaderAlg:  AlgES256,
		HeaderType: TypeJWT,
	}
	if keyID != "" {
		header[HeaderKeyID] = keyID
	}
	return &Token{
		Header: header,
		Claims: make(map[string]any),
	}
}

// RegisterClaim adds or updates a single claim key→value.
func (t *Token) RegisterClaim(key string, value any) error {
	if t == nil {
		return errors.New("token is nil")
	}
	if key == "" {
		return errors.New("claim key required")
	}
	if t.Claims == nil {
		t.Claims = make(map[string]any)
	}
	t.Claims[key] = value
	return nil
}

// RegisterClaims adds multiple claims at once.
func (t *Token) RegisterClaims(claims map[string]any) error {
	if t == nil {
		return errors.New("token is nil")
	}
	if t.Claims == nil {
		t.Claims = make(map[string]any)
	}
	for k, v := range claims {
		if k == "" {
			return errors.New("claim key required")
		}
		t.Claims[k] = v
	}
	return nil
}

// RemoveClaim deletes a claim by key.
func (t *Token) RemoveClaim(key string) error {
	if t == nil {
		return errors.New("token is nil")
	}
	delete(t.Claims, key)
	return nil
}

// GetClaim returns the value for a claim, and a boolean indicating presence.
func (t *Token) GetClaim(key string) (any, bool) {
	if t == nil || t.Claims == nil {
		return nil, false
	}
	val, ok := t.Claims[key]
	return val, ok
}

// RegisterHeader adds or updates a header parameter.
func (t *Token) RegisterHeader(key string, value any) error {
	if t == nil {
		return errors.New("token is nil")
	}
	if key == "" {
		return errors.New("header key required")
	}
	if t.Header == nil {
		t.Header = make(map[string]any)
	}
	t.Header[key] = value
	return nil
}

// SigningInput encodes the header and claim sets and joins them with a dot.
// This is the exact byte sequence the signature covers.
func (t *Token) SigningInput() (string, error) {
	if t == nil || t.Header == nil {
		return "", ErrMalformedToken
	}
	header, err := EncodeJSON(t.Header)
	if err != nil {
		return "", err
	}
	claims := t.Claims
	if claims == nil {
		claims = map[string]any{}
	}
	payload, err := EncodeJSON(claims)
	if err != nil {
		return "", err
	}
	sb := acquireBuffer()
	defer sb.Release()
	sb.buf = append(sb.buf, header...)
	sb.buf = append(sb.buf, '.')
	sb.buf = append(sb.buf, payload...)
	return string(sb.buf), nil
}

// SignToken signs t with the private scalar and returns the compact
// serialization header.payload.signature.
func SignToken(t *Token, scalar []byte, ids ...string) (string, error) {
	if t == nil {
		return "", ErrMalformedToken
	}
	var keyID string
	if len(ids) > 0 {
		keyID = strings.TrimSpace(ids[0])
	}
	if t.Header == nil {
		t.Header = make(map[string]any)
	}
	t.Header[HeaderAlg] = AlgES256
	if _, ok := t.Header[HeaderType]; !ok {
		t.Header[HeaderType] = TypeJWT
	}
	if keyID != "" {
		t.Header[HeaderKeyID] = keyID
	}
	input, err := t.SigningInput()
	if err != nil {
		return "", err
	}
	sig, err := Sign(input, scalar)
	if err != nil {
		return "", err
	}
	sb := acquireBuffer()
	defer sb.Release()
	sb.buf = append(sb.buf, input...)
	sb.buf = append(sb.buf, '.')
	sb.buf = append(sb.buf, EncodeBase64URL(sig)...)
	return string(sb.buf), nil
}

// Sign is the method form of SignToken.
func (t *Token) Sign(scalar []byte, ids ...string) (string, error) {
	return SignToken(t, scalar, ids...)
}

// SignClaims signs caller-supplied raw header and claim maps without going
// through a Token value. A nil header gets the ES256 defaults.
func SignClaims(header, claims map[string]any, scalar []byte) (string, error) {
	t := &Token{Header: header, Claims: claims}
	if t.Header == nil {
		t.Header = map[string]any{HeaderAlg: AlgES256, HeaderType: TypeJWT}
	}
	return SignToken(t, scalar)
}

// SignedToken holds the still-encoded segments of a parsed compact JWT.
type SignedToken struct {
	RawHeader    string
	RawPayload   string
	RawSignature string
}

// SigningInput reassembles the two segments the signature covers.
func (s *SignedToken) SigningInput() string {
	return s.RawHeader + "." + s.RawPayload
}

// Signature decodes the signature segment.
func (s *SignedToken) Signature() ([]byte, error) {
	return DecodeBase64URL(s.RawSignature)
}

// Header decodes the header segment into a parameter map.
func (s *SignedToken) Header() (map[string]any, error) {
	raw, err := DecodeBase64URL(s.RawHeader)
	if err != nil {
		return nil, err
	}
	header := make(map[string]any)
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, ErrMalformedToken
	}
	return header, nil
}

// Payload returns the decoded payload bytes. The library treats them as an
// opaque blob; semantic claim checks belong to the caller.
func (s *SignedToken) Payload() ([]byte, error) {
	return DecodeBase64URL(s.RawPayload)
}

// Claims decodes the payload JSON into a claim map.
func (s *SignedToken) Claims() (map[string]any, error) {
	raw, err := s.Payload()
	if err != nil {
		return nil, err
	}
	claims := make(map[string]any)
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// KeyID returns the kid header parameter, if any.
func (s *SignedToken) KeyID() (string, bool) {
	header, err := s.Header()
	if err != nil {
		return "", false
	}
	kid, ok := header[HeaderKeyID].(string)
	if !ok || kid == "" {
		return "", false
	}
	return kid, true
}

// ParseToken splits a compact JWT into its three segments without verifying
// or decoding anything beyond the separator structure.
func ParseToken(encoded string) (*SignedToken, error) {
	if encoded == "" || len(encoded) > maxTokenSize {
		return nil, ErrMalformedToken
	}
	parts := strings.Split(encoded, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}
	for _, p := range parts {
		if p == "" {
			return nil, ErrMalformedToken
		}
	}
	return &SignedToken{
		RawHeader:    parts[0],
		RawPayload:   parts[1],
		RawSignature: parts[2],
	}, nil
}

// VerifyToken parses encoded and checks its signature against the public
// point. Claim contents are never inspected here.
func VerifyToken(encoded string, point []byte) (bool, error) {
	st, err := ParseToken(encoded)
	if err != nil {
		return false, err
	}
	sig, err := st.Signature()
	if err != nil {
		return false, err
	}
	return Verify(st.SigningInput(), sig, point)
}

func mergeClaims(dst map[string]any, src map[string]any) {
	if len(src) == 0 || dst == nil {
		return
	}
	for k, v := range src {
		if k == "" {
			continue
		}
		dst[k] = v
	}
}

func mergeHeader(dst map[string]any, src map[string]any) {
	if len(src) == 0 || dst == nil {
		return
	}
	for k, v := range src {
		if k == "" {
			continue
		}
		dst[k] = v
	}
}
