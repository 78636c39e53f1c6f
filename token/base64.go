package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEncoding is returned for any segment that is not valid unpadded
// base64url.
var ErrInvalidEncoding = errors.New("malformed base64url data")

// Maximum token size to prevent resource exhaustion attacks
const maxTokenSize = 8192

// EncodeBase64URL returns raw URL-safe base64 encoding
func EncodeBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBase64URL decodes URL-safe base64 by restoring the padding the
// compact serialization strips. A length of 1 mod 4 cannot be produced by
// any byte sequence and is rejected outright.
func DecodeBase64URL(data string) ([]byte, error) {
	if len(data) > maxTokenSize {
		return nil, ErrInvalidEncoding
	}
	switch len(data) % 4 {
	case 1:
		return nil, ErrInvalidEncoding
	case 2:
		data += "=="
	case 3:
		data += "="
	}
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	return raw, nil
}

// EncodeJSON marshals v and base64url-encodes the resulting UTF-8 bytes.
func EncodeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode segment: %w", err)
	}
	return EncodeBase64URL(raw), nil
}
