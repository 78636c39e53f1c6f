package token

import (
	"crypto/rand"
	"errors"
	"io"
	"sync"
)

const (
	defaultPoolSize         = 256
	defaultCharsetLen       = 64
	charsetMask64      byte = 0x3F // 0b00111111 - masks to 64 values
)

var (
	ErrInvalidLength = errors.New("length must be positive")
	ErrReaderFailed  = errors.New("entropy source read failed")
)

// charset uses URL-safe base64 characters for maximum compatibility
var charset = [defaultCharsetLen]byte{
	'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
	'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z',
	'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
	'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '-', '_',
}

// SecretGenerator produces URL-safe random identifiers with pooled buffers.
// Token ids (jti) and ad-hoc key ids come from here.
type SecretGenerator struct {
	reader io.Reader
	pool   *sync.Pool
	prefix string
}

// NewSecretGenerator creates a generator with the given entropy source.
// If no reader is provided, crypto/rand.Reader is used (recommended).
func NewSecretGenerator(readers ...io.Reader) *SecretGenerator {
	reader := rand.Reader
	if len(readers) > 0 && readers[0] != nil {
		reader = readers[0]
	}
	return &SecretGenerator{
		reader: reader,
		pool: &sync.Pool{
			New: func() any {
				buf := make([]byte, defaultPoolSize)
				return &buf
			},
		},
	}
}

// WithPrefix prepends a static prefix to every generated string.
func (g *SecretGenerator) WithPrefix(prefix string) *SecretGenerator {
	g.prefix = prefix
	return g
}

// String generates a random string of the requested length over the URL-safe
// charset. The returned string owns its bytes; pooled buffers are never
// exposed to callers.
func (g *SecretGenerator) String(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}
	ptr := g.pool.Get().(*[]byte)
	buf := *ptr
	if cap(buf) < length {
		buf = make([]byte, length)
	}
	buf = buf[:length]
	if _, err := io.ReadFull(g.reader, buf); err != nil {
		g.pool.Put(ptr)
		return "", ErrReaderFailed
	}
	// 64 divides 256 evenly, so masking keeps the distribution uniform.
	for i, b := range buf {
		buf[i] = charset[b&charsetMask64]
	}
	out := g.prefix + string(buf)
	*ptr = buf
	g.pool.Put(ptr)
	return out, nil
}

var idGenerator = NewSecretGenerator()

// generateTokenID returns a 22-character identifier, the same entropy as a
// base64url-encoded 16-byte value. Empty on entropy failure; callers skip
// the claim in that case.
func generateTokenID() string {
	id, err := idGenerator.String(22)
	if err != nil {
		return ""
	}
	return id
}
