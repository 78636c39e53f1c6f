package token

import (
	"errors"
	"strings"
	"time"

	"github.com/oarkflow/es256"
)

// TokenGenerator issues ES256 JWTs while reusing pooled Token structs.
type TokenGenerator struct {
	ttl        time.Duration
	nowFn      func() time.Time
	signingKey *es256.SecretKey
	keyID      string
	km         *KeyManager
}

// GeneratorOption customizes a TokenGenerator.
type GeneratorOption func(*TokenGenerator)

// WithGeneratorKeyID forces a static key identifier on generated tokens.
func WithGeneratorKeyID(keyID string) GeneratorOption {
	return func(g *TokenGenerator) {
		g.keyID = strings.TrimSpace(keyID)
	}
}

// WithGeneratorNow injects a deterministic clock source (useful for tests).
func WithGeneratorNow(fn func() time.Time) GeneratorOption {
	return func(g *TokenGenerator) {
		if fn != nil {
			g.nowFn = fn
		}
	}
}

func defaultNow() time.Time { return time.Now().UTC() }

func (g *TokenGenerator) applyOptions(opts ...GeneratorOption) {
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.nowFn == nil {
		g.nowFn = defaultNow
	}
}

// NewSigningGenerator signs tokens with a static ES256 secret key.
func NewSigningGenerator(key *es256.SecretKey, ttl time.Duration, opts ...GeneratorOption) (*TokenGenerator, error) {
	if key == nil {
		return nil, errors.New("secret key is nil")
	}
	g := &TokenGenerator{ttl: ttl, signingKey: key}
	g.applyOptions(opts...)
	return g, nil
}

// NewKeyManagerGenerator signs tokens using rotating keys from a KeyManager.
func NewKeyManagerGenerator(km *KeyManager, ttl time.Duration, opts ...GeneratorOption) (*TokenGenerator, error) {
	if km == nil {
		return nil, errors.New("key manager is nil")
	}
	g := &TokenGenerator{ttl: ttl, km: km}
	g.applyOptions(opts...)
	return g, nil
}

// Generate issues a compact JWT carrying the supplied claims plus the
// standard iat/nbf/exp/jti bookkeeping. The claims are stamped at issue
// time only; this library never validates them on verify.
func (g *TokenGenerator) Generate(claims map[string]any) (string, error) {
	return g.GenerateWithHeader(claims, nil)
}

// GenerateWithHeader also merges extra header parameters before signing.
// The alg header cannot be overridden.
func (g *TokenGenerator) GenerateWithHeader(claims, header map[string]any) (string, error) {
	kid, scalar, err := g.resolveKey()
	if err != nil {
		return "", err
	}
	t := acquireToken()
	defer releaseToken(t)
	now := g.nowFn()
	t.Header[HeaderAlg] = AlgES256
	t.Header[HeaderType] = TypeJWT
	mergeHeader(t.Header, header)
	t.Header[HeaderAlg] = AlgES256
	if kid != "" {
		t.Header[HeaderKeyID] = kid
	}
	if id := generateTokenID(); id != "" {
		t.Claims["jti"] = id
	}
	t.Claims["iat"] = now.Unix()
	t.Claims["nbf"] = now.Unix()
	t.Claims["exp"] = now.Add(g.ttl).Unix()
	mergeClaims(t.Claims, claims)
	return SignToken(t, scalar)
}

func (g *TokenGenerator) resolveKey() (string, []byte, error) {
	switch {
	case g == nil:
		return "", nil, errors.New("token generator is nil")
	case g.signingKey != nil:
		return g.keyID, g.signingKey.Bytes(), nil
	case g.km != nil:
		kid, scalar := g.km.GetCurrentKey()
		if kid == "" || len(scalar) == 0 {
			return "", nil, errors.New("no active key available")
		}
		return kid, scalar, nil
	default:
		return "", nil, errors.New("generator missing key material")
	}
}

// TokenVerifier checks compact JWTs against a static key or a KeyManager.
type TokenVerifier struct {
	publicKey *es256.PublicKey
	km        *KeyManager
}

// NewSigningVerifier verifies against a static ES256 public key.
func NewSigningVerifier(pub *es256.PublicKey) (*TokenVerifier, error) {
	if pub == nil {
		return nil, errors.New("public key is nil")
	}
	return &TokenVerifier{publicKey: pub}, nil
}

// NewKeyManagerVerifier resolves keys through a shared KeyManager.
func NewKeyManagerVerifier(km *KeyManager) (*TokenVerifier, error) {
	if km == nil {
		return nil, errors.New("key manager is nil")
	}
	return &TokenVerifier{km: km}, nil
}

// Verify checks the supplied compact JWT. A false result with a nil error
// means the signature simply does not verify.
func (v *TokenVerifier) Verify(encoded string) (bool, error) {
	switch {
	case v == nil:
		return false, errors.New("token verifier is nil")
	case v.km != nil:
		return VerifyWithKM(v.km, encoded)
	case v.publicKey != nil:
		return VerifyToken(encoded, v.publicKey.Bytes())
	default:
		return false, errors.New("verifier missing key material")
	}
}
