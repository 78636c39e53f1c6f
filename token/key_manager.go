package token

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oarkflow/shamir"

	"github.com/oarkflow/es256"
)

// KeyManager holds a small ring of currently valid ES256 key pairs (keyID→scalar).
// Each rotation generates a fresh P-256 scalar, splits it via Shamir, and stores
// the pair together with its shares. Older keys are pruned beyond cacheLimit,
// so verification keeps working across a bounded number of rotations.
type KeyManager struct {
	sync.RWMutex
	// keyRing maps keyID → (scalar, point, expiresAt)
	keyRing        map[string]keyInfo
	rotationPeriod time.Duration
	cacheLimit     int
	// sharesMap maps keyID → the [][]byte shares produced by shamir.Split,
	// so the scalar can be reconstructed from a threshold of holders.
	sharesMap map[string][][]byte
}

type keyInfo struct {
	scalar    []byte
	point     []byte // uncompressed public point
	expiresAt time.Time
}

// NewKeyManager initializes a manager that rotates every rotationPeriod.
// cacheLimit is how many key pairs to keep in memory at once. N = total
// shares, M = threshold.
func NewKeyManager(rotationPeriod time.Duration, cacheLimit, totalShares, threshold int) (*KeyManager, error) {
	if cacheLimit < 1 {
		return nil, errors.New("cacheLimit must be ≥1")
	}

	km := &KeyManager{
		keyRing:        make(map[string]keyInfo),
		rotationPeriod: rotationPeriod,
		cacheLimit:     cacheLimit,
		sharesMap:      make(map[string][][]byte),
	}

	// Immediately generate the first key pair
	if err := km.rotateInternal(totalShares, threshold); err != nil {
		return nil, err
	}

	// Schedule subsequent rotations
	ticker := time.NewTicker(rotationPeriod)
	go func() {
		for range ticker.C {
			_ = km.rotateInternal(totalShares, threshold)
		}
	}()

	return km, nil
}

// rotateInternal generates a new scalar, derives its public point,
// Shamir-splits the scalar, and prunes old keys.
func (km *KeyManager) rotateInternal(N, M int) error {
	km.Lock()
	defer km.Unlock()

	scalar, err := randomScalar()
	if err != nil {
		return err
	}

	keyID := uuid.NewString()
	point, err := derivePoint(scalar)
	if err != nil {
		return err
	}
	expiry := time.Now().UTC().Add(km.rotationPeriod)
	km.keyRing[keyID] = keyInfo{scalar: scalar, point: point, expiresAt: expiry}

	shares, err := shamir.Split(scalar, M, N)
	if err != nil {
		return err
	}
	km.sharesMap[keyID] = shares

	// Prune older keys beyond cacheLimit
	if len(km.keyRing) > km.cacheLimit {
		type pair struct {
			id  string
			exp time.Time
		}
		var lst []pair
		for id, info := range km.keyRing {
			lst = append(lst, pair{id: id, exp: info.expiresAt})
		}
		sort.Slice(lst, func(i, j int) bool {
			return lst[i].exp.Before(lst[j].exp)
		})
		for i := 0; i < len(lst)-km.cacheLimit; i++ {
			delete(km.keyRing, lst[i].id)
			delete(km.sharesMap, lst[i].id)
		}
	}

	return nil
}

// GetCurrentKey returns (keyID, scalar) for signing—the newest key in the ring.
func (km *KeyManager) GetCurrentKey() (string, []byte) {
	km.RLock()
	defer km.RUnlock()

	var newestID string
	var newestTime time.Time
	for id, info := range km.keyRing {
		if info.expiresAt.After(newestTime) {
			newestTime = info.expiresAt
			newestID = id
		}
	}
	if newestID == "" {
		return "", nil
	}
	return newestID, km.keyRing[newestID].scalar
}

// LookupPublicKey returns the uncompressed public point for a keyID still in
// the ring.
func (km *KeyManager) LookupPublicKey(keyID string) ([]byte, bool) {
	km.RLock()
	defer km.RUnlock()
	info, ok := km.keyRing[keyID]
	if !ok {
		return nil, false
	}
	return info.point, true
}

// PublicJWK returns the public JWK for a keyID still in the ring.
func (km *KeyManager) PublicJWK(keyID string) (*JWK, bool) {
	point, ok := km.LookupPublicKey(keyID)
	if !ok {
		return nil, false
	}
	jwk, err := PointToJWK(point, keyID)
	if err != nil {
		return nil, false
	}
	return jwk, true
}

// SharesForKey returns the stored Shamir shares for a given keyID (nil if none).
func (km *KeyManager) SharesForKey(keyID string) [][]byte {
	km.RLock()
	defer km.RUnlock()
	return km.sharesMap[keyID]
}

// ImportKeyFromShares reconstructs a scalar from its Shamir shares and
// re-inserts the key pair under keyID.
func (km *KeyManager) ImportKeyFromShares(keyID string, shares [][]byte, expiresAt time.Time) error {
	secret, err := shamir.Combine(shares)
	if err != nil {
		return err
	}
	if err := es256.ValidateScalar(curve, secret); err != nil {
		return err
	}
	point, err := derivePoint(secret)
	if err != nil {
		return err
	}
	km.Lock()
	defer km.Unlock()
	km.keyRing[keyID] = keyInfo{scalar: secret, point: point, expiresAt: expiresAt}
	return nil
}

// SignWithKM signs t with the manager's current key, stamping its keyID into
// the header.
func SignWithKM(km *KeyManager, t *Token) (string, error) {
	keyID, scalar := km.GetCurrentKey()
	if keyID == "" {
		return "", errors.New("no active key available")
	}
	return SignToken(t, scalar, keyID)
}

// VerifyWithKM resolves the verification key through the kid header. Tokens
// without a resolvable kid are checked against every key still in the ring.
func VerifyWithKM(km *KeyManager, encoded string) (bool, error) {
	st, err := ParseToken(encoded)
	if err != nil {
		return false, err
	}
	sig, err := st.Signature()
	if err != nil {
		return false, err
	}
	if kid, ok := st.KeyID(); ok {
		if point, found := km.LookupPublicKey(kid); found {
			return Verify(st.SigningInput(), sig, point)
		}
	}
	km.RLock()
	points := make([][]byte, 0, len(km.keyRing))
	for _, info := range km.keyRing {
		points = append(points, info.point)
	}
	km.RUnlock()
	for _, point := range points {
		ok, err := Verify(st.SigningInput(), sig, point)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// randomScalar draws a uniform scalar in [1, n-1] by rejection sampling.
func randomScalar() ([]byte, error) {
	n := curve.Order()
	for {
		buf := make([]byte, es256.ScalarSize)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		d := new(big.Int).SetBytes(buf)
		if d.Sign() != 0 && d.Cmp(n) < 0 {
			return buf, nil
		}
	}
}

func derivePoint(scalar []byte) ([]byte, error) {
	jwk, err := ScalarToJWK(scalar)
	if err != nil {
		return nil, err
	}
	return JWKToPoint(jwk, false)
}
