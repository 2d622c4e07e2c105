package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/gateguard/core/permission"
)

// Metadata describes an issued API key. It never contains the plaintext
// secret or its digest; the key id is a separate random identifier used for
// administration.
type Metadata struct {
	ID           string    `json:"key_id"`
	Name         string    `json:"name"`
	Permissions  []string  `json:"permissions"`
	RateLimit    int       `json:"rate_limit,omitempty"` // 0 means the global limit applies
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	LastUsed     time.Time `json:"last_used,omitzero"`
	RequestCount int64     `json:"request_count"`
}

type record struct {
	Metadata
	digest string
}

// Store issues and validates API keys. Only the SHA-256 digest of a secret
// is ever stored; lookup happens by digest, so a disclosure of stored state
// cannot yield usable credentials. All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	keys    map[string]*record // key id -> record
	digests map[string]string  // secret digest -> key id

	secretPrefix string
	now          func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSecretPrefix sets the recognizable prefix on generated secrets
// (default "gg_").
func WithSecretPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.secretPrefix = prefix
		}
	}
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// KeyOption configures a single key at creation time.
type KeyOption func(*record)

// WithPermissions sets the key's permission set (default: wildcard).
func WithPermissions(permissions ...string) KeyOption {
	return func(r *record) {
		if len(permissions) > 0 {
			r.Permissions = permissions
		}
	}
}

// WithRateLimit sets a per-key requests-per-minute override.
func WithRateLimit(requestsPerMinute int) KeyOption {
	return func(r *record) {
		if requestsPerMinute > 0 {
			r.RateLimit = requestsPerMinute
		}
	}
}

// New creates an empty in-memory key store.
func New(opts ...Option) *Store {
	s := &Store{
		keys:         make(map[string]*record),
		digests:      make(map[string]string),
		secretPrefix: "gg_",
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues a new API key and returns the plaintext secret. The secret
// is returned exactly once and is not recoverable afterwards; only its
// digest is stored. A randomness failure aborts issuance and never yields a
// usable credential.
func (s *Store) Create(name string, opts ...KeyOption) (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRandomnessFailure, err)
	}
	idBytes := make([]byte, 8)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRandomnessFailure, err)
	}

	secret := s.secretPrefix + base64.RawURLEncoding.EncodeToString(secretBytes)

	r := &record{
		Metadata: Metadata{
			ID:          hex.EncodeToString(idBytes),
			Name:        name,
			Permissions: []string{permission.Wildcard},
			Active:      true,
			CreatedAt:   s.now(),
		},
		digest: digest(secret),
	}
	for _, opt := range opts {
		opt(r)
	}

	s.mu.Lock()
	s.keys[r.ID] = r
	s.digests[r.digest] = r.ID
	s.mu.Unlock()

	return secret, nil
}

// Validate checks a presented secret against the stored digests. Unknown
// and revoked keys both return ErrInvalidKey; the caller cannot tell which.
// A successful validation is an audit event: it atomically bumps the key's
// request count and last-used timestamp.
func (s *Store) Validate(secret string) (*Metadata, error) {
	d := digest(secret)

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.digests[d]
	if !ok {
		return nil, ErrInvalidKey
	}
	r := s.keys[id]
	if !r.Active {
		return nil, ErrInvalidKey
	}

	r.RequestCount++
	r.LastUsed = s.now()

	meta := cloneMetadata(r)
	return &meta, nil
}

// Revoke deactivates a key by id. Revocation is irreversible and the record
// is retained for audit. Returns ErrKeyNotFound for unknown ids.
func (s *Store) Revoke(keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.keys[keyID]
	if !ok {
		return ErrKeyNotFound
	}
	r.Active = false
	return nil
}

// Get returns a key's metadata by id.
func (s *Store) Get(keyID string) (*Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.keys[keyID]
	if !ok {
		return nil, false
	}
	meta := cloneMetadata(r)
	return &meta, true
}

// List returns metadata for every issued key, revoked ones included.
// Neither secrets nor digests are exposed.
func (s *Store) List() []Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Metadata, 0, len(s.keys))
	for _, r := range s.keys {
		out = append(out, cloneMetadata(r))
	}
	slices.SortFunc(out, func(a, b Metadata) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func cloneMetadata(r *record) Metadata {
	meta := r.Metadata
	meta.Permissions = slices.Clone(r.Permissions)
	return meta
}

func digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
