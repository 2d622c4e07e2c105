package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Service signs and verifies JWTs with HMAC-SHA256.
// A Service is safe for concurrent use.
type Service struct {
	signingKey []byte
	now        func() time.Time
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// encodedHeader is constant for HS256; computed once at package init.
var encodedHeader = func() string {
	b, _ := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	return base64.RawURLEncoding.EncodeToString(b)
}()

// New creates a JWT service with the given signing key.
// The key should be at least 32 bytes of cryptographically secure random data.
func New(signingKey []byte) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	return &Service{signingKey: signingKey, now: time.Now}, nil
}

// NewFromString creates a JWT service from a string signing key.
func NewFromString(signingKey string) (*Service, error) {
	return New([]byte(signingKey))
}

// Generate produces a signed token for the given claims. Claims may be a
// StandardClaims value or any JSON-serializable struct embedding it.
func (s *Service) Generate(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	signingInput := encodedHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return signingInput + "." + s.sign(signingInput), nil
}

// Parse verifies the token signature and temporal claims, then unmarshals
// the payload into claims. The signature is checked in constant time before
// any claim is trusted.
func (s *Service) Parse(token string, claims any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	var h header
	if err := json.Unmarshal(headerBytes, &h); err != nil {
		return ErrInvalidToken
	}
	if h.Alg != "HS256" || (h.Typ != "JWT" && h.Typ != "") {
		return ErrUnexpectedSigningMethod
	}

	signingInput := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(s.sign(signingInput)), []byte(parts[2])) {
		return ErrInvalidSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidToken
	}

	var std StandardClaims
	if err := json.Unmarshal(payload, &std); err != nil {
		return ErrInvalidToken
	}
	if err := std.Valid(s.now()); err != nil {
		return err
	}

	if err := json.Unmarshal(payload, claims); err != nil {
		return fmt.Errorf("failed to unmarshal claims: %w", err)
	}
	return nil
}

func (s *Service) sign(input string) string {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
