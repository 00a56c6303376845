package token

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionExpiry is the session credential validity window
const DefaultSessionExpiry = 365 * 24 * time.Hour

// Claims is the JWT claim set for a session credential
type Claims struct {
	ExtraClaims map[string]interface{} `json:"extra_claims,omitempty"`
	jwt.RegisteredClaims
}

// SessionTokenService generates and parses session credentials
type SessionTokenService struct {
	Secret   string
	Issuer   string
	Audience string
	expiry   time.Duration
}

// Option configures a SessionTokenService
type Option func(*SessionTokenService)

// WithSessionExpiry overrides the session validity window
func WithSessionExpiry(expiry time.Duration) Option {
	return func(s *SessionTokenService) {
		if expiry > 0 {
			s.expiry = expiry
		}
	}
}

// NewSessionTokenService creates a session token service
func NewSessionTokenService(secret, issuer, audience string, opts ...Option) *SessionTokenService {
	s := &SessionTokenService{
		Secret:   secret,
		Issuer:   issuer,
		Audience: audience,
		expiry:   DefaultSessionExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Expiry returns the configured session validity window
func (s *SessionTokenService) Expiry() time.Duration {
	return s.expiry
}

// GenerateToken creates a signed session credential for the subject with the
// given extra claims
func (s *SessionTokenService) GenerateToken(subject string, extraClaims map[string]interface{}) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := Claims{
		ExtraClaims: extraClaims,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Minute)),
			Issuer:    s.Issuer,
			Subject:   subject,
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{s.Audience},
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := tok.SignedString([]byte(s.Secret))
	if err != nil {
		slog.Error("Failed to sign session token", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}

// ParseToken parses and validates a session credential
func (s *SessionTokenService) ParseToken(tokenStr string) (*jwt.Token, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return tok, nil
}
