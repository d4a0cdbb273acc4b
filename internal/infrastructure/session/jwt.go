// Package session issues and checks the bearer tokens that carry an
// authenticated account.Session across requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
)

var (
	ErrInvalidToken = fmt.Errorf("session: invalid token: %w", domain.ErrInvalidCredentials)
	ErrRevoked      = fmt.Errorf("session: token revoked: %w", domain.ErrInvalidCredentials)
)

// Claims is the token payload. The session id travels as the jti.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Revocations remembers logged-out session ids until their tokens expire.
type Revocations interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	Revoked(ctx context.Context, sessionID string) (bool, error)
}

type Manager struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	revoked Revocations
	now     func() time.Time
}

func NewManager(secret, issuer string, ttl time.Duration, revoked Revocations) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}
	return &Manager{
		secret:  []byte(secret),
		issuer:  issuer,
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}, nil
}

// Issue signs a token for s and reports when it expires.
func (m *Manager) Issue(s domacct.Session) (string, time.Time, error) {
	if err := s.Require(); err != nil {
		return "", time.Time{}, err
	}
	issued := s.IssuedAt
	if issued.IsZero() {
		issued = m.now()
	}
	expires := issued.Add(m.ttl)
	claims := Claims{
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Issuer:    m.issuer,
			Subject:   s.Username,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: sign: %w", err)
	}
	return token, expires, nil
}

// Parse validates token and returns the session it carries.
func (m *Manager) Parse(ctx context.Context, token string) (domacct.Session, error) {
	claims, err := m.claims(token)
	if err != nil {
		return domacct.Session{}, err
	}
	revoked, err := m.revoked.Revoked(ctx, claims.ID)
	if err != nil {
		return domacct.Session{}, domain.Persistence("sessions.revoked", err)
	}
	if revoked {
		return domacct.Session{}, ErrRevoked
	}
	return domacct.Session{
		ID:       claims.ID,
		Username: claims.Username,
		IssuedAt: claims.IssuedAt.Time,
	}, nil
}

// Revoke invalidates token for the rest of its lifetime.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.claims(token)
	if err != nil {
		return err
	}
	if err := m.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return domain.Persistence("sessions.revoke", err)
	}
	return nil
}

func (m *Manager) claims(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
