package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/garmentshop/internal/domain"
)

var (
	ErrDuplicateUser      = fmt.Errorf("account: %w", domain.ErrDuplicateUser)
	ErrInvalidCredentials = fmt.Errorf("account: %w", domain.ErrInvalidCredentials)
	ErrUserNotFound       = fmt.Errorf("account: user %w", domain.ErrNotFound)
	ErrNoSession          = fmt.Errorf("account: session required: %w", domain.ErrInvalidCredentials)
)

// User is a registered shopper. Usernames are unique and case-sensitive.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser validates the username and wraps an already hashed password.
func NewUser(username, passwordHash string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, domain.Invalid("password", "is required")
	}
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ValidateUsername rejects blank names and names padded with whitespace,
// which would otherwise register as distinct users.
func ValidateUsername(username string) error {
	if username == "" {
		return domain.Invalid("username", "is required")
	}
	if strings.TrimSpace(username) != username {
		return domain.Invalid("username", "must not start or end with whitespace")
	}
	return nil
}

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

func ValidatePassword(password string) error {
	if password == "" {
		return domain.Invalid("password", "is required")
	}
	if len(password) > MaxPasswordBytes {
		return domain.Invalid("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// Session is the identity handle returned by authentication and passed into
// every user-scoped operation.
type Session struct {
	ID       string
	Username string
	IssuedAt time.Time
}

// Require returns ErrNoSession when s does not identify a user.
func (s Session) Require() error {
	if s.Username == "" {
		return ErrNoSession
	}
	return nil
}
