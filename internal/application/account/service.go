package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/garmentshop/internal/application"
	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	accountService      = "account-service"
	useCaseRegister     = "account.register"
	useCaseAuthenticate = "account.authenticate"
)

// Service is the account directory: registration and authentication.
type Service struct {
	repo   domacct.Repository
	hasher domacct.PasswordHasher
	ids    application.IDGenerator
	ins    application.Instruments
}

func NewService(repo domacct.Repository, hasher domacct.PasswordHasher, ids application.IDGenerator, tel observability.Observability) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		ids:    ids,
		ins:    application.NewInstruments(accountService, tel),
	}
}

// Register stores a new user. A taken username fails with ErrDuplicateUser;
// uniqueness is enforced by the repository, not by a prior lookup.
func (s *Service) Register(ctx context.Context, username, password string) (err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseRegister, "Register", attribute.String("account.username", username))
	defer func() { inv.End(ctx, err) }()

	if err := domacct.ValidatePassword(password); err != nil {
		inv.Fail("PASSWORD_INVALID")
		return err
	}
	if err := domacct.ValidateUsername(username); err != nil {
		inv.Fail("USERNAME_INVALID")
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		inv.Fail("HASH_FAILED")
		return fmt.Errorf("account: hash password: %w", err)
	}
	user, err := domacct.NewUser(username, hash)
	if err != nil {
		inv.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return err
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			inv.Fail("DUPLICATE_USER")
			return domacct.ErrDuplicateUser
		}
		inv.Fail("REPO_INSERT_FAILED")
		return domain.Persistence("users.insert", err)
	}
	return nil
}

// Authenticate returns a Session when both fields match exactly. Unknown
// users and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (_ domacct.Session, err error) {
	ctx, inv := s.ins.Begin(ctx, useCaseAuthenticate, "Authenticate", attribute.String("account.username", username))
	defer func() { inv.End(ctx, err) }()

	if username == "" || password == "" {
		inv.Fail("CREDENTIALS_MISSING")
		return domacct.Session{}, domacct.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		inv.Fail("UNKNOWN_USER")
		return domacct.Session{}, domacct.ErrInvalidCredentials
	case err != nil:
		inv.Fail("REPO_LOOKUP_FAILED")
		return domacct.Session{}, domain.Persistence("users.find", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		inv.Fail("PASSWORD_MISMATCH")
		return domacct.Session{}, domacct.ErrInvalidCredentials
	}

	session := domacct.Session{
		ID:       s.ids.NewID(),
		Username: user.Username,
		IssuedAt: time.Now().UTC(),
	}
	inv.Annotate(observability.F("session_id", session.ID))
	return session, nil
}
