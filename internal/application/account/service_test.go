package account_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appaccount "github.com/Zhima-Mochi/garmentshop/internal/application/account"
	"github.com/Zhima-Mochi/garmentshop/internal/domain"
	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/id"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/password"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/Zhima-Mochi/garmentshop/internal/observability/obstest"
)

func newService(t *testing.T) (*appaccount.Service, *obstest.Telemetry) {
	t.Helper()
	tel := obstest.New()
	return appaccount.NewService(memory.NewUserRepository(), password.NewBcrypt(bcrypt.MinCost), id.NewUUIDGenerator(), tel), tel
}

func TestRegisterTwiceFailsWithDuplicateUser(t *testing.T) {
	svc, tel := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw"))
	err := svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	assert.False(t, domain.IsRetryable(err))

	assert.Equal(t, 1.0, tel.Met.Value(observability.MUsecaseRequests,
		observability.L("use_case", "account.register"), observability.L("outcome", "error")))
}

func TestUsernamesAreCaseSensitive(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw"))
	require.NoError(t, svc.Register(ctx, "Alice", "pw"))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Register(ctx, "", "pw"), domain.ErrValidation)
	assert.ErrorIs(t, svc.Register(ctx, "alice", ""), domain.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "Secret"))

	session, err := svc.Authenticate(ctx, "alice", "Secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.IssuedAt.IsZero())

	tests := []struct {
		name, username, password string
	}{
		{"password case differs", "alice", "secret"},
		{"wrong password", "alice", "nope"},
		{"username case differs", "Alice", "Secret"},
		{"unknown user", "bob", "Secret"},
		{"blank password", "alice", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

type failingUsers struct{ err error }

func (f failingUsers) Insert(context.Context, *domacct.User) error { return f.err }
func (f failingUsers) FindByUsername(context.Context, string) (*domacct.User, error) {
	return nil, f.err
}

func TestStoreFailuresArePersistenceErrors(t *testing.T) {
	svc := appaccount.NewService(failingUsers{err: errors.New("connection reset")}, password.NewBcrypt(bcrypt.MinCost), id.NewUUIDGenerator(), nil)
	ctx := context.Background()

	err := svc.Register(ctx, "alice", "pw")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, domain.IsRetryable(err))

	_, err = svc.Authenticate(ctx, "alice", "pw")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestRegisterPasswordLength(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	err := svc.Register(ctx, "alice", strings.Repeat("p", 73))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Authenticate(ctx, "alice", strings.Repeat("p", 73))
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, svc.Register(ctx, "alice", strings.Repeat("p", domacct.MaxPasswordBytes)))
	_, err = svc.Authenticate(ctx, "alice", strings.Repeat("p", domacct.MaxPasswordBytes))
	assert.NoError(t, err)
}
