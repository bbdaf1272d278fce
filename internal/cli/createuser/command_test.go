package createuser

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk-kit/helpdesk/internal/config"
	"github.com/helpdesk-kit/helpdesk/internal/repository/memory"
	"github.com/helpdesk-kit/helpdesk/internal/service"
	"github.com/helpdesk-kit/helpdesk/pkg/util/errorutil"
)

func newAuthService(store *memory.Store) *service.AuthService {
	return service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            bcrypt.MinCost,
	}, service.AuthDependencies{UserRepo: store.Users()})
}

func TestRun_CreatesStaffUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	var out bytes.Buffer

	err := run(ctx, &out, newAuthService(store), options{
		username: "agent",
		email:    "agent@example.com",
		password: "correct-horse",
		staff:    true,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Created staff user agent")

	user, err := store.Users().GetByEmail(ctx, "agent@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
}

func TestRun_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	auth := newAuthService(store)
	opts := options{username: "a", email: "a@example.com", password: "correct-horse"}
	require.NoError(t, run(ctx, &bytes.Buffer{}, auth, opts))

	opts.username = "b"
	err := run(ctx, &bytes.Buffer{}, auth, opts)
	var domainErr *errorutil.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}
