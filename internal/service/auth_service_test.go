package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk-kit/helpdesk/internal/config"
	"github.com/helpdesk-kit/helpdesk/internal/domain"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util/errorutil"
)

func (f *fixture) authService() *AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		BcryptCost:            bcrypt.MinCost,
	}, AuthDependencies{UserRepo: f.store.Users()})
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "maria", Email: "maria@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.False(t, registered.User.IsStaff)
	assert.NotEqual(t, "correct horse", registered.User.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	loggedIn, err := svc.Login(ctx, LoginInput{Email: "MARIA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "maria@example.com", Password: "wrong password"})
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestAuth_RegisterRejections(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "a", Email: "not-an-email", Password: "longenough"})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.Register(ctx, RegisterInput{Username: "a", Email: "a@example.com", Password: "short"})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.Register(ctx, RegisterInput{Username: "a", Email: "a@example.com", Password: "longenough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Username: "b", Email: "a@example.com", Password: "longenough"})
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
	_, err = svc.Register(ctx, RegisterInput{Username: "a", Email: "other@example.com", Password: "longenough"})
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestAuth_DeleteUserKeepsTickets(t *testing.T) {
	f := newFixture(t)
	svc := f.authService()
	tickets := f.ticketService()
	ctx := context.Background()

	agent, err := svc.CreateUser(ctx, RegisterInput{Username: "agent", Email: "agent@example.com", Password: "longenough"}, true)
	require.NoError(t, err)
	assert.True(t, agent.IsStaff)

	ticket := f.createTicket(t, domain.TicketPriorityHigh)
	_, err = tickets.UpdateTicket(ctx, ticket.ID, agent, TicketUpdateInput{AssignedTo: &agent.ID})
	require.NoError(t, err)
	_, err = tickets.AddComment(ctx, ticket.ID, agent, CommentInput{Body: "looking"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, agent.ID))

	stored, comments, err := tickets.GetTicket(ctx, ticket.ID, true)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedTo)
	require.Len(t, comments, 1)
	assert.Nil(t, comments[0].AuthorID)

	err = svc.DeleteUser(ctx, agent.ID)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
