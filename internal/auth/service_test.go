package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rhino-platform/rhino-access/internal/shared"
)

type stubRepo struct {
	accounts map[string]*Account
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	account, ok := s.accounts[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return account, nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := &stubRepo{accounts: map[string]*Account{
		"a@example.com": {ID: "u1", Email: "a@example.com", PasswordHash: hashFor(t, "correct horse"), IsActive: true},
	}}
	svc := NewService(repo)

	account, err := svc.Authenticate(context.Background(), "a@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "u1", account.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := &stubRepo{accounts: map[string]*Account{
		"a@example.com": {ID: "u1", Email: "a@example.com", PasswordHash: hashFor(t, "correct horse"), IsActive: true},
	}}
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "a@example.com", "battery staple")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(&stubRepo{accounts: map[string]*Account{}})

	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := &stubRepo{accounts: map[string]*Account{
		"a@example.com": {ID: "u1", Email: "a@example.com", PasswordHash: hashFor(t, "correct horse"), IsActive: false},
	}}
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "a@example.com", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticatePendingInviteHasNoPassword(t *testing.T) {
	repo := &stubRepo{accounts: map[string]*Account{
		"invited@example.com": {ID: "u2", Email: "invited@example.com", IsActive: true},
	}}
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "invited@example.com", "")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
