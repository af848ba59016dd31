package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateAccount(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	acct, err := svc.Create(ctx, CreateInput{
		Name:     "Amina Okoye",
		Email:    "amina@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, acct.ID)
	assert.Len(t, acct.Number, 10)
	assert.True(t, acct.Active)
	assert.True(t, acct.Balance.IsZero())
	assert.NoError(t, bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte("correct horse battery")))

	stored, err := svc.GetByNumber(ctx, acct.Number)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, stored.ID)
}

func TestCreateAccountValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@example.com", Password: "short"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, CreateInput{Email: "a@example.com", Password: "long enough pass"})
	assert.Error(t, err)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "First", Email: "dup@example.com", Password: "long enough pass"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "Second", Email: "dup@example.com", Password: "long enough pass"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	acct, err := svc.Create(ctx, CreateInput{Name: "Amina", Email: "amina@example.com", Password: "long enough pass"})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "amina@example.com", "long enough pass")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	_, err = svc.Authenticate(ctx, "amina@example.com", "wrong password!!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "long enough pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeactivateBlocksThenReactivates(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	acct, err := svc.Create(ctx, CreateInput{Name: "Amina", Email: "amina@example.com", Password: "long enough pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, acct.ID))
	stored, err := svc.Get(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	require.NoError(t, svc.Reactivate(ctx, acct.ID))
	stored, err = svc.Get(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
}
