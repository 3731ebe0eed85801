package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-api/internal/domain"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	users, _, _ := testRepos(t)
	svc := NewUserService(users, 4)
	ctx := t.Context()

	user, err := svc.Register(ctx, "Alice", "alice", "p1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")

	got, err := svc.Authenticate(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users, _, _ := testRepos(t)
	svc := NewUserService(users, 4)
	ctx := t.Context()

	_, err := svc.Register(ctx, "Alice", "alice", "p1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Alice", "alice", "p2")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRegisterMissingFields(t *testing.T) {
	users, _, _ := testRepos(t)
	svc := NewUserService(users, 4)
	ctx := t.Context()

	_, err := svc.Register(ctx, "Alice", "", "p1")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Register(ctx, "Alice", "alice", "")
	assert.True(t, domain.IsValidation(err))
}

func TestConcurrentRegisterSameUsername(t *testing.T) {
	users, _, _ := testRepos(t)
	svc := NewUserService(users, 4)
	ctx := t.Context()

	const attempts = 8
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := svc.Register(ctx, "Alice", "alice", "p1")
			errs <- err
		}()
	}

	var succeeded int
	for i := 0; i < attempts; i++ {
		if err := <-errs; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent signup may win")
}

func TestAuthenticateFailuresAreUniform(t *testing.T) {
	users, _, _ := testRepos(t)
	svc := NewUserService(users, 4)
	ctx := t.Context()

	_, err := svc.Register(ctx, "Alice", "alice", "correct-password")
	require.NoError(t, err)

	// wrong password and unknown user are the same error
	_, err = svc.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// one changed character must fail
	_, err = svc.Authenticate(ctx, "alice", "correct-passworD")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
