package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-api/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)
	user := &domain.User{ID: 42, Username: "alice"}

	token, err := manager.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal.UserID)
	assert.Equal(t, "alice", principal.Username)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer := NewManager("secret-one", time.Hour)
	verifier := NewManager("secret-two", time.Hour)

	token, err := issuer.Issue(&domain.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute)

	token, err := manager.Issue(&domain.User{ID: 1, Username: "alice"})
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestZeroTTLDisablesExpiration(t *testing.T) {
	manager := NewManager("test-secret", 0)

	token, err := manager.Issue(&domain.User{ID: 7, Username: "bob"})
	require.NoError(t, err)

	principal, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", principal.Username)
}

func TestVerifyHeader(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)
	token, err := manager.Issue(&domain.User{ID: 3, Username: "carol"})
	require.NoError(t, err)

	principal, err := manager.VerifyHeader("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "carol", principal.Username)

	for _, header := range []string{
		"",
		token,
		"Basic " + token,
		"Bearer",
		"Bearer not-a-token",
	} {
		_, err := manager.VerifyHeader(header)
		assert.ErrorIs(t, err, ErrUnauthorized, "header %q", header)
	}
}
