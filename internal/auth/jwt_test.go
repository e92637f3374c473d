package auth

import (
	"testing"
	"time"

	"github.com/abdul977/voicenotes/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDFromToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := MintToken("user-1", secret, time.Minute)
	require.NoError(t, err)

	userID, err := UserIDFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestUserIDFromToken_WrongSecret(t *testing.T) {
	token, err := MintToken("user-1", []byte("right"), time.Minute)
	require.NoError(t, err)

	_, err = UserIDFromToken(token, []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestUserIDFromToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := MintToken("user-1", secret, -time.Minute)
	require.NoError(t, err)

	_, err = UserIDFromToken(token, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestUserIDFromToken_Garbage(t *testing.T) {
	_, err := UserIDFromToken("not-a-jwt", []byte("s"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
