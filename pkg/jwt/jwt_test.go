package jwt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashokafoundation/website/pkg/jwt"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("with signing key", func(t *testing.T) {
		codec, err := jwt.New("test-secret-key-at-least-32-chars!!")
		require.NoError(t, err)
		require.NotNil(t, codec)
	})

	t.Run("with empty signing key", func(t *testing.T) {
		codec, err := jwt.New("")
		require.ErrorIs(t, err, jwt.ErrMissingSigningKey)
		require.Nil(t, codec)
	})
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	codec, err := jwt.New("test-secret-key-at-least-32-chars!!")
	require.NoError(t, err)

	claims := jwt.Claims{
		Subject: "johndoe",
		UserID:  42,
		Kind:    jwt.KindAccess,
	}

	token, err := codec.Issue(claims, time.Hour)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	parsed, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "johndoe", parsed.Subject)
	assert.Equal(t, int64(42), parsed.UserID)
	assert.Equal(t, jwt.KindAccess, parsed.Kind)
	assert.Greater(t, parsed.ExpiresAt, time.Now().Unix())
}

func TestParseExpired(t *testing.T) {
	t.Parallel()
	codec, err := jwt.New("test-secret-key-at-least-32-chars!!")
	require.NoError(t, err)

	token, err := codec.Issue(jwt.Claims{Subject: "johndoe", UserID: 1, Kind: jwt.KindAccess}, time.Second)
	require.NoError(t, err)

	time.Sleep(2 * time.Second)

	_, err = codec.Parse(token)
	require.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestParseRejectsTampering(t *testing.T) {
	t.Parallel()
	codec, err := jwt.New("test-secret-key-at-least-32-chars!!")
	require.NoError(t, err)

	token, err := codec.Issue(jwt.Claims{Subject: "johndoe", UserID: 1, Kind: jwt.KindRefresh}, time.Hour)
	require.NoError(t, err)

	t.Run("malformed token", func(t *testing.T) {
		_, err := codec.Parse("not-a-token")
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("modified payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		_, err := codec.Parse(parts[0] + ".eyJzdWIiOiJldmlsIn0." + parts[2])
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := jwt.New("another-secret-key-also-32-chars!!!")
		require.NoError(t, err)
		_, err = other.Parse(token)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})
}

func TestKindIsPreservedNotEnforced(t *testing.T) {
	t.Parallel()
	codec, err := jwt.New("test-secret-key-at-least-32-chars!!")
	require.NoError(t, err)

	// The codec records the kind; checking it against the consuming
	// operation is the caller's job.
	token, err := codec.Issue(jwt.Claims{Subject: "johndoe", UserID: 1, Kind: jwt.KindRefresh}, time.Hour)
	require.NoError(t, err)

	parsed, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, jwt.KindRefresh, parsed.Kind)
}
