package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParse(t *testing.T) {
	s, err := NewSigner("secret")
	require.NoError(t, err)

	token, expires, err := s.Sign("user-1", "admin", time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseRejects(t *testing.T) {
	s, err := NewSigner("secret")
	require.NoError(t, err)
	other, err := NewSigner("other")
	require.NoError(t, err)

	token, _, err := other.Sign("user-1", "user", time.Minute)
	require.NoError(t, err)
	_, err = s.Parse(token)
	assert.Error(t, err)

	expired, _, err := s.Sign("user-1", "user", -time.Minute)
	require.NoError(t, err)
	_, err = s.Parse(expired)
	assert.Error(t, err)

	_, err = s.Parse("not-a-token")
	assert.Error(t, err)

	_, err = NewSigner("")
	assert.Error(t, err)
}
