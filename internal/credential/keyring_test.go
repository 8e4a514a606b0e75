package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	token, err := s.SessionToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Set(SessionTokenKey, "abc"))
	token, err = s.SessionToken()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, s.Delete(SessionTokenKey))
	require.NoError(t, s.Delete(SessionTokenKey))
	_, err = s.Get(SessionTokenKey)
	assert.ErrorIs(t, err, ErrNotFound)
}
