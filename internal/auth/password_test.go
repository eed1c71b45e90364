package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojista-hq/lojista/internal/apperr"
)

func TestHasherRoundTrip(t *testing.T) {
	hasher := NewHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	require.NoError(t, hasher.Verify(hash, "correct horse battery staple"))

	err = hasher.Verify(hash, "wrong password")
	require.Error(t, err)
	assert.Equal(t, apperr.Auth, apperr.KindOf(err))
	assert.Equal(t, "invalid credentials", apperr.MessageOf(err))
}
