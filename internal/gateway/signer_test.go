package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner("HMACSHA256", "")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestNewSignerRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewSigner("MD5", "secret")
	assert.Error(t, err)
}

func TestSignDeterministic(t *testing.T) {
	signer, err := NewSigner("HMACSHA256", "shared-secret")
	require.NoError(t, err)

	first := signer.Sign("a|b|c")
	second := signer.Sign("a|b|c")
	assert.Equal(t, first, second)
}

func TestSignSensitiveToInputAndKey(t *testing.T) {
	signer, err := NewSigner("HMACSHA256", "shared-secret")
	require.NoError(t, err)

	assert.NotEqual(t, signer.Sign("a|b|c"), signer.Sign("a|b|d"))

	other, err := NewSigner("HMACSHA256", "other-secret")
	require.NoError(t, err)
	assert.NotEqual(t, signer.Sign("a|b|c"), other.Sign("a|b|c"))
}
