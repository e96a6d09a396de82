package security

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	t.Parallel()

	salt, err := GenerateSalt()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(salt)
	require.NoError(t, err, "salt must be valid base64")
	assert.Len(t, raw, saltBytes)

	other, err := GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt, other, "two salts should not collide")
}

func TestHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewHasher(MinHashIterations)
	salt, err := GenerateSalt()
	require.NoError(t, err)

	hash, err := h.Hash("correct horse battery staple", salt)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.True(t, h.Verify("correct horse battery staple", salt, hash))
	assert.False(t, h.Verify("correct horse battery stapl", salt, hash))
	assert.False(t, h.Verify("", salt, hash))
}

func TestHasher_SamePasswordDifferentSalts(t *testing.T) {
	t.Parallel()

	h := NewHasher(MinHashIterations)

	saltA, err := GenerateSalt()
	require.NoError(t, err)
	saltB, err := GenerateSalt()
	require.NoError(t, err)

	hashA, err := h.Hash("hunter2", saltA)
	require.NoError(t, err)
	hashB, err := h.Hash("hunter2", saltB)
	require.NoError(t, err)

	assert.NotEqual(t, hashA, hashB)
}

func TestHasher_HashIsDeterministic(t *testing.T) {
	t.Parallel()

	h := NewHasher(MinHashIterations)
	salt, err := GenerateSalt()
	require.NoError(t, err)

	first, err := h.Hash("hunter2", salt)
	require.NoError(t, err)
	second, err := h.Hash("hunter2", salt)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHasher_MalformedInputs(t *testing.T) {
	t.Parallel()

	h := NewHasher(MinHashIterations)
	salt, err := GenerateSalt()
	require.NoError(t, err)
	hash, err := h.Hash("hunter2", salt)
	require.NoError(t, err)

	_, err = h.Hash("hunter2", "%%% not base64 %%%")
	assert.Error(t, err)

	assert.False(t, h.Verify("hunter2", "%%% not base64 %%%", hash))
	assert.False(t, h.Verify("hunter2", salt, "%%% not base64 %%%"))
}

func TestNewHasher_EnforcesIterationFloor(t *testing.T) {
	t.Parallel()

	weak := NewHasher(1)
	assert.Equal(t, MinHashIterations, weak.iterations)

	strong := NewHasher(MinHashIterations * 2)
	assert.Equal(t, MinHashIterations*2, strong.iterations)
}

func TestHasher_VerifyAcrossWorkFactors(t *testing.T) {
	t.Parallel()

	salt, err := GenerateSalt()
	require.NoError(t, err)

	a := NewHasher(MinHashIterations)
	b := NewHasher(MinHashIterations * 2)

	hash, err := a.Hash("hunter2", salt)
	require.NoError(t, err)

	// A hash produced under one work factor does not verify under another.
	assert.True(t, a.Verify("hunter2", salt, hash))
	assert.False(t, b.Verify("hunter2", salt, hash))
}
