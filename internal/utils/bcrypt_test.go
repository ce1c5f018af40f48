package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_NotPlaintext(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.NotContains(t, hash, "s3cret-pass")
	assert.True(t, strings.HasPrefix(hash, "$2a$"), hash)

	// a fresh salt on every call
	again, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	emptyHash, err := HashPassword("")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "match", password: "s3cret-pass", hash: hash, want: true},
		{name: "wrong password", password: "s3cret-pasS", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "empty password against its own hash", password: "", hash: emptyHash, want: true},
		{name: "truncated hash", password: "s3cret-pass", hash: hash[:len(hash)-5], want: false},
		{name: "garbage hash", password: "s3cret-pass", hash: "not-a-bcrypt-hash", want: false},
		{name: "empty hash", password: "s3cret-pass", hash: "", want: false},
		{name: "plaintext stored as hash", password: "s3cret-pass", hash: "s3cret-pass", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPasswordHash(tt.password, tt.hash))
		})
	}
}
