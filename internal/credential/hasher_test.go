package credential_test

import (
	"testing"

	"github.com/dom/videotube-identity/internal/credential"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := credential.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	tests := []struct {
		name  string
		plain string
		hash  string
		want  bool
	}{
		{name: "matching secret", plain: "correct horse", hash: hash, want: true},
		{name: "wrong secret", plain: "battery staple", hash: hash, want: false},
		{name: "empty candidate", plain: "", hash: hash, want: false},
		{name: "empty hash", plain: "correct horse", hash: "", want: false},
		{name: "malformed hash", plain: "correct horse", hash: "not-a-bcrypt-hash", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Verify(tt.plain, tt.hash))
		})
	}
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	h := credential.NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestBcryptHasher_RejectsEmptySecret(t *testing.T) {
	h := credential.NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, credential.ErrEmptySecret)
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{name: "configured cost", cost: 12, want: 12},
		{name: "below minimum", cost: 1, want: credential.DefaultCost},
		{name: "above maximum", cost: 99, want: credential.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, credential.NewBcryptHasher(tt.cost).Cost())
		})
	}
}
