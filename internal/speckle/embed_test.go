package speckle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinytelemetry/carbondash/internal/model"
)

func TestNormalizeServer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"speckle.xyz", "https://speckle.xyz"},
		{" speckle.xyz/ ", "https://speckle.xyz"},
		{"https://app.speckle.systems", "https://app.speckle.systems"},
		{"http://localhost:3000", "http://localhost:3000"},
	}
	for _, tt := range tests {
		u, err := NormalizeServer(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, u.String(), tt.in)
	}
}

func TestNormalizeServer_Empty(t *testing.T) {
	_, err := NormalizeServer("")
	assert.Error(t, err)
}

func TestEmbedURL(t *testing.T) {
	base, err := NormalizeServer("speckle.xyz")
	require.NoError(t, err)

	got := EmbedURL(base, model.CommitRef{StreamID: "3073b96e86", CommitID: "604bea8cc6"})
	assert.Equal(t, "https://speckle.xyz/embed?stream=3073b96e86&commit=604bea8cc6", got)
}

func TestEmbedURL_EmptyCommit(t *testing.T) {
	base, err := NormalizeServer("speckle.xyz")
	require.NoError(t, err)

	assert.Empty(t, EmbedURL(base, model.CommitRef{StreamID: "s1"}))
}
