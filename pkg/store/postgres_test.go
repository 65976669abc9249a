package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePrefixPattern(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"underscore separator", "352_", `352\_%`},
		{"alphanumeric id", "A1_", `A1\_%`},
		{"artist bio prefix", "artist_Vermeer_", `artist\_Vermeer\_%`},
		{"percent literal", "50%_", `50\%\_%`},
		{"backslash literal", `a\b_`, `a\\b\_%`},
		{"empty prefix", "", "%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, likePrefixPattern(tt.prefix))
		})
	}
}
