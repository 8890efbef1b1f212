package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Late Night Drives":        "late-night-drives",
		"  Café Música!! ":         "cafe-musica",
		"90s -- R&B / Soul":        "90s-r-b-soul",
		"日本語":                      "collection",
		"":                         "collection",
		"already-a-slug":           "already-a-slug",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}

	long := Slugify(strings.Repeat("ab ", 100))
	assert.LessOrEqual(t, len(long), maxSlugLength)
	assert.False(t, strings.HasSuffix(long, "-"))
}
