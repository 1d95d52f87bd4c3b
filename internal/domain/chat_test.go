package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChatTitle(t *testing.T) {
	assert.Equal(t, "New Chat", NormalizeChatTitle(""))
	assert.Equal(t, "Photosynthesis", NormalizeChatTitle("Photosynthesis"))

	long := strings.Repeat("é", 250)
	got := NormalizeChatTitle(long)
	assert.Equal(t, 200, len([]rune(got)))
}
