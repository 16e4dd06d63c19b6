package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCaption(t *testing.T) {
	out := string(RenderCaption("Me explaining **why** the cache was stale"))
	assert.Contains(t, out, "<strong>why</strong>")

	out = string(RenderCaption(`hi <script>alert(1)</script><img src=x onerror=alert(1)>`))
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "onerror")

	out = string(RenderCaption("see https://example.com"))
	assert.True(t, strings.Contains(out, `href="https://example.com"`))
	assert.Contains(t, out, "noreferrer")
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestPositiveIntOr(t *testing.T) {
	assert.Equal(t, 3, PositiveIntOr("3", 1))
	assert.Equal(t, 1, PositiveIntOr("0", 1))
	assert.Equal(t, 1, PositiveIntOr("-2", 1))
	assert.Equal(t, 60, PositiveIntOr("abc", 60))
}
