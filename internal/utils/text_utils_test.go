package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateTextUnderLimitIsUnchanged(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "short message", tp.TruncateText("short message", 100))
	assert.Equal(t, "no limit", tp.TruncateText("no limit", 0))
}

func TestTruncateTextAppendsNotice(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	out := tp.TruncateText(strings.Repeat("x", 100), 10)
	assert.True(t, strings.HasPrefix(out, strings.Repeat("x", 10)))
	assert.Contains(t, out, "truncated")
}

func TestTruncateTextDoesNotSplitRunes(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// "héllo" with the cut landing inside the two-byte é
	out := tp.TruncateText("héllo", 2)
	assert.True(t, strings.HasPrefix(out, "h"))
	assert.NotContains(t, out, "�")
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "clean", tp.SanitizeUTF8("clean"))

	dirty := "ab" + string([]byte{0xff, 0xfe}) + "cd"
	assert.Equal(t, "abcd", tp.SanitizeUTF8(dirty))
}

func TestNormalizeNewlines(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "a\nb\nc", tp.NormalizeNewlines("a\r\nb\rc"))
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	out := tp.ProcessText("line one\r\nline two", 1024)
	assert.Equal(t, "line one\nline two", out)
}
