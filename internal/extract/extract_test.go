package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_PlainText(t *testing.T) {
	res, err := Extract([]byte("hello world"), "text/plain")

	assert.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)
	assert.False(t, res.Truncated)
}

func TestExtract_MarkdownWithCharset(t *testing.T) {
	res, err := Extract([]byte("# Title\n\nbody"), "text/markdown; charset=utf-8")

	assert.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", res.Text)
}

func TestExtract_Unsupported(t *testing.T) {
	for _, mt := range []string{
		"image/png",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/octet-stream",
		"",
	} {
		_, err := Extract([]byte("data"), mt)
		assert.ErrorIs(t, err, ErrUnsupported, mt)
	}
}

func TestExtract_EmptyAndWhitespaceOnly(t *testing.T) {
	_, err := Extract([]byte(""), "text/plain")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Extract([]byte("  \n\t  "), "text/plain")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestExtract_TruncatesAtCap(t *testing.T) {
	big := strings.Repeat("a", MaxChars+100)

	res, err := Extract([]byte(big), "text/plain")

	assert.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Text, MaxChars)
}

func TestExtract_CapCountsRunesNotBytes(t *testing.T) {
	// Two bytes per rune; byte length is far past the cap but the rune count
	// only just exceeds it.
	big := strings.Repeat("é", MaxChars+10)

	res, err := Extract([]byte(big), "text/plain")

	assert.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, MaxChars, len([]rune(res.Text)))
	assert.Equal(t, strings.Repeat("é", MaxChars), res.Text)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		max     int
		want    string
		wantCut bool
	}{
		{"shorter than cap", "abc", 10, "abc", false},
		{"exactly at cap", "abc", 3, "abc", false},
		{"ascii cut", "abcdef", 4, "abcd", true},
		{"multibyte counted as one", "héllo", 4, "héll", true},
		{"emoji counted as one", "a\U0001F600bc", 3, "a\U0001F600b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := truncateRunes(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCut, cut)
		})
	}
}

func TestExtract_MalformedPDFIsUnsupported(t *testing.T) {
	_, err := Extract([]byte("definitely not a pdf"), "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestPrefixRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than cap", "abc", 10, "abc"},
		{"exact cap", "abc", 3, "abc"},
		{"ascii cut", "abcdef", 4, "abcd"},
		{"multibyte preserved", "héllo", 3, "hé"},
		{"multibyte split", "héllo", 2, "h"},
		{"emoji split", "a\U0001F600b", 3, "a"},
		{"emoji kept", "a\U0001F600b", 5, "a\U0001F600"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrefixRunes([]byte(tt.in), tt.max)
			assert.Equal(t, tt.want, string(got))
			assert.LessOrEqual(t, len(got), tt.max)
		})
	}
}
