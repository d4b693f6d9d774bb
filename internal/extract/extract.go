// Package extract produces preview/index text from uploaded document bytes.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxChars caps extracted text, counted in runes, so multi-byte scripts keep
// as many characters as ASCII does.
const MaxChars = 1_000_000

// ErrUnsupported marks content that has no extractable text layer: binary,
// office and image formats, failed PDF extraction, or empty results.
var ErrUnsupported = errors.New("unsupported content for text extraction")

// Result holds extracted text and whether it was cut at MaxChars.
type Result struct {
	Text      string
	Truncated bool
}

// Extract decodes text from the given bytes based on the declared MIME type.
//
// Plain text and Markdown are decoded as UTF-8 in full. PDFs go through
// text-layer extraction; any failure there degrades to ErrUnsupported rather
// than a hard error. All other types, and results that are empty or
// all-whitespace, return ErrUnsupported.
func Extract(data []byte, mimeType string) (Result, error) {
	var raw string

	switch normalizeMIME(mimeType) {
	case "text/plain", "text/markdown":
		raw = string(data)
	case "application/pdf":
		text, err := pdfText(data)
		if err != nil {
			return Result{}, fmt.Errorf("%w: pdf: %v", ErrUnsupported, err)
		}
		raw = text
	default:
		return Result{}, ErrUnsupported
	}

	if strings.TrimSpace(raw) == "" {
		return Result{}, ErrUnsupported
	}

	if trimmed, cut := truncateRunes(raw, MaxChars); cut {
		return Result{Text: trimmed, Truncated: true}, nil
	}
	return Result{Text: raw}, nil
}

// truncateRunes returns the first max runes of s, reporting whether anything
// was cut. The byte length check is a fast path: a string of n bytes holds at
// most n runes.
func truncateRunes(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// PrefixRunes returns at most max bytes of b, trimmed back so the result
// never ends inside a multi-byte UTF-8 sequence.
func PrefixRunes(b []byte, max int) []byte {
	if len(b) <= max {
		return b
	}
	b = b[:max]
	// Walk back over continuation bytes of a split rune at the tail.
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if r, size := utf8.DecodeRune(b[i:]); r == utf8.RuneError && size == 1 {
				return b[:i]
			}
			break
		}
	}
	return b
}

func normalizeMIME(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs; treat that as a normal
	// extraction failure.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
