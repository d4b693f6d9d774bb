// Package filekind classifies files by the final dot-delimited suffix of the
// storage path. Upload validation trusts the declared MIME type instead; the
// extension is the source of truth for preview eligibility and display only.
package filekind

import "strings"

// Kind is a coarse display classification of a stored file.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "img"
	KindText  Kind = "txt"
	KindDoc   Kind = "doc"
	KindOther Kind = "other"
)

// AllowedMIMETypes is the upload allow-list: PDF, plain text, Markdown,
// legacy and OOXML Word documents, PNG, JPEG, GIF.
var AllowedMIMETypes = []string{
	"application/pdf",
	"text/plain",
	"text/markdown",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/png",
	"image/jpeg",
	"image/gif",
}

// Ext returns the final dot-delimited suffix of path, lower-cased and without
// the dot. A path with no suffix yields the empty string.
func Ext(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || i == len(path)-1 {
		return ""
	}
	return strings.ToLower(path[i+1:])
}

// FromPath classifies a storage path or file name into a display kind.
func FromPath(path string) Kind {
	switch Ext(path) {
	case "pdf":
		return KindPDF
	case "png", "jpg", "jpeg", "gif":
		return KindImage
	case "txt", "md":
		return KindText
	case "doc", "docx":
		return KindDoc
	default:
		return KindOther
	}
}

// MIMEFromExt maps an extension to the MIME type used for text extraction.
// Extensions without an extractable text layer yield the empty string.
func MIMEFromExt(ext string) string {
	switch ext {
	case "txt":
		return "text/plain"
	case "md":
		return "text/markdown"
	case "pdf":
		return "application/pdf"
	default:
		return ""
	}
}

// Previewable reports whether the extension is eligible for text preview.
func Previewable(ext string) bool {
	return ext == "txt" || ext == "md"
}

// MIMEAllowed reports whether the declared content type is on the upload
// allow-list. Parameters such as charset are ignored.
func MIMEAllowed(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	for _, allowed := range AllowedMIMETypes {
		if mt == allowed {
			return true
		}
	}
	return false
}
