package constants

import "strings"

// Format is the coarse document family used to pick a request shape.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
	TXT   Format = "TXT"
)

// Media types accepted on the upload surface.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
	MediaTypeText = "text/plain"
)

// Normalizer and ingestion limits.
const (
	MaxImageEdge      = 1536 // longest edge of a re-encoded raster image
	ImageQuality      = 80   // JPEG quality used for re-encoding
	MinQuestionLength = 3    // shorter trimmed questions are treated as noise
	MaxFilesDefault   = 20   // soft cap on documents per run
	MaxFileMBDefault  = 20
	MaxInlineText     = 60000 // chars of a plain-text document sent inline
)

// UnknownYear is reported when a paper's year cannot be detected.
const UnknownYear = "Unknown"

// AllowedExtensions holds the file extensions accepted for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// BaseMediaType strips parameters such as "; charset=utf-8" and lowercases.
func BaseMediaType(mediaType string) string {
	mt, _, _ := strings.Cut(mediaType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// MapMediaTypeToFormat returns the document family for a media type, or "" if unsupported.
func MapMediaTypeToFormat(mediaType string) Format {
	mt := BaseMediaType(mediaType)
	switch {
	case mt == MediaTypePDF:
		return PDF
	case strings.HasPrefix(mt, "image/"):
		return IMAGE
	case strings.HasPrefix(mt, "text/"):
		return TXT
	}
	return ""
}

// MediaTypeForExt maps an allowed extension to its canonical media type.
func MediaTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return MediaTypePDF
	case "png":
		return MediaTypePNG
	case "jpg", "jpeg":
		return MediaTypeJPEG
	case "txt":
		return MediaTypeText
	}
	return ""
}
