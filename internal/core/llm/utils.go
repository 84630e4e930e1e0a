package llm

import (
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

// DataURL encodes a payload as a base64 data URL.
func DataURL(p entity.NormalizedPayload) string {
	mt := p.MediaType
	if mt == "" {
		mt = "application/octet-stream"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(p.Content)
}

// ContentParts builds the chat message parts that carry the document itself:
// an image_url part for images, a file part for PDFs and inline text otherwise.
func ContentParts(p entity.NormalizedPayload, filename string) []map[string]any {
	switch p.Format() {
	case constants.IMAGE:
		return []map[string]any{{
			"type":      "image_url",
			"image_url": map[string]any{"url": DataURL(p), "detail": "high"},
		}}
	case constants.PDF:
		if filename == "" {
			filename = "paper.pdf"
		}
		return []map[string]any{{
			"type": "file",
			"file": map[string]any{"filename": filename, "file_data": DataURL(p)},
		}}
	default:
		return []map[string]any{{
			"type": "text",
			"text": "Exam paper text:\n" + truncateText(string(p.Content), constants.MaxInlineText),
		}}
	}
}

func truncateText(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "\n…(truncated)"
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// SchemaMessage renders a schema as a system message body.
func SchemaMessage(schema map[string]any) string {
	return "JSON Schema:\n" + mustJSON(schema)
}
