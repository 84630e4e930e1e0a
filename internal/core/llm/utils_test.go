package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

func TestDataURL(t *testing.T) {
	p := entity.NormalizedPayload{MediaType: constants.MediaTypeJPEG, Content: []byte("abc")}
	assert.Equal(t, "data:image/jpeg;base64,YWJj", DataURL(p))

	p.MediaType = ""
	assert.True(t, strings.HasPrefix(DataURL(p), "data:application/octet-stream;base64,"))
}

func TestContentParts(t *testing.T) {
	tests := []struct {
		name      string
		payload   entity.NormalizedPayload
		filename  string
		wantType  string
		checkPart func(t *testing.T, part map[string]any)
	}{
		{
			name:     "image",
			payload:  entity.NormalizedPayload{MediaType: constants.MediaTypeJPEG, Content: []byte{1, 2}},
			wantType: "image_url",
			checkPart: func(t *testing.T, part map[string]any) {
				img := part["image_url"].(map[string]any)
				assert.Equal(t, "high", img["detail"])
				assert.True(t, strings.HasPrefix(img["url"].(string), "data:image/jpeg;base64,"))
			},
		},
		{
			name:     "pdf default filename",
			payload:  entity.NormalizedPayload{MediaType: constants.MediaTypePDF, Content: []byte("%PDF")},
			wantType: "file",
			checkPart: func(t *testing.T, part map[string]any) {
				f := part["file"].(map[string]any)
				assert.Equal(t, "paper.pdf", f["filename"])
				assert.True(t, strings.HasPrefix(f["file_data"].(string), "data:application/pdf;base64,"))
			},
		},
		{
			name:     "pdf named",
			payload:  entity.NormalizedPayload{MediaType: constants.MediaTypePDF, Content: []byte("%PDF")},
			filename: "2021.pdf",
			wantType: "file",
			checkPart: func(t *testing.T, part map[string]any) {
				assert.Equal(t, "2021.pdf", part["file"].(map[string]any)["filename"])
			},
		},
		{
			name:     "text",
			payload:  entity.NormalizedPayload{MediaType: constants.MediaTypeText, Content: []byte("Q1. Define X")},
			wantType: "text",
			checkPart: func(t *testing.T, part map[string]any) {
				assert.Equal(t, "Exam paper text:\nQ1. Define X", part["text"])
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := ContentParts(tt.payload, tt.filename)
			require.Len(t, parts, 1)
			assert.Equal(t, tt.wantType, parts[0]["type"])
			tt.checkPart(t, parts[0])
		})
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "héllo", truncateText("héllo", 5))
	assert.Equal(t, "hé\n…(truncated)", truncateText("héllo", 2))
}

func TestGroupRequestItems(t *testing.T) {
	req := GroupRequest{Questions: []entity.AggregatedQuestion{
		{Key: "define x", Text: "Define X", Years: []string{"2021", "2021"}},
		{Key: "what is y", Text: "What is Y?", Years: []string{"Unknown"}},
	}}
	assert.Equal(t, []GroupItem{
		{Question: "Define X", Years: []string{"2021", "2021"}},
		{Question: "What is Y?", Years: []string{"Unknown"}},
	}, req.Items())
}

func TestSchemaMessage(t *testing.T) {
	msg := SchemaMessage(BuildExtractionJSONSchema())
	assert.True(t, strings.HasPrefix(msg, "JSON Schema:\n{"))
	assert.Contains(t, msg, `"questions"`)
}
