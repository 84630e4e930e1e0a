package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm"
)

func TestExtractStage_Run(t *testing.T) {
	tests := []struct {
		name     string
		out      llm.ExtractedQuestions
		wantYear string
		wantQs   []string
	}{
		{
			name:     "dedupes keeping first spelling",
			out:      llm.ExtractedQuestions{Year: "2021", Questions: []string{"Define X?", "define   x", "What is Y?", " "}},
			wantYear: "2021",
			wantQs:   []string{"Define X?", "What is Y?"},
		},
		{
			name:     "blank year defaults",
			out:      llm.ExtractedQuestions{Year: "  ", Questions: []string{"Define X"}},
			wantYear: constants.UnknownYear,
			wantQs:   []string{"Define X"},
		},
		{
			name:     "no questions",
			out:      llm.ExtractedQuestions{Year: "2020"},
			wantYear: "2020",
			wantQs:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &stubExtractor{byFile: map[string]llm.ExtractedQuestions{"a.txt": tt.out}}
			stage := NewExtractStage(nil, ext, discardLogger())

			res, err := stage.Run(context.Background(), textDoc("a.txt"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, res.Year)
			assert.Equal(t, tt.wantQs, res.Questions)
			assert.Equal(t, "a.txt", res.SourceFile)

			require.Len(t, ext.seen, 1)
			assert.Equal(t, constants.MediaTypeText, ext.seen[0].Payload.MediaType)
			assert.Equal(t, "a.txt", ext.seen[0].Filename)
		})
	}
}

func TestExtractStage_Failure(t *testing.T) {
	ext := &stubExtractor{failing: map[string]error{"bad.txt": errMalformed}}
	stage := NewExtractStage(nil, ext, discardLogger())

	_, err := stage.Run(context.Background(), textDoc("bad.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)
	assert.ErrorIs(t, err, errMalformed)
	assert.Contains(t, err.Error(), "bad.txt")
}
