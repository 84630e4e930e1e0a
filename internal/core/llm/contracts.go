package llm

import (
	"context"

	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

// ExtractRequest carries one normalized document to the extraction backend.
type ExtractRequest struct {
	Payload  entity.NormalizedPayload
	Filename string
}

// ExtractedQuestions is the shape we want back from the extraction backend.
type ExtractedQuestions struct {
	Year      string   `json:"year"`
	Questions []string `json:"questions"`
}

// GroupItem is one entry of the analysis request body.
type GroupItem struct {
	Question string   `json:"question"`
	Years    []string `json:"years"`
}

type GroupRequest struct {
	Questions []entity.AggregatedQuestion
}

// Items converts the aggregated questions into the analysis wire format.
func (r GroupRequest) Items() []GroupItem {
	items := make([]GroupItem, len(r.Questions))
	for i, q := range r.Questions {
		items[i] = GroupItem{Question: q.Text, Years: q.Years}
	}
	return items
}

// QuestionExtractor is the per-document backend the pipeline depends on.
type QuestionExtractor interface {
	ExtractQuestions(ctx context.Context, req ExtractRequest) (ExtractedQuestions, []byte /*rawJSON*/, error)
}

// QuestionGrouper is the global semantic-analysis backend.
type QuestionGrouper interface {
	GroupQuestions(ctx context.Context, req GroupRequest) ([]entity.AnalysisGroup, []byte /*rawJSON*/, error)
}
