package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

var errMalformed = errors.New("malformed response")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubExtractor struct {
	mu      sync.Mutex
	byFile  map[string]llm.ExtractedQuestions
	failing map[string]error
	seen    []llm.ExtractRequest
}

func (s *stubExtractor) ExtractQuestions(_ context.Context, req llm.ExtractRequest) (llm.ExtractedQuestions, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, req)
	if err, ok := s.failing[req.Filename]; ok {
		return llm.ExtractedQuestions{}, nil, err
	}
	return s.byFile[req.Filename], nil, nil
}

type stubGrouper struct {
	calls int32
	fn    func(req llm.GroupRequest) ([]entity.AnalysisGroup, error)
	last  llm.GroupRequest
}

func (s *stubGrouper) GroupQuestions(_ context.Context, req llm.GroupRequest) ([]entity.AnalysisGroup, []byte, error) {
	atomic.AddInt32(&s.calls, 1)
	s.last = req
	if s.fn == nil {
		return passthroughGroups(req), nil, nil
	}
	groups, err := s.fn(req)
	return groups, nil, err
}

func (s *stubGrouper) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

// passthroughGroups makes one group per aggregated question.
func passthroughGroups(req llm.GroupRequest) []entity.AnalysisGroup {
	out := make([]entity.AnalysisGroup, 0, len(req.Questions))
	for _, q := range req.Questions {
		out = append(out, entity.AnalysisGroup{
			ID:                 q.Key,
			NormalizedQuestion: q.Text,
			Type:               constants.Short,
			Years:              q.Years,
			Frequency:          q.Occurrences(),
			Variants:           []string{q.Text, q.Text + " (rephrased)"},
			Answer:             "answer",
		})
	}
	return out
}

func textDoc(name string) entity.SourceDocument {
	return entity.NewSourceDocument(name, constants.MediaTypeText, []byte("paper "+name))
}
