package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/prep"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/questions"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

// ExtractStage reads one document: normalize, extract, then dedupe locally.
type ExtractStage struct {
	normalizer *prep.Normalizer
	extractor  llm.QuestionExtractor
	logger     *slog.Logger
}

func NewExtractStage(normalizer *prep.Normalizer, extractor llm.QuestionExtractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	if normalizer == nil {
		normalizer = prep.NewNormalizer(prep.Config{}, logger)
	}
	return &ExtractStage{normalizer: normalizer, extractor: extractor, logger: logger}
}

// Run returns the document's questions, each with a distinct key, in first-seen order.
// Any failure is reported as an ExtractionFailure for this document only.
func (s *ExtractStage) Run(ctx context.Context, doc entity.SourceDocument) (entity.ExtractionResult, error) {
	start := time.Now()
	payload := s.normalizer.Normalize(doc)

	out, _, err := s.extractor.ExtractQuestions(ctx, llm.ExtractRequest{
		Payload:  payload,
		Filename: doc.Filename,
	})
	if err != nil {
		s.logger.Error("pipeline.extract.failed",
			"run_id", common.RunIDFromContext(ctx),
			"document_id", doc.ID,
			"filename", doc.Filename,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ExtractionResult{}, common.NewExtractionFailure(doc.Filename, err)
	}

	year := strings.TrimSpace(out.Year)
	if year == "" {
		year = constants.UnknownYear
	}
	res := entity.ExtractionResult{
		Questions:  questions.Dedupe(out.Questions),
		Year:       year,
		SourceFile: doc.Filename,
	}

	s.logger.Info("pipeline.extract.ok",
		"run_id", common.RunIDFromContext(ctx),
		"document_id", doc.ID,
		"filename", doc.Filename,
		"year", res.Year,
		"questions", len(res.Questions),
		"normalized", payload.Normalized,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
