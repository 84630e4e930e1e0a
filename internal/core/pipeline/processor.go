package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/async"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/questions"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

// RunResult is everything a successful run produces.
type RunResult struct {
	Groups   []entity.AnalysisGroup  `json:"groups"`
	Summary  entity.RunSummary       `json:"summary"`
	Statuses []entity.DocumentStatus `json:"documents"`
}

// Processor coordinates per-document extraction, then aggregation and grouping.
type Processor struct {
	logger          *slog.Logger
	extract         *ExtractStage
	group           *GroupStage
	fanout          *async.Fanout
	analysisTimeout time.Duration
}

func NewProcessor(
	logger *slog.Logger,
	extract *ExtractStage,
	group *GroupStage,
	fanout *async.Fanout,
	analysisTimeout time.Duration,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if fanout == nil {
		fanout = async.NewFanout(logger)
	}
	return &Processor{
		logger:          logger,
		extract:         extract,
		group:           group,
		fanout:          fanout,
		analysisTimeout: analysisTimeout,
	}
}

// Run processes one batch of documents. Individual extraction failures are logged and
// excluded; the run only fails when there is no input, every extraction fails, or
// grouping fails. On failure the tracker returns to idle and no result is produced.
func (p *Processor) Run(ctx context.Context, docs []entity.SourceDocument, tracker *Tracker) (RunResult, error) {
	if tracker == nil {
		tracker = NewTracker(nil)
	}
	if len(docs) == 0 {
		return RunResult{}, common.NewNoInputError()
	}

	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)
	start := time.Now()
	tracker.Start(docs)

	p.logger.Info("pipeline.run.start",
		"run_id", runID,
		"documents", len(docs),
		"workers", p.fanout.Workers(),
	)

	outcomes, err := async.Run(ctx, p.fanout, len(docs), func(ctx context.Context, i int) (entity.ExtractionResult, error) {
		tracker.MarkProcessing(docs[i].ID)
		res, err := p.extract.Run(ctx, docs[i])
		if err != nil {
			tracker.MarkFailed(docs[i].ID, err)
			return res, err
		}
		tracker.MarkCompleted(docs[i].ID)
		return res, nil
	})
	if err != nil {
		tracker.Fail()
		p.logger.Error("pipeline.run.cancelled", "run_id", runID, "error", err)
		return RunResult{}, err
	}

	results := make([]entity.ExtractionResult, 0, len(outcomes))
	totalQuestions := 0
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		results = append(results, o.Value)
		totalQuestions += len(o.Value.Questions)
	}
	if len(results) == 0 {
		tracker.Fail()
		p.logger.Error("pipeline.run.all_failed", "run_id", runID, "documents", len(docs))
		return RunResult{}, common.NewAllExtractionsFailedError(len(docs))
	}

	agg := questions.Aggregate(results)
	p.logger.Info("pipeline.aggregate.ok",
		"run_id", runID,
		"succeeded", len(results),
		"failed", len(docs)-len(results),
		"unique_questions", len(agg),
		"occurrences", questions.TotalOccurrences(agg),
	)

	gctx, cancel := common.WithTimeout(ctx, p.analysisTimeout)
	defer cancel()
	groups, err := p.group.Run(gctx, agg)
	if err != nil {
		tracker.Fail()
		return RunResult{}, err
	}
	tracker.Complete()

	res := RunResult{
		Groups: groups,
		Summary: entity.RunSummary{
			TotalPapers:             len(docs),
			TotalQuestionsExtracted: totalQuestions,
			TotalRepeatedGroups:     len(groups),
		},
		Statuses: tracker.Snapshot(),
	}
	p.logger.Info("pipeline.run.ok",
		"run_id", runID,
		"papers", res.Summary.TotalPapers,
		"questions", res.Summary.TotalQuestionsExtracted,
		"groups", res.Summary.TotalRepeatedGroups,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
