package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/questions"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

// GroupStage clusters aggregated questions into semantic groups.
type GroupStage struct {
	grouper llm.QuestionGrouper
	logger  *slog.Logger
}

func NewGroupStage(grouper llm.QuestionGrouper, logger *slog.Logger) *GroupStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupStage{grouper: grouper, logger: logger}
}

// Run returns groups sorted by frequency descending. Empty input yields no groups
// and makes no backend call.
func (s *GroupStage) Run(ctx context.Context, agg []entity.AggregatedQuestion) ([]entity.AnalysisGroup, error) {
	if len(agg) == 0 {
		s.logger.Info("pipeline.group.skipped", "run_id", common.RunIDFromContext(ctx), "reason", "no questions")
		return []entity.AnalysisGroup{}, nil
	}

	start := time.Now()
	groups, _, err := s.grouper.GroupQuestions(ctx, llm.GroupRequest{Questions: agg})
	if err != nil {
		s.logger.Error("pipeline.group.failed",
			"run_id", common.RunIDFromContext(ctx),
			"questions", len(agg),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewAnalysisFailure(err)
	}

	occ := questions.Occurrences(agg)
	total := questions.TotalOccurrences(agg)
	for i := range groups {
		if n := len(groups[i].Variants); n < 2 || n > 4 {
			s.logger.Error("pipeline.group.invalid_variants",
				"run_id", common.RunIDFromContext(ctx),
				"group_id", groups[i].ID,
				"variants", n,
			)
			return nil, common.NewAnalysisFailure(errInvalidVariants)
		}
		reconcileFrequency(&groups[i], occ, total)
	}
	SortByFrequency(groups)

	s.logger.Info("pipeline.group.ok",
		"run_id", common.RunIDFromContext(ctx),
		"questions", len(agg),
		"groups", len(groups),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return groups, nil
}

// SortByFrequency orders groups by frequency descending; ties keep backend order.
func SortByFrequency(groups []entity.AnalysisGroup) {
	slices.SortStableFunc(groups, func(a, b entity.AnalysisGroup) int {
		return b.Frequency - a.Frequency
	})
}

// reconcileFrequency bounds a group's frequency by what the input can support.
// The floor is the occurrences of the distinct aggregated entries the group visibly
// covers; the ceiling is the group's own years list (one entry per occurrence) and
// never more than the total occurrences in the run.
func reconcileFrequency(g *entity.AnalysisGroup, occ map[string]int, total int) {
	matched := make(map[string]struct{})
	for _, text := range append([]string{g.NormalizedQuestion}, g.Variants...) {
		k := questions.Key(text)
		if _, ok := occ[k]; ok {
			matched[k] = struct{}{}
		}
	}
	local := 0
	for k := range matched {
		local += occ[k]
	}

	ceiling := max(total, 1)
	if n := len(g.Years); n > 0 {
		ceiling = min(ceiling, max(n, local))
	}
	g.Frequency = min(max(g.Frequency, local, 1), ceiling)
}
