package pipeline

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/questions"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

func group(id string, freq int, variants ...string) entity.AnalysisGroup {
	return entity.AnalysisGroup{
		ID:                 id,
		NormalizedQuestion: id,
		Type:               constants.Long,
		Years:              slices.Repeat([]string{"2021"}, max(freq, 1)),
		Frequency:          freq,
		Variants:           variants,
		Answer:             "answer",
	}
}

func TestGroupStage_EmptyInputSkipsBackend(t *testing.T) {
	g := &stubGrouper{}
	groups, err := NewGroupStage(g, discardLogger()).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Zero(t, g.Calls())
}

func TestGroupStage_SortsByFrequencyDescending(t *testing.T) {
	g := &stubGrouper{fn: func(llm.GroupRequest) ([]entity.AnalysisGroup, error) {
		return []entity.AnalysisGroup{
			group("a", 1, "a1", "a2"),
			group("b", 5, "b1", "b2"),
			group("c", 3, "c1", "c2"),
		}, nil
	}}
	agg := []entity.AggregatedQuestion{{Key: "q", Text: "q", Years: slices.Repeat([]string{"2021"}, 9)}}

	groups, err := NewGroupStage(g, discardLogger()).Run(context.Background(), agg)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, []int{5, 3, 1}, []int{groups[0].Frequency, groups[1].Frequency, groups[2].Frequency})
	assert.Equal(t, "b", groups[0].ID)
}

func TestGroupStage_ReconcilesFrequency(t *testing.T) {
	agg := []entity.AggregatedQuestion{
		{Key: "define x", Text: "Define X", Years: []string{"2021", "2023"}},
		{Key: "what is x", Text: "What is X?", Years: []string{"2022"}},
		{Key: "explain y", Text: "Explain Y", Years: []string{"2021"}},
	}
	g := &stubGrouper{fn: func(llm.GroupRequest) ([]entity.AnalysisGroup, error) {
		return []entity.AnalysisGroup{
			// model undercounts; variants cover 3 occurrences
			group("Define X", 1, "Define X", "What is X?"),
			group("Explain Y", 4, "Explain Y", "Describe Y"),
		}, nil
	}}

	groups, err := NewGroupStage(g, discardLogger()).Run(context.Background(), agg)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Explain Y", groups[0].ID)
	assert.Equal(t, 4, groups[0].Frequency)
	assert.Equal(t, "Define X", groups[1].ID)
	assert.Equal(t, 3, groups[1].Frequency)
}

func TestGroupStage_Failures(t *testing.T) {
	agg := []entity.AggregatedQuestion{{Key: "q", Text: "q", Years: []string{"2021"}}}
	tests := []struct {
		name string
		fn   func(llm.GroupRequest) ([]entity.AnalysisGroup, error)
	}{
		{
			name: "backend error",
			fn: func(llm.GroupRequest) ([]entity.AnalysisGroup, error) {
				return nil, errMalformed
			},
		},
		{
			name: "one variant",
			fn: func(llm.GroupRequest) ([]entity.AnalysisGroup, error) {
				return []entity.AnalysisGroup{group("a", 1, "a1")}, nil
			},
		},
		{
			name: "five variants",
			fn: func(llm.GroupRequest) ([]entity.AnalysisGroup, error) {
				return []entity.AnalysisGroup{group("a", 1, "1", "2", "3", "4", "5")}, nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := NewGroupStage(&stubGrouper{fn: tt.fn}, discardLogger()).Run(context.Background(), agg)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrAnalysis)
			assert.Nil(t, groups)
		})
	}
}

func TestSortByFrequency_Stable(t *testing.T) {
	groups := []entity.AnalysisGroup{group("a", 2), group("b", 3), group("c", 2)}
	SortByFrequency(groups)
	assert.Equal(t, []string{"b", "a", "c"}, []string{groups[0].ID, groups[1].ID, groups[2].ID})
}

func TestGroupStage_CapsOvercountedFrequency(t *testing.T) {
	agg := []entity.AggregatedQuestion{
		{Key: "define x", Text: "Define X", Years: []string{"2021"}},
		{Key: "explain y", Text: "Explain Y", Years: []string{"2021", "2022"}},
	}
	tests := []struct {
		name  string
		g     entity.AnalysisGroup
		wantF int
	}{
		{
			name: "years list bounds the count",
			g: func() entity.AnalysisGroup {
				g := group("Define X", 7, "Define X", "What is X?")
				g.Years = []string{"2021", "2022"}
				return g
			}(),
			wantF: 2,
		},
		{
			name: "run total bounds the count",
			g: func() entity.AnalysisGroup {
				g := group("Define X", 7, "Define X", "What is X?")
				g.Years = nil
				return g
			}(),
			wantF: 3,
		},
		{
			name: "years list below covered occurrences",
			g: func() entity.AnalysisGroup {
				g := group("Explain Y", 9, "Explain Y", "Describe Y")
				g.Years = []string{"2021"}
				return g
			}(),
			wantF: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &stubGrouper{fn: func(llm.GroupRequest) ([]entity.AnalysisGroup, error) {
				return []entity.AnalysisGroup{tt.g}, nil
			}}
			groups, err := NewGroupStage(g, discardLogger()).Run(context.Background(), agg)
			require.NoError(t, err)
			require.Len(t, groups, 1)
			assert.Equal(t, tt.wantF, groups[0].Frequency)
			assert.LessOrEqual(t, groups[0].Frequency, questions.TotalOccurrences(agg))
		})
	}
}

func TestGroupStage_OneOccurrenceNeverInflated(t *testing.T) {
	agg := []entity.AggregatedQuestion{{Key: "define x", Text: "Define X", Years: []string{"2021"}}}
	g := &stubGrouper{fn: func(llm.GroupRequest) ([]entity.AnalysisGroup, error) {
		return []entity.AnalysisGroup{group("Define X", 7, "Define X", "What is X?")}, nil
	}}
	groups, err := NewGroupStage(g, discardLogger()).Run(context.Background(), agg)
	require.NoError(t, err)
	assert.Equal(t, 1, groups[0].Frequency)
}

// paraphraseGrouper merges aggregated questions through a fixed paraphrase table,
// concatenating years and summing occurrences the way the backend is asked to.
func paraphraseGrouper(canonical map[string]string) *stubGrouper {
	return &stubGrouper{fn: func(req llm.GroupRequest) ([]entity.AnalysisGroup, error) {
		index := map[string]int{}
		var out []entity.AnalysisGroup
		for _, q := range req.Questions {
			name, ok := canonical[q.Key]
			if !ok {
				name = q.Text
			}
			i, seen := index[name]
			if !seen {
				i = len(out)
				index[name] = i
				out = append(out, entity.AnalysisGroup{
					ID:                 name,
					NormalizedQuestion: name,
					Type:               constants.Short,
					Variants:           []string{name},
					Answer:             "answer",
				})
			}
			out[i].Years = append(out[i].Years, q.Years...)
			out[i].Frequency += q.Occurrences()
			if !slices.Contains(out[i].Variants, q.Text) && len(out[i].Variants) < 4 {
				out[i].Variants = append(out[i].Variants, q.Text)
			}
		}
		for i := range out {
			if len(out[i].Variants) < 2 {
				out[i].Variants = append(out[i].Variants, out[i].NormalizedQuestion+" (rephrased)")
			}
		}
		return out, nil
	}}
}

func TestGroupStage_FrequencySurvivesRegrouping(t *testing.T) {
	results := []entity.ExtractionResult{
		{Year: "2021", Questions: []string{"Define X?", "Explain Y"}},
		{Year: "2022", Questions: []string{"define x", "What is X"}},
		{Year: "2022", Questions: []string{"What is X", "State Z"}},
	}
	grouper := paraphraseGrouper(map[string]string{
		"define x":  "Define X",
		"what is x": "Define X",
	})
	stage := NewGroupStage(grouper, discardLogger())

	first, err := stage.Run(context.Background(), questions.Aggregate(results))
	require.NoError(t, err)

	// feed each group back as a single aggregated question carrying its years
	var again []entity.AggregatedQuestion
	for _, g := range first {
		again = append(again, entity.AggregatedQuestion{
			Key:   questions.Key(g.NormalizedQuestion),
			Text:  g.NormalizedQuestion,
			Years: g.Years,
		})
	}
	second, err := stage.Run(context.Background(), again)
	require.NoError(t, err)

	want := map[string]int{}
	for _, g := range first {
		want[g.ID] = g.Frequency
	}
	got := map[string]int{}
	for _, g := range second {
		got[g.ID] = g.Frequency
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 4, want["Define X"])
	assert.Equal(t, 2, grouper.Calls())
}
