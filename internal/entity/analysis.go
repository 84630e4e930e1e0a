package entity

import "github.com/joseph-ayodele/pyq-analyzer/constants"

// AnalysisGroup is one semantic cluster of paraphrased questions.
type AnalysisGroup struct {
	ID                 string                 `json:"id"`
	NormalizedQuestion string                 `json:"normalizedQuestion"`
	Type               constants.QuestionType `json:"type"`
	Years              []string               `json:"years"`
	Frequency          int                    `json:"frequency"`
	Variants           []string               `json:"variants"`
	Answer             string                 `json:"answer"`
}

// RunSummary is derived from a completed run.
type RunSummary struct {
	TotalPapers             int `json:"totalPapers"`
	TotalQuestionsExtracted int `json:"totalQuestionsExtracted"`
	TotalRepeatedGroups     int `json:"totalRepeatedGroups"`
}
