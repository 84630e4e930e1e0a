package entity

// ExtractionResult is the per-document output of the extraction stage.
// No two Questions share a normalization key.
type ExtractionResult struct {
	Questions  []string `json:"questions"`
	Year       string   `json:"year"`
	SourceFile string   `json:"source_file"`
}

// AggregatedQuestion is an exact-match merge of one question across documents.
// Years carries one entry per occurrence and may repeat.
type AggregatedQuestion struct {
	Key   string   `json:"key"`
	Text  string   `json:"question"`
	Years []string `json:"years"`
}

// Occurrences is the number of source appearances merged into this entry.
func (q AggregatedQuestion) Occurrences() int {
	return len(q.Years)
}
