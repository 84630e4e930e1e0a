package llm

import (
	"strings"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
)

// BuildExtractionSystemPrompt states the normalization rules for reading one exam paper.
func BuildExtractionSystemPrompt() string {
	parts := []string{
		"You are an exam paper transcriber. Return ONLY JSON that matches the provided JSON Schema.",
		"Extract every question asked in the paper into 'questions', one string per question, in paper order.",
		"Strip enumeration labels and numbering (e.g. 'Q1.', '2(a)', 'iv)', 'Section B') and mark allocations like '[5 marks]'.",
		"Correct obvious transcription or OCR errors in spelling, but never change technical terms, symbols or values.",
		"Merge questions that wrap across lines into a single sentence.",
		"Preserve the full semantic content of each question. Do not shorten, summarize or paraphrase.",
		"Keep sub-questions that stand alone as separate questions; keep instructions that belong to a question inside it.",
		"Ignore cover-page boilerplate, general instructions to candidates, headers, footers and page numbers.",
		"Set 'year' to the exam year or session printed on the paper (e.g. '2021' or 'June 2021'). If no year is visible, use '" + constants.UnknownYear + "'.",
		"Never output null. If the paper has no questions, return an empty 'questions' array.",
	}
	return strings.Join(parts, " ")
}

// BuildExtractionUserPrompt packages the filename hint that accompanies the attached document.
func BuildExtractionUserPrompt(filename string) string {
	var b strings.Builder
	if f := strings.TrimSpace(filename); f != "" {
		b.WriteString("Filename: ")
		b.WriteString(f)
		b.WriteString("\n")
		b.WriteString("The filename may contain the exam year if the paper itself does not.\n")
	}
	b.WriteString("\nReturn ONLY JSON that matches the provided schema.")
	return b.String()
}

// BuildAnalysisSystemPrompt describes how to cluster paraphrases and write answers.
func BuildAnalysisSystemPrompt() string {
	parts := []string{
		"You are an experienced examiner analysing questions collected from several past exam papers.",
		"The user message is a JSON array of {question, years}; 'years' has one entry per time the question appeared, so it may repeat.",
		"Return ONLY JSON that matches the provided JSON Schema: an object with a 'groups' array.",
		"Cluster questions that ask for the same thing, even when worded differently, into one group. Do not merge questions that merely share a topic.",
		"For each group: 'years' is the concatenation of the years lists of every merged question (keep repeats);",
		"'frequency' is the total number of occurrences, i.e. the length of that concatenated years list, never the number of distinct wordings.",
		"'normalizedQuestion' is the cleanest and most complete phrasing among the group.",
		"'type' is exactly one of: " + strings.Join(constants.QuestionTypesAsStrings(), ", ") + " (Long = essay-style, Short = a paragraph, VeryShort = a word or one line, MCQ = multiple choice).",
		"'variants' holds 2 to 4 distinct original phrasings from the input; if a question appeared with one wording only, add one faithful rephrasing.",
		"'answer' is one detailed, exam-ready model answer for the group, sized to the question type.",
		"'id' is a short unique identifier per group.",
		"Every input question must belong to exactly one group.",
		"Sort groups by 'frequency' descending.",
		"Never output null.",
	}
	return strings.Join(parts, " ")
}
