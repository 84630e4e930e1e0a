package constants

import (
	"strings"
)

type QuestionType string

const (
	Long      QuestionType = "Long"
	Short     QuestionType = "Short"
	VeryShort QuestionType = "VeryShort"
	MCQ       QuestionType = "MCQ"
)

var allQuestionTypes = []QuestionType{
	Long,
	Short,
	VeryShort,
	MCQ,
}

func QuestionTypesAsStrings() []string {
	result := make([]string, len(allQuestionTypes))
	for i, qt := range allQuestionTypes {
		result[i] = string(qt)
	}
	return result
}

// CanonicalizeQuestionType maps loose labels from the model onto the enum.
func CanonicalizeQuestionType(input string) (QuestionType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]QuestionType{
		"long answer":       Long,
		"long-answer":       Long,
		"essay":             Long,
		"short answer":      Short,
		"short-answer":      Short,
		"very short":        VeryShort,
		"very-short":        VeryShort,
		"very_short":        VeryShort,
		"very short answer": VeryShort,
		"one word":          VeryShort,
		"multiple choice":   MCQ,
		"multiple-choice":   MCQ,
		"objective":         MCQ,
		"mcqs":              MCQ,
	}
	if qt, ok := synonyms[normalized]; ok {
		return qt, true
	}

	for _, qt := range allQuestionTypes {
		if normalized == strings.ToLower(string(qt)) {
			return qt, true
		}
	}
	return "", false
}
