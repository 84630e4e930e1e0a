package llm

import "github.com/joseph-ayodele/pyq-analyzer/constants"

// BuildExtractionJSONSchema returns the JSON-Schema (draft 2020-12 subset) for one paper.
// It is sent to the model as an output constraint and used locally to validate.
func BuildExtractionJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"year": map[string]any{"type": "string", "minLength": 1},
			"questions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
		},
		"required": []string{"year", "questions"},
	}
}

// BuildAnalysisJSONSchema returns the schema for the grouping response.
// The model answers with an object wrapping the groups array.
func BuildAnalysisJSONSchema() map[string]any {
	group := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"id":                 map[string]any{"type": "string", "minLength": 1},
			"normalizedQuestion": map[string]any{"type": "string", "minLength": 1},
			"type": map[string]any{
				"type": "string",
				"enum": constants.QuestionTypesAsStrings(),
			},
			"years": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
			},
			"frequency": map[string]any{"type": "integer", "minimum": 1},
			"variants": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"minItems":    2,
				"maxItems":    4,
				"uniqueItems": true,
			},
			"answer": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"id", "normalizedQuestion", "type", "years", "frequency", "variants", "answer"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"groups": map[string]any{
				"type":  "array",
				"items": group,
			},
		},
		"required": []string{"groups"},
	}
}
