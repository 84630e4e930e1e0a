package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
)

const maxVariants = 4

// NormalizeExtractionJSON coerces a near-miss extraction response into the schema shape.
// Returns cleaned JSON and the list of dropped or renamed keys.
func NormalizeExtractionJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("unmarshal: %w", err)
	}
	if m == nil {
		return nil, nil, errors.New("expected object, got null")
	}
	var dropped []string

	renameKey(m, "exam_year", "year", &dropped)
	renameKey(m, "items", "questions", &dropped)

	// Only near misses are repaired; a response without a question list is a failed read.
	arr, ok := m["questions"].([]any)
	if !ok {
		return nil, nil, fmt.Errorf("questions: expected array, got %T", m["questions"])
	}
	switch v := m["year"].(type) {
	case string:
		y := strings.TrimSpace(v)
		if y == "" {
			y = constants.UnknownYear
		}
		m["year"] = y
	case float64:
		m["year"] = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil, nil, fmt.Errorf("year: expected string or number, got %T", m["year"])
	}

	out := make([]any, 0, len(arr))
	for _, it := range arr {
		s, ok := it.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	m["questions"] = out

	dropUnknown(m, map[string]struct{}{"year": {}, "questions": {}}, &dropped)

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

// NormalizeAnalysisJSON coerces a near-miss grouping response into the schema shape.
// A bare array of groups is wrapped as {"groups": [...]}.
func NormalizeAnalysisJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var dropped []string
	var m map[string]any

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []any
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, nil, fmt.Errorf("unmarshal: %w", err)
		}
		m = map[string]any{"groups": arr}
		dropped = append(dropped, "(wrapped bare array)")
	} else if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, nil, fmt.Errorf("unmarshal: %w", err)
	}
	if m == nil {
		return nil, nil, errors.New("expected object, got null")
	}

	groups, ok := m["groups"].([]any)
	if !ok {
		return nil, nil, fmt.Errorf("groups: expected array, got %T", m["groups"])
	}
	for i, g := range groups {
		gm, ok := g.(map[string]any)
		if !ok {
			return nil, nil, fmt.Errorf("groups[%d]: expected object, got %T", i, g)
		}
		sanitizeGroup(gm, &dropped)
	}

	dropUnknown(m, map[string]struct{}{"groups": {}}, &dropped)

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.group.normalize_sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

func sanitizeGroup(g map[string]any, dropped *[]string) {
	renameKey(g, "normalized_question", "normalizedQuestion", dropped)
	renameKey(g, "question_type", "type", dropped)
	renameKey(g, "model_answer", "answer", dropped)

	switch v := g["id"].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			g["id"] = uuid.NewString()
		}
	case float64:
		g["id"] = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		g["id"] = uuid.NewString()
	}

	if s, ok := g["type"].(string); ok {
		if qt, ok := constants.CanonicalizeQuestionType(s); ok {
			g["type"] = string(qt)
		}
	}

	switch v := g["frequency"].(type) {
	case float64:
		if v == math.Trunc(v) {
			g["frequency"] = int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			g["frequency"] = n
		}
	}

	if arr, ok := g["years"].([]any); ok {
		for i, y := range arr {
			switch v := y.(type) {
			case float64:
				arr[i] = strconv.FormatFloat(v, 'f', -1, 64)
			case string:
				arr[i] = strings.TrimSpace(v)
			}
		}
	}

	nq, _ := g["normalizedQuestion"].(string)
	nq = strings.TrimSpace(nq)
	if nq != "" {
		g["normalizedQuestion"] = nq
	}
	if arr, ok := g["variants"].([]any); ok {
		g["variants"] = cleanVariants(arr, nq)
	}
	if s, ok := g["answer"].(string); ok {
		g["answer"] = strings.TrimSpace(s)
	}

	dropUnknown(g, map[string]struct{}{
		"id": {}, "normalizedQuestion": {}, "type": {}, "years": {},
		"frequency": {}, "variants": {}, "answer": {},
	}, dropped)
}

// cleanVariants removes case-insensitive duplicates, caps the list and pads
// a lone variant with the normalized question.
func cleanVariants(arr []any, normalized string) []any {
	seen := make(map[string]struct{}, len(arr))
	out := make([]any, 0, maxVariants)
	add := func(s string) {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" || len(out) >= maxVariants {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	for _, v := range arr {
		if s, ok := v.(string); ok {
			add(s)
		}
	}
	if len(out) < 2 && normalized != "" {
		add(normalized)
	}
	return out
}

func renameKey(m map[string]any, from, to string, dropped *[]string) {
	v, ok := m[from]
	if !ok {
		return
	}
	if _, exists := m[to]; !exists {
		m[to] = v
	}
	delete(m, from)
	*dropped = append(*dropped, from+"->"+to)
}

func dropUnknown(m map[string]any, allowed map[string]struct{}, dropped *[]string) {
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			*dropped = append(*dropped, k)
		}
	}
}
