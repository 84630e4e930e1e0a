package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm"
)

// ExtractQuestions reads one exam paper and returns its year and question list.
func (c *Client) ExtractQuestions(ctx context.Context, req llm.ExtractRequest) (llm.ExtractedQuestions, []byte, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"filename", req.Filename,
		"media_type", req.Payload.MediaType,
		"bytes", len(req.Payload.Content),
	)

	schema := llm.BuildExtractionJSONSchema()
	userContent := []map[string]any{{"type": "text", "text": llm.BuildExtractionUserPrompt(req.Filename)}}
	userContent = append(userContent, llm.ContentParts(req.Payload, req.Filename)...)

	messages := []map[string]any{
		{"role": "system", "content": llm.BuildExtractionSystemPrompt()},
		{"role": "system", "content": llm.SchemaMessage(schema)},
		{"role": "user", "content": userContent},
	}

	content, raw, err := c.complete(ctx, rid, messages)
	if err != nil {
		c.logger.Error("llm.extract.request_failed", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.ExtractedQuestions{}, raw, err
	}

	cleaned, err := c.validate(rid, "llm.extract", schema, []byte(content), llm.NormalizeExtractionJSON, start)
	if err != nil {
		return llm.ExtractedQuestions{}, []byte(content), err
	}

	var out llm.ExtractedQuestions
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return llm.ExtractedQuestions{}, cleaned, fmt.Errorf("unmarshal extraction: %w", err)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"filename", req.Filename,
		"year", out.Year,
		"questions", len(out.Questions),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}
