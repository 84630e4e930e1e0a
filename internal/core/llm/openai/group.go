package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

// GroupQuestions clusters the aggregated questions into paraphrase groups with model answers.
func (c *Client) GroupQuestions(ctx context.Context, req llm.GroupRequest) ([]entity.AnalysisGroup, []byte, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}

	items, err := json.Marshal(req.Items())
	if err != nil {
		return nil, nil, fmt.Errorf("encode questions: %w", err)
	}
	c.logger.Info("llm.group.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"questions", len(req.Questions),
	)

	schema := llm.BuildAnalysisJSONSchema()
	messages := []map[string]any{
		{"role": "system", "content": llm.BuildAnalysisSystemPrompt()},
		{"role": "system", "content": llm.SchemaMessage(schema)},
		{"role": "user", "content": string(items)},
	}

	content, raw, err := c.complete(ctx, rid, messages)
	if err != nil {
		c.logger.Error("llm.group.request_failed", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, raw, err
	}

	cleaned, err := c.validate(rid, "llm.group", schema, []byte(content), llm.NormalizeAnalysisJSON, start)
	if err != nil {
		return nil, []byte(content), err
	}

	var out struct {
		Groups []entity.AnalysisGroup `json:"groups"`
	}
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return nil, cleaned, fmt.Errorf("unmarshal groups: %w", err)
	}

	c.logger.Info("llm.group.ok",
		"req_id", rid,
		"groups", len(out.Groups),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out.Groups, cleaned, nil
}
