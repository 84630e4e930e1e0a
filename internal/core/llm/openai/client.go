package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/pyq-analyzer/internal/core/llm"
)

var (
	_ llm.QuestionExtractor = (*Client)(nil)
	_ llm.QuestionGrouper   = (*Client)(nil)
)

var errNoContent = errors.New("openai response has no content")

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete posts one chat/completions request in JSON mode and returns the message content.
func (c *Client) complete(ctx context.Context, rid string, messages []map[string]any) (string, []byte, error) {
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages":        messages,
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.logger)
	if err != nil {
		return "", raw, fmt.Errorf("openai: %w", err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", raw, fmt.Errorf("decode openai response: %w", err)
	}
	if cc.Error != nil {
		return "", raw, fmt.Errorf("openai error: %s", cc.Error.Message)
	}
	if len(cc.Choices) == 0 {
		return "", raw, fmt.Errorf("no choices in openai response: %w", errNoContent)
	}
	content := stripCodeFence(cc.Choices[0].Message.Content)
	if content == "" {
		return "", raw, errNoContent
	}

	c.logger.Debug("llm.usage",
		"req_id", rid,
		"prompt_tokens", cc.Usage.PromptTokens,
		"completion_tokens", cc.Usage.CompletionTokens,
		"finish_reason", cc.Choices[0].FinishReason,
	)
	return content, raw, nil
}

type sanitizeFunc func(raw []byte, logger *slog.Logger) ([]byte, []string, error)

// validate checks content against schema strictly first, then after a lenient sanitize.
func (c *Client) validate(rid, event string, schema map[string]any, content []byte, sanitize sanitizeFunc, start time.Time) ([]byte, error) {
	err := llm.ValidateJSONAgainstSchema(schema, content)
	if err == nil {
		return content, nil
	}
	if c.cfg.StrictSchema {
		c.logger.Error(event+".schema_validation_failed",
			"req_id", rid, "error", err, "content", truncate(string(content), 2048),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return content, fmt.Errorf("schema validation failed: %w", err)
	}

	cleaned, dropped, sErr := sanitize(content, c.logger)
	if sErr != nil {
		c.logger.Error(event+".sanitize_failed",
			"req_id", rid, "error", sErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return content, fmt.Errorf("sanitize failed: %w", sErr)
	}
	if vErr := llm.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
		c.logger.Error(event+".schema_validation_failed",
			"req_id", rid, "error", vErr, "content", truncate(string(content), 2048),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return content, fmt.Errorf("schema validation failed: %w", vErr)
	}
	c.logger.Warn(event+".lenient_sanitize_applied",
		"req_id", rid, "dropped", dropped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return cleaned, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
