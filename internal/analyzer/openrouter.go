package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coursedeck/syllabus-extractor/internal/models"
	"github.com/coursedeck/syllabus-extractor/internal/utils"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

type openRouterExtractor struct {
	apiKey string
	model  string
	logger *utils.Logger
	client *http.Client
}

type openRouterRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	Stream         bool           `json:"stream,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenRouterExtractor returns a StreamExtractor backed by the OpenRouter
// chat completions API.
func NewOpenRouterExtractor(apiKey, model string, logger *utils.Logger) StreamExtractor {
	return &openRouterExtractor{
		apiKey: apiKey,
		model:  model,
		logger: logger,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (a *openRouterExtractor) Extract(ctx context.Context, text string, feedback string) ([]byte, error) {
	resp, err := a.send(ctx, buildPrompt(text, feedback), false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("OpenRouter API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode)
	}

	var orResp openRouterResponse
	if err := json.Unmarshal(body, &orResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if orResp.Error != nil {
		return nil, fmt.Errorf("OpenRouter API error: %s", orResp.Error.Message)
	}
	if len(orResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return []byte(extractJSON(orResp.Choices[0].Message.Content)), nil
}

// ExtractStream reads OpenRouter's delta stream, surfacing a best-effort
// snapshot of the growing result after each chunk that completes a value.
// The final candidate is returned once the stream finishes.
func (a *openRouterExtractor) ExtractStream(ctx context.Context, text string, onPartial func(models.SyllabusStructure)) ([]byte, error) {
	resp, err := a.send(ctx, buildPrompt(text, ""), true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		a.logger.Error("OpenRouter API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode)
	}

	var content strings.Builder
	var lastSnapshot string

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil || len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		content.WriteString(delta)

		if onPartial == nil {
			continue
		}
		snapshot, ok := repairPartialJSON(extractJSON(content.String()))
		if !ok || snapshot == lastSnapshot {
			continue
		}
		var partial models.SyllabusStructure
		if err := json.Unmarshal([]byte(snapshot), &partial); err != nil {
			continue
		}
		if partial.Course == "" && len(partial.Assignments) == 0 {
			continue
		}
		lastSnapshot = snapshot
		onPartial(partial)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}

	return []byte(extractJSON(content.String())), nil
}

func (a *openRouterExtractor) send(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	reqBody := openRouterRequest{
		Model:          a.model,
		Messages:       []message{{Role: "user", Content: prompt}},
		Stream:         stream,
		ResponseFormat: map[string]any{"type": "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// extractJSON strips a markdown code fence if the model wrapped its answer
// in one despite instructions.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	start := strings.IndexByte(content, '\n')
	if start < 0 {
		return content
	}
	body := content[start+1:]

	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
