package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig holds the configuration for an Ollama chat endpoint.
type OllamaConfig struct {
	BaseURL     string        // e.g. http://localhost:11434 or https://ollama.com
	Model       string        // e.g. qwen3, mistral
	Token       string        // Bearer token for Ollama Cloud (empty = no auth)
	Temperature float64       // 0 leaves the model default
	Timeout     time.Duration // per request, 0 = no client timeout
}

// OllamaProvider implements port.AIProvider using the Ollama REST API.
type OllamaProvider struct {
	cfg        OllamaConfig
	httpClient *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error"`
}

func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OllamaProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (o *OllamaProvider) ModelName() string {
	return o.cfg.Model
}

// Chat sends one non-streaming chat turn. Context chunks are folded into the
// user message.
func (o *OllamaProvider) Chat(ctx context.Context, systemPrompt string, userPrompt string, contextChunks []string) (string, error) {
	req := ollamaChatRequest{
		Model: o.cfg.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: withContext(userPrompt, contextChunks)},
		},
	}
	if o.cfg.Temperature > 0 {
		req.Options = map[string]any{"temperature": o.cfg.Temperature}
	}

	var resp ollamaChatResponse
	if err := o.do(ctx, "/api/chat", req, &resp); err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama chat: %s", resp.Error)
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

func (o *OllamaProvider) do(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
