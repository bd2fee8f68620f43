package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/feedbrief/internal/htmltext"
)

const (
	DefaultEndpoint    = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel       = "llama-3.1-8b-instant"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.5
	DefaultPromptChars = 4000
	DefaultTimeout     = 30 * time.Second

	maxErrorBody = 200
)

const promptTemplate = `Ты — профессиональный аналитик новостей. Проанализируй новости и создай структурированный отчет.

📊 Основные темы (3-5 тем с кратким описанием)
🔥 Главные события (2-3 события с контекстом)
📈 Тренды (что набирает обороты)
💡 Вывод (общая оценка ситуации)

Будь объективным и лаконичным.

Новости для анализа:
`

// LLMOptions configures an LLMSummarizer. Zero values take the defaults.
type LLMOptions struct {
	APIKey      string
	Endpoint    string
	Model       string
	MaxTokens   int
	Temperature float64
	PromptChars int // news text budget, in runes, appended to the prompt
	Timeout     time.Duration
}

// LLMSummarizer sends the news text to an OpenAI-compatible chat completions API.
type LLMSummarizer struct {
	apiKey      string
	endpoint    string
	model       string
	maxTokens   int
	temperature float64
	promptChars int
	client      *http.Client
}

// NewLLM creates a summarizer for the given API.
func NewLLM(opts LLMOptions) *LLMSummarizer {
	s := &LLMSummarizer{
		apiKey:      opts.APIKey,
		endpoint:    opts.Endpoint,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		promptChars: opts.PromptChars,
		client:      &http.Client{Timeout: opts.Timeout},
	}
	if s.endpoint == "" {
		s.endpoint = DefaultEndpoint
	}
	if s.model == "" {
		s.model = DefaultModel
	}
	if s.maxTokens <= 0 {
		s.maxTokens = DefaultMaxTokens
	}
	if s.temperature <= 0 {
		s.temperature = DefaultTemperature
	}
	if s.promptChars <= 0 {
		s.promptChars = DefaultPromptChars
	}
	if s.client.Timeout <= 0 {
		s.client.Timeout = DefaultTimeout
	}
	return s
}

// Summarize returns the model's analysis of text.
func (l *LLMSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	reqBody := chatRequest{
		Model: l.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(text, l.promptChars)},
		},
		Temperature: l.temperature,
		MaxTokens:   l.maxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4*maxErrorBody))
		return "", fmt.Errorf("API %d: %s", resp.StatusCode, htmltext.Truncate(string(errBody), maxErrorBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", errors.New("empty choices in response")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func buildPrompt(text string, budget int) string {
	return promptTemplate + htmltext.Truncate(text, budget)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
