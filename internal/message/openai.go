package message

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultOpenAIBase = "https://api.openai.com/v1"

// OpenAI renders the verification message with a chat-completions call.
// Any provider failure — transport error, non-2xx status, empty content,
// or a completion that does not contain the code verbatim — degrades to
// the fixed Template. The code gate matters: a message without the code
// would lock the user out.
type OpenAI struct {
	apiBase  string
	apiKey   string
	model    string
	client   *http.Client
	fallback Template
	logger   *zap.Logger
}

// NewOpenAI creates an OpenAI renderer. apiBase may be empty for the
// public endpoint.
func NewOpenAI(apiBase, apiKey, model string, logger *zap.Logger) *OpenAI {
	if apiBase == "" {
		apiBase = defaultOpenAIBase
	}
	return &OpenAI{
		apiBase: apiBase,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 8 * time.Second},
		logger:  logger,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Verification asks the model for a short Spanish WhatsApp message carrying
// the code, falling back to the static template on any failure.
func (o *OpenAI) Verification(ctx context.Context, code string) string {
	prompt := fmt.Sprintf(
		"Escribe un mensaje corto de WhatsApp en español para HabiCasa con el código de verificación %s. "+
			"Debe incluir el código tal cual, avisar que vence en 5 minutos y pedir no compartirlo. "+
			"Máximo dos oraciones, sin saludos largos.",
		code,
	)

	text, err := o.complete(ctx, prompt)
	if err != nil {
		o.logger.Warn("openai renderer failed, using template", zap.Error(err))
		return o.fallback.Verification(ctx, code)
	}
	if !strings.Contains(text, code) {
		o.logger.Warn("openai completion omitted the code, using template")
		return o.fallback.Verification(ctx, code)
	}
	return text
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiBase+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty completion content")
	}
	return text, nil
}
