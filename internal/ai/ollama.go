package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// OllamaProvider runs the tutor against a local Ollama instance. Useful when
// no Gemini credential is available; the system instruction travels as a
// leading "system" message.
type OllamaProvider struct {
	BaseURL           string
	Model             string
	SystemInstruction string
	Client            *http.Client
}

func NewOllamaProvider(baseURL, model, systemInstruction string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3:latest"
	}
	return &OllamaProvider{
		BaseURL:           baseURL,
		Model:             model,
		SystemInstruction: systemInstruction,
		Client:            &http.Client{Timeout: 90 * time.Second},
	}
}

type ollamaChatReq struct {
	Model    string      `json:"model"`
	Messages []ollamaMsg `json:"messages"`
	Stream   bool        `json:"stream"`
}

type ollamaMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResp struct {
	Message ollamaMsg `json:"message"`
	Error   string    `json:"error,omitempty"`
}

func (p *OllamaProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if p.Client == nil {
		return "", errors.New("ollama: http client is nil")
	}

	msgs := make([]ollamaMsg, 0, len(messages)+1)
	if p.SystemInstruction != "" {
		msgs = append(msgs, ollamaMsg{Role: "system", Content: p.SystemInstruction})
	}
	for _, m := range messages {
		role := m.Role
		if role == "model" {
			role = "assistant"
		}
		msgs = append(msgs, ollamaMsg{Role: role, Content: m.Text})
	}

	reqBody := ollamaChatReq{Model: p.Model, Stream: false, Messages: msgs}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/api/chat", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classifyStatus("ollama", resp.StatusCode, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var decoded ollamaChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("ollama: %s", decoded.Error)
	}
	return decoded.Message.Content, nil
}
