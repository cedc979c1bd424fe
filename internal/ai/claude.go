// Package ai holds the client for the Anthropic message-generation API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Claude is a client for the Anthropic Messages API.
type Claude struct {
	apiKey    string
	apiURL    string
	model     string
	maxTokens int
	client    *http.Client
}

// New creates a Claude client. The timeout bounds every generation
// call; there are no automatic retries.
func New(apiKey, model string, timeout time.Duration) (*Claude, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	return &Claude{
		apiKey:    apiKey,
		apiURL:    "https://api.anthropic.com/v1/messages",
		model:     model,
		maxTokens: 1024,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Message is one turn of a conversation sent to the API.
type Message struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CreateMessage sends a system prompt plus conversation history and
// returns the generated text.
func (c *Claude) CreateMessage(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
	request := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages:  messages,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	var response messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}

	for _, block := range response.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text content returned")
}

// QuickResponse sends a single user message under a system prompt.
func (c *Claude) QuickResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return c.CreateMessage(ctx, systemPrompt, []Message{{Role: "user", Content: userMessage}})
}
