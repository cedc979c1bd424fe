// Package carrier wraps the Sendblue message-delivery API.
package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Sendblue is a client for the Sendblue send-message API. Delivery is
// asynchronous; the returned handle is correlated later through the
// status callback.
type Sendblue struct {
	baseURL           string
	apiKey            string
	apiSecret         string
	statusCallbackURL string
	client            *http.Client
}

// New creates a Sendblue client. The timeout bounds every carrier
// call; there are no automatic retries.
func New(baseURL, apiKey, apiSecret, statusCallbackURL string, timeout time.Duration) *Sendblue {
	return &Sendblue{
		baseURL:           strings.TrimRight(baseURL, "/"),
		apiKey:            apiKey,
		apiSecret:         apiSecret,
		statusCallbackURL: statusCallbackURL,
		client:            &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	Number         string `json:"number"`
	Content        string `json:"content"`
	SendStyle      string `json:"send_style"`
	StatusCallback string `json:"status_callback,omitempty"`
}

type sendResponse struct {
	MessageHandle string `json:"message_handle"`
	Status        string `json:"status"`
}

// SendMessage delivers one message and returns the carrier's delivery
// handle.
func (s *Sendblue) SendMessage(ctx context.Context, toNumber, content string) (string, error) {
	body := sendRequest{
		Number:         FormatPhoneNumber(toNumber),
		Content:        content,
		SendStyle:      "default",
		StatusCallback: s.statusCallbackURL,
	}

	resp, err := s.post(ctx, "/send-message", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errorText, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sendblue API error: %d - %s", resp.StatusCode, errorText)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode send response: %v", err)
	}
	return result.MessageHandle, nil
}

// SendTypingIndicator shows the typing bubble on the learner's side.
// Failures are logged and swallowed.
func (s *Sendblue) SendTypingIndicator(ctx context.Context, toNumber string) {
	resp, err := s.post(ctx, "/send-typing-indicator", map[string]string{
		"number": FormatPhoneNumber(toNumber),
	})
	if err != nil {
		log.Printf("Failed to send typing indicator: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("Failed to send typing indicator: status %d", resp.StatusCode)
	}
}

func (s *Sendblue) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("sb-api-key-id", s.apiKey)
	req.Header.Set("sb-api-secret-key", s.apiSecret)

	return s.client.Do(req)
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhoneNumber normalizes a phone number to E.164, assuming US
// numbers when no country code is present.
func FormatPhoneNumber(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")

	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	case strings.HasPrefix(phone, "+"):
		return phone
	default:
		return "+" + digits
	}
}
