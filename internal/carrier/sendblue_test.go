package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageReturnsHandle(t *testing.T) {
	var gotPath string
	var gotBody sendRequest
	var gotKey, gotSecret string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("sb-api-key-id")
		gotSecret = r.Header.Get("sb-api-secret-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(sendResponse{MessageHandle: "mh-123", Status: "QUEUED"})
	}))
	defer srv.Close()

	s := New(srv.URL, "key", "secret", "https://example.com/status", time.Second)
	handle, err := s.SendMessage(context.Background(), "5551234567", "¡Hola!")
	require.NoError(t, err)

	assert.Equal(t, "mh-123", handle)
	assert.Equal(t, "/send-message", gotPath)
	assert.Equal(t, "key", gotKey)
	assert.Equal(t, "secret", gotSecret)
	assert.Equal(t, "+15551234567", gotBody.Number)
	assert.Equal(t, "¡Hola!", gotBody.Content)
	assert.Equal(t, "https://example.com/status", gotBody.StatusCallback)
}

func TestSendMessageSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid number", http.StatusBadRequest)
	}))
	defer srv.Close()

	s := New(srv.URL, "key", "secret", "", time.Second)
	_, err := s.SendMessage(context.Background(), "+15551234567", "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSendTypingIndicatorSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-typing-indicator", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := New(srv.URL, "key", "secret", "", time.Second)
	s.SendTypingIndicator(context.Background(), "+15551234567")
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5551234567", "+15551234567"},
		{"(555) 123-4567", "+15551234567"},
		{"15551234567", "+15551234567"},
		{"+15551234567", "+15551234567"},
		{"+442079460958", "+442079460958"},
		{"442079460958", "+442079460958"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPhoneNumber(tt.in), tt.in)
	}
}
