// Package webhook exposes the HTTP surface: carrier callbacks and a
// health endpoint. Inbound events are acknowledged immediately and
// processed asynchronously so the carrier never retries an event that
// already reached us.
package webhook

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/holabot/internal/ratelimit"
	"github.com/example/holabot/pkg/models"
)

const processingTimeout = 2 * time.Minute

const errorReply = "Sorry, I'm having trouble right now. Please try again in a moment."

// InboundMessage is the carrier's inbound webhook payload.
type InboundMessage struct {
	FromNumber    string `json:"from_number"`
	Content       string `json:"content"`
	MessageHandle string `json:"message_handle"`
	IsOutbound    bool   `json:"is_outbound"`
}

// StatusUpdate is the carrier's delivery-status callback payload.
type StatusUpdate struct {
	MessageHandle string `json:"message_handle"`
	Status        string `json:"status"`
	ErrorCode     string `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}

type admitter interface {
	Check(ctx context.Context, identity string) (ratelimit.Result, error)
}

type deduper interface {
	Claim(ctx context.Context, eventID string) (bool, error)
}

type messageRouter interface {
	Route(ctx context.Context, phoneNumber, message string) (string, error)
}

type messageCarrier interface {
	SendMessage(ctx context.Context, toNumber, content string) (string, error)
	SendTypingIndicator(ctx context.Context, toNumber string)
}

type userStore interface {
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	IncrementMessageCount(ctx context.Context, id string, sent bool) error
}

type activityStore interface {
	IncrementMessages(ctx context.Context, userID, date string, sent bool) error
}

// Handler serves the webhook routes.
type Handler struct {
	limiter  admitter
	dedup    deduper
	router   messageRouter
	carrier  messageCarrier
	users    userStore
	activity activityStore

	now func() time.Time

	// async runs the post-ack processing; tests replace it to run
	// inline.
	async func(func())
}

// New builds the webhook handler.
func New(limiter admitter, dedup deduper, router messageRouter, carrier messageCarrier, users userStore, activity activityStore) *Handler {
	return &Handler{
		limiter:  limiter,
		dedup:    dedup,
		router:   router,
		carrier:  carrier,
		users:    users,
		activity: activity,
		now:      time.Now,
		async:    func(fn func()) { go fn() },
	}
}

// Register mounts the routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/webhooks/sendblue/inbound", h.HandleInbound)
	e.POST("/webhooks/sendblue/status", h.HandleStatus)
	e.GET("/health", h.HandleHealth)
}

// HandleInbound always acknowledges with 200 so the carrier never
// retries; the real work happens after the ack.
func (h *Handler) HandleInbound(c echo.Context) error {
	var payload InboundMessage
	if err := c.Bind(&payload); err != nil {
		log.Printf("Malformed inbound webhook payload: %v", err)
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	h.async(func() { h.process(payload) })

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// process runs the inbound pipeline: filter outbound echoes, admit,
// claim, route, deliver.
func (h *Handler) process(payload InboundMessage) {
	if payload.IsOutbound {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), processingTimeout)
	defer cancel()

	result, err := h.limiter.Check(ctx, payload.FromNumber)
	if err != nil {
		log.Printf("Admission check failed for %s: %v", payload.FromNumber, err)
		return
	}
	if !result.Allowed {
		log.Printf("Rate limited: %s (retry after %s)", payload.FromNumber, result.RetryAfter)
		return
	}

	claimed, err := h.dedup.Claim(ctx, payload.MessageHandle)
	if err != nil {
		log.Printf("Dedup claim failed for %s: %v", payload.MessageHandle, err)
		return
	}
	if !claimed {
		log.Printf("Skipping duplicate message: %s", payload.MessageHandle)
		return
	}

	preview := payload.Content
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	log.Printf("Inbound message from %s: %s", payload.FromNumber, preview)

	h.carrier.SendTypingIndicator(ctx, payload.FromNumber)

	reply, err := h.router.Route(ctx, payload.FromNumber, payload.Content)
	if err != nil {
		log.Printf("Error processing inbound message: %v", err)
		if _, sendErr := h.carrier.SendMessage(ctx, payload.FromNumber, errorReply); sendErr != nil {
			log.Printf("Failed to send error reply: %v", sendErr)
		}
		return
	}

	if reply != "" {
		if _, err := h.carrier.SendMessage(ctx, payload.FromNumber, reply); err != nil {
			log.Printf("Failed to send reply to %s: %v", payload.FromNumber, err)
		}
	}

	h.trackActivity(ctx, payload.FromNumber, reply != "")
}

// trackActivity records the exchange in the daily activity log and the
// learner's lifetime counters. Best effort.
func (h *Handler) trackActivity(ctx context.Context, phoneNumber string, replied bool) {
	user, err := h.users.GetByPhone(ctx, phoneNumber)
	if err != nil || user == nil {
		return
	}
	today := h.now().Format("2006-01-02")

	if err := h.activity.IncrementMessages(ctx, user.ID, today, false); err != nil {
		log.Printf("Failed to track received message: %v", err)
	}
	if replied {
		if err := h.activity.IncrementMessages(ctx, user.ID, today, true); err != nil {
			log.Printf("Failed to track sent message: %v", err)
		}
		if err := h.users.IncrementMessageCount(ctx, user.ID, true); err != nil {
			log.Printf("Failed to count sent message: %v", err)
		}
	}
}

// HandleStatus logs delivery-status callbacks; the core takes no
// action on them.
func (h *Handler) HandleStatus(c echo.Context) error {
	var payload StatusUpdate
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	if payload.ErrorCode != "" {
		log.Printf("Message %s failed: %s - %s", payload.MessageHandle, payload.ErrorCode, payload.ErrorMessage)
	} else {
		log.Printf("Message %s status: %s", payload.MessageHandle, payload.Status)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "holabot"})
}
