package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
)

// NotificationKind selects the message layout for an outbound notification.
type NotificationKind string

const (
	KindNewRequest   NotificationKind = "new_request"
	KindStatusUpdate NotificationKind = "status_update"
	KindAdminAlert   NotificationKind = "admin_alert"
)

// Webhook payload shapes, matching the Discord webhook body.
type WebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type WebhookFooter struct {
	Text string `json:"text"`
}

type WebhookEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []WebhookField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
	Footer      WebhookFooter  `json:"footer"`
}

type WebhookMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []WebhookEmbed `json:"embeds,omitempty"`
}

// NotificationPayload carries the event context for one notification.
type NotificationPayload struct {
	Request   *domain.DesignRequest
	RequestID string
	OldStatus domain.RequestStatus
	NewStatus domain.RequestStatus
	Notes     string
	Title     string
	Body      string
}

// WebhookURLSource yields the currently configured endpoint, empty when
// notifications are disabled.
type WebhookURLSource interface {
	WebhookURL(ctx context.Context) string
}

const notifierFooter = "design-intake-service"

// Embed severity colors.
const (
	colorInfo    = 0x3498DB
	colorSuccess = 0x2ECC71
	colorWarning = 0xF39C12
	colorError   = 0xE74C3C
)

// Notifier formats and delivers event notifications to the configured
// webhook endpoint. Delivery is best-effort: a single attempt with a bounded
// timeout, no retry, and failures never interrupt the triggering operation.
type Notifier struct {
	urls    WebhookURLSource
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewNotifier constructs the notifier.
func NewNotifier(urls WebhookURLSource, timeout time.Duration, logger *zap.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		urls:    urls,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterHandlers subscribes the notifier to domain events. Persistence has
// already succeeded by the time an event is published.
func (n *Notifier) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventRequestSubmitted, n.handleRequestSubmitted)
	dispatcher.Subscribe(events.EventRequestDecided, n.handleRequestDecided)
	dispatcher.Subscribe(events.EventBroadcastCreated, n.handleBroadcastCreated)
}

// Notify builds and delivers a single notification. Returns false when the
// endpoint is unconfigured or delivery fails; the caller decides whether to
// surface that.
func (n *Notifier) Notify(ctx context.Context, kind NotificationKind, payload NotificationPayload) bool {
	endpoint := n.urls.WebhookURL(ctx)
	if endpoint == "" {
		return false
	}
	return n.deliver(ctx, endpoint, n.buildMessage(kind, payload))
}

func (n *Notifier) handleRequestSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestSubmittedPayload)
	if !ok {
		return nil
	}
	n.Notify(ctx, KindNewRequest, NotificationPayload{Request: &payload.Request})
	return nil
}

func (n *Notifier) handleRequestDecided(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestDecidedPayload)
	if !ok {
		return nil
	}
	n.Notify(ctx, KindStatusUpdate, NotificationPayload{
		Request:   payload.Request,
		RequestID: event.RequestID,
		OldStatus: payload.OldStatus,
		NewStatus: payload.NewStatus,
		Notes:     payload.Notes,
	})
	n.Notify(ctx, KindAdminAlert, NotificationPayload{
		RequestID: event.RequestID,
		Title:     "Admin decision recorded",
		Body:      fmt.Sprintf("Request %s moved to %s", shortID(event.RequestID), payload.NewStatus),
	})
	return nil
}

func (n *Notifier) handleBroadcastCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BroadcastCreatedPayload)
	if !ok {
		return nil
	}
	body := payload.Message.Body
	if payload.Message.Title != "" {
		body = payload.Message.Title + ": " + body
	}
	n.Notify(ctx, KindAdminAlert, NotificationPayload{
		Title: "Broadcast published",
		Body:  body,
	})
	return nil
}

func (n *Notifier) buildMessage(kind NotificationKind, payload NotificationPayload) WebhookMessage {
	embed := WebhookEmbed{
		Timestamp: n.now().UTC().Format(time.RFC3339),
		Footer:    WebhookFooter{Text: notifierFooter},
	}

	switch kind {
	case KindNewRequest:
		embed.Title = "New design request"
		embed.Color = colorInfo
		if req := payload.Request; req != nil {
			embed.Description = preview(req.Description, 200)
			embed.Fields = []WebhookField{
				{Name: "Name", Value: orDash(req.Name), Inline: true},
				{Name: "Service", Value: orDash(req.Service), Inline: true},
				{Name: "Email", Value: orDash(req.Email), Inline: true},
				{Name: "Handle", Value: orDash(req.Handle), Inline: true},
				{Name: "Budget", Value: orDash(req.Budget), Inline: true},
				{Name: "Contact", Value: orDash(req.ContactInfo), Inline: true},
			}
		}
	case KindStatusUpdate:
		embed.Title = "Request status updated"
		embed.Color = statusColor(payload.NewStatus)
		id := payload.RequestID
		if payload.Request != nil {
			id = payload.Request.ID
		}
		embed.Fields = []WebhookField{
			{Name: "Request", Value: shortID(id), Inline: true},
			{Name: "Status", Value: string(payload.NewStatus), Inline: true},
		}
		if payload.OldStatus != "" {
			embed.Fields = append(embed.Fields,
				WebhookField{Name: "Previous", Value: string(payload.OldStatus), Inline: true})
		}
		if payload.Notes != "" {
			embed.Fields = append(embed.Fields,
				WebhookField{Name: "Notes", Value: preview(payload.Notes, 200), Inline: false})
		}
	case KindAdminAlert:
		embed.Title = payload.Title
		if embed.Title == "" {
			embed.Title = "Admin alert"
		}
		embed.Description = payload.Body
		embed.Color = colorWarning
	}

	return WebhookMessage{Embeds: []WebhookEmbed{embed}}
}

func (n *Notifier) deliver(ctx context.Context, endpoint string, msg WebhookMessage) bool {
	body, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error("webhook payload encoding failed", zap.Error(err))
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("webhook request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.logger.Warn("webhook rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return false
	}
	return true
}

// ValidateWebhookURL rejects endpoints that are not Discord webhook URLs
// before they can be stored.
func ValidateWebhookURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return errors.New("webhook URL is not a valid URL")
	}
	if parsed.Scheme != "https" {
		return errors.New("webhook URL must use https")
	}
	host := parsed.Hostname()
	if host != "discord.com" && host != "discordapp.com" &&
		!strings.HasSuffix(host, ".discord.com") && !strings.HasSuffix(host, ".discordapp.com") {
		return errors.New("webhook URL must point to a Discord webhook")
	}
	if !strings.HasPrefix(parsed.Path, "/api/webhooks/") {
		return errors.New("webhook URL must match the webhook path")
	}
	return nil
}

func statusColor(status domain.RequestStatus) int {
	switch status {
	case domain.RequestStatusAccepted, domain.RequestStatusCompleted:
		return colorSuccess
	case domain.RequestStatusRejected, domain.RequestStatusCancelled:
		return colorError
	case domain.RequestStatusInProgress:
		return colorInfo
	default:
		return colorWarning
	}
}

// preview truncates to max runes, never splitting a multi-byte character.
func preview(text string, max int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}
