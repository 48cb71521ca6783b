package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
)

type staticURL string

func (s staticURL) WebhookURL(_ context.Context) string { return string(s) }

func TestNotifierSkipsWhenUnconfigured(t *testing.T) {
	notifier := NewNotifier(staticURL(""), time.Second, zap.NewNop())
	delivered := notifier.Notify(context.Background(), KindNewRequest, NotificationPayload{})
	assert.False(t, delivered)
}

func TestNotifierDeliversNewRequestEmbed(t *testing.T) {
	var captured WebhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewNotifier(staticURL(server.URL), time.Second, zap.NewNop())
	delivered := notifier.Notify(context.Background(), KindNewRequest, NotificationPayload{
		Request: &domain.DesignRequest{
			Name:        "Al",
			Service:     "Logo",
			Email:       "a@b.com",
			Description: "Need a logo for my bakery business",
		},
	})

	require.True(t, delivered)
	require.Len(t, captured.Embeds, 1)
	embed := captured.Embeds[0]
	assert.Equal(t, "New design request", embed.Title)
	assert.Equal(t, colorInfo, embed.Color)
	assert.Equal(t, notifierFooter, embed.Footer.Text)
	assert.Equal(t, "Need a logo for my bakery business", embed.Description)

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "Al", fields["Name"])
	assert.Equal(t, "Logo", fields["Service"])
	assert.Equal(t, "-", fields["Budget"], "empty optional fields render as a dash")
}

func TestNotifierStatusUpdateEmbed(t *testing.T) {
	var captured WebhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
	}))
	defer server.Close()

	notifier := NewNotifier(staticURL(server.URL), time.Second, zap.NewNop())
	delivered := notifier.Notify(context.Background(), KindStatusUpdate, NotificationPayload{
		RequestID: "0123456789abcdef",
		OldStatus: domain.RequestStatusPending,
		NewStatus: domain.RequestStatusAccepted,
		Notes:     "looks great",
	})

	require.True(t, delivered)
	require.Len(t, captured.Embeds, 1)
	embed := captured.Embeds[0]
	assert.Equal(t, "Request status updated", embed.Title)
	assert.Equal(t, colorSuccess, embed.Color)

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "01234567", fields["Request"], "request id is shortened")
	assert.Equal(t, "accepted", fields["Status"])
	assert.Equal(t, "pending", fields["Previous"])
	assert.Equal(t, "looks great", fields["Notes"])
}

func TestNotifierReportsRejectedDelivery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	notifier := NewNotifier(staticURL(server.URL), time.Second, zap.NewNop())
	delivered := notifier.Notify(context.Background(), KindAdminAlert, NotificationPayload{Body: "hi"})
	assert.False(t, delivered)
}

func TestNotifierSingleAttemptOnFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewNotifier(staticURL(server.URL), time.Second, zap.NewNop())
	notifier.Notify(context.Background(), KindAdminAlert, NotificationPayload{Body: "hi"})
	assert.Equal(t, 1, attempts)
}

func TestValidateWebhookURL(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{"discord.com webhook", "https://discord.com/api/webhooks/123/token", true},
		{"discordapp.com webhook", "https://discordapp.com/api/webhooks/123/token", true},
		{"plain http", "http://discord.com/api/webhooks/123/token", false},
		{"wrong host", "https://example.com/api/webhooks/123/token", false},
		{"wrong path", "https://discord.com/webhooks/123/token", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateWebhookURL(tc.url)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNotifierMapsDomainEventsToWebhookKinds(t *testing.T) {
	var delivered []WebhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg WebhookMessage
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &msg))
		delivered = append(delivered, msg)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewNotifier(staticURL(server.URL), time.Second, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	notifier.RegisterHandlers(dispatcher)
	ctx := context.Background()

	req := domain.DesignRequest{ID: "0123456789abcdef", Name: "Al", Service: "Logo", Status: domain.RequestStatusPending}
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventRequestSubmitted,
		Payload: events.RequestSubmittedPayload{Request: req},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:      events.EventRequestDecided,
		RequestID: req.ID,
		Payload: events.RequestDecidedPayload{
			Request:   &req,
			OldStatus: domain.RequestStatusPending,
			NewStatus: domain.RequestStatusAccepted,
			Notes:     "welcome aboard",
		},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventBroadcastCreated,
		Payload: events.BroadcastCreatedPayload{Message: domain.BroadcastMessage{Title: "Heads up", Body: "maintenance tonight"}},
	}))

	// submitted -> one message; decided -> status update + admin alert;
	// broadcast created -> admin alert.
	require.Len(t, delivered, 4)
	assert.Equal(t, "New design request", delivered[0].Embeds[0].Title)

	update := delivered[1].Embeds[0]
	assert.Equal(t, "Request status updated", update.Title)
	fields := map[string]string{}
	for _, f := range update.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "pending", fields["Previous"])
	assert.Equal(t, "accepted", fields["Status"])
	assert.Equal(t, "welcome aboard", fields["Notes"])

	alert := delivered[2].Embeds[0]
	assert.Equal(t, "Admin decision recorded", alert.Title)
	assert.Contains(t, alert.Description, "accepted")

	broadcast := delivered[3].Embeds[0]
	assert.Equal(t, "Broadcast published", broadcast.Title)
	assert.Equal(t, "Heads up: maintenance tonight", broadcast.Description)
}

func TestPreviewKeepsRuneBoundaries(t *testing.T) {
	out := preview(strings.Repeat("é", 300), 200)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 200, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "..."))

	assert.Equal(t, "short", preview("short", 200))
	assert.Equal(t, "日本", preview("日本語のテキスト", 2))
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, colorSuccess, statusColor(domain.RequestStatusAccepted))
	assert.Equal(t, colorSuccess, statusColor(domain.RequestStatusCompleted))
	assert.Equal(t, colorError, statusColor(domain.RequestStatusRejected))
	assert.Equal(t, colorError, statusColor(domain.RequestStatusCancelled))
	assert.Equal(t, colorInfo, statusColor(domain.RequestStatusInProgress))
	assert.Equal(t, colorWarning, statusColor(domain.RequestStatusPending))
}
