package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/catalog-flipbook/internal/email"
	"github.com/example/catalog-flipbook/internal/events"
	"github.com/example/catalog-flipbook/internal/logger"
)

type fakeAlerter struct {
	to     []string
	alerts []email.CatalogAlert
	err    error
}

func (f *fakeAlerter) SendCatalogAlert(_ context.Context, to string, alert email.CatalogAlert) error {
	f.to = append(f.to, to)
	f.alerts = append(f.alerts, alert)
	return f.err
}

func envelope(t *testing.T, e events.Event) []byte {
	t.Helper()
	env, err := events.Wrap(e)
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return data
}

// =============================================================================
// HandleEvent Tests
// =============================================================================

func TestHandleEvent_LoadFailedSendsAlert(t *testing.T) {
	alerter := &fakeAlerter{}
	h := NewHandler(alerter, "ops@example.com", logger.Nop())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err := h.HandleEvent(context.Background(), []byte(events.EventCatalogLoadFailed), envelope(t, events.CatalogLoadFailed{
		BaseEvent: events.BaseEvent{Timestamp: at},
		RunID:     "run-1",
		Origin:    "builtin",
		Reason:    "unreachable",
	}))
	require.NoError(t, err)

	require.Len(t, alerter.alerts, 1)
	assert.Equal(t, []string{"ops@example.com"}, alerter.to)
	assert.Equal(t, "run-1", alerter.alerts[0].RunID)
	assert.Equal(t, "builtin", alerter.alerts[0].Origin)
	assert.True(t, at.Equal(alerter.alerts[0].OccurredAt))
}

func TestHandleEvent_AlertFailureIsReturned(t *testing.T) {
	alerter := &fakeAlerter{err: errors.New("smtp down")}
	h := NewHandler(alerter, "ops@example.com", logger.Nop())

	err := h.HandleEvent(context.Background(), nil, envelope(t, events.CatalogLoadFailed{BaseEvent: events.NewBaseEvent(), Origin: "cache"}))
	assert.Error(t, err)
}

func TestHandleEvent_NoAlertWithoutRecipient(t *testing.T) {
	alerter := &fakeAlerter{}
	h := NewHandler(alerter, "", logger.Nop())

	err := h.HandleEvent(context.Background(), nil, envelope(t, events.CatalogLoadFailed{BaseEvent: events.NewBaseEvent(), Origin: "cache"}))
	require.NoError(t, err)
	assert.Empty(t, alerter.alerts)
}

func TestHandleEvent_AuditLogsCatalogAndSession(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(nil, "", logger.NewWithWriter("production", &buf))
	ctx := context.Background()

	require.NoError(t, h.HandleEvent(ctx, nil, envelope(t, events.CatalogLoaded{BaseEvent: events.NewBaseEvent(), RunID: "run-2", Count: 6, Origin: "remote"})))
	require.NoError(t, h.HandleEvent(ctx, nil, envelope(t, events.SessionChanged{BaseEvent: events.NewBaseEvent(), Authenticated: true, Username: "demo", Mode: "demo"})))

	out := buf.String()
	assert.Contains(t, out, `"run_id":"run-2"`)
	assert.Contains(t, out, `"count":6`)
	assert.Contains(t, out, `"username":"demo"`)
}

func TestHandleEvent_UnknownEventIgnored(t *testing.T) {
	alerter := &fakeAlerter{}
	h := NewHandler(alerter, "ops@example.com", logger.Nop())

	err := h.HandleEvent(context.Background(), nil, []byte(`{"id":"x","name":"order.placed","data":{}}`))
	require.NoError(t, err)
	assert.Empty(t, alerter.alerts)
}

func TestHandleEvent_Garbage(t *testing.T) {
	h := NewHandler(nil, "", logger.Nop())
	assert.Error(t, h.HandleEvent(context.Background(), nil, []byte("not json")))
}
