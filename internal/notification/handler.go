// Package notification consumes catalog events from Kafka, writes an audit log
// line per event and alerts an operator when the catalog falls back.
package notification

import (
	"context"
	"encoding/json"

	"github.com/example/catalog-flipbook/internal/email"
	"github.com/example/catalog-flipbook/internal/events"
	"github.com/example/catalog-flipbook/internal/logger"
)

// Alerter delivers catalog alerts.
type Alerter interface {
	SendCatalogAlert(ctx context.Context, to string, alert email.CatalogAlert) error
}

// Handler processes events for notifications
type Handler struct {
	alerter Alerter
	alertTo string
	log     *logger.Logger
}

// NewHandler creates a new notification handler. Alerts are skipped when
// alerter is nil or alertTo is empty.
func NewHandler(alerter Alerter, alertTo string, log *logger.Logger) *Handler {
	return &Handler{
		alerter: alerter,
		alertTo: alertTo,
		log:     log.Component("Notifier"),
	}
}

// HandleEvent processes an event envelope from Kafka. Unknown event names
// are ignored.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		h.log.Warn("failed to unmarshal envelope", "key", string(key), "error", err)
		return err
	}

	switch env.Name {
	case events.EventCatalogLoaded:
		var e events.CatalogLoaded
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return err
		}
		h.log.Info("audit",
			"event", env.Name, "event_id", env.ID, "run_id", e.RunID,
			"count", e.Count, "skipped", e.Skipped, "origin", e.Origin, "inlined", e.Inlined)

	case events.EventCatalogLoadFailed:
		var e events.CatalogLoadFailed
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return err
		}
		h.log.Warn("audit",
			"event", env.Name, "event_id", env.ID, "run_id", e.RunID,
			"origin", e.Origin, "reason", e.Reason)
		return h.alert(ctx, env, e)

	case events.EventSessionChanged:
		var e events.SessionChanged
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return err
		}
		h.log.Info("audit",
			"event", env.Name, "event_id", env.ID,
			"authenticated", e.Authenticated, "username", e.Username, "mode", e.Mode)

	case events.EventPageChanged:
		var e events.PageChanged
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return err
		}
		h.log.Debug("audit", "event", env.Name, "index", e.Index, "total", e.Total)
	}
	return nil
}

func (h *Handler) alert(ctx context.Context, env events.Envelope, e events.CatalogLoadFailed) error {
	if h.alerter == nil || h.alertTo == "" {
		return nil
	}
	err := h.alerter.SendCatalogAlert(ctx, h.alertTo, email.CatalogAlert{
		RunID:      e.RunID,
		Origin:     e.Origin,
		Reason:     e.Reason,
		OccurredAt: env.OccurredAt,
	})
	if err != nil {
		h.log.Warn("failed to send catalog alert", "to", h.alertTo, "error", err)
		return err
	}
	h.log.Info("catalog alert sent", "to", h.alertTo, "run_id", e.RunID)
	return nil
}
