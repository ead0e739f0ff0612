package events

const (
	EventCatalogLoaded     = "catalog.loaded"
	EventCatalogLoadFailed = "catalog.load_failed"
	EventSessionChanged    = "session.changed"
	EventPageChanged       = "flipbook.page_changed"
)

// CatalogLoaded is published when a pipeline run commits its items.
type CatalogLoaded struct {
	BaseEvent
	RunID   string `json:"run_id"`
	Count   int    `json:"count"`
	Skipped int    `json:"skipped"`
	Origin  string `json:"origin"`
	Inlined int    `json:"inlined"`
}

func (CatalogLoaded) EventName() string { return EventCatalogLoaded }

// CatalogLoadFailed is published when the product list could not be fetched
// from the network and a fallback was served instead.
type CatalogLoadFailed struct {
	BaseEvent
	RunID  string `json:"run_id"`
	Origin string `json:"origin"`
	Reason string `json:"reason"`
}

func (CatalogLoadFailed) EventName() string { return EventCatalogLoadFailed }

// SessionChanged is published on login, logout and restore.
type SessionChanged struct {
	BaseEvent
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Mode          string `json:"mode,omitempty"`
}

func (SessionChanged) EventName() string { return EventSessionChanged }

// PageChanged is published when the flipbook moves to another page.
type PageChanged struct {
	BaseEvent
	Index int `json:"index"`
	Total int `json:"total"`
}

func (PageChanged) EventName() string { return EventPageChanged }
