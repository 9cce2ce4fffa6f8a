// Package events carries progress and lifecycle notifications from the core
// operations to whoever is listening: logs, tests, or websocket clients.
package events

import "pixelforge/pkg/types"

// Event is one notification. Name is one of the types.Event* constants or a
// lifecycle name such as "session_loaded"; Payload is JSON-serialisable.
type Event struct {
	Name    string         `json:"event"`
	ModelID string         `json:"model_id,omitempty"`
	Payload any            `json:"payload,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Publisher receives events. Implementations should be lightweight and
// non-blocking; Publish must not panic.
type Publisher interface {
	Publish(Event)
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(Event) {}

// OrNoop returns p, or Noop when p is nil.
func OrNoop(p Publisher) Publisher {
	if p == nil {
		return Noop{}
	}
	return p
}

// Progress builds an operation-progress event.
func Progress(stage string, percent int) Event {
	return Event{
		Name:    types.EventOperationProgress,
		Payload: types.OperationProgress{Stage: stage, Percent: percent},
	}
}

// DownloadProgress builds a model-download-progress event.
func DownloadProgress(p types.DownloadProgress) Event {
	return Event{Name: types.EventModelDownloadProgress, ModelID: p.ModelID, Payload: p}
}

// DownloadComplete builds a model-download-complete event.
func DownloadComplete(modelID string) Event {
	return Event{Name: types.EventModelDownloadComplete, ModelID: modelID, Payload: map[string]string{"model_id": modelID}}
}

// Multi fans an event out to every non-nil publisher in order.
type Multi []Publisher

func (m Multi) Publish(e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}
