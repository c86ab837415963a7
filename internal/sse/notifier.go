package sse

import "time"

// PricingNotifier is the interface services use to emit pricing events.
type PricingNotifier interface {
	Notify(event PricingEvent)
}

// HubNotifier implements PricingNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
	now func() time.Time
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, now: time.Now}
}

// Notify stamps the event and broadcasts it when anyone is listening.
func (n *HubNotifier) Notify(event PricingEvent) {
	if n.hub.ClientCount() == 0 {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = n.now()
	}
	n.hub.Broadcast(&event)
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) Notify(PricingEvent) {}
