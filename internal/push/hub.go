// Package push fans persisted lifecycle notifications out to connected
// reporters. Delivery is best-effort: a reporter who is not connected, or
// whose connection is slow, simply misses the live push and reads the
// notification later from the store.
package push

import (
	"encoding/json"
	"log"

	"nagarseva/backend/internal/models"
	"nagarseva/backend/internal/storage"
)

// Client is one live reporter connection the hub can deliver to.
type Client interface {
	// GetReporterID returns the anonymous reporter this connection belongs to.
	GetReporterID() string
	// GetSendChannel returns the channel the hub pushes notifications into.
	GetSendChannel() chan<- models.Notification
	// Run starts the connection's write pump.
	Run()
	// Close shuts the connection down.
	Close()
}

// Hub tracks connected reporters and forwards notification events published
// through Redis to their connections.
type Hub struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage *storage.Service

	eventCh chan models.Notification
}

// NewHub creates a push hub over the given storage service.
func NewHub(s *storage.Service) *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Storage:      s,
		eventCh:      make(chan models.Notification, 64),
	}
}

// startSubscriber launches the goroutine that listens on the Redis
// notification channels and feeds events into the hub loop.
func (h *Hub) startSubscriber() {
	if h.Storage == nil {
		return
	}
	go func() {
		pubsub := h.Storage.SubscribeNotifications()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var n models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				log.Printf("ERROR: Undecodable notification event: %v", err)
				continue
			}
			h.Deliver(n)
		}
	}()
}

// Deliver hands one notification event to the hub loop. The Redis subscriber
// feeds events through here; in-process callers may as well.
func (h *Hub) Deliver(n models.Notification) {
	h.eventCh <- n
}

// Run is the hub's main loop. It owns the Clients map; register, unregister,
// and delivery all pass through here so no lock is needed.
func (h *Hub) Run() {
	h.startSubscriber()
	log.Println("Push hub started.")

	for {
		select {
		case client := <-h.RegisterCh:
			id := client.GetReporterID()
			if old, ok := h.Clients[id]; ok && old != client {
				// The reporter reconnected before the previous connection's
				// unregister arrived. Shut the old one down here; its late
				// unregister is ignored below.
				old.Close()
			}
			h.Clients[id] = client
			client.Run()
			log.Printf("INFO: Reporter %s connected for push delivery", id)

		case client := <-h.UnregisterCh:
			// Match by identity, not reporter ID alone, so a stale unregister
			// from a replaced connection never evicts the live one.
			if existing, ok := h.Clients[client.GetReporterID()]; ok && existing == client {
				delete(h.Clients, client.GetReporterID())
				client.Close()
			}

		case n := <-h.eventCh:
			client, ok := h.Clients[n.ReporterID]
			if !ok {
				continue
			}
			select {
			case client.GetSendChannel() <- n:
			default:
				// A slow client never stalls delivery to everyone else.
				delete(h.Clients, n.ReporterID)
				client.Close()
				log.Printf("INFO: Dropped slow push client %s", n.ReporterID)
			}
		}
	}
}
