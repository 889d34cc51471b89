// Package httpapi exposes the read-only opportunity listing surface plus
// the metrics/health endpoints (spec §1 scope note: the HTTP CRUD for
// users and the browser broadcaster's internal fan-out are both out of
// scope; this package gives the broadcaster an address to publish to and
// ships only a minimal one, WSBroadcaster).
package httpapi

import (
	"github.com/ethereum/go-ethereum/event"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/swaptypes"
)

var log = mcommon.NewLogger("httpapi")

// Broadcaster is the opaque sink spec §1 treats the browser-facing
// WebSocket broadcaster as. Hub.Run drives whatever Broadcaster a
// deployment wires in; WSBroadcaster (ws.go) is the minimal one this
// package provides.
type Broadcaster interface {
	Broadcast(o *swaptypes.Opportunity)
}

// Hub fans detected opportunities out to subscribers via event.Feed, the
// same primitive the teacher's tx pool uses for its own subscriber
// broadcast (txFeed), generalized from transactions to opportunities.
type Hub struct {
	feed event.Feed
}

func NewHub() *Hub { return &Hub{} }

// Publish sends o to every current subscriber. Never blocks on a slow
// subscriber beyond the feed's own internal buffering.
func (h *Hub) Publish(o *swaptypes.Opportunity) {
	h.feed.Send(o)
}

// Subscribe registers ch to receive every opportunity Publish sends until
// the returned subscription is unsubscribed.
func (h *Hub) Subscribe(ch chan<- *swaptypes.Opportunity) event.Subscription {
	return h.feed.Subscribe(ch)
}

// Run bridges the Hub's internal feed to an external Broadcaster, until the
// feed subscription ends or stop fires. Kept deliberately thin: fan-out to actual
// browser WebSocket connections is the broadcaster's concern, not this
// package's (spec §1 Non-goal).
func (h *Hub) Run(stop <-chan struct{}, b Broadcaster) {
	ch := make(chan *swaptypes.Opportunity, 256)
	sub := h.Subscribe(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case o := <-ch:
			b.Broadcast(o)
		case err := <-sub.Err():
			if err != nil {
				log.Warn("hub subscription error", "err", err)
			}
			return
		case <-stop:
			return
		}
	}
}
