// Package bus is the internal pub/sub fabric connecting the engine to its
// external collaborators (feed, notify/telegram, httpapi) without coupling
// them together. Grounded on original_source/PythonScraper/api/websocket.py's
// connection-manager broadcast pattern, adapted to Go channels.
package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oddsentry/oddsentry/internal/arbitrage"
	"github.com/oddsentry/oddsentry/internal/store"
)

// EventType names the kind of event flowing over the bus.
type EventType string

const (
	OddsUpdate   EventType = "odds_update"
	Arbitrage    EventType = "arbitrage"
	LineMovement EventType = "line_movement"
)

// Event is one bus message. Payload depends on Type: a map with match_id,
// bookmaker, team1 and team2 for OddsUpdate, an ArbitrageAlert for
// Arbitrage, and a LineMovementAlert for LineMovement.
type Event struct {
	Type      EventType
	MatchID   string
	SportTag  string // "sport:<sport>" channel tag convenience
	Payload   any
}

// ArbitrageAlert is the display-ready payload for an Arbitrage event: the
// persisted opportunity plus the match context a subscriber needs to render
// an alert without its own store lookup.
type ArbitrageAlert struct {
	Opportunity store.ArbitrageOpportunity
	MatchName   string
	Sport       string
	StartTime   time.Time
}

// LineMovementAlert is the display-ready payload for a LineMovement event.
type LineMovementAlert struct {
	Movement         arbitrage.Movement
	MatchName        string
	Sport            string
	ThresholdPercent float64
	History          []store.OddsHistoryPoint
}

// Topics an event is delivered on, beyond its own type tag: "all" always,
// plus "match:<id>" and "sport:<id>" when known. Mirrors spec §6's update
// bus channel-tag model.
func (e Event) topics() []string {
	topics := []string{"all", string(e.Type)}
	if e.MatchID != "" {
		topics = append(topics, "match:"+e.MatchID)
	}
	if e.SportTag != "" {
		topics = append(topics, "sport:"+e.SportTag)
	}
	return topics
}

// subscriber is one registered listener on a set of topics.
type subscriber struct {
	id     uint64
	topics map[string]struct{}
	ch     chan Event
}

// Bus fans out events to subscribers by topic. A slow or dead subscriber
// never blocks the publisher or other subscribers (spec §5's "pub/sub must
// not let a failing subscriber stall the cycle"): each subscriber has its
// own buffered channel, and a full channel just drops the event for that
// subscriber rather than blocking delivery.
type Bus struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[uint64]*subscriber
	dropped atomic.Uint64
}

// New builds an empty Bus.
func New() *Bus {
	return &Bus{subs: map[uint64]*subscriber{}}
}

// Subscription is a live subscriber's view of the bus: drain Events until
// the context is cancelled, then call Close.
type Subscription struct {
	bus *Bus
	sub *subscriber
}

// Events returns the channel to range over for delivered events.
func (s *Subscription) Events() <-chan Event {
	return s.sub.ch
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subs[s.sub.id]; ok {
		close(s.sub.ch)
		delete(s.bus.subs, s.sub.id)
	}
}

// Subscribe registers a new subscriber on the given topics (e.g. "all",
// "odds_update", "arbitrage", "match:<id>", "sport:<id>"). bufferSize bounds
// how many undelivered events queue before new ones are dropped for this
// subscriber.
func (b *Bus) Subscribe(topics []string, bufferSize int) *Subscription {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}

	b.mu.Lock()
	b.nextID++
	sub := &subscriber{id: b.nextID, topics: set, ch: make(chan Event, bufferSize)}
	b.subs[sub.id] = sub
	b.mu.Unlock()

	return &Subscription{bus: b, sub: sub}
}

// Publish delivers event to every subscriber whose topic set intersects the
// event's topics. Per-subscriber ordering is preserved (each subscriber has
// exactly one channel); there is no cross-subscriber ordering guarantee.
func (b *Bus) Publish(event Event) {
	topics := event.topics()

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !subscribesAny(sub.topics, topics) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

func subscribesAny(subTopics map[string]struct{}, eventTopics []string) bool {
	for _, t := range eventTopics {
		if _, ok := subTopics[t]; ok {
			return true
		}
	}
	return false
}

// Dropped returns how many event deliveries have been dropped due to a full
// subscriber buffer, for /stats reporting.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Run is a convenience loop for subscribers that want a callback style
// instead of ranging over Events() directly; it returns when ctx is done or
// the subscription is closed.
func Run(ctx context.Context, sub *Subscription, handle func(Event)) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			handle(ev)
		}
	}
}
