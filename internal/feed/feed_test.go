package feed

import (
	"testing"

	"github.com/oddsentry/oddsentry/internal/bus"
)

func TestSubscribesTo_AllCatchAll(t *testing.T) {
	c := &client{channels: map[string]struct{}{"all": {}}}
	ev := bus.Event{Type: bus.OddsUpdate, MatchID: "m1"}
	if !c.subscribesTo(ev) {
		t.Error("expected the \"all\" channel to match every event")
	}
}

func TestSubscribesTo_EventTypeChannel(t *testing.T) {
	c := &client{channels: map[string]struct{}{"arbitrage": {}}}
	if !c.subscribesTo(bus.Event{Type: bus.Arbitrage}) {
		t.Error("expected an event-type channel to match its own type")
	}
	if c.subscribesTo(bus.Event{Type: bus.OddsUpdate}) {
		t.Error("expected an event-type channel not to match a different type")
	}
}

func TestSubscribesTo_MatchChannel(t *testing.T) {
	c := &client{channels: map[string]struct{}{"match:42": {}}}
	if !c.subscribesTo(bus.Event{Type: bus.OddsUpdate, MatchID: "42"}) {
		t.Error("expected match:42 to match an event for match 42")
	}
	if c.subscribesTo(bus.Event{Type: bus.OddsUpdate, MatchID: "99"}) {
		t.Error("expected match:42 not to match an event for a different match")
	}
}

func TestSubscribesTo_SportChannel(t *testing.T) {
	c := &client{channels: map[string]struct{}{"sport:soccer": {}}}
	if !c.subscribesTo(bus.Event{Type: bus.OddsUpdate, SportTag: "soccer"}) {
		t.Error("expected sport:soccer to match a soccer event")
	}
	if c.subscribesTo(bus.Event{Type: bus.OddsUpdate, SportTag: "tennis"}) {
		t.Error("expected sport:soccer not to match a tennis event")
	}
}

func TestSubscribesTo_NoMatchingChannel(t *testing.T) {
	c := &client{channels: map[string]struct{}{"match:1": {}, "sport:tennis": {}}}
	if c.subscribesTo(bus.Event{Type: bus.Arbitrage, MatchID: "2", SportTag: "soccer"}) {
		t.Error("expected no match when none of the client's channels apply")
	}
}
