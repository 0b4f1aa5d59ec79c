package bus

import (
	"testing"
	"time"
)

func TestPublish_DeliversToMatchingTopics(t *testing.T) {
	b := New()
	all := b.Subscribe([]string{"all"}, 8)
	defer all.Close()
	arbOnly := b.Subscribe([]string{string(Arbitrage)}, 8)
	defer arbOnly.Close()

	b.Publish(Event{Type: OddsUpdate, MatchID: "m1"})
	b.Publish(Event{Type: Arbitrage, MatchID: "m1"})

	select {
	case ev := <-all.Events():
		if ev.Type != OddsUpdate {
			t.Errorf("expected first event on all-subscriber to be odds_update, got %v", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for all-subscriber event")
	}

	select {
	case ev := <-arbOnly.Events():
		if ev.Type != Arbitrage {
			t.Errorf("expected arb-only subscriber to only see arbitrage, got %v", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for arb-only subscriber event")
	}
}

func TestPublish_FullBufferDropsWithoutBlocking(t *testing.T) {
	b := New()
	sub := b.Subscribe([]string{"all"}, 1)
	defer sub.Close()

	b.Publish(Event{Type: OddsUpdate})
	done := make(chan struct{})
	go func() {
		b.Publish(Event{Type: OddsUpdate})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}

	if b.Dropped() != 1 {
		t.Errorf("expected 1 dropped event, got %d", b.Dropped())
	}
}

func TestClose_UnsubscribesCleanly(t *testing.T) {
	b := New()
	sub := b.Subscribe([]string{"all"}, 4)
	sub.Close()
	sub.Close() // must not panic

	b.Publish(Event{Type: OddsUpdate}) // must not panic on closed channel
}
