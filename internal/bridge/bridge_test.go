package bridge

import (
	"sync"
	"testing"
)

// TestPublishReachesSubscribers: every subscriber of a channel sees each
// published event, and other channels stay quiet.
func TestPublishReachesSubscribers(t *testing.T) {
	b := New()

	var times []float64
	b.OnTimeChanged(func(ev TimeChanged) { times = append(times, ev.TimeUnix) })
	b.OnTimeChanged(func(ev TimeChanged) { times = append(times, ev.TimeUnix) })

	var selections int
	b.OnPlanetSelected(func(PlanetSelected) { selections++ })

	b.PublishTimeChanged(TimeChanged{TimeUnix: 42})

	if len(times) != 2 || times[0] != 42 || times[1] != 42 {
		t.Errorf("times = %v, want [42 42]", times)
	}
	if selections != 0 {
		t.Errorf("selections = %d, want 0", selections)
	}
}

// TestCancelStopsDelivery: a cancelled subscription receives nothing more.
func TestCancelStopsDelivery(t *testing.T) {
	b := New()

	var got int
	cancel := b.OnTransitDetected(func(TransitDetected) { got++ })

	b.PublishTransitDetected(TransitDetected{PlanetID: "p"})
	cancel()
	b.PublishTransitDetected(TransitDetected{PlanetID: "p"})

	if got != 1 {
		t.Errorf("deliveries = %d, want 1", got)
	}
}

// TestCancelIdempotent: cancelling twice must not panic or affect other
// subscribers.
func TestCancelIdempotent(t *testing.T) {
	b := New()

	var kept int
	cancel := b.OnSeekRequest(func(SeekRequest) {})
	b.OnSeekRequest(func(SeekRequest) { kept++ })

	cancel()
	cancel()
	b.PublishSeekRequest(SeekRequest{TimeUnix: 1})

	if kept != 1 {
		t.Errorf("kept subscriber deliveries = %d, want 1", kept)
	}
}

// TestReentrantUnsubscribe: a subscriber may cancel itself during delivery.
func TestReentrantUnsubscribe(t *testing.T) {
	b := New()

	var calls int
	var cancel func()
	cancel = b.OnTimeChanged(func(TimeChanged) {
		calls++
		cancel()
	})

	b.PublishTimeChanged(TimeChanged{TimeUnix: 1})
	b.PublishTimeChanged(TimeChanged{TimeUnix: 2})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

// TestReentrantPublish: a subscriber may publish onto another channel of the
// same bus without deadlocking.
func TestReentrantPublish(t *testing.T) {
	b := New()

	var selected string
	b.OnPlanetSelected(func(ev PlanetSelected) { selected = ev.PlanetID })
	b.OnTransitDetected(func(ev TransitDetected) {
		b.PublishPlanetSelected(PlanetSelected{PlanetID: ev.PlanetID})
	})

	b.PublishTransitDetected(TransitDetected{PlanetID: "exo-1b"})

	if selected != "exo-1b" {
		t.Errorf("selected = %q, want exo-1b", selected)
	}
}

// TestConcurrentPublish: publishing from multiple goroutines is safe.
func TestConcurrentPublish(t *testing.T) {
	b := New()

	var mu sync.Mutex
	var got int
	b.OnTimeChanged(func(TimeChanged) {
		mu.Lock()
		got++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.PublishTimeChanged(TimeChanged{TimeUnix: float64(j)})
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if got != 1000 {
		t.Errorf("deliveries = %d, want 1000", got)
	}
}

// TestIndependentBuses: events on one bus never leak to another (sessions
// each own a bus).
func TestIndependentBuses(t *testing.T) {
	b1, b2 := New(), New()

	var got int
	b2.OnTimeChanged(func(TimeChanged) { got++ })

	b1.PublishTimeChanged(TimeChanged{TimeUnix: 1})

	if got != 0 {
		t.Errorf("cross-bus deliveries = %d, want 0", got)
	}
}
