// Package bridge decouples the simulation from external observers with a
// typed publish/subscribe bus. Each visualization session owns its own Bus;
// there is no process-global dispatcher, so two sessions never hear each
// other's events and tests can construct subscribers directly.
//
// Channel names, matched by the external light-curve collaborator:
//
//	time-changed{time_unix}                 outbound, every tick
//	planet-selected{planet_id}              outbound
//	transit-detected{planet_id, time}       outbound, edge-triggered
//	seek-request{time_unix}                 inbound
//
// Delivery is synchronous fire-and-forget: subscribers run in emission order
// on the publisher's goroutine, there is no acknowledgment, and a missing
// listener is not an error.
package bridge

import "sync"

// TimeChanged is emitted after every tick with the current simulation time.
type TimeChanged struct {
	TimeUnix float64 `json:"time_unix"`
}

// PlanetSelected is emitted when the selected planet changes.
type PlanetSelected struct {
	PlanetID string `json:"planet_id"`
}

// TransitDetected is emitted once per continuous transit, at ingress.
type TransitDetected struct {
	PlanetID    string  `json:"planet_id"`
	TransitTime float64 `json:"transit_time"`
}

// SeekRequest is consumed from external sources (e.g. a light-curve chart
// click). Only honored by sessions with sync enabled.
type SeekRequest struct {
	TimeUnix float64 `json:"time_unix"`
}

// Bus is a per-session event bridge. The zero value is not usable; call New.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	timeSubs map[int]func(TimeChanged)
	selSubs  map[int]func(PlanetSelected)
	trSubs   map[int]func(TransitDetected)
	seekSubs map[int]func(SeekRequest)
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		timeSubs: make(map[int]func(TimeChanged)),
		selSubs:  make(map[int]func(PlanetSelected)),
		trSubs:   make(map[int]func(TransitDetected)),
		seekSubs: make(map[int]func(SeekRequest)),
	}
}

// OnTimeChanged registers a listener; the returned func unsubscribes it.
func (b *Bus) OnTimeChanged(fn func(TimeChanged)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.timeSubs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.timeSubs, id)
		b.mu.Unlock()
	}
}

// OnPlanetSelected registers a listener; the returned func unsubscribes it.
func (b *Bus) OnPlanetSelected(fn func(PlanetSelected)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.selSubs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.selSubs, id)
		b.mu.Unlock()
	}
}

// OnTransitDetected registers a listener; the returned func unsubscribes it.
func (b *Bus) OnTransitDetected(fn func(TransitDetected)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.trSubs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.trSubs, id)
		b.mu.Unlock()
	}
}

// OnSeekRequest registers a listener; the returned func unsubscribes it.
func (b *Bus) OnSeekRequest(fn func(SeekRequest)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.seekSubs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.seekSubs, id)
		b.mu.Unlock()
	}
}

// PublishTimeChanged delivers to all time-changed listeners.
func (b *Bus) PublishTimeChanged(ev TimeChanged) {
	for _, fn := range b.snapshotTime() {
		fn(ev)
	}
}

// PublishPlanetSelected delivers to all planet-selected listeners.
func (b *Bus) PublishPlanetSelected(ev PlanetSelected) {
	for _, fn := range b.snapshotSel() {
		fn(ev)
	}
}

// PublishTransitDetected delivers to all transit-detected listeners.
func (b *Bus) PublishTransitDetected(ev TransitDetected) {
	for _, fn := range b.snapshotTransit() {
		fn(ev)
	}
}

// PublishSeekRequest delivers to all seek-request listeners.
func (b *Bus) PublishSeekRequest(ev SeekRequest) {
	for _, fn := range b.snapshotSeek() {
		fn(ev)
	}
}

// Listeners are invoked outside the lock so a subscriber may unsubscribe
// (or publish) from within its callback without deadlocking.

func (b *Bus) snapshotTime() []func(TimeChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(TimeChanged), 0, len(b.timeSubs))
	for i := 0; i < b.nextID; i++ {
		if fn, ok := b.timeSubs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (b *Bus) snapshotSel() []func(PlanetSelected) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(PlanetSelected), 0, len(b.selSubs))
	for i := 0; i < b.nextID; i++ {
		if fn, ok := b.selSubs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (b *Bus) snapshotTransit() []func(TransitDetected) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(TransitDetected), 0, len(b.trSubs))
	for i := 0; i < b.nextID; i++ {
		if fn, ok := b.trSubs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (b *Bus) snapshotSeek() []func(SeekRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(SeekRequest), 0, len(b.seekSubs))
	for i := 0; i < b.nextID; i++ {
		if fn, ok := b.seekSubs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}
