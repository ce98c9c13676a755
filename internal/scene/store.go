package scene

import (
	"sync/atomic"
	"time"
)

// Store provides thread-safe access to the active scene. The scene itself
// is immutable; replacing it swaps the pointer atomically so in-flight
// sessions keep the scene they started with.
type Store struct {
	current atomic.Pointer[loaded]
}

type loaded struct {
	scene    *Scene
	source   string
	loadedAt time.Time
}

// NewStore creates a store seeded with the given scene.
func NewStore(s *Scene, source string) *Store {
	st := &Store{}
	st.Set(s, source)
	return st
}

// Get returns the active scene, or nil if none has been loaded.
func (st *Store) Get() *Scene {
	if l := st.current.Load(); l != nil {
		return l.scene
	}
	return nil
}

// Source returns where the active scene came from ("demo", a file path, or
// "api") and when it was loaded.
func (st *Store) Source() (string, time.Time) {
	if l := st.current.Load(); l != nil {
		return l.source, l.loadedAt
	}
	return "", time.Time{}
}

// Set atomically replaces the active scene.
func (st *Store) Set(s *Scene, source string) {
	st.current.Store(&loaded{scene: s, source: source, loadedAt: time.Now()})
}
