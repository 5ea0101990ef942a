package main

import (
	"strings"
	"sync"
)

// screenState is everything one admin screen holds for one session: the cached
// collection with its derived list view, the modal state machine, the submit
// guard, and the fetch generation counter. The generation counter makes a
// response from a superseded fetch provably discardable instead of silently
// overwriting newer state.
type screenState[T any] struct {
	mu         sync.Mutex
	view       *listView[T]
	modal      *modalState
	guard      submitGuard
	id         func(T) string
	generation uint64
	loaded     bool
	loadError  string
}

func newScreenState[T any](pageSize int, match func(T, string) bool, id func(T) string) *screenState[T] {
	return &screenState[T]{
		view:  newListView(pageSize, match),
		modal: newModalState(),
		id:    id,
	}
}

// beginFetch invalidates any in-flight fetch and returns the token the new
// fetch must present to completeFetch.
func (s *screenState[T]) beginFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// completeFetch applies a fetch result if and only if it belongs to the
// current generation. Stale results report false and change nothing.
func (s *screenState[T]) completeFetch(generation uint64, items []T, fetchErr error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	if fetchErr != nil {
		s.loaded = false
		s.loadError = fetchErr.Error()
		return true
	}
	s.view.SetItems(items)
	s.loaded = true
	s.loadError = ""
	return true
}

func (s *screenState[T]) isLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *screenState[T]) lastLoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadError
}

func (s *screenState[T]) setQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.SetQuery(query)
}

func (s *screenState[T]) goTo(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.GoTo(page)
}

func (s *screenState[T]) next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Next()
}

func (s *screenState[T]) prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Prev()
}

// snapshot copies the visible rows under the lock; with an empty query the
// derived slice aliases the cache, and the renderer reads it after the lock
// is released.
func (s *screenState[T]) snapshot() ([]T, pageInfo, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := s.view.Visible()
	out := make([]T, len(visible))
	copy(out, visible)
	return out, s.view.Page(), s.view.Query()
}

func (s *screenState[T]) items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.view.items))
	copy(out, s.view.items)
	return out
}

// find returns the cached record with the given id.
func (s *screenState[T]) find(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	for _, item := range s.view.items {
		if s.id(item) == id {
			return item, true
		}
	}
	return zero, false
}

// upsert patches a record in place on successful update, or appends it on
// create. The current page and query are preserved; only wholesale
// replacement resets pagination.
func (s *screenState[T]) upsert(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id(item)
	for i, existing := range s.view.items {
		if s.id(existing) == id {
			s.view.items[i] = item
			return
		}
	}
	s.view.items = append(s.view.items, item)
}

// remove drops exactly the record with the given id from the cache; the
// filtered and visible slices are derived, so it disappears from them too.
func (s *screenState[T]) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.view.items {
		if s.id(existing) == id {
			s.view.items = append(s.view.items[:i], s.view.items[i+1:]...)
			return true
		}
	}
	return false
}

// openModal and closeModal expose the state machine under the screen lock.
func (s *screenState[T]) openModal(kind modalKind, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modal.Open(kind, targetID)
}

func (s *screenState[T]) closeModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal.Close()
}

func (s *screenState[T]) modalSnapshot() (modalKind, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modal.Kind(), s.modal.TargetID()
}

// screenRegistry hands out one screenState per session key.
type screenRegistry[T any] struct {
	mu       sync.Mutex
	screens  map[string]*screenState[T]
	pageSize int
	match    func(T, string) bool
	id       func(T) string
}

func newScreenRegistry[T any](pageSize int, match func(T, string) bool, id func(T) string) *screenRegistry[T] {
	return &screenRegistry[T]{
		screens:  make(map[string]*screenState[T]),
		pageSize: pageSize,
		match:    match,
		id:       id,
	}
}

func (r *screenRegistry[T]) forSession(sessionKey string) *screenState[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.screens[sessionKey]; ok {
		return state
	}
	state := newScreenState(r.pageSize, r.match, r.id)
	r.screens[sessionKey] = state
	return state
}

// drop discards a session's screen state, e.g. on logout.
func (r *screenRegistry[T]) drop(sessionKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.screens, sessionKey)
}

// dropPrefix discards every screen whose key starts with prefix. The bookings
// registry keys screens per session and company, so logout drops them all at
// once.
func (r *screenRegistry[T]) dropPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.screens {
		if strings.HasPrefix(key, prefix) {
			delete(r.screens, key)
		}
	}
}
