// Package viewstate keeps per-visitor dashboard state between page renders:
// which history panels are expanded, their cached audit lists, the one-shot
// flash notice, and the single-action-in-flight guard.
package viewstate

import (
	"sync"
	"time"

	"github.com/remontpro/frontdesk/internal/models"
)

type State struct {
	mu         sync.Mutex
	pending    int64
	open       map[int64]bool
	history    map[int64][]models.AuditEvent
	flash      string
	errMsg     string
	masters    []models.MasterOption
	mastersSet bool
}

func newState() *State {
	return &State{
		open:    map[int64]bool{},
		history: map[int64][]models.AuditEvent{},
	}
}

// Begin claims the mutation slot for a request id. It refuses while another
// action is pending, so one visitor cannot double-submit; it is not a lock
// against other users.
func (s *State) Begin(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != 0 {
		return false
	}
	s.pending = id
	return true
}

func (s *State) End(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == id {
		s.pending = 0
	}
}

func (s *State) Pending() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Toggle flips a history panel and reports whether it is now open.
func (s *State) Toggle(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[id] = !s.open[id]
	return s.open[id]
}

func (s *State) IsOpen(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open[id]
}

// History returns the cached audit list for a request, if fetched before.
func (s *State) History(id int64) ([]models.AuditEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, ok := s.history[id]
	return events, ok
}

// PutHistory caches a fetched audit list. The list is append-only on the
// backend, so a cached copy stays valid until the request is mutated.
func (s *State) PutHistory(id int64, events []models.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[id] = events
}

// DropHistory invalidates a request's cached audit list. Called after a
// successful action so the next expansion picks up the new event.
func (s *State) DropHistory(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, id)
}

// SetFlash stores a one-shot notice shown on the next page render.
func (s *State) SetFlash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = msg
}

// TakeFlash returns the notice and clears it; a refresh sees nothing.
func (s *State) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

// Masters returns the cached assignment roster, fetched once per session.
func (s *State) Masters() ([]models.MasterOption, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.masters, s.mastersSet
}

func (s *State) PutMasters(masters []models.MasterOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masters = masters
	s.mastersSet = true
}

// SetError stores a one-shot failure banner for the next render. A failed
// action surfaces there without touching the rest of the listing.
func (s *State) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

func (s *State) TakeError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.errMsg
	s.errMsg = ""
	return msg
}

// Visitor ids come from a client-controlled cookie, so the registry must not
// trust them to ever come back. Idle states are evicted on access.
const registryTTL = 24 * time.Hour

// Registry holds one State per visitor id.
type Registry struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]*registryEntry
}

type registryEntry struct {
	state    *State
	lastSeen time.Time
}

func NewRegistry() *Registry {
	return &Registry{ttl: registryTTL, states: map[string]*registryEntry{}}
}

// Get returns the visitor's state, creating it on first sight and sweeping
// entries not seen within the TTL.
func (r *Registry) Get(visitorID string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, e := range r.states {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.states, id)
		}
	}
	e, ok := r.states[visitorID]
	if !ok {
		e = &registryEntry{state: newState()}
		r.states[visitorID] = e
	}
	e.lastSeen = now
	return e.state
}

// Drop discards a visitor's state, used at logout.
func (r *Registry) Drop(visitorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, visitorID)
}
