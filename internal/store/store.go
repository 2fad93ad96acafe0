// Package store holds the console's authoritative in-memory view of
// the fleet: the node collection, the ticket collection, and the live
// event log. It is the only place other components mutate state
// through, and every mutation replaces or appends — nothing here ever
// infers state the server did not report.
package store

import (
	"sync"

	"github.com/FerryCalvin/antam-autoq/internal/model"
)

const defaultEventCapacity = 2000

// Store is the reconciled view store. Snapshots replace their
// collection wholesale; events append in arrival order into a bounded
// ring that evicts strictly oldest-first.
type Store struct {
	mu      sync.RWMutex
	nodes   []model.Node
	tickets []model.Ticket

	events   []string
	capacity int
	next     int
	count    int

	watch chan struct{}
}

// New creates a Store with the given event-log capacity. A capacity
// of zero or less falls back to the default.
func New(eventCapacity int) *Store {
	if eventCapacity <= 0 {
		eventCapacity = defaultEventCapacity
	}
	return &Store{
		events:   make([]string, eventCapacity),
		capacity: eventCapacity,
		watch:    make(chan struct{}, 1),
	}
}

// ReplaceNodes swaps the node collection for the supplied snapshot.
// No merging with prior state happens; the server's return order is
// preserved.
func (s *Store) ReplaceNodes(nodes []model.Node) {
	cloned := append([]model.Node(nil), nodes...)

	s.mu.Lock()
	s.nodes = cloned
	s.mu.Unlock()
	s.notify()
}

// ReplaceTickets swaps the ticket collection for the supplied snapshot.
func (s *Store) ReplaceTickets(tickets []model.Ticket) {
	cloned := append([]model.Ticket(nil), tickets...)

	s.mu.Lock()
	s.tickets = cloned
	s.mu.Unlock()
	s.notify()
}

// AppendEvent records one raw log line at the tail of the event log.
// When the ring is full the oldest line is evicted.
func (s *Store) AppendEvent(line string) {
	s.mu.Lock()
	s.events[s.next] = line
	s.next = (s.next + 1) % s.capacity
	if s.count < s.capacity {
		s.count++
	}
	s.mu.Unlock()
	s.notify()
}

// ClearEvents empties the event log. Node and ticket collections are
// untouched.
func (s *Store) ClearEvents() {
	s.mu.Lock()
	s.next = 0
	s.count = 0
	s.mu.Unlock()
	s.notify()
}

// Nodes returns a copy of the current node collection.
func (s *Store) Nodes() []model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Node(nil), s.nodes...)
}

// Tickets returns a copy of the current ticket collection.
func (s *Store) Tickets() []model.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Ticket(nil), s.tickets...)
}

// Events returns the event log oldest-first.
func (s *Store) Events() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventsLocked()
}

// Snapshot is a consistent read of all three collections at once.
type Snapshot struct {
	Nodes   []model.Node
	Tickets []model.Ticket
	Events  []string
}

// View returns a snapshot of everything under one lock acquisition.
func (s *Store) View() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Nodes:   append([]model.Node(nil), s.nodes...),
		Tickets: append([]model.Ticket(nil), s.tickets...),
		Events:  s.eventsLocked(),
	}
}

// Watch exposes a coalescing change signal: at most one pending tick
// regardless of how many mutations landed since the last receive.
func (s *Store) Watch() <-chan struct{} {
	return s.watch
}

func (s *Store) notify() {
	select {
	case s.watch <- struct{}{}:
	default:
	}
}

func (s *Store) eventsLocked() []string {
	if s.count == 0 {
		return nil
	}
	out := make([]string, 0, s.count)
	start := s.next - s.count
	if start < 0 {
		start += s.capacity
	}
	for i := 0; i < s.count; i++ {
		out = append(out, s.events[(start+i)%s.capacity])
	}
	return out
}
