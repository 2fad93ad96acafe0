package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/FerryCalvin/antam-autoq/internal/model"
)

type fakeSource struct {
	mu      sync.Mutex
	nodes   []model.Node
	tickets []model.Ticket
	fail    bool

	nodeCalls   int
	ticketCalls int
}

func (s *fakeSource) ListNodes(context.Context) ([]model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeCalls++
	if s.fail {
		return nil, errors.New("backend down")
	}
	return append([]model.Node(nil), s.nodes...), nil
}

func (s *fakeSource) ListTickets(context.Context) ([]model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticketCalls++
	if s.fail {
		return nil, errors.New("backend down")
	}
	return append([]model.Ticket(nil), s.tickets...), nil
}

func (s *fakeSource) set(nodes []model.Node, tickets []model.Ticket, fail bool) {
	s.mu.Lock()
	s.nodes, s.tickets, s.fail = nodes, tickets, fail
	s.mu.Unlock()
}

func (s *fakeSource) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodeCalls, s.ticketCalls
}

type fakeSink struct {
	mu      sync.Mutex
	nodes   []model.Node
	tickets []model.Ticket

	nodeWrites   int
	ticketWrites int
}

func (s *fakeSink) ReplaceNodes(nodes []model.Node) {
	s.mu.Lock()
	s.nodes = nodes
	s.nodeWrites++
	s.mu.Unlock()
}

func (s *fakeSink) ReplaceTickets(tickets []model.Ticket) {
	s.mu.Lock()
	s.tickets = tickets
	s.ticketWrites++
	s.mu.Unlock()
}

func (s *fakeSink) state() ([]model.Node, []model.Ticket, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes, s.tickets, s.nodeWrites, s.ticketWrites
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestRunFetchesBothSnapshotsUpFront(t *testing.T) {
	src := &fakeSource{
		nodes:   []model.Node{{ID: 1}},
		tickets: []model.Ticket{{Filename: "TICKET_A.png"}},
	}
	dst := &fakeSink{}
	p := New(src, dst, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor(t, time.Second, func() bool {
		nodes, tickets, _, _ := dst.state()
		return len(nodes) == 1 && len(tickets) == 1
	})
}

func TestFetchFailureKeepsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{nodes: []model.Node{{ID: 1}}}
	dst := &fakeSink{}
	p := New(src, dst, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor(t, time.Second, func() bool {
		nodes, _, _, _ := dst.state()
		return len(nodes) == 1
	})

	src.set(nil, nil, true)
	p.RefreshNodes()

	waitFor(t, time.Second, func() bool {
		nodeCalls, _ := src.calls()
		return nodeCalls >= 2
	})

	nodes, _, nodeWrites, _ := dst.state()
	if len(nodes) != 1 || nodes[0].ID != 1 {
		t.Fatalf("failed fetch clobbered the snapshot: %+v", nodes)
	}
	if nodeWrites != 1 {
		t.Fatalf("failed fetch must not write to the sink, writes=%d", nodeWrites)
	}
}

func TestRefreshNodesTriggersImmediateFetch(t *testing.T) {
	src := &fakeSource{}
	dst := &fakeSink{}
	p := New(src, dst, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor(t, time.Second, func() bool {
		nodeCalls, _ := src.calls()
		return nodeCalls == 1
	})

	src.set([]model.Node{{ID: 5}}, nil, false)
	p.RefreshNodes()

	waitFor(t, time.Second, func() bool {
		nodes, _, _, _ := dst.state()
		return len(nodes) == 1 && nodes[0].ID == 5
	})
}

func TestTicketTickerRefetchesOnInterval(t *testing.T) {
	src := &fakeSource{}
	dst := &fakeSink{}
	p := New(src, dst, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor(t, time.Second, func() bool {
		_, ticketCalls := src.calls()
		return ticketCalls >= 3
	})

	nodeCalls, _ := src.calls()
	if nodeCalls != 1 {
		t.Fatalf("node snapshot must not be on the ticker, calls=%d", nodeCalls)
	}
}

func TestRefreshCoalescesWhileBusy(t *testing.T) {
	p := New(&fakeSource{}, &fakeSink{}, time.Hour, nil)

	// Not running: kicks must never block.
	for i := 0; i < 10; i++ {
		p.RefreshNodes()
		p.RefreshTickets()
	}
}
