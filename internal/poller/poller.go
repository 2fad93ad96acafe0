// Package poller periodically re-fetches the node and ticket
// snapshots and republishes them into the view store as wholesale
// replacements. Fetch failures are absorbed here: the previous
// snapshot stays untouched and nothing propagates to the operator.
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/FerryCalvin/antam-autoq/internal/model"
)

// DefaultTicketInterval is the cadence for the ticket snapshot. Nodes
// are re-fetched on demand after every mutating command instead of on
// a timer.
const DefaultTicketInterval = 10 * time.Second

type source interface {
	ListNodes(ctx context.Context) ([]model.Node, error)
	ListTickets(ctx context.Context) ([]model.Ticket, error)
}

type sink interface {
	ReplaceNodes(nodes []model.Node)
	ReplaceTickets(tickets []model.Ticket)
}

type Poller struct {
	source   source
	sink     sink
	logger   *zap.Logger
	interval time.Duration

	nodeKick   chan struct{}
	ticketKick chan struct{}
}

func New(src source, dst sink, ticketInterval time.Duration, logger *zap.Logger) *Poller {
	if ticketInterval <= 0 {
		ticketInterval = DefaultTicketInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		source:     src,
		sink:       dst,
		logger:     logger,
		interval:   ticketInterval,
		nodeKick:   make(chan struct{}, 1),
		ticketKick: make(chan struct{}, 1),
	}
}

// Run fetches both snapshots once up front, then serves the ticket
// ticker and on-demand refreshes until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.fetchNodes(ctx)
	p.fetchTickets(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchTickets(ctx)
		case <-p.nodeKick:
			p.fetchNodes(ctx)
		case <-p.ticketKick:
			p.fetchTickets(ctx)
		}
	}
}

// RefreshNodes requests an immediate node re-fetch. Safe to call from
// any goroutine; pending requests coalesce.
func (p *Poller) RefreshNodes() {
	select {
	case p.nodeKick <- struct{}{}:
	default:
	}
}

// RefreshTickets requests an immediate ticket re-fetch.
func (p *Poller) RefreshTickets() {
	select {
	case p.ticketKick <- struct{}{}:
	default:
	}
}

func (p *Poller) fetchNodes(ctx context.Context) {
	nodes, err := p.source.ListNodes(ctx)
	if err != nil {
		p.logger.Debug("node snapshot fetch failed, keeping previous", zap.Error(err))
		return
	}
	p.sink.ReplaceNodes(nodes)
}

func (p *Poller) fetchTickets(ctx context.Context) {
	tickets, err := p.source.ListTickets(ctx)
	if err != nil {
		p.logger.Debug("ticket snapshot fetch failed, keeping previous", zap.Error(err))
		return
	}
	p.sink.ReplaceTickets(tickets)
}
