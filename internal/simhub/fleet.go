package simhub

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FerryCalvin/antam-autoq/internal/model"
	"github.com/FerryCalvin/antam-autoq/pkg/logger"
)

var ErrNodeNotFound = errors.New("simhub: node not found")

const (
	statusReady   = "Ready"
	statusHunting = "Hunting"
	statusSecured = "Ticket Secured"

	huntInterval = 2 * time.Second
	quotaWindow  = 15 * time.Second
)

// Notifier delivers out-of-band success alerts. Nil is fine.
type Notifier interface {
	Alert(text string)
}

// Fleet is the in-memory node registry plus one fake hunting loop per
// active node. It mirrors the real backend's observable behavior: the
// same broadcast strings, the same status messages, and ticket files
// appearing when a simulated booking lands.
type Fleet struct {
	logger   *zap.Logger
	hub      *Hub
	tickets  *TicketStore
	notifier Notifier
	rnd      *rand.Rand
	hunt     time.Duration

	mu        sync.Mutex
	nextID    int64
	nodes     map[int64]*nodeState
	openUntil map[string]time.Time
}

type nodeState struct {
	node     model.Node
	password string
	cancel   context.CancelFunc
}

func NewFleet(hub *Hub, tickets *TicketStore, notifier Notifier, logger *zap.Logger) *Fleet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fleet{
		logger:    logger,
		hub:       hub,
		tickets:   tickets,
		notifier:  notifier,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		hunt:      huntInterval,
		nodes:     make(map[int64]*nodeState),
		openUntil: make(map[string]time.Time),
	}
}

// List returns all nodes ordered by id.
func (f *Fleet) List() []model.Node {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.Node, 0, len(f.nodes))
	for _, state := range f.nodes {
		out = append(out, state.node)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create registers a node in Ready state and broadcasts the addition.
func (f *Fleet) Create(req model.CreateNodeRequest) model.Node {
	f.mu.Lock()
	f.nextID++
	node := model.Node{
		ID:             f.nextID,
		FullName:       strings.TrimSpace(req.FullName),
		NIK:            strings.TrimSpace(req.NIK),
		Phone:          strings.TrimSpace(req.Phone),
		Email:          strings.TrimSpace(req.Email),
		TargetLocation: strings.TrimSpace(req.TargetLocation),
		TargetDate:     strings.TrimSpace(req.TargetDate),
		Proxy:          strings.TrimSpace(req.Proxy),
		IsActive:       false,
		StatusMessage:  statusReady,
	}
	f.nodes[node.ID] = &nodeState{node: node, password: req.Password}
	f.mu.Unlock()

	f.logger.Info("node created", logger.SanitizeFields([]zap.Field{
		zap.Int64("id", node.ID),
		zap.String("full_name", node.FullName),
		zap.String("nik", node.NIK),
		zap.String("target_location", node.TargetLocation),
		zap.String("target_date", node.TargetDate),
	})...)
	f.hub.Broadcast(fmt.Sprintf("[System] ⚙️ Added new node: %s", node.FullName))
	return node
}

// Delete stops a node's bot if running and removes it.
func (f *Fleet) Delete(id int64) error {
	f.mu.Lock()
	state, ok := f.nodes[id]
	if !ok {
		f.mu.Unlock()
		return ErrNodeNotFound
	}
	if state.cancel != nil {
		state.cancel()
		state.cancel = nil
		metricActiveBots.Dec()
	}
	name := state.node.FullName
	delete(f.nodes, id)
	f.mu.Unlock()

	f.hub.Broadcast(fmt.Sprintf("[System] 🗑️ Deleted node: %s", name))
	return nil
}

// Start launches the hunting loop for a node. Starting an already
// active node broadcasts a warning and succeeds, matching the real
// backend's tolerant semantics.
func (f *Fleet) Start(id int64) error {
	f.mu.Lock()
	state, ok := f.nodes[id]
	if !ok {
		f.mu.Unlock()
		return ErrNodeNotFound
	}
	if state.cancel != nil {
		f.mu.Unlock()
		f.hub.Broadcast(fmt.Sprintf("[Node %d] Warning: Node is already running.", id))
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	state.cancel = cancel
	state.node.IsActive = true
	state.node.StatusMessage = statusHunting
	snapshot := state.node
	f.mu.Unlock()

	metricActiveBots.Inc()
	f.hub.Broadcast(fmt.Sprintf("[Node %d] 🟢 Starting Bot for %s targeting %s",
		id, snapshot.FullName, snapshot.TargetLocation))

	go f.runBot(ctx, id, snapshot)
	return nil
}

// Stop cancels a node's hunting loop. Stopping an idle node is not an
// error; the backend just reports it.
func (f *Fleet) Stop(id int64) error {
	f.mu.Lock()
	state, ok := f.nodes[id]
	if !ok {
		f.mu.Unlock()
		return ErrNodeNotFound
	}
	if state.cancel == nil {
		f.mu.Unlock()
		f.hub.Broadcast(fmt.Sprintf("[Node %d] Not currently running.", id))
		return nil
	}
	state.cancel()
	state.cancel = nil
	state.node.IsActive = false
	state.node.StatusMessage = statusReady
	f.mu.Unlock()

	metricActiveBots.Dec()
	f.hub.Broadcast(fmt.Sprintf("[Node %d] 🔴 Bot task manually stopped.", id))
	return nil
}

// OpenQuota marks a location's quota as open for a short window and
// announces it. Called by the cron-driven quota checker.
func (f *Fleet) OpenQuota(location string, slots int) {
	f.mu.Lock()
	f.openUntil[location] = time.Now().Add(quotaWindow)
	f.mu.Unlock()

	f.hub.Broadcast(fmt.Sprintf("[System] 🟢 SLOT OPEN! Quota: %d at %s",
		slots, model.LocationName(location)))
}

// HuntedLocations lists the distinct target locations of currently
// hunting nodes, for the quota checker to pick from.
func (f *Fleet) HuntedLocations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]struct{})
	out := make([]string, 0, len(f.nodes))
	for _, state := range f.nodes {
		if state.cancel == nil {
			continue
		}
		if _, dup := seen[state.node.TargetLocation]; dup {
			continue
		}
		seen[state.node.TargetLocation] = struct{}{}
		out = append(out, state.node.TargetLocation)
	}
	sort.Strings(out)
	return out
}

// OpenRandomQuota opens quota for one randomly chosen hunted location.
// No-op while nothing is hunting. Runs under the cron scheduler.
func (f *Fleet) OpenRandomQuota() {
	locations := f.HuntedLocations()
	if len(locations) == 0 {
		return
	}

	f.mu.Lock()
	location := locations[f.rnd.Intn(len(locations))]
	slots := 1 + f.rnd.Intn(5)
	f.mu.Unlock()

	f.OpenQuota(location, slots)
}

func (f *Fleet) quotaOpen(location string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Now().Before(f.openUntil[location])
}

// runBot is the fake hunting loop. It polls quota on a fixed cadence
// and, once the quota window for its location opens, races to secure
// a ticket. On success it writes the artifact, reports, and retires
// the node.
func (f *Fleet) runBot(ctx context.Context, id int64, node model.Node) {
	ticker := time.NewTicker(f.hunt)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !f.quotaOpen(node.TargetLocation) {
			f.hub.Broadcast(fmt.Sprintf("[Node %d] ⏳ Checking quota for %s (%s)...",
				id, node.TargetLocation, node.TargetDate))
			continue
		}

		f.hub.Broadcast(fmt.Sprintf("[Node %d] 🟢 Slot found! Submitting booking for %s...",
			id, node.FullName))

		// The real sniper loses races against other hunters sometimes.
		if f.roll() < 0.3 {
			f.hub.Broadcast(fmt.Sprintf("[Node %d] 🔴 Booking failed: slot taken. Retrying...", id))
			continue
		}

		filename := ticketFilename(node)
		if err := f.tickets.Write(filename); err != nil {
			f.logger.Warn("write ticket failed", zap.String("filename", filename), zap.Error(err))
			f.hub.Broadcast(fmt.Sprintf("[Node %d] 🔴 Critical Error: %v", id, err))
			continue
		}
		metricTicketsSaved.Inc()

		f.hub.Broadcast(fmt.Sprintf("[Node %d] 📸 Ticket Screenshot Saved: %s", id, filename))
		f.hub.Broadcast(fmt.Sprintf("[Node %d] 🟢 Success: ticket saved", id))

		if f.notifier != nil {
			f.notifier.Alert(fmt.Sprintf("🟢 Ticket secured for %s at %s (%s)",
				node.FullName, model.LocationName(node.TargetLocation), node.TargetDate))
		}

		f.retire(id)
		return
	}
}

// retire marks a node inactive after a successful booking. The bot's
// context is cancelled even though its loop is returning anyway, so
// the child context is released.
func (f *Fleet) retire(id int64) {
	f.mu.Lock()
	state, ok := f.nodes[id]
	if ok && state.cancel != nil {
		state.cancel()
		state.cancel = nil
		state.node.IsActive = false
		state.node.StatusMessage = statusSecured
		metricActiveBots.Dec()
	}
	f.mu.Unlock()
}

func (f *Fleet) roll() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rnd.Float64()
}

func ticketFilename(node model.Node) string {
	safeName := strings.ReplaceAll(strings.TrimSpace(node.FullName), " ", "_")
	safeDate := strings.ReplaceAll(node.TargetDate, "-", "")
	return fmt.Sprintf("TICKET_%s_%s_%s.png", safeName, safeDate, node.TargetLocation)
}
