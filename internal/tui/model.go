// Package tui is the operator console: a node table, the live event
// log, and an add-node form over the reconciled view store. All fleet
// mutations go through the panel API client; the store is read-only
// from here except for clearing the event log.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/FerryCalvin/antam-autoq/internal/model"
	"github.com/FerryCalvin/antam-autoq/internal/panelapi"
	"github.com/FerryCalvin/antam-autoq/internal/poller"
	"github.com/FerryCalvin/antam-autoq/internal/store"
	"github.com/FerryCalvin/antam-autoq/internal/stream"
)

// statusInterval drives the status bar refresh so the channel state
// stays current even when no events arrive.
const statusInterval = time.Second

type storeChangedMsg struct{}

type statusTickMsg struct{}

// actionDoneMsg reports one completed fleet mutation.
type actionDoneMsg struct {
	verb string
	err  error
}

// ticketSavedMsg reports a ticket download attempt.
type ticketSavedMsg struct {
	path string
	err  error
}

// Deps carries everything the console needs. Store and Client are
// required; Poller and Subscriber may be nil in tests.
type Deps struct {
	Store      *store.Store
	Client     *panelapi.Client
	Poller     *poller.Poller
	Subscriber *stream.Subscriber
	Logger     *zap.Logger
}

// Model is the top-level bubbletea model.
type Model struct {
	store  *store.Store
	client *panelapi.Client
	poll   *poller.Poller
	sub    *stream.Subscriber
	logger *zap.Logger
	keys   KeyMap
	styles Styles

	snap   store.Snapshot
	cursor int
	form   *nodeForm

	logView viewport.Model
	width   int
	height  int
	ready   bool

	notice    string
	noticeErr bool
}

func New(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		store:   deps.Store,
		client:  deps.Client,
		poll:    deps.Poller,
		sub:     deps.Subscriber,
		logger:  logger,
		keys:    DefaultKeyMap,
		styles:  DefaultStyles(),
		snap:    deps.Store.View(),
		logView: viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenStore(), statusTick())
}

// listenStore blocks on the store's coalescing change signal and turns
// each tick into a message. Re-armed after every storeChangedMsg.
func (m Model) listenStore() tea.Cmd {
	ch := m.store.Watch()
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

func statusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshLog()
		m.ready = true
		return m, nil

	case storeChangedMsg:
		m.snap = m.store.View()
		if m.cursor >= len(m.snap.Nodes) {
			m.cursor = max(0, len(m.snap.Nodes)-1)
		}
		m.refreshLog()
		return m, m.listenStore()

	case statusTickMsg:
		return m, statusTick()

	case actionDoneMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("%s failed: %v", msg.verb, msg.err)
			m.noticeErr = true
		} else {
			m.notice = msg.verb + " ok"
			m.noticeErr = false
		}
		return m, nil

	case ticketSavedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("save ticket failed: %v", msg.err)
			m.noticeErr = true
		} else {
			m.notice = "saved " + msg.path
			m.noticeErr = false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		if key.Matches(msg, m.keys.Cancel) {
			m.form = nil
			return m, nil
		}
		done, req, cmd := m.form.update(msg)
		if done {
			m.form = nil
			return m, m.createNodeCmd(req)
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Nodes)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.form = newNodeForm()
		return m, nil

	case key.Matches(msg, m.keys.Start):
		if node, ok := m.selected(); ok {
			return m, m.nodeActionCmd(fmt.Sprintf("start node %d", node.ID), node.ID, m.client.StartNode)
		}
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		if node, ok := m.selected(); ok {
			return m, m.nodeActionCmd(fmt.Sprintf("stop node %d", node.ID), node.ID, m.client.StopNode)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if node, ok := m.selected(); ok {
			return m, m.deleteNodeCmd(node.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.StartAll):
		return m, m.fleetActionCmd("start all", m.client.StartAll)

	case key.Matches(msg, m.keys.StopAll):
		return m, m.fleetActionCmd("stop all", m.client.StopAll)

	case key.Matches(msg, m.keys.Refresh):
		if m.poll != nil {
			m.poll.RefreshNodes()
			m.poll.RefreshTickets()
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearLog):
		m.store.ClearEvents()
		return m, nil

	case key.Matches(msg, m.keys.SaveTicket):
		return m, m.saveTicketCmd()
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m Model) selected() (model.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Nodes) {
		return model.Node{}, false
	}
	return m.snap.Nodes[m.cursor], true
}

// nodeActionCmd runs one command call off the event loop and kicks a
// node refresh on success so the store catches up without waiting for
// the next poll.
func (m Model) nodeActionCmd(verb string, id int64, call func(context.Context, int64) error) tea.Cmd {
	poll := m.poll
	return func() tea.Msg {
		err := call(context.Background(), id)
		if err == nil && poll != nil {
			poll.RefreshNodes()
		}
		return actionDoneMsg{verb: verb, err: err}
	}
}

// deleteNodeCmd removes the node. A 404 counts as success: the node is
// gone either way, e.g. on a double press before the next snapshot
// lands.
func (m Model) deleteNodeCmd(id int64) tea.Cmd {
	client, poll := m.client, m.poll
	return func() tea.Msg {
		err := client.DeleteNode(context.Background(), id)
		if errors.Is(err, panelapi.ErrNotFound) {
			err = nil
		}
		if err == nil && poll != nil {
			poll.RefreshNodes()
		}
		return actionDoneMsg{verb: fmt.Sprintf("delete node %d", id), err: err}
	}
}

// fleetActionCmd runs a bulk start/stop. The result map carries one
// entry per attempted node with a nil error on success, so only
// non-nil entries count as failures.
func (m Model) fleetActionCmd(verb string, call func(context.Context, []model.Node) map[int64]error) tea.Cmd {
	nodes := m.snap.Nodes
	poll := m.poll
	return func() tea.Msg {
		results := call(context.Background(), nodes)
		if poll != nil {
			poll.RefreshNodes()
		}
		failed := 0
		for _, err := range results {
			if err != nil {
				failed++
			}
		}
		if failed > 0 {
			return actionDoneMsg{verb: verb, err: fmt.Errorf("%d of %d node(s) failed", failed, len(results))}
		}
		return actionDoneMsg{verb: verb}
	}
}

func (m Model) createNodeCmd(req model.CreateNodeRequest) tea.Cmd {
	client, poll := m.client, m.poll
	return func() tea.Msg {
		node, err := client.CreateNode(context.Background(), req)
		if err != nil {
			return actionDoneMsg{verb: "add node", err: err}
		}
		if poll != nil {
			poll.RefreshNodes()
		}
		return actionDoneMsg{verb: fmt.Sprintf("add node %d", node.ID)}
	}
}

// saveTicketCmd downloads the newest ticket artifact into the working
// directory.
func (m Model) saveTicketCmd() tea.Cmd {
	if len(m.snap.Tickets) == 0 {
		return func() tea.Msg {
			return ticketSavedMsg{err: fmt.Errorf("no tickets available")}
		}
	}
	filename := m.snap.Tickets[len(m.snap.Tickets)-1].Filename
	client := m.client
	return func() tea.Msg {
		data, err := client.FetchTicket(context.Background(), filename)
		if err != nil {
			return ticketSavedMsg{err: err}
		}
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			return ticketSavedMsg{err: err}
		}
		return ticketSavedMsg{path: filename}
	}
}
