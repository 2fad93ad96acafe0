package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/FerryCalvin/antam-autoq/internal/logview"
	"github.com/FerryCalvin/antam-autoq/internal/model"
	"github.com/FerryCalvin/antam-autoq/internal/stream"
)

const (
	nodePaneRatio = 0.45
	chromeHeight  = 4
)

// layout recomputes pane dimensions after a terminal resize.
func (m *Model) layout() {
	logWidth := m.width - m.nodePaneWidth() - 6
	logHeight := m.height - chromeHeight - 2
	if logWidth < 10 {
		logWidth = 10
	}
	if logHeight < 3 {
		logHeight = 3
	}
	m.logView.Width = logWidth
	m.logView.Height = logHeight
}

func (m *Model) nodePaneWidth() int {
	w := int(float64(m.width) * nodePaneRatio)
	if w < 30 {
		w = 30
	}
	return w
}

// refreshLog re-renders the event log into the viewport and follows
// the tail.
func (m *Model) refreshLog() {
	lines := make([]string, 0, len(m.snap.Events))
	for _, raw := range m.snap.Events {
		lines = append(lines, m.styles.logStyle(logview.Classify(raw)).Render(raw))
	}
	m.logView.SetContent(strings.Join(lines, "\n"))
	m.logView.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	title := m.styles.Title.Render("ANTAM AUTOQ — fleet console")

	var body string
	if m.form != nil {
		body = m.viewForm()
	} else {
		nodes := m.styles.Pane.Width(m.nodePaneWidth()).Render(m.viewNodes())
		log := m.styles.Pane.Render(
			m.styles.PaneTitle.Render("Live Log") + "\n" + m.logView.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, nodes, log)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		m.viewStatusBar(),
		m.styles.Help.Render(m.helpLine()),
	)
}

func (m Model) viewNodes() string {
	var b strings.Builder
	b.WriteString(m.styles.PaneTitle.Render(fmt.Sprintf("Nodes (%d)", len(m.snap.Nodes))))
	b.WriteString("\n")

	if len(m.snap.Nodes) == 0 {
		b.WriteString(m.styles.RowIdle.Render("no nodes. press 'a' to add one."))
		return b.String()
	}

	for i, node := range m.snap.Nodes {
		style := m.styles.RowIdle
		if node.IsActive {
			style = m.styles.RowActive
		}
		marker := "  "
		if i == m.cursor {
			marker = "> "
			style = style.Inherit(m.styles.RowSelected)
		}
		row := fmt.Sprintf("%s#%d %s → %s %s [%s]",
			marker, node.ID, node.FullName,
			model.LocationName(node.TargetLocation), node.TargetDate,
			node.StatusMessage)
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.PaneTitle.Render(fmt.Sprintf("Tickets (%d)", len(m.snap.Tickets))))
	b.WriteString("\n")
	tickets := m.snap.Tickets
	if len(tickets) > 5 {
		tickets = tickets[len(tickets)-5:]
	}
	for _, ticket := range tickets {
		b.WriteString(m.styles.RowIdle.Render("  " + ticket.Filename))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewForm() string {
	var b strings.Builder
	b.WriteString(m.styles.PaneTitle.Render("Add Node"))
	b.WriteString("\n\n")
	for i := range m.form.inputs {
		b.WriteString(m.styles.FormLabel.Render(fieldLabels[i]))
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n")
	}
	if m.form.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.NoticeErr.Render(m.form.errMsg))
	}
	return m.styles.Pane.Width(m.width - 4).Render(b.String())
}

func (m Model) viewStatusBar() string {
	active := 0
	for _, node := range m.snap.Nodes {
		if node.IsActive {
			active++
		}
	}

	parts := []string{
		"link: " + m.linkLabel(),
		fmt.Sprintf("hunting: %d/%d", active, len(m.snap.Nodes)),
		fmt.Sprintf("tickets: %d", len(m.snap.Tickets)),
	}
	if m.notice != "" {
		style := m.styles.Notice
		if m.noticeErr {
			style = m.styles.NoticeErr
		}
		parts = append(parts, style.Render(m.notice))
	}
	return m.styles.StatusBar.Width(m.width).Render(strings.Join(parts, "  │  "))
}

func (m Model) linkLabel() string {
	if m.sub == nil {
		return "offline"
	}
	switch m.sub.State() {
	case stream.StateOpen:
		return "LIVE"
	case stream.StateRetryWait:
		return "retrying"
	default:
		return "connecting"
	}
}

func (m Model) helpLine() string {
	if m.form != nil {
		return "Enter next/submit · Tab/↑↓ move · Esc cancel"
	}
	return "a add · s start · x stop · d delete · S/X all · t save ticket · r refresh · c clear log · q quit"
}
