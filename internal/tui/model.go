// Package tui is the terminal presentation adapter: it binds the abstract
// layout from internal/tree to styled terminal output and feeds key events
// back into the navigation controller.
//
// Components are single-threaded inside the bubbletea event loop; fetches
// run as commands and come back as messages carrying the navigation token,
// so a superseded response is dropped instead of winning the display.
package tui

import (
	"context"
	"errors"
	"fmt"

	"familytree/internal/client"
	"familytree/internal/domain"
	"familytree/internal/nav"
	"familytree/internal/tree"

	tea "github.com/charmbracelet/bubbletea"
)

// fetchedMsg reports the outcome of one family fetch.
type fetchedMsg struct {
	token uint64
	id    int64
	view  *domain.FamilyView
	err   error
}

// familiesMsg reports the outcome of the family list fetch.
type familiesMsg struct {
	refs []domain.FamilyRef
	err  error
}

// Model is the bubbletea model for the family tree browser.
type Model struct {
	api *client.Client
	nav *nav.Controller

	layout  tree.Layout
	targets []int64 // navigation targets by on-screen card number

	loading  bool
	errMsg   string
	showList bool
	families []domain.FamilyRef

	width int
}

func NewModel(api *client.Client, defaultFamilyID int64) Model {
	return Model{
		api:     api,
		nav:     nav.NewController(defaultFamilyID),
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	id := m.nav.DefaultID()
	return m.fetchCmd(m.nav.Open(id), id)
}

func (m Model) open(familyID int64) (Model, tea.Cmd) {
	token := m.nav.Open(familyID)
	m.loading = true
	m.showList = false
	return m, m.fetchCmd(token, familyID)
}

func (m Model) fetchCmd(token uint64, familyID int64) tea.Cmd {
	return func() tea.Msg {
		view, err := m.api.Family(context.Background(), familyID)
		return fetchedMsg{token: token, id: familyID, view: view, err: err}
	}
}

func (m Model) listCmd() tea.Cmd {
	return func() tea.Msg {
		refs, err := m.api.Families(context.Background())
		return familiesMsg{refs: refs, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case fetchedMsg:
		if !m.nav.Complete(msg.token, msg.id, msg.err) {
			// superseded by a later navigation
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = describeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.layout = tree.BuildLayout(msg.view)
		m.targets = collectTargets(m.layout)
		return m, nil

	case familiesMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = describeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.families = msg.refs
		m.showList = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "b":
		if token, id, ok := m.nav.Back(); ok {
			m.loading = true
			m.showList = false
			return m, m.fetchCmd(token, id)
		}
		return m, nil

	case "r":
		if token, id, ok := m.nav.Refresh(); ok {
			m.loading = true
			m.showList = false
			return m, m.fetchCmd(token, id)
		}
		return m, nil

	case "l":
		m.loading = true
		return m, m.listCmd()

	case "enter":
		if m.errMsg != "" {
			// retry on the known-good default family
			return m.open(m.nav.DefaultID())
		}
		return m, nil

	default:
		if n, ok := digitKey(key); ok {
			if m.showList {
				if n <= len(m.families) {
					return m.open(m.families[n-1].ID)
				}
				return m, nil
			}
			if n <= len(m.targets) {
				return m.open(m.targets[n-1])
			}
		}
		return m, nil
	}
}

func digitKey(key string) (int, bool) {
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return int(key[0] - '0'), true
	}
	return 0, false
}

// collectTargets numbers the clickable cards in display order: parents
// row first, then children.
func collectTargets(layout tree.Layout) []int64 {
	targets := []int64{}
	for _, c := range layout.Parents {
		if c.Clickable() {
			targets = append(targets, c.TargetFamilyID)
		}
	}
	for _, c := range layout.Children {
		if c.Clickable() {
			targets = append(targets, c.TargetFamilyID)
		}
	}
	return targets
}

func describeError(err error) string {
	switch {
	case errors.Is(err, client.ErrNotFound):
		return "Family not found."
	case errors.Is(err, client.ErrTransport):
		return "Cannot reach the server. Check that familytree-server is running."
	default:
		return fmt.Sprintf("Server error: %v", err)
	}
}
