// Package ui is an interactive task browser built on Bubble Tea. It shows
// the task list with the current suggestion highlighted and drives the same
// engine operations as the CLI commands.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/njbennett/knecht/internal/scheduler"
)

type tasksLoadedMsg struct {
	tasks     []*scheduler.Task
	suggested *scheduler.Task
}

type actionMsg struct {
	status string
}

type errMsg struct {
	err error
}

// Model is the root Bubble Tea model.
type Model struct {
	engine *scheduler.Engine

	tasks     []*scheduler.Task
	suggested *scheduler.Task
	cursor    int
	showAll   bool
	detail    bool
	status    string
	err       error

	keys   keyMap
	help   help.Model
	width  int
	height int
}

// New creates the task browser model.
func New(engine *scheduler.Engine) Model {
	return Model{
		engine: engine,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

// Init loads the initial task list.
func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	engine, showAll := m.engine, m.showAll
	return func() tea.Msg {
		ctx := context.Background()
		tasks, err := engine.List(ctx, showAll)
		if err != nil {
			return errMsg{err}
		}
		suggested, err := engine.SuggestNext(ctx)
		if err != nil {
			// A broken graph should not take the whole browser down;
			// the list stays usable without a suggestion.
			suggested = nil
		}
		return tasksLoadedMsg{tasks: tasks, suggested: suggested}
	}
}

func (m Model) runAction(verb string, op func(context.Context, string) (*scheduler.Task, error)) tea.Cmd {
	if len(m.tasks) == 0 {
		return nil
	}
	id := m.tasks[m.cursor].ID
	return func() tea.Msg {
		task, err := op(context.Background(), id)
		if err != nil {
			return errMsg{err}
		}
		return actionMsg{status: fmt.Sprintf("%s task-%s: %s", verb, task.ID, task.Title)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tasksLoadedMsg:
		m.tasks = msg.tasks
		m.suggested = msg.suggested
		m.err = nil
		if m.cursor >= len(m.tasks) {
			m.cursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case actionMsg:
		m.status = msg.status
		m.err = nil
		return m, m.load()

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Details):
			m.detail = !m.detail
		case key.Matches(msg, m.keys.All):
			m.showAll = !m.showAll
			return m, m.load()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Start):
			return m, m.runAction("Started", m.engine.Claim)
		case key.Matches(msg, m.keys.Deliver):
			return m, m.runAction("Delivered", m.engine.Deliver)
		case key.Matches(msg, m.keys.Done):
			return m, m.runAction("Completed", m.engine.Complete)
		}
	}
	return m, nil
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("knecht"))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString("No open tasks\n")
	}
	for i, task := range m.tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = styleCursor.Render("> ")
		}
		line := fmt.Sprintf("%s task-%s  %s", checkbox(task), task.ID, task.Title)
		if task.Pain > 0 {
			line += stylePain.Render(fmt.Sprintf(" (pain count: %d)", task.Pain))
		}
		if m.suggested != nil && task.ID == m.suggested.ID {
			line += styleSuggested.Render("  ← next")
		}
		if task.Status.Closed() {
			line = styleClosed.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	if m.detail && len(m.tasks) > 0 {
		b.WriteString("\n" + styleDetailBorder.Render(detailView(m.tasks[m.cursor])) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + styleError.Render("Error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + styleStatus.Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func checkbox(t *scheduler.Task) string {
	if t.Status == scheduler.StatusDone {
		return "[x]"
	}
	return "[ ]"
}

func detailView(t *scheduler.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", t.Status)
	fmt.Fprintf(&b, "Title: %s", t.Title)
	if t.Description != "" {
		fmt.Fprintf(&b, "\nDescription: %s", t.Description)
	}
	if t.Acceptance != "" {
		fmt.Fprintf(&b, "\nAcceptance Criteria: %s", t.Acceptance)
	}
	return b.String()
}

// Run starts the program on the terminal.
func Run(engine *scheduler.Engine) error {
	_, err := tea.NewProgram(New(engine), tea.WithAltScreen()).Run()
	return err
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
