package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	elemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const historySize = 8

type interactiveModel struct {
	s       *session
	backend string
	input   textinput.Model
	history []string
}

func newInteractiveModel(s *session, backend string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "push:1"
	ti.Prompt = "> "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{s: s, backend: backend, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if cmd == "" {
				return m, nil
			}
			if cmd == "quit" || cmd == "q" {
				return m, tea.Quit
			}
			_ = m.s.run(cmd, func(step string, err error) {
				entry := resultStyle.Render(step)
				if err != nil {
					entry = errorStyle.Render(fmt.Sprintf("%s: %v", step, err))
				}
				m.history = append(m.history, entry)
			})
			if len(m.history) > historySize {
				m.history = m.history[len(m.history)-historySize:]
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Array Playground"))
	b.WriteString(" ")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%s backend, %d-byte elements", m.backend, m.s.elem)))
	b.WriteString("\n\n")

	vals, err := m.s.values()
	if err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	} else {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = fmt.Sprint(v)
		}
		b.WriteString(elemStyle.Render("[" + strings.Join(parts, " ") + "]"))
	}
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("size %d  capacity %d  data %#x",
		m.s.arr.Size(), m.s.arr.Capacity(), uint32(m.s.arr.Data()))))
	b.WriteString("\n\n")

	for _, h := range m.history {
		b.WriteString(h)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("push:v insert:i:v remove:i[:n] swap:i:j pop reverse shrink • enter run • esc quit"))
	return b.String()
}

func runInteractive(ctx context.Context, backend string, elem uint32) error {
	s, err := newSession(ctx, backend, elem)
	if err != nil {
		return err
	}
	defer s.Close()

	p := tea.NewProgram(newInteractiveModel(s, backend), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
