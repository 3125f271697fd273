// Package tui is a full-screen chat over one chat.Service.
package tui

import (
	"context"
	"strings"
	"time"

	"clima/internal/chat"
	"clima/internal/slots"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const turnTimeout = 2 * time.Minute

var (
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1).
			Bold(true)

	windowStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

type replyMsg struct{ text string }

type entry struct {
	who  string // "user", "bot" or "note"
	text string
}

// Model is the bubbletea model of the chat screen.
type Model struct {
	service  *chat.Service
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	entries  []entry
	waiting  bool
	quitting bool
}

func NewModel(service *chat.Service) Model {
	ti := textinput.New()
	ti.Placeholder = "Pergunte sobre o clima de uma estação..."
	ti.Prompt = "› "
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = botStyle

	return Model{
		service:  service,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		entries:  []entry{{who: "bot", text: chat.Welcome}},
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-8, 5)
		m.input.Width = max(msg.Width-8, 10)
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+l":
			m.clear()
			return m, nil
		case "enter":
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				return m, nil
			}
			quit, handled := m.command(text)
			if quit {
				m.quitting = true
				return m, tea.Quit
			}
			if handled {
				return m, nil
			}
			m.entries = append(m.entries, entry{who: "user", text: text})
			m.waiting = true
			m.refresh()
			return m, tea.Batch(m.send(text), m.spinner.Tick)
		}

	case replyMsg:
		m.waiting = false
		m.entries = append(m.entries, entry{who: "bot", text: msg.text})
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// command handles the slash commands. It reports whether the program
// should quit and whether text was a command at all.
func (m *Model) command(text string) (quit, handled bool) {
	switch strings.ToLower(text) {
	case "/sair", "/exit":
		return true, true
	case "/limpar", "/clear":
		m.clear()
		return false, true
	case "/contexto":
		summary := "Nenhum pedido anterior."
		if req := m.service.Context(); req != nil {
			summary = slots.Summary(req)
		}
		m.entries = append(m.entries, entry{who: "note", text: summary})
		m.refresh()
		return false, true
	}
	return false, false
}

func (m *Model) clear() {
	m.service.Clear()
	m.entries = []entry{{who: "note", text: "conversa limpa"}, {who: "bot", text: chat.Welcome}}
	m.refresh()
}

func (m Model) send(text string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		return replyMsg{text: service.Send(ctx, text)}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m Model) transcript() string {
	wrap := lipgloss.NewStyle().Width(max(m.viewport.Width-2, 10))
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch e.who {
		case "user":
			b.WriteString(userStyle.Render("Você") + "\n")
			b.WriteString(wrap.Render(e.text))
		case "bot":
			b.WriteString(botStyle.Render("Clima") + "\n")
			b.WriteString(wrap.Render(e.text))
		default:
			b.WriteString(noteStyle.Render(e.text))
		}
	}
	return b.String()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(" Clima ") + "\n")
	s.WriteString(windowStyle.Render(m.viewport.View()) + "\n")
	if m.waiting {
		s.WriteString(m.spinner.View() + " consultando...\n")
	} else {
		s.WriteString(m.input.View() + "\n")
	}
	s.WriteString(helpStyle.Render("enter: enviar • ctrl+l: limpar • /contexto • esc: sair"))
	return s.String()
}

// Run blocks until the user quits.
func Run(service *chat.Service) error {
	p := tea.NewProgram(NewModel(service), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
