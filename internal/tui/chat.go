// Package tui implements the interactive chat shell.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamaly87/codebase-qa/internal/agent"
	"github.com/jamaly87/codebase-qa/internal/search"
)

// Asker runs one conversation turn
type Asker interface {
	Invoke(ctx context.Context, state agent.ConversationState) agent.ConversationState
}

// answerMsg carries the state produced by a finished turn
type answerMsg struct {
	state agent.ConversationState
}

// Model is the Bubble Tea model for the chat shell
type Model struct {
	ctx        context.Context
	asker      Asker
	state      agent.ConversationState
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	transcript []string
	waiting    bool
	ready      bool
}

// New creates a chat model that sends questions to asker
func New(ctx context.Context, asker Asker) Model {
	ti := textinput.New()
	ti.Prompt = "You: "
	ti.Placeholder = "Ask about the codebase, or type exit"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		ctx:        ctx,
		asker:      asker,
		input:      ti,
		viewport:   viewport.New(0, 0),
		spinner:    sp,
		transcript: []string{headerStyle.Render(Banner)},
	}
}

// Init initializes the model (text input cursor blink)
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-ih-3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			if m.waiting {
				return m, nil
			}
			question := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if question == "" {
				return m, nil
			}
			if IsExit(question) {
				return m, tea.Quit
			}
			m.transcript = append(m.transcript, userStyle.Render("You: ")+question)
			m.waiting = true
			m.refresh()
			return m, tea.Batch(m.ask(question), m.spinner.Tick)
		}

	case answerMsg:
		m.waiting = false
		m.state = msg.state
		m.transcript = append(m.transcript, RenderTurn(msg.state))
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
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	state := m.state.WithUserMessage(question)
	return func() tea.Msg {
		return answerMsg{state: m.asker.Invoke(m.ctx, state)}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

// View renders the transcript above the input box
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	status := statusStyle.Render("enter to send, ctrl+c to quit")
	if m.waiting {
		status = m.spinner.View() + " thinking..."
	}
	return m.viewport.View() + "\n" + inputBoxStyle.Render(m.input.View()) + "\n" + status
}

// RenderTurn formats the answer and context preview of a finished turn
func RenderTurn(state agent.ConversationState) string {
	return agentStyle.Render("Agent: ") + state.LastAnswer() + "\n" +
		contextStyle.Render("Retrieved context:") + "\n" + search.FormatContext(state.RetrievedContext)
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	agentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	contextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
