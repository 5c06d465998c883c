// Package tui provides an interactive chat view over the knowledge
// base.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driving"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	confidenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// exchange is one question/answer pair in the transcript.
type exchange struct {
	question string
	answer   *domain.Answer
	err      string
}

// askResultMsg carries the outcome of an ask back into the update loop.
type askResultMsg struct {
	question string
	answer   *domain.Answer
	err      error
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	answers driving.AnswerService
	topK    int

	input   textinput.Model
	spinner spinner.Model

	transcript []exchange
	waiting    bool
	width      int
}

// New creates a chat model asking with the given topK.
func New(answers driving.AnswerService, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if topK <= 0 {
		topK = 5
	}

	return Model{
		answers: answers,
		topK:    topK,
		input:   ti,
		spinner: sp,
		width:   80,
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and ask-result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter && !m.waiting {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.waiting = true
			return m, tea.Batch(m.askCmd(question), m.spinner.Tick)
		}

	case askResultMsg:
		m.waiting = false
		entry := exchange{question: msg.question, answer: msg.answer}
		if msg.err != nil {
			entry.err = msg.err.Error()
		}
		m.transcript = append(m.transcript, entry)
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// askCmd runs the ask off the update loop.
func (m Model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.answers.Ask(context.Background(), question, m.topK)
		return askResultMsg{question: question, answer: answer, err: err}
	}
}

// View renders the transcript, the input box, and the status line.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("kbase chat"))
	b.WriteString("\n\n")

	for _, entry := range m.transcript {
		b.WriteString(questionStyle.Render("You: " + entry.question))
		b.WriteString("\n")
		if entry.err != "" {
			b.WriteString(errorStyle.Render("Error: " + entry.err))
		} else {
			b.WriteString(answerStyle.Render(entry.answer.AnswerText))
			b.WriteString("\n")
			b.WriteString(confidenceStyle.Render(fmt.Sprintf("confidence: %.2f", entry.answer.Confidence)))
			if len(entry.answer.Sources) > 0 {
				b.WriteString("\n")
				b.WriteString(sourceStyle.Render("sources: " + sourceList(entry.answer.Sources)))
			}
		}
		b.WriteString("\n\n")
	}

	if m.waiting {
		b.WriteString(m.spinner.View())
		b.WriteString(" thinking...\n\n")
	}

	b.WriteString(inputBoxStyle.Width(m.width - 4).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render("enter: ask • esc: quit"))
	return b.String()
}

// sourceList renders the distinct source file names in retrieval order.
func sourceList(sources []domain.SearchResult) string {
	seen := make(map[string]struct{}, len(sources))
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		if _, ok := seen[s.FileName]; ok {
			continue
		}
		seen[s.FileName] = struct{}{}
		names = append(names, s.FileName)
	}
	return strings.Join(names, ", ")
}

// Run starts the chat program and blocks until the user quits.
func Run(answers driving.AnswerService, topK int) error {
	_, err := tea.NewProgram(New(answers, topK), tea.WithAltScreen()).Run()
	return err
}
