// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// Turn is one question with its answer.
type Turn struct {
	Question string
	Answer   string
	Sources  []domain.Source
	Failed   bool
}

// View is the chat view: a transcript above a question input.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Input
	statusbar *status.Bar

	queryService driving.QueryService
	ctx          context.Context

	sessionID string
	turns     []Turn
	pending   string

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.ChatHelp())

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		statusbar:    bar,
		queryService: queryService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QuestionAsked:
		return v, v.ask(msg.Question)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(msg.String(), v.keymap.NewSession):
		v.NewSession()
		return v, nil
	case msg.Type == tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		cmd := v.ask(question)
		if cmd != nil {
			v.input.SetValue("")
		}
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask starts answering a question. Only one question is in flight at a time.
func (v *View) ask(question string) tea.Cmd {
	if question == "" || v.pending != "" {
		return nil
	}

	v.pending = question
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")

	svc := v.queryService
	ctx := v.ctx
	sessionID := v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoQueryService}
		}
		resp, err := svc.Query(ctx, question, sessionID)
		return messages.AnswerReceived{Question: question, Response: resp, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = ""
	turn := Turn{Question: msg.Question}

	switch {
	case msg.Err != nil:
		v.err = msg.Err
		turn.Answer = msg.Err.Error()
		turn.Failed = true
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	case msg.Response == nil:
		turn.Answer = "No answer returned."
		turn.Failed = true
		v.statusbar.SetState(status.StateError)
	default:
		if msg.Response.SessionID != "" {
			v.sessionID = msg.Response.SessionID
		}
		turn.Answer = msg.Response.Answer
		turn.Sources = msg.Response.Sources
		turn.Failed = msg.Response.Failed
		if turn.Failed {
			v.statusbar.SetState(status.StateError)
		} else {
			v.statusbar.SetState(status.StateReady)
		}
	}

	v.turns = append(v.turns, turn)
}

// NewSession forgets the transcript and starts a fresh conversation.
func (v *View) NewSession() {
	v.sessionID = ""
	v.turns = nil
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetMessage("New conversation")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	transcript := v.renderTranscript()
	// Keep the most recent lines when the transcript outgrows the window.
	if limit := v.height - 8; limit > 0 {
		lines := strings.Split(transcript, "\n")
		if len(lines) > limit {
			transcript = strings.Join(lines[len(lines)-limit:], "\n")
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("coursemate"),
		"",
		transcript,
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	)
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask anything about your indexed courses.")
	}

	width := v.width - 4
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for i, t := range v.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Question.Render("> " + t.Question))
		b.WriteString("\n")
		if t.Failed {
			b.WriteString(v.styles.Error.PaddingLeft(2).Width(width).Render(t.Answer))
		} else {
			b.WriteString(v.styles.Answer.Width(width).Render(t.Answer))
		}
		for _, src := range t.Sources {
			b.WriteString("\n")
			b.WriteString(v.styles.Source.Render(sourceLine(src)))
		}
	}

	if v.pending != "" {
		if len(v.turns) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Question.Render("> " + v.pending))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.PaddingLeft(2).Render("Thinking..."))
	}

	return b.String()
}

func sourceLine(src domain.Source) string {
	if src.Link == "" {
		return "- " + src.Label
	}
	return fmt.Sprintf("- %s (%s)", src.Label, src.Link)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// SessionID returns the current conversation session.
func (v *View) SessionID() string {
	return v.sessionID
}

// Turns returns the transcript.
func (v *View) Turns() []Turn {
	return v.turns
}

// Pending returns the question being answered, if any.
func (v *View) Pending() string {
	return v.pending
}

// Question returns the current input text.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the input text.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Focus focuses the question input.
func (v *View) Focus() tea.Cmd {
	return v.input.Focus()
}
