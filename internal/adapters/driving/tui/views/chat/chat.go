// Package chat provides the conversation view for one namespace.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
)

const (
	thinkingText     = "Thinking..."
	queryFailedLabel = "Query failed: "
)

// Role identifies who wrote a turn.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

// Turn is one message in a transcript.
type Turn struct {
	Role    Role
	Text    string
	Pending bool
	Failed  bool
}

// View is the chat view. It keeps one transcript per namespace for the
// lifetime of the process.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.ChatInput
	viewport  viewport.Model
	statusbar *status.Bar

	service driving.AskService
	ctx     context.Context

	namespace string
	histories map[string][]Turn

	width  int
	height int
}

// NewView creates a chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.AskService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetChatMode(true)

	v := &View{
		styles:    s,
		keymap:    km,
		input:     input.NewChatInput(s),
		viewport:  viewport.New(80, 18),
		statusbar: bar,
		service:   service,
		ctx:       context.Background(),
		histories: make(map[string][]Turn),
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// SetNamespace switches the conversation, restoring that namespace's transcript.
func (v *View) SetNamespace(namespace string) tea.Cmd {
	v.namespace = namespace
	v.input.Reset()
	v.statusbar.Clear()
	if v.hasPending(namespace) {
		v.statusbar.SetState(status.StateThinking)
	}
	v.refresh()
	return v.input.Focus()
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.AnswerReceived:
		v.resolve(msg)
		return v, nil

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Send):
			return v, v.submit()
		case keymap.Matches(msg.String(), v.keymap.ScrollUp),
			keymap.Matches(msg.String(), v.keymap.ScrollDown):
			var cmd tea.Cmd
			v.viewport, cmd = v.viewport.Update(msg)
			return v, cmd
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit records the question with a placeholder answer and starts the Ask.
func (v *View) submit() tea.Cmd {
	query := strings.TrimSpace(v.input.Value())
	if query == "" || v.namespace == "" {
		return nil
	}
	v.input.Reset()

	namespace := v.namespace
	v.histories[namespace] = append(v.histories[namespace],
		Turn{Role: RoleUser, Text: query},
		Turn{Role: RoleAssistant, Text: thinkingText, Pending: true},
	)
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	return func() tea.Msg {
		answer, err := v.service.Ask(v.ctx, domain.AskRequest{Namespace: namespace, Query: query})
		if err != nil {
			return messages.AnswerReceived{Namespace: namespace, Query: query, Err: err}
		}
		return messages.AnswerReceived{Namespace: namespace, Query: query, Answer: answer.Answer}
	}
}

// resolve replaces the oldest pending placeholder of the message's namespace.
func (v *View) resolve(msg messages.AnswerReceived) {
	turns := v.histories[msg.Namespace]
	for i := range turns {
		if !turns[i].Pending {
			continue
		}
		turns[i].Pending = false
		if msg.Err != nil {
			turns[i].Text = queryFailedLabel + msg.Err.Error()
			turns[i].Failed = true
		} else {
			turns[i].Text = msg.Answer
		}
		break
	}

	if msg.Namespace != v.namespace {
		return
	}
	switch {
	case v.hasPending(v.namespace):
		v.statusbar.SetState(status.StateThinking)
	case msg.Err != nil:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	default:
		v.statusbar.Clear()
	}
	v.refresh()
}

func (v *View) hasPending(namespace string) bool {
	for _, t := range v.histories[namespace] {
		if t.Pending {
			return true
		}
	}
	return false
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	turns := v.histories[v.namespace]
	if len(turns) == 0 {
		return v.styles.Muted.Render("Ask anything about " + v.namespace + ".")
	}

	wrap := lipgloss.NewStyle().Width(v.viewport.Width)
	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		var label, text string
		switch {
		case t.Role == RoleUser:
			label = v.styles.UserLabel.Render("You")
			text = v.styles.Normal.Render(t.Text)
		case t.Pending:
			label = v.styles.AssistantLabel.Render("pdfrag")
			text = v.styles.Thinking.Render(t.Text)
		case t.Failed:
			label = v.styles.AssistantLabel.Render("pdfrag")
			text = v.styles.Error.Render(t.Text)
		default:
			label = v.styles.AssistantLabel.Render("pdfrag")
			text = v.styles.Normal.Render(t.Text)
		}
		blocks = append(blocks, wrap.Render(label+"\n"+text))
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the header, transcript, input and status bar.
func (v *View) View() string {
	header := v.styles.Title.Render("pdfrag") + v.styles.Muted.Render("  "+v.namespace)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		v.viewport.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sizes the transcript to leave room for the header,
// the bordered input and the status bar.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-6, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Namespace returns the active namespace.
func (v *View) Namespace() string {
	return v.namespace
}

// History returns a copy of the transcript for namespace.
func (v *View) History(namespace string) []Turn {
	return append([]Turn(nil), v.histories[namespace]...)
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}
