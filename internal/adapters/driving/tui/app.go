package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/views/namespaces"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	ctx   context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	namespacesView *namespaces.View
	chatView       *chat.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// helpReturn is the view to go back to when help closes.
	helpReturn messages.ViewType

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		namespacesView: namespaces.NewView(s, km, ports.Namespaces),
		chatView:       chat.NewView(s, km, ports.Ask),
		currentView:    messages.ViewNamespaces,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.namespacesView.WithContext(ctx)
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("pdfrag - Chat with your PDFs"),
		a.namespacesView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case messages.NamespacesLoaded:
		a.err = msg.Err
		a.namespacesView, cmd = a.namespacesView.Update(msg)
		return a, cmd

	case messages.NamespaceSelected:
		a.currentView = messages.ViewChat
		return a, a.chatView.SetNamespace(msg.Namespace)

	case messages.AnswerReceived:
		// Answers land in their own namespace's transcript even after
		// the user has moved on.
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewNamespaces:
		a.namespacesView, cmd = a.namespacesView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	key := msg.String()

	switch a.currentView {
	case messages.ViewNamespaces:
		if !a.namespacesView.Filtering() {
			switch {
			case keymap.Matches(key, a.keymap.Quit):
				return a, tea.Quit
			case keymap.Matches(key, a.keymap.Help):
				return a, a.switchTo(messages.ViewHelp)
			}
		}
		a.namespacesView, cmd = a.namespacesView.Update(msg)
		return a, cmd

	case messages.ViewChat:
		// Printable keys belong to the input, so only esc leaves the chat.
		if keymap.Matches(key, a.keymap.Back) {
			return a, a.switchTo(messages.ViewNamespaces)
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		switch {
		case keymap.Matches(key, a.keymap.Quit):
			return a, tea.Quit
		case keymap.Matches(key, a.keymap.Back), keymap.Matches(key, a.keymap.Help):
			return a, a.switchTo(a.helpReturn)
		}
	}
	return a, nil
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	if view == messages.ViewHelp && a.currentView != messages.ViewHelp {
		a.helpReturn = a.currentView
	}
	a.currentView = view

	switch view {
	case messages.ViewNamespaces:
		// Refresh counts; a chat may have been opened after a new ingest.
		return a.namespacesView.Init()
	case messages.ViewChat:
		return a.chatView.SetNamespace(a.chatView.Namespace())
	case messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.namespacesView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Namespaces:
  ↑/↓, j/k    Move
  /           Filter
  enter       Open chat
  r           Refresh
  q           Quit

Chat:
  (type)      Enter a question
  enter       Ask
  pgup/pgdn   Scroll transcript
  esc         Back to namespaces

  ctrl+c      Quit from anywhere

` + a.styles.Muted.Render("[esc] back")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Namespace returns the namespace of the open chat.
func (a *App) Namespace() string {
	return a.chatView.Namespace()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.namespacesView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
}
