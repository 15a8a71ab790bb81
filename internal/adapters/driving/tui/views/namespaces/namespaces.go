// Package namespaces provides the namespace picker view for the TUI.
package namespaces

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
)

// View lists namespaces and opens a chat for the selected one.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.NamespaceList
	statusbar *status.Bar

	service driving.NamespaceService
	ctx     context.Context

	width  int
	height int
	err    error
}

// NewView creates a namespace picker.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.NamespaceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewNamespaceList(s),
		statusbar: status.NewBar(s, km),
		service:   service,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the namespace list.
func (v *View) Init() tea.Cmd {
	v.statusbar.SetState(status.StateLoading)
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		infos, err := v.service.List(v.ctx)
		return messages.NamespacesLoaded{Namespaces: infos, Err: err}
	}
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.NamespacesLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.err = nil
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage(fmt.Sprintf("%d namespaces", len(msg.Namespaces)))
		return v, v.list.SetNamespaces(msg.Namespaces)

	case tea.KeyMsg:
		if !v.list.Filtering() {
			switch {
			case keymap.Matches(msg.String(), v.keymap.Select):
				if name := v.list.Selected(); name != "" {
					return v, func() tea.Msg { return messages.NamespaceSelected{Namespace: name} }
				}
				return v, nil
			case keymap.Matches(msg.String(), v.keymap.Refresh):
				v.statusbar.SetState(status.StateLoading)
				return v, v.load()
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// View renders the list, an empty-state hint, and the status bar.
func (v *View) View() string {
	var body string
	if v.list.Count() == 0 && v.err == nil {
		body = v.styles.Title.Render("Namespaces") + "\n\n" +
			v.styles.Muted.Render("No documents ingested yet. Run `pdfrag ingest <file.pdf>` first.")
	} else {
		body = v.list.View()
	}

	bodyHeight := v.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Height(bodyHeight).Render(body),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-1)
	v.statusbar.SetWidth(width)
}

// Selected returns the highlighted namespace.
func (v *View) Selected() string {
	return v.list.Selected()
}

// Count returns the number of namespaces shown.
func (v *View) Count() int {
	return v.list.Count()
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// Filtering reports whether the list filter is capturing keys.
func (v *View) Filtering() bool {
	return v.list.Filtering()
}
