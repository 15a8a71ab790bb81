// Package list provides list display components for the TUI.
package list

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// item adapts a namespace to the bubbles list.
type item struct {
	info domain.NamespaceInfo
}

func (i item) Title() string { return i.info.Name }

func (i item) Description() string {
	if i.info.RecordCount == 1 {
		return "1 chunk"
	}
	return fmt.Sprintf("%d chunks", i.info.RecordCount)
}

func (i item) FilterValue() string { return i.info.Name }

// NamespaceList displays namespaces in a navigable, filterable list.
type NamespaceList struct {
	model list.Model
}

// NewNamespaceList creates an empty namespace list.
func NewNamespaceList(s *styles.Styles) *NamespaceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(s.Theme().Primary).
		BorderForeground(s.Theme().Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		BorderForeground(s.Theme().Primary)

	m := list.New(nil, delegate, 80, 20)
	m.Title = "Namespaces"
	m.Styles.Title = s.Title
	m.SetShowHelp(false)
	m.SetStatusBarItemName("namespace", "namespaces")
	m.DisableQuitKeybindings()

	return &NamespaceList{model: m}
}

// Update handles navigation and filtering.
func (n *NamespaceList) Update(msg tea.Msg) (*NamespaceList, tea.Cmd) {
	var cmd tea.Cmd
	n.model, cmd = n.model.Update(msg)
	return n, cmd
}

// View renders the list.
func (n *NamespaceList) View() string {
	return n.model.View()
}

// SetNamespaces replaces the list contents.
func (n *NamespaceList) SetNamespaces(namespaces []domain.NamespaceInfo) tea.Cmd {
	items := make([]list.Item, len(namespaces))
	for i, ns := range namespaces {
		items[i] = item{info: ns}
	}
	return n.model.SetItems(items)
}

// Selected returns the highlighted namespace name, or "" if the list is empty.
func (n *NamespaceList) Selected() string {
	it, ok := n.model.SelectedItem().(item)
	if !ok {
		return ""
	}
	return it.info.Name
}

// Count returns the number of namespaces.
func (n *NamespaceList) Count() int {
	return len(n.model.Items())
}

// Filtering reports whether the user is typing a filter, in which case
// keys belong to the filter input.
func (n *NamespaceList) Filtering() bool {
	return n.model.FilterState() == list.Filtering
}

// SetDimensions sets the component dimensions.
func (n *NamespaceList) SetDimensions(width, height int) {
	n.model.SetSize(width, height)
}
