// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewNamespaces lists namespaces to chat with.
	ViewNamespaces ViewType = iota
	// ViewChat is the conversation with one namespace.
	ViewChat
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewNamespaces:
		return "namespaces"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// NamespacesLoaded carries the namespace list from the service.
type NamespacesLoaded struct {
	Namespaces []domain.NamespaceInfo
	Err        error
}

// NamespaceSelected opens the chat for a namespace.
type NamespaceSelected struct {
	Namespace string
}

// AnswerReceived carries the outcome of an Ask back to the chat.
// Namespace identifies the conversation even if the user has switched away.
type AnswerReceived struct {
	Namespace string
	Query     string
	Answer    string
	Err       error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
