package tui

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("tui: ask service is required")

// ErrMissingNamespaceService is returned when the namespace service is not provided.
var ErrMissingNamespaceService = errors.New("tui: namespace service is required")
