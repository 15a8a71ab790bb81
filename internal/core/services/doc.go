// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Ingestion and retrieval are straight-line and request-scoped: a service
// holds only its collaborators, never per-call state.
package services
