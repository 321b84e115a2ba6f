package ports

import (
	"context"

	"safetyops/internal/domain/safety"
)

// IncidentFilter narrows ListIncidents. Zero values match all.
type IncidentFilter struct {
	Site           string
	UnverifiedOnly bool
}

// StateRepository owns the single versioned storage slot. LoadState returns
// an empty state at the current version when nothing was saved yet.
// SaveState never deletes incidents, change-log entries or exposure records.
type StateRepository interface {
	LoadState(ctx context.Context) (safety.State, error)
	SaveState(ctx context.Context, state safety.State) error
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]safety.Incident, error)
	GetIncident(ctx context.Context, incidentID string) (safety.Incident, error)
}
