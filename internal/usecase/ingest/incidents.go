package ingest

import (
	"context"
	"log/slog"

	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/reconcile"
	"safetyops/internal/domain/safety"
	"safetyops/internal/errs"
	"safetyops/internal/ports"
)

func (s *Service) ListIncidents(ctx context.Context, filter ports.IncidentFilter) ([]safety.Incident, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if err := s.checkStore(); err != nil {
		return nil, err
	}
	items, err := s.repo.ListIncidents(ctx, filter)
	return items, errs.Wrap(err, "list incidents")
}

func (s *Service) GetIncident(ctx context.Context, incidentID string) (safety.Incident, error) {
	if err := checkContext(ctx); err != nil {
		return safety.Incident{}, err
	}
	if err := s.checkStore(); err != nil {
		return safety.Incident{}, err
	}
	inc, err := s.repo.GetIncident(ctx, incidentID)
	return inc, errs.Wrap(err, "get incident")
}

// EditIncident applies a manual patch. The record becomes verified whatever
// fields the patch touches.
func (s *Service) EditIncident(ctx context.Context, incidentID string, patch reconcile.Patch) (safety.Incident, error) {
	if err := checkContext(ctx); err != nil {
		return safety.Incident{}, err
	}

	var edited safety.Incident
	err := s.update(ctx, func(state *safety.State) error {
		next, err := reconcile.ApplyManualEdit(state.Incidents, incidentID, patch, s.now().UTC())
		if err != nil {
			return err
		}
		state.Incidents = next
		for _, inc := range next {
			if inc.IncidentID == incidentID {
				edited = inc
				break
			}
		}
		return nil
	})
	if err != nil {
		return safety.Incident{}, errs.Wrapf(err, "edit incident %q", incidentID)
	}

	logging.Info(logging.WithComponent(ctx, "usecase.ingest"), "incident edited",
		slog.String("incident_id", incidentID),
		slog.Int("change_log", len(edited.ChangeLog)),
	)
	return edited, nil
}
