package ingest

import (
	"context"

	"safetyops/internal/domain/kpi"
	"safetyops/internal/errs"
)

// ComputeMetrics derives the indicator set over the stored state narrowed by
// filter.
func (s *Service) ComputeMetrics(ctx context.Context, filter kpi.Filter) (kpi.Metrics, error) {
	if err := checkContext(ctx); err != nil {
		return kpi.Metrics{}, err
	}
	if err := s.checkStore(); err != nil {
		return kpi.Metrics{}, err
	}

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return kpi.Metrics{}, errs.Wrap(err, "load state")
	}

	incidents, hours, km := filter.Apply(state.Incidents, state.ExposureHours, state.GlobalKm)
	return kpi.Compute(kpi.Input{
		Incidents: incidents,
		Exposure:  hours,
		GlobalKm:  km,
		Settings:  s.settings(state.Settings),
		Now:       s.now(),
		Advisor:   s.advisor,
	}), nil
}
