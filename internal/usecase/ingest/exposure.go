package ingest

import (
	"context"
	"log/slog"

	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/exposure"
	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
	"safetyops/internal/errs"
)

// ExposureView is the stored denominator data.
type ExposureView struct {
	Hours    []safety.ExposureHour
	GlobalKm []safety.GlobalKmRecord
}

func (s *Service) ListExposure(ctx context.Context) (ExposureView, error) {
	if err := checkContext(ctx); err != nil {
		return ExposureView{}, err
	}
	if err := s.checkStore(); err != nil {
		return ExposureView{}, err
	}
	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return ExposureView{}, errs.Wrap(err, "load state")
	}
	return ExposureView{Hours: state.ExposureHours, GlobalKm: state.GlobalKm}, nil
}

// SetExposure stores a manual hours value for (site, period).
func (s *Service) SetExposure(ctx context.Context, site string, period string, hours float64) (safety.ExposureHour, error) {
	if err := checkContext(ctx); err != nil {
		return safety.ExposureHour{}, err
	}

	var rec safety.ExposureHour
	err := s.update(ctx, func(state *safety.State) error {
		next, err := exposure.SetManual(state.ExposureHours, site, period, hours)
		if err != nil {
			return err
		}
		state.ExposureHours = next
		canon := normalize.Canonical(site)
		for _, e := range next {
			if e.Site == canon && e.Period == period {
				rec = e
				break
			}
		}
		return nil
	})
	if err != nil {
		return safety.ExposureHour{}, errs.Wrap(err, "set exposure")
	}

	logging.Info(logging.WithComponent(ctx, "usecase.ingest"), "exposure set",
		slog.String("site", rec.Site),
		slog.String("period", rec.Period),
		slog.Float64("hours", rec.Hours),
	)
	return rec, nil
}

// RunAutoExposure reruns the auto-assigner over the stored incidents and
// returns how many records it created.
func (s *Service) RunAutoExposure(ctx context.Context) (int, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}

	created := 0
	err := s.update(ctx, func(state *safety.State) error {
		next := exposure.GenerateAutoRecords(state.Incidents, state.ExposureHours, s.sites)
		created, _ = exposureDelta(state.ExposureHours, next)
		state.ExposureHours = next
		return nil
	})
	if err != nil {
		return 0, errs.Wrap(err, "auto exposure")
	}
	return created, nil
}

// SetGlobalKm stores the fleet kilometers of a year.
func (s *Service) SetGlobalKm(ctx context.Context, year int, km float64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	err := s.update(ctx, func(state *safety.State) error {
		next, err := exposure.SetGlobalKm(state.GlobalKm, year, km)
		if err != nil {
			return err
		}
		state.GlobalKm = next
		return nil
	})
	return errs.Wrap(err, "set global km")
}
