// Package ingest is the application layer of the safety KPI pipeline: it
// loads the stored state, runs the domain transforms over it and saves the
// next snapshot.
package ingest

import (
	"context"
	"errors"
	"time"

	"safetyops/internal/domain/exposure"
	"safetyops/internal/domain/kpi"
	"safetyops/internal/domain/risk"
	"safetyops/internal/domain/safety"
	"safetyops/internal/errs"
	"safetyops/internal/ports"
)

const cacheLastImportKey = "import:last"

// Options carries config-level settings for the service.
type Options struct {
	// Sheet is the preferred worksheet name.
	Sheet string
	// SeverityDaysCap overrides the stored settings when positive.
	SeverityDaysCap int
}

type Service struct {
	repo    ports.StateRepository
	uow     ports.UnitOfWork
	cache   ports.Cache
	reader  ports.WorkbookReader
	sites   exposure.Lookup
	advisor kpi.Advisor
	opts    Options
	now     func() time.Time
}

// NewService wires the pipeline. cache may be nil.
func NewService(
	repo ports.StateRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	reader ports.WorkbookReader,
	sites exposure.Lookup,
	opts Options,
) *Service {
	return &Service{
		repo:    repo,
		uow:     uow,
		cache:   cache,
		reader:  reader,
		sites:   sites,
		advisor: risk.Advise,
		opts:    opts,
		now:     time.Now,
	}
}

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	return nil
}

func (s *Service) checkStore() error {
	if s.repo == nil {
		return errors.New("state repository is required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	return nil
}

func (s *Service) settings(stored safety.Settings) safety.Settings {
	out := stored
	if s.opts.SeverityDaysCap > 0 {
		out.SeverityDaysCap = s.opts.SeverityDaysCap
	}
	if out.SeverityDaysCap <= 0 {
		out.SeverityDaysCap = safety.DefaultSettings().SeverityDaysCap
	}
	return out
}

// update loads the state, applies fn and saves the result in one transaction.
func (s *Service) update(ctx context.Context, fn func(state *safety.State) error) error {
	if err := s.checkStore(); err != nil {
		return err
	}
	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.repo.LoadState(txCtx)
		if err != nil {
			return errs.Wrap(err, "load state")
		}
		if err := fn(&state); err != nil {
			return err
		}
		state.Settings = s.settings(state.Settings)
		return errs.Wrap(s.repo.SaveState(txCtx, state), "save state")
	})
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value, 0)
}
