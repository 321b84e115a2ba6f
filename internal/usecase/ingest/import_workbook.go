package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/exposure"
	"safetyops/internal/domain/reconcile"
	"safetyops/internal/domain/safety"
	"safetyops/internal/errs"
)

type ImportInput struct {
	Data     []byte
	FileName string
	// DryRun parses and reconciles without saving.
	DryRun bool
}

// ImportSummary describes one import run. It is cached as the last-import
// status after a saved run.
type ImportSummary struct {
	BatchID         string    `json:"batch_id"`
	FileName        string    `json:"file_name"`
	Sheet           string    `json:"sheet"`
	Rows            int       `json:"rows"`
	Inserted        int       `json:"inserted"`
	Updated         int       `json:"updated"`
	Unchanged       int       `json:"unchanged"`
	Locked          int       `json:"locked"`
	ExposureCreated int       `json:"exposure_created"`
	ExposureAuto    int       `json:"exposure_auto"`
	RulesLearned    int       `json:"rules_learned"`
	Warnings        []string  `json:"warnings"`
	DryRun          bool      `json:"dry_run"`
	ImportedAt      time.Time `json:"imported_at"`
}

// ImportWorkbook parses a workbook, reconciles it into the stored incidents,
// backfills exposure and saves the next state.
func (s *Service) ImportWorkbook(ctx context.Context, input ImportInput) (ImportSummary, error) {
	if err := checkContext(ctx); err != nil {
		return ImportSummary{}, err
	}
	if err := s.checkStore(); err != nil {
		return ImportSummary{}, err
	}

	batchID := uuid.NewString()
	logCtx := logging.WithBatch(logging.WithComponent(ctx, "usecase.ingest"), batchID)
	logging.Info(logCtx, "import started", slog.String("file", input.FileName), slog.Int("bytes", len(input.Data)))

	stored, err := s.repo.LoadState(ctx)
	if err != nil {
		return ImportSummary{}, errs.Wrap(err, "load state")
	}

	var parsed ParseSucceeded
	switch msg := (<-s.StartParse(logCtx, ParseRequest{Data: input.Data, Rules: stored.MappingRules, Sheet: s.opts.Sheet})).(type) {
	case ParseSucceeded:
		parsed = msg
	case ParseFailed:
		logging.Warn(logCtx, "import parse failed", slog.Any("err", errs.Loggable(msg.Err)))
		if errors.Is(msg.Err, safety.ErrEmptyWorkbook) {
			return ImportSummary{}, errs.User(msg.Err, "the workbook has no data rows, nothing was imported")
		}
		return ImportSummary{}, errs.Wrap(msg.Err, "parse workbook")
	default:
		return ImportSummary{}, errors.New("parse worker returned no result")
	}

	now := s.now().UTC()
	summary := ImportSummary{
		BatchID:    batchID,
		FileName:   input.FileName,
		Sheet:      parsed.Sheet,
		Rows:       len(parsed.Incidents),
		Warnings:   parsed.Warnings,
		DryRun:     input.DryRun,
		ImportedAt: now,
	}
	if summary.Warnings == nil {
		summary.Warnings = []string{}
	}

	apply := func(state *safety.State) {
		incidents, merged := reconcile.UpsertFromImport(state.Incidents, parsed.Incidents, now)
		before := state.ExposureHours
		after := exposure.GenerateAutoRecords(incidents, before, s.sites)

		summary.Inserted = merged.Inserted
		summary.Updated = merged.Updated
		summary.Unchanged = merged.Unchanged
		summary.Locked = merged.Locked
		summary.ExposureCreated, summary.ExposureAuto = exposureDelta(before, after)
		summary.RulesLearned = len(parsed.Rules) - len(state.MappingRules)

		state.Incidents = incidents
		state.ExposureHours = after
		state.MappingRules = parsed.Rules
	}

	if input.DryRun {
		apply(&stored)
	} else if err := s.update(ctx, func(state *safety.State) error {
		apply(state)
		return nil
	}); err != nil {
		return ImportSummary{}, errs.Wrap(err, "save import")
	}

	for _, w := range summary.Warnings {
		logging.Warn(logCtx, "import warning", slog.String("warning", w))
	}
	logging.Info(logCtx, "import completed",
		slog.Int("inserted", summary.Inserted),
		slog.Int("updated", summary.Updated),
		slog.Int("unchanged", summary.Unchanged),
		slog.Int("locked", summary.Locked),
		slog.Int("exposure_created", summary.ExposureCreated),
		slog.Bool("dry_run", summary.DryRun),
	)

	if !input.DryRun {
		if raw, err := json.Marshal(summary); err == nil {
			s.setCacheBestEffort(ctx, cacheLastImportKey, string(raw))
		}
	}
	return summary, nil
}

// exposureDelta counts records added by the auto-assigner and records that
// hold auto hours now but did not before.
func exposureDelta(before []safety.ExposureHour, after []safety.ExposureHour) (created int, auto int) {
	prev := make(map[string]safety.ExposureHour, len(before))
	for _, e := range before {
		prev[e.Site+"|"+e.Period] = e
	}
	for _, e := range after {
		old, ok := prev[e.Site+"|"+e.Period]
		if !ok {
			created++
		}
		if e.Source == safety.SourceAuto && (!ok || old.Source != safety.SourceAuto) {
			auto++
		}
	}
	return created, auto
}

// LastImportStatus returns the cached summary of the last saved import.
func (s *Service) LastImportStatus(ctx context.Context) (ImportSummary, bool, error) {
	if err := checkContext(ctx); err != nil {
		return ImportSummary{}, false, err
	}
	if s.cache == nil {
		return ImportSummary{}, false, nil
	}

	raw, found, err := s.cache.Get(ctx, cacheLastImportKey)
	if err != nil {
		return ImportSummary{}, false, errs.Wrap(err, "read import status")
	}
	if !found {
		return ImportSummary{}, false, nil
	}

	var summary ImportSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return ImportSummary{}, false, errs.Wrap(err, "decode import status")
	}
	return summary, true, nil
}
