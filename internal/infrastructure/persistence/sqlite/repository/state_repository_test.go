package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"

	"safetyops/internal/domain/safety"
	"safetyops/internal/infrastructure/persistence/schema"
	"safetyops/internal/infrastructure/persistence/sqlite/model"
	"safetyops/internal/ports"
)

func setupStateRepository(t *testing.T) (*StateRepository, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "state.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&schema.StateSlot{},
		&model.Incident{},
		&model.IncidentChange{},
		&model.ExposureHour{},
		&model.GlobalKm{},
		&model.MappingRule{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewStateRepository(db), db
}

func sampleState(now time.Time) safety.State {
	return safety.State{
		Version: safety.StateVersion,
		Incidents: []safety.Incident{
			{
				IncidentID:    "INC-1",
				Name:          "Caida",
				Site:          "Obra Norte",
				Type:          "Accidente con tiempo perdido",
				Location:      "Hombro izquierdo",
				PotentialRisk: "Alto",
				RawPayload:    map[string]string{"ID": "INC-1"},
				EventDate:     "2025-01-05",
				Year:          2025,
				Month:         1,
				Flags:         safety.Flags{Recordable: true, LostTime: true},
				DaysAway:      4,
				BodyZones:     []safety.BodyZone{"shoulder_left"},
				IsVerified:    true,
				UpdatedAt:     now,
				ChangeLog: []safety.ChangeLogEntry{
					{Date: now, Field: safety.FieldCreated, NewValue: "INC-1", Actor: safety.ActorImport},
				},
			},
			{
				IncidentID: "INC-2",
				Site:       "Taller",
				EventDate:  "2025-02-01",
				BodyZones:  []safety.BodyZone{safety.ZoneUnknown},
				RawPayload: map[string]string{},
				UpdatedAt:  now,
			},
		},
		ExposureHours: []safety.ExposureHour{
			{ID: "auto:OBRA NORTE:2025-01", Site: "OBRA NORTE", Period: "2025-01", Hours: 8000, Source: safety.SourceAuto},
		},
		GlobalKm:     []safety.GlobalKmRecord{{Year: 2025, Km: 120000}},
		Settings:     safety.Settings{SeverityDaysCap: 90},
		MappingRules: []safety.MappingRule{{Type: "CAIDA", Flags: safety.Flags{Recordable: true}, Source: safety.RuleManual}},
		Meta:         map[string]string{"report.next": "2025-03-01"},
	}
}

func TestLoadStateEmpty(t *testing.T) {
	repo, _ := setupStateRepository(t)

	state, err := repo.LoadState(context.Background())
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if state.Version != safety.StateVersion || state.Settings != safety.DefaultSettings() {
		t.Fatalf("LoadState() = %+v", state)
	}
	if len(state.Incidents) != 0 || len(state.ExposureHours) != 0 {
		t.Fatalf("LoadState() expected empty collections")
	}
}

func TestSaveStateRoundTrip(t *testing.T) {
	repo, _ := setupStateRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	want := sampleState(now)

	if err := repo.SaveState(ctx, want); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	got, err := repo.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveStateAppendsChangeLog(t *testing.T) {
	repo, db := setupStateRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	state := sampleState(now)

	if err := repo.SaveState(ctx, state); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	state.Incidents[0].Description = "nueva"
	state.Incidents[0].ChangeLog = append(state.Incidents[0].ChangeLog, safety.ChangeLogEntry{
		Date: now, Field: "description", OldValue: "", NewValue: "nueva", Actor: safety.ActorImport,
	})
	if err := repo.SaveState(ctx, state); err != nil {
		t.Fatalf("SaveState(second) error = %v", err)
	}

	var count int64
	if err := db.Model(&model.IncidentChange{}).Where("incident_id = ?", "INC-1").Count(&count).Error; err != nil {
		t.Fatalf("count changes: %v", err)
	}
	if count != 2 {
		t.Fatalf("change rows = %d, want 2", count)
	}

	got, err := repo.GetIncident(ctx, "INC-1")
	if err != nil {
		t.Fatalf("GetIncident() error = %v", err)
	}
	if got.Description != "nueva" || len(got.ChangeLog) != 2 || got.ChangeLog[1].Field != "description" {
		t.Fatalf("GetIncident() = %+v", got)
	}
}

func TestSaveStateDoesNotDeleteRecords(t *testing.T) {
	repo, _ := setupStateRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := repo.SaveState(ctx, sampleState(now)); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	if err := repo.SaveState(ctx, safety.State{Version: safety.StateVersion}); err != nil {
		t.Fatalf("SaveState(empty) error = %v", err)
	}

	got, err := repo.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if len(got.Incidents) != 2 || len(got.ExposureHours) != 1 || len(got.MappingRules) != 1 {
		t.Fatalf("records were dropped: %+v", got)
	}
}

func TestLoadStateRejectsOtherVersion(t *testing.T) {
	repo, db := setupStateRepository(t)
	ctx := context.Background()

	if err := repo.SaveState(ctx, safety.State{Version: safety.StateVersion}); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	if err := db.Model(&schema.StateSlot{}).Where("key = ?", schema.StateSlotKey).Update("state_version", 99).Error; err != nil {
		t.Fatalf("bump version: %v", err)
	}

	if _, err := repo.LoadState(ctx); !errors.Is(err, safety.ErrStateVersion) {
		t.Fatalf("LoadState() error = %v, want ErrStateVersion", err)
	}
}

func TestListIncidents(t *testing.T) {
	repo, _ := setupStateRepository(t)
	ctx := context.Background()
	if err := repo.SaveState(ctx, sampleState(time.Now().UTC())); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	all, err := repo.ListIncidents(ctx, ports.IncidentFilter{})
	if err != nil {
		t.Fatalf("ListIncidents() error = %v", err)
	}
	if len(all) != 2 || all[0].IncidentID != "INC-2" {
		t.Fatalf("ListIncidents() = %+v", all)
	}

	unverified, err := repo.ListIncidents(ctx, ports.IncidentFilter{UnverifiedOnly: true})
	if err != nil {
		t.Fatalf("ListIncidents(unverified) error = %v", err)
	}
	if len(unverified) != 1 || unverified[0].IncidentID != "INC-2" {
		t.Fatalf("ListIncidents(unverified) = %+v", unverified)
	}

	bySite, err := repo.ListIncidents(ctx, ports.IncidentFilter{Site: "obra norte"})
	if err != nil {
		t.Fatalf("ListIncidents(site) error = %v", err)
	}
	if len(bySite) != 1 || bySite[0].IncidentID != "INC-1" {
		t.Fatalf("ListIncidents(site) = %+v", bySite)
	}

	if _, err := repo.GetIncident(ctx, "missing"); !errors.Is(err, safety.ErrIncidentNotFound) {
		t.Fatalf("GetIncident() error = %v, want ErrIncidentNotFound", err)
	}
}

func TestSaveStateInsideUnitOfWork(t *testing.T) {
	repo, db := setupStateRepository(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		txCtx := ports.WithTxContext(ctx, tx)
		if err := repo.SaveState(txCtx, sampleState(time.Now().UTC())); err != nil {
			return err
		}
		return errors.New("rollback")
	})
	if err == nil {
		t.Fatalf("expected rollback error")
	}

	state, err := repo.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if len(state.Incidents) != 0 {
		t.Fatalf("rolled back incidents are visible: %d", len(state.Incidents))
	}
}
