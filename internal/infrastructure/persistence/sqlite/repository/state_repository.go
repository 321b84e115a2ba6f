package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
	"safetyops/internal/errs"
	"safetyops/internal/infrastructure/persistence/schema"
	"safetyops/internal/infrastructure/persistence/sqlite/model"
	"safetyops/internal/ports"
)

const insertBatchSize = 200

type StateRepository struct {
	db *gorm.DB
}

var _ ports.StateRepository = (*StateRepository)(nil)

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *StateRepository) LoadState(ctx context.Context) (safety.State, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return safety.State{}, err
	}

	state := safety.State{
		Version:  safety.StateVersion,
		Settings: safety.DefaultSettings(),
		Meta:     map[string]string{},
	}

	var slot schema.StateSlot
	err = db.Where("key = ?", schema.StateSlotKey).Take(&slot).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return safety.State{}, errs.Wrap(err, "query state slot")
	default:
		if slot.Version != safety.StateVersion {
			return safety.State{}, fmt.Errorf("%w: stored %d, supported %d", safety.ErrStateVersion, slot.Version, safety.StateVersion)
		}
		state.Settings = slot.Settings.Data()
		if meta := slot.Meta.Data(); meta != nil {
			state.Meta = meta
		}
	}

	incidents, err := loadIncidents(db.Order("incident_id asc"))
	if err != nil {
		return safety.State{}, err
	}
	state.Incidents = incidents

	var exposure []model.ExposureHour
	if err := db.Order("period asc, site asc").Find(&exposure).Error; err != nil {
		return safety.State{}, errs.Wrap(err, "query exposure hours")
	}
	state.ExposureHours = make([]safety.ExposureHour, 0, len(exposure))
	for _, row := range exposure {
		state.ExposureHours = append(state.ExposureHours, mapExposure(row))
	}

	var km []model.GlobalKm
	if err := db.Order("year asc").Find(&km).Error; err != nil {
		return safety.State{}, errs.Wrap(err, "query global km")
	}
	state.GlobalKm = make([]safety.GlobalKmRecord, 0, len(km))
	for _, row := range km {
		state.GlobalKm = append(state.GlobalKm, safety.GlobalKmRecord{Year: row.Year, Km: row.Km})
	}

	var rules []model.MappingRule
	if err := db.Order("position asc, type asc").Find(&rules).Error; err != nil {
		return safety.State{}, errs.Wrap(err, "query mapping rules")
	}
	state.MappingRules = make([]safety.MappingRule, 0, len(rules))
	for _, row := range rules {
		state.MappingRules = append(state.MappingRules, safety.MappingRule{
			Type:   row.Type,
			Flags:  row.Flags.Data(),
			Source: safety.RuleSource(row.Source),
		})
	}

	return state, nil
}

func (r *StateRepository) SaveState(ctx context.Context, state safety.State) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if ports.TxFromContext(ctx) == nil {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return r.SaveState(ports.WithTxContext(ctx, tx), state)
		})
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	meta := state.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	slot := schema.StateSlot{
		Key:      schema.StateSlotKey,
		Version:  safety.StateVersion,
		Settings: datatypes.NewJSONType(state.Settings),
		Meta:     datatypes.NewJSONType(meta),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"state_version", "settings", "meta", "updated_at"}),
	}).Create(&slot).Error; err != nil {
		return errs.Wrap(err, "upsert state slot")
	}

	if err := saveIncidents(db, state.Incidents); err != nil {
		return err
	}
	if err := saveExposure(db, state.ExposureHours, state.GlobalKm); err != nil {
		return err
	}
	return saveRules(db, state.MappingRules)
}

func (r *StateRepository) ListIncidents(ctx context.Context, filter ports.IncidentFilter) ([]safety.Incident, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Incident{})
	if filter.UnverifiedOnly {
		query = query.Where("is_verified = ?", false)
	}
	items, err := loadIncidents(query.Order("event_date desc, incident_id asc"))
	if err != nil {
		return nil, err
	}

	site := normalize.Canonical(filter.Site)
	if site == "" {
		return items, nil
	}
	out := items[:0]
	for _, inc := range items {
		if normalize.Canonical(inc.Site) == site {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (r *StateRepository) GetIncident(ctx context.Context, incidentID string) (safety.Incident, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return safety.Incident{}, err
	}

	items, err := loadIncidents(db.Where("incident_id = ?", incidentID))
	if err != nil {
		return safety.Incident{}, err
	}
	if len(items) == 0 {
		return safety.Incident{}, errs.Wrapf(safety.ErrIncidentNotFound, "incident %q", incidentID)
	}
	return items[0], nil
}

// loadIncidents runs query against the incidents table and attaches each
// row's change log.
func loadIncidents(query *gorm.DB) ([]safety.Incident, error) {
	var rows []model.Incident
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query incidents")
	}
	if len(rows) == 0 {
		return []safety.Incident{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.IncidentID)
	}

	logs := make(map[string][]safety.ChangeLogEntry, len(rows))
	for start := 0; start < len(ids); start += insertBatchSize {
		end := min(start+insertBatchSize, len(ids))
		var changes []model.IncidentChange
		if err := query.Session(&gorm.Session{NewDB: true}).
			Where("incident_id IN ?", ids[start:end]).
			Order("incident_id asc, seq asc").
			Find(&changes).Error; err != nil {
			return nil, errs.Wrap(err, "query incident changes")
		}
		for _, c := range changes {
			date, _ := time.Parse(time.RFC3339Nano, c.Date)
			logs[c.IncidentID] = append(logs[c.IncidentID], safety.ChangeLogEntry{
				Date:     date,
				Field:    c.Field,
				OldValue: c.OldValue,
				NewValue: c.NewValue,
				Actor:    safety.Actor(c.Actor),
			})
		}
	}

	items := make([]safety.Incident, 0, len(rows))
	for _, row := range rows {
		inc := mapIncident(row)
		inc.ChangeLog = logs[row.IncidentID]
		items = append(items, inc)
	}
	return items, nil
}

func saveIncidents(db *gorm.DB, incidents []safety.Incident) error {
	if len(incidents) == 0 {
		return nil
	}

	rows := make([]model.Incident, 0, len(incidents))
	for _, inc := range incidents {
		rows = append(rows, incidentRow(inc))
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "incident_id"}},
		UpdateAll: true,
	}).CreateInBatches(&rows, insertBatchSize).Error; err != nil {
		return errs.Wrap(err, "upsert incidents")
	}

	type logCount struct {
		IncidentID string
		N          int
	}
	var counts []logCount
	if err := db.Model(&model.IncidentChange{}).
		Select("incident_id, count(*) as n").
		Group("incident_id").
		Scan(&counts).Error; err != nil {
		return errs.Wrap(err, "count incident changes")
	}
	stored := make(map[string]int, len(counts))
	for _, c := range counts {
		stored[c.IncidentID] = c.N
	}

	// The change log is append-only: only entries past the stored length
	// are written.
	var changes []model.IncidentChange
	for _, inc := range incidents {
		for seq := stored[inc.IncidentID]; seq < len(inc.ChangeLog); seq++ {
			e := inc.ChangeLog[seq]
			changes = append(changes, model.IncidentChange{
				IncidentID: inc.IncidentID,
				Seq:        seq,
				Date:       e.Date.UTC().Format(time.RFC3339Nano),
				Field:      e.Field,
				OldValue:   e.OldValue,
				NewValue:   e.NewValue,
				Actor:      string(e.Actor),
			})
		}
	}
	if len(changes) == 0 {
		return nil
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&changes, insertBatchSize).Error; err != nil {
		return errs.Wrap(err, "insert incident changes")
	}
	return nil
}

func saveExposure(db *gorm.DB, exposure []safety.ExposureHour, km []safety.GlobalKmRecord) error {
	if len(exposure) > 0 {
		rows := make([]model.ExposureHour, 0, len(exposure))
		for _, e := range exposure {
			rows = append(rows, model.ExposureHour{
				Site:       e.Site,
				Period:     e.Period,
				ExposureID: e.ID,
				Hours:      e.Hours,
				Source:     string(e.Source),
			})
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "site"}, {Name: "period"}},
			DoUpdates: clause.AssignmentColumns([]string{"exposure_id", "hours", "source"}),
		}).CreateInBatches(&rows, insertBatchSize).Error; err != nil {
			return errs.Wrap(err, "upsert exposure hours")
		}
	}

	if len(km) > 0 {
		rows := make([]model.GlobalKm, 0, len(km))
		for _, k := range km {
			rows = append(rows, model.GlobalKm{Year: k.Year, Km: k.Km})
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"km"}),
		}).Create(&rows).Error; err != nil {
			return errs.Wrap(err, "upsert global km")
		}
	}
	return nil
}

func saveRules(db *gorm.DB, rules []safety.MappingRule) error {
	if len(rules) == 0 {
		return nil
	}

	rows := make([]model.MappingRule, 0, len(rules))
	for i, rule := range rules {
		rows = append(rows, model.MappingRule{
			Type:     rule.Type,
			Flags:    datatypes.NewJSONType(rule.Flags),
			Source:   string(rule.Source),
			Position: i,
		})
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"flags", "source", "position"}),
	}).CreateInBatches(&rows, insertBatchSize).Error; err != nil {
		return errs.Wrap(err, "upsert mapping rules")
	}
	return nil
}

func incidentRow(inc safety.Incident) model.Incident {
	zones := make([]string, 0, len(inc.BodyZones))
	for _, z := range inc.BodyZones {
		zones = append(zones, string(z))
	}
	payload := inc.RawPayload
	if payload == nil {
		payload = map[string]string{}
	}

	return model.Incident{
		IncidentID:          inc.IncidentID,
		Name:                inc.Name,
		Description:         inc.Description,
		Site:                inc.Site,
		Type:                inc.Type,
		Location:            inc.Location,
		PotentialRisk:       inc.PotentialRisk,
		RawPayload:          datatypes.NewJSONType(payload),
		EventDate:           inc.EventDate,
		Year:                inc.Year,
		Month:               inc.Month,
		Recordable:          inc.Flags.Recordable,
		LostTime:            inc.Flags.LostTime,
		TransitLaboral:      inc.Flags.TransitLaboral,
		InItinere:           inc.Flags.InItinere,
		Fatality:            inc.Flags.Fatality,
		JobTransfer:         inc.Flags.JobTransfer,
		ProcessSafetyTier1:  inc.Flags.ProcessSafetyTier1,
		ProcessSafetyTier2:  inc.Flags.ProcessSafetyTier2,
		ClientCommunication: inc.Flags.ClientCommunication,
		DaysAway:            inc.DaysAway,
		DaysRestricted:      inc.DaysRestricted,
		BodyZones:           datatypes.NewJSONSlice(zones),
		IsVerified:          inc.IsVerified,
		UpdatedAt:           inc.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func mapIncident(row model.Incident) safety.Incident {
	zones := make([]safety.BodyZone, 0, len(row.BodyZones))
	for _, z := range row.BodyZones {
		zones = append(zones, safety.BodyZone(z))
	}
	updatedAt, _ := time.Parse(time.RFC3339Nano, row.UpdatedAt)

	return safety.Incident{
		IncidentID:    row.IncidentID,
		Name:          row.Name,
		Description:   row.Description,
		Site:          row.Site,
		Type:          row.Type,
		Location:      row.Location,
		PotentialRisk: row.PotentialRisk,
		RawPayload:    row.RawPayload.Data(),
		EventDate:     row.EventDate,
		Year:          row.Year,
		Month:         row.Month,
		Flags: safety.Flags{
			Recordable:          row.Recordable,
			LostTime:            row.LostTime,
			TransitLaboral:      row.TransitLaboral,
			InItinere:           row.InItinere,
			Fatality:            row.Fatality,
			JobTransfer:         row.JobTransfer,
			ProcessSafetyTier1:  row.ProcessSafetyTier1,
			ProcessSafetyTier2:  row.ProcessSafetyTier2,
			ClientCommunication: row.ClientCommunication,
		},
		DaysAway:       row.DaysAway,
		DaysRestricted: row.DaysRestricted,
		BodyZones:      zones,
		IsVerified:     row.IsVerified,
		UpdatedAt:      updatedAt,
	}
}

func mapExposure(row model.ExposureHour) safety.ExposureHour {
	return safety.ExposureHour{
		ID:     row.ExposureID,
		Site:   row.Site,
		Period: row.Period,
		Hours:  row.Hours,
		Source: safety.ExposureSource(row.Source),
	}
}
