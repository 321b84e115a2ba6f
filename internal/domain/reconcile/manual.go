package reconcile

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/go-cmp/cmp"

	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
)

// Patch is a manual edit. Nil fields are left as they are.
type Patch struct {
	Name           *string
	Description    *string
	Site           *string
	Type           *string
	Location       *string
	EventDate      *string
	Year           *int
	Month          *int
	Recordable     *bool
	LostTime       *bool
	TransitLaboral *bool
	InItinere      *bool
	Fatality       *bool
	JobTransfer    *bool
	Tier1          *bool
	Tier2          *bool
	ClientComm     *bool
	DaysAway       *int
	DaysRestricted *int
	BodyZones      []safety.BodyZone
}

// Apply writes the patch into inc. Transit and in-itinere stay mutually
// exclusive: setting one true clears the other.
func (p Patch) Apply(inc *safety.Incident) {
	setString(&inc.Name, p.Name)
	setString(&inc.Description, p.Description)
	setString(&inc.Site, p.Site)
	setString(&inc.Type, p.Type)
	setString(&inc.Location, p.Location)
	setString(&inc.EventDate, p.EventDate)
	setInt(&inc.Year, p.Year)
	setInt(&inc.Month, p.Month)
	setBool(&inc.Flags.Recordable, p.Recordable)
	setBool(&inc.Flags.LostTime, p.LostTime)
	setBool(&inc.Flags.Fatality, p.Fatality)
	setBool(&inc.Flags.JobTransfer, p.JobTransfer)
	setBool(&inc.Flags.ProcessSafetyTier1, p.Tier1)
	setBool(&inc.Flags.ProcessSafetyTier2, p.Tier2)
	setBool(&inc.Flags.ClientCommunication, p.ClientComm)
	setInt(&inc.DaysAway, p.DaysAway)
	setInt(&inc.DaysRestricted, p.DaysRestricted)
	if p.BodyZones != nil {
		inc.BodyZones = append([]safety.BodyZone(nil), p.BodyZones...)
	}

	if p.TransitLaboral != nil {
		inc.Flags.TransitLaboral = *p.TransitLaboral
		if *p.TransitLaboral {
			inc.Flags.InItinere = false
		}
	}
	if p.InItinere != nil {
		inc.Flags.InItinere = *p.InItinere
		if *p.InItinere {
			inc.Flags.TransitLaboral = false
		}
	}
}

// ApplyManualEdit applies patch to the incident with id and returns a new
// collection. Every changed field is logged as a manual change and the record
// becomes verified whatever fields were touched.
func ApplyManualEdit(existing []safety.Incident, id string, patch Patch, now time.Time) ([]safety.Incident, error) {
	idx := -1
	for i, inc := range existing {
		if inc.IncidentID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", safety.ErrIncidentNotFound, id)
	}
	patch, err := normalizeDate(patch)
	if err != nil {
		return nil, err
	}

	out := safety.CloneIncidents(existing)
	prev := existing[idx]
	next := out[idx]
	patch.Apply(&next)

	for _, f := range fields {
		oldV, newV := f.get(&prev), f.get(&next)
		if cmp.Equal(oldV, newV) {
			continue
		}
		next.ChangeLog = append(next.ChangeLog, safety.ChangeLogEntry{
			Date:     now,
			Field:    f.name,
			OldValue: render(oldV),
			NewValue: render(newV),
			Actor:    safety.ActorManual,
		})
	}
	next.IsVerified = true
	next.UpdatedAt = now
	out[idx] = next
	return out, nil
}

// normalizeDate resolves a patched event date to YYYY-MM-DD and derives the
// month from it, and the year unless the patch sets one.
func normalizeDate(p Patch) (Patch, error) {
	if p.EventDate == nil {
		return p, nil
	}
	day, ok := normalize.ParseDate(*p.EventDate)
	if !ok {
		return p, fmt.Errorf("%w: %q", safety.ErrInvalidDate, *p.EventDate)
	}
	year, _ := strconv.Atoi(day[:4])
	month, _ := strconv.Atoi(day[5:7])

	p.EventDate = &day
	p.Month = &month
	if p.Year == nil {
		p.Year = &year
	}
	return p, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
