// Package reconcile merges freshly imported incidents into stored state and
// applies manual edits, keeping an append-only change log.
//
// A merge runs in two phases: build the candidate record from the import,
// then apply the field policy in fields.go, which keeps derived fields of
// verified records untouched.
package reconcile

import (
	"time"

	"github.com/google/go-cmp/cmp"

	"safetyops/internal/domain/safety"
)

// Summary counts what an import did.
type Summary struct {
	Inserted  int
	Updated   int
	Unchanged int
	// Locked counts verified records whose derived fields differed from the
	// import and were kept.
	Locked int
}

// UpsertFromImport merges imported into existing and returns a new collection.
// Existing records keep their position; new ones are appended in import order.
// No record and no change-log entry is ever removed.
func UpsertFromImport(existing []safety.Incident, imported []safety.Incident, now time.Time) ([]safety.Incident, Summary) {
	out := safety.CloneIncidents(existing)
	if out == nil {
		out = make([]safety.Incident, 0, len(imported))
	}
	index := make(map[string]int, len(out))
	for i, inc := range out {
		index[inc.IncidentID] = i
	}

	var sum Summary
	for _, raw := range imported {
		next := raw.Clone()
		idx, found := index[next.IncidentID]
		if !found {
			next.ChangeLog = []safety.ChangeLogEntry{{
				Date:     now,
				Field:    safety.FieldCreated,
				NewValue: next.IncidentID,
				Actor:    safety.ActorImport,
			}}
			next.UpdatedAt = now
			index[next.IncidentID] = len(out)
			out = append(out, next)
			sum.Inserted++
			continue
		}

		merged, entries, locked := mergeImported(out[idx], next, now)
		if locked {
			sum.Locked++
		}
		if len(entries) == 0 && !changed(out[idx], merged) {
			sum.Unchanged++
			continue
		}
		merged.ChangeLog = append(merged.ChangeLog, entries...)
		merged.UpdatedAt = now
		out[idx] = merged
		sum.Updated++
	}
	return out, sum
}

// mergeImported is the two-phase merge of one record. It returns the merged
// record (without new log entries), the entries to append, and whether the
// verified lock withheld any differing derived field.
func mergeImported(prev safety.Incident, imported safety.Incident, now time.Time) (safety.Incident, []safety.ChangeLogEntry, bool) {
	// Phase 1: candidate is the import, carrying identity and history.
	candidate := imported.Clone()
	candidate.ChangeLog = prev.Clone().ChangeLog
	candidate.UpdatedAt = prev.UpdatedAt

	// Phase 2: field policy.
	locked := false
	if prev.IsVerified {
		candidate.IsVerified = true
		for _, f := range fields {
			if f.class != derivedField {
				continue
			}
			if !cmp.Equal(f.get(&prev), f.get(&candidate)) {
				locked = true
			}
			f.copy(&candidate, &prev)
		}
	}

	var entries []safety.ChangeLogEntry
	for _, f := range fields {
		if !f.audited {
			continue
		}
		oldV, newV := f.get(&prev), f.get(&candidate)
		if cmp.Equal(oldV, newV) {
			continue
		}
		entries = append(entries, safety.ChangeLogEntry{
			Date:     now,
			Field:    f.name,
			OldValue: render(oldV),
			NewValue: render(newV),
			Actor:    safety.ActorImport,
		})
	}
	return candidate, entries, locked
}

func changed(prev safety.Incident, next safety.Incident) bool {
	if prev.IsVerified != next.IsVerified {
		return true
	}
	for _, f := range fields {
		if !cmp.Equal(f.get(&prev), f.get(&next)) {
			return true
		}
	}
	return false
}
