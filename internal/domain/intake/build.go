package intake

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"safetyops/internal/domain/bodyzone"
	"safetyops/internal/domain/classify"
	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
)

// Sheet is one worksheet: the header row and the data rows below it.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Result is the outcome of Build. Rules is the input rule table plus one auto
// rule per newly seen type label.
type Result struct {
	Incidents []safety.Incident
	Rules     []safety.MappingRule
	Warnings  []string
}

// Build constructs incidents from sheet. Missing columns and bad cells turn
// into warnings; only an empty sheet is an error.
func Build(sheet Sheet, rules []safety.MappingRule) (Result, error) {
	if len(sheet.Rows) == 0 {
		return Result{}, safety.ErrEmptyWorkbook
	}

	var res Result
	cols := make(map[string]int, len(Columns))
	for _, c := range Columns {
		idx, ok := normalize.ResolveColumn(sheet.Header, c.Aliases...)
		if !ok {
			if c.Required {
				res.Warnings = append(res.Warnings, fmt.Sprintf("missing column %q", c.Name))
			}
			continue
		}
		cols[c.Name] = idx
	}

	table := newRuleTable(rules)
	seen := make(map[string]int)
	for i, cells := range sheet.Rows {
		rowNum := i + 2
		r := row{header: sheet.Header, cells: cells, cols: cols}
		if r.empty() {
			continue
		}

		id := strings.TrimSpace(r.get(ColID))
		if id == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: missing incident id, skipped", rowNum))
			continue
		}
		if first, dup := seen[id]; dup {
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: duplicate incident id %q, keeping row %d", rowNum, id, first))
			continue
		}
		seen[id] = rowNum

		inc, warnings := buildIncident(r, id, table)
		for _, w := range warnings {
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: %s", rowNum, w))
		}
		res.Incidents = append(res.Incidents, inc)
	}

	res.Rules = table.rules
	return res, nil
}

func buildIncident(r row, id string, table *ruleTable) (safety.Incident, []string) {
	var warnings []string
	inc := safety.Incident{
		IncidentID:    id,
		Name:          strings.TrimSpace(r.get(ColName)),
		Description:   strings.TrimSpace(r.get(ColDescription)),
		Site:          strings.TrimSpace(r.get(ColSite)),
		Type:          strings.TrimSpace(r.get(ColType)),
		Location:      strings.TrimSpace(r.get(ColLocation)),
		PotentialRisk: strings.TrimSpace(r.get(ColPotentialRisk)),
		RawPayload:    r.payload(),
	}

	date, ok := normalize.ParseDate(r.get(ColEventDate))
	if !ok {
		date, ok = normalize.ParseDate(r.get(ColLoadDate))
	}
	if ok {
		inc.EventDate = date
		inc.Month, _ = strconv.Atoi(date[5:7])
	} else {
		warnings = append(warnings, "no event or load date")
	}

	if y, ok := normalize.SanitizeYear(r.get(ColYear)); ok {
		inc.Year = y
	} else if inc.EventDate != "" {
		inc.Year, _ = strconv.Atoi(inc.EventDate[:4])
	}

	inc.DaysAway = parseDays(r.get(ColDaysAway))
	inc.DaysRestricted = parseDays(r.get(ColDaysRestricted))
	inc.BodyZones = bodyzone.Detect(inc.Location)

	base := safety.Flags{
		Fatality:            parseBool(r.get(ColFatality)),
		ClientCommunication: parseBool(r.get(ColClientComm)),
	}
	switch parseTier(r.get(ColPSETier)) {
	case 1:
		base.ProcessSafetyTier1 = true
	case 2:
		base.ProcessSafetyTier2 = true
	}

	result := classify.Classify(inc.Type, base)
	inc.Flags = result.Flags
	inc.IsVerified = result.Verified
	if !result.Verified {
		if hint, ok := table.lookup(inc.Type); ok {
			inc.Flags = mergeHint(hint.Flags, base)
		}
	}
	// Learned rules carry only what the label implies, not row columns.
	table.learn(inc.Type, classify.Classify(inc.Type, safety.Flags{}).Flags)
	return inc, warnings
}

// mergeHint overlays the flags set explicitly by row columns on a rule hint.
func mergeHint(hint safety.Flags, explicit safety.Flags) safety.Flags {
	out := hint
	out.Fatality = out.Fatality || explicit.Fatality
	out.ProcessSafetyTier1 = out.ProcessSafetyTier1 || explicit.ProcessSafetyTier1
	out.ProcessSafetyTier2 = out.ProcessSafetyTier2 || explicit.ProcessSafetyTier2
	out.ClientCommunication = out.ClientCommunication || explicit.ClientCommunication
	if out.InItinere {
		out.TransitLaboral = false
	}
	return out
}

type row struct {
	header []string
	cells  []string
	cols   map[string]int
}

func (r row) get(col string) string {
	idx, ok := r.cols[col]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return r.cells[idx]
}

func (r row) empty() bool {
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// payload snapshots the row as header -> cell. Blank headers are dropped and
// a repeated header keeps its first cell.
func (r row) payload() map[string]string {
	out := make(map[string]string, len(r.header))
	for i, h := range r.header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := out[h]; ok {
			continue
		}
		v := ""
		if i < len(r.cells) {
			v = r.cells[i]
		}
		out[h] = v
	}
	return out
}

func parseDays(raw string) int {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func parseBool(raw string) bool {
	switch normalize.Canonical(raw) {
	case "SI", "S", "YES", "Y", "TRUE", "VERDADERO", "1", "X":
		return true
	}
	return false
}

func parseTier(raw string) int {
	s := normalize.Canonical(raw)
	s = strings.TrimPrefix(s, "TIER")
	s = strings.TrimPrefix(s, "T")
	switch strings.TrimSpace(s) {
	case "1":
		return 1
	case "2":
		return 2
	}
	return 0
}
