package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// serialUnixOffset is the number of days between the spreadsheet epoch
// (1899-12-30) and the Unix epoch.
const serialUnixOffset = 25569

const isoDay = "2006-01-02"

// maxSerialDays is the last day of maxYear as days since the Unix epoch.
// Larger serials are typed numbers such as 20250310, not dates.
var maxSerialDays = float64(time.Date(maxYear, 12, 31, 0, 0, 0, 0, time.UTC).Unix() / 86400)

var (
	isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	dmyPrefix = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})(?:[ T].*)?$`)
	serialNum = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// ParseDate resolves a cell value to "YYYY-MM-DD". It accepts spreadsheet
// serial numbers, ISO-prefixed strings and DD/MM/YYYY strings with / or -
// separators and an optional trailing time.
func ParseDate(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case time.Time:
		if val.IsZero() {
			return "", false
		}
		return val.UTC().Format(isoDay), true
	case float64:
		return fromSerial(val)
	case float32:
		return fromSerial(float64(val))
	case int:
		return fromSerial(float64(val))
	case int64:
		return fromSerial(float64(val))
	case string:
		return parseDateString(val)
	default:
		return "", false
	}
}

func parseDateString(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if serialNum.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "", false
		}
		return fromSerial(f)
	}

	if isoPrefix.MatchString(s) {
		day := s[:10]
		if _, err := time.Parse(isoDay, day); err != nil {
			return "", false
		}
		return day, true
	}

	m := dmyPrefix.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return "", false
	}
	return t.Format(isoDay), true
}

func fromSerial(serial float64) (string, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 {
		return "", false
	}
	days := math.Floor(serial) - serialUnixOffset
	if days > maxSerialDays {
		return "", false
	}
	t := time.Unix(int64(days)*86400, 0).UTC()
	return t.Format(isoDay), true
}
