package safety

import (
	"fmt"
	"time"
)

// ExposureSource tags where an hours value came from.
type ExposureSource string

const (
	SourceManual  ExposureSource = "manual"
	SourceAuto    ExposureSource = "auto"
	SourcePending ExposureSource = "pending"
)

// ExposureHour is the man-hours denominator for one (site, period).
type ExposureHour struct {
	ID     string
	Site   string
	Period string
	Hours  float64
	Source ExposureSource
}

// ExposureID builds the provenance-tagged identifier of an exposure record.
func ExposureID(source ExposureSource, site string, period string) string {
	return fmt.Sprintf("%s:%s:%s", source, site, period)
}

// GlobalKmRecord holds fleet kilometers for one year.
type GlobalKmRecord struct {
	Year int
	Km   float64
}

// ValidPeriod reports whether p is a "YYYY-MM" period.
func ValidPeriod(p string) bool {
	if len(p) != 7 {
		return false
	}
	_, err := time.Parse("2006-01", p)
	return err == nil
}
