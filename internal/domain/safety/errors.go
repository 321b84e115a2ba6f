package safety

import "errors"

var (
	ErrEmptyWorkbook    = errors.New("the workbook has no data rows")
	ErrIncidentNotFound = errors.New("incident not found")
	ErrInvalidDate      = errors.New("date is not a recognized calendar date")
	ErrInvalidPeriod    = errors.New("period must be YYYY-MM")
	ErrInvalidHours     = errors.New("hours must be zero or positive")
	ErrInvalidYear      = errors.New("year is out of range")
	ErrSiteRequired     = errors.New("site is required")
	ErrStateVersion     = errors.New("unsupported state version")
)
