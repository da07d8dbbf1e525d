package models

import "time"

// FilterKind selects the date window used for listings and totals.
type FilterKind string

const (
	FilterLast30Days FilterKind = "last30Days"
	FilterThisMonth  FilterKind = "thisMonth"
	FilterAllTime    FilterKind = "allTime"
	FilterCustom     FilterKind = "custom"
)

// Valid reports whether k is a known filter kind.
func (k FilterKind) Valid() bool {
	switch k {
	case FilterLast30Days, FilterThisMonth, FilterAllTime, FilterCustom:
		return true
	}
	return false
}

// DateRange is an inclusive custom window. A nil EndDate means "up to and
// including today".
type DateRange struct {
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Filter is an active filter together with its optional custom range.
type Filter struct {
	Kind        FilterKind `json:"kind"`
	CustomRange *DateRange `json:"customRange,omitempty"`
}
