package model

import (
	"encoding/json"
	"fmt"
)

// MinYear is the earliest year a Date may hold.
const MinYear = -50000

// MaxYear is the latest year a Date may hold.
const MaxYear = 10000

// Precision indicates which fields of a Date carry meaning.
// A missing month or day means "unknown at that precision", not "unbounded".
type Precision int

const (
	PrecisionYear Precision = iota + 1
	PrecisionMonth
	PrecisionDay
)

// Date is a partially specified calendar date. The year is always set; the
// month and day are only meaningful at the corresponding Precision. A day can
// never be set without a month.
type Date struct {
	Year      int       `json:"year"`
	Month     int       `json:"month,omitempty"`
	Day       int       `json:"day,omitempty"`
	Precision Precision `json:"-"`
}

// NewDate creates a validated Date. A month or day of 0 means "not set".
// Setting a day without a month is invalid.
func NewDate(year, month, day int) (Date, error) {
	if year < MinYear || year > MaxYear {
		return Date{}, fmt.Errorf("year %d out of range [%d, %d]", year, MinYear, MaxYear)
	}
	if month == 0 && day != 0 {
		return Date{}, fmt.Errorf("day %d set without a month", day)
	}
	if month != 0 && (month < 1 || month > 12) {
		return Date{}, fmt.Errorf("month %d out of range [1, 12]", month)
	}
	if day != 0 && (day < 1 || day > 31) {
		return Date{}, fmt.Errorf("day %d out of range [1, 31]", day)
	}

	precision := PrecisionYear
	if month != 0 {
		precision = PrecisionMonth
	}
	if day != 0 {
		precision = PrecisionDay
	}

	return Date{Year: year, Month: month, Day: day, Precision: precision}, nil
}

// YearDate creates a year-only Date.
func YearDate(year int) (Date, error) {
	return NewDate(year, 0, 0)
}

// Compare orders two dates. A missing month or day compares as 1, so a
// year-only date sorts before (or equal to) any date in the same year with an
// explicit month, and likewise for days within a month.
func (d Date) Compare(other Date) int {
	if d.Year != other.Year {
		if d.Year < other.Year {
			return -1
		}
		return 1
	}
	if dm, om := sortComponent(d.Month), sortComponent(other.Month); dm != om {
		if dm < om {
			return -1
		}
		return 1
	}
	if dd, od := sortComponent(d.Day), sortComponent(other.Day); dd != od {
		if dd < od {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// CompareAtSharedPrecision orders two dates using only the components both
// carry. Once a component is missing on either side the comparison stops, so
// 1914 and 1914-06-28 compare equal at their shared (year) precision.
func (d Date) CompareAtSharedPrecision(other Date) int {
	if d.Year != other.Year {
		if d.Year < other.Year {
			return -1
		}
		return 1
	}
	if d.Month == 0 || other.Month == 0 {
		return 0
	}
	if d.Month != other.Month {
		if d.Month < other.Month {
			return -1
		}
		return 1
	}
	if d.Day == 0 || other.Day == 0 {
		return 0
	}
	if d.Day != other.Day {
		if d.Day < other.Day {
			return -1
		}
		return 1
	}
	return 0
}

func sortComponent(v int) int {
	if v == 0 {
		return 1
	}
	return v
}

var monthNames = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// LongFormat renders the date like "11 Nov 1918", omitting unset components.
func (d Date) LongFormat() string {
	switch d.Precision {
	case PrecisionDay:
		return fmt.Sprintf("%d %s %d", d.Day, monthNames[d.Month-1], d.Year)
	case PrecisionMonth:
		return fmt.Sprintf("%s %d", monthNames[d.Month-1], d.Year)
	default:
		return fmt.Sprintf("%d", d.Year)
	}
}

// ShortFormat renders the date like "11 / 11 / 1918", with "-" for unset
// components.
func (d Date) ShortFormat() string {
	day, month := "-", "-"
	if d.Precision >= PrecisionMonth {
		month = fmt.Sprintf("%d", d.Month)
	}
	if d.Precision == PrecisionDay {
		day = fmt.Sprintf("%d", d.Day)
	}
	return fmt.Sprintf("%s / %s / %d", day, month, d.Year)
}

func (d Date) String() string {
	return d.LongFormat()
}

// rawDate mirrors the JSON wire shape with nullable month and day.
type rawDate struct {
	Year  int  `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

// UnmarshalJSON validates the incoming date; a null or absent month/day means
// unset.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw rawDate
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	month, day := 0, 0
	if raw.Month != nil {
		month = *raw.Month
	}
	if raw.Day != nil {
		day = *raw.Day
	}
	date, err := NewDate(raw.Year, month, day)
	if err != nil {
		return err
	}
	*d = date
	return nil
}
