package domain

import (
	"fmt"
	"strconv"
	"time"
)

// 분기
const (
	Q1 = "Q1"
	Q2 = "Q2"
	Q3 = "Q3"
	Q4 = "Q4"
)

const dateLayout = "2006-01-02"

// QuarterOf returns the quarter for the month of t (Q1=Jan–Mar ... Q4=Oct–Dec)
func QuarterOf(t time.Time) string {
	switch m := t.Month(); {
	case m <= time.March:
		return Q1
	case m <= time.June:
		return Q2
	case m <= time.September:
		return Q3
	default:
		return Q4
	}
}

// DateRange inclusive calendar date range in YYYY-MM-DD form
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// QuarterDateRange maps (year, quarter) to its calendar dates.
// An unrecognized quarter yields the whole year.
func QuarterDateRange(year, quarter string) DateRange {
	switch quarter {
	case Q1:
		return DateRange{Start: year + "-01-01", End: year + "-03-31"}
	case Q2:
		return DateRange{Start: year + "-04-01", End: year + "-06-30"}
	case Q3:
		return DateRange{Start: year + "-07-01", End: year + "-09-30"}
	case Q4:
		return DateRange{Start: year + "-10-01", End: year + "-12-31"}
	default:
		return DateRange{Start: year + "-01-01", End: year + "-12-31"}
	}
}

// Bounds converts the range to instants in loc; the end is inclusive through 23:59:59
func (r DateRange) Bounds(loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, r.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", r.Start, err)
	}
	end, err := time.ParseInLocation(dateLayout, r.End, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", r.End, err)
	}
	end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end, nil
}

// ValidDate reports whether s is a YYYY-MM-DD date
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ValidYear reports whether s is a four digit year
func ValidYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
