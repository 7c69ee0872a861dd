package telemetry

import (
	"fmt"
	"time"
)

// DateLayout is the machine-sortable calendar date format sent to the backend.
const DateLayout = "2006-01-02"

// DateRange is an inclusive pair of calendar dates (midnight in the location of "now").
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// StartParam returns Start formatted for the start_date query parameter.
func (r DateRange) StartParam() string { return r.Start.Format(DateLayout) }

// EndParam returns End formatted for the end_date query parameter.
func (r DateRange) EndParam() string { return r.End.Format(DateLayout) }

func (r DateRange) String() string { return r.StartParam() + ".." + r.EndParam() }

// Compute returns the range covering the trailing offsetDays calendar days,
// ending on the calendar date of now.
func Compute(offsetDays int, now time.Time) (DateRange, error) {
	if offsetDays <= 0 {
		return DateRange{}, fmt.Errorf("offset must be positive, got %d: %w", offsetDays, ErrInvalidArgument)
	}
	end := calendarDate(now)
	return DateRange{
		Start: end.AddDate(0, 0, -offsetDays),
		End:   end,
	}, nil
}

// calendarDate truncates t to midnight in its own location.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
