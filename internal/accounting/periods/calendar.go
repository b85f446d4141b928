package periods

import (
	"time"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// MonthlyPeriods splits [start, end] into calendar-month periods, clipping the
// first and last month to the year bounds.
func MonthlyPeriods(yearID int64, start, end time.Time) []Period {
	start = shared.DateOnly(start)
	end = shared.DateOnly(end)
	var out []Period
	cursor := start
	for idx := 1; !cursor.After(end); idx++ {
		monthEnd := time.Date(cursor.Year(), cursor.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		if monthEnd.After(end) {
			monthEnd = end
		}
		out = append(out, Period{
			YearID:      yearID,
			PeriodIndex: idx,
			StartDate:   cursor,
			EndDate:     monthEnd,
			IsOpen:      true,
		})
		cursor = monthEnd.AddDate(0, 0, 1)
	}
	return out
}

// SelectYear picks the year accepting postings on date out of the years covering it.
// Archived years never accept postings.
func SelectYear(date time.Time, covering []Year) (Year, error) {
	var closed *Year
	for i := range covering {
		y := covering[i]
		if !y.Covers(date) {
			continue
		}
		switch y.Status {
		case YearStatusOpen:
			return y, nil
		case YearStatusClosed:
			if closed == nil {
				closed = &covering[i]
			}
		}
	}
	if closed != nil {
		return Year{}, shared.YearClosed(date, closed.ID)
	}
	return Year{}, shared.NoCoveringPeriod(date, 0)
}

// CheckPeriod validates the covering period of an open year. period is nil when none covers date.
func CheckPeriod(date time.Time, year Year, period *Period) (Resolution, error) {
	if year.Status == YearStatusClosed {
		return Resolution{}, shared.YearClosed(date, year.ID)
	}
	if year.Status != YearStatusOpen {
		return Resolution{}, shared.NoCoveringPeriod(date, year.ID)
	}
	if period == nil || !period.Covers(date) {
		return Resolution{}, shared.NoCoveringPeriod(date, year.ID)
	}
	if !period.IsOpen {
		return Resolution{}, shared.PeriodClosed(date, year.ID, period.ID)
	}
	return Resolution{Year: year, Period: *period}, nil
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !shared.DateOnly(aStart).After(shared.DateOnly(bEnd)) && !shared.DateOnly(bStart).After(shared.DateOnly(aEnd))
}
