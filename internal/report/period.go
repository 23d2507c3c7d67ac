package report

import (
	"fmt"
	"time"

	"stationreports/internal/domain"
)

// Bucket truncates t to the period it falls in and returns the grouping key
// together with the bucket's first day. The first day always lies inside the
// bucket it labels.
func Bucket(t time.Time, period domain.PeriodType) (string, time.Time) {
	day := truncateDay(t)
	switch period {
	case domain.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), start
	case domain.PeriodMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start.Format("2006-01"), start
	default:
		return day.Format(DateLayout), day
	}
}

// BucketEnd is the exclusive end of the bucket starting at start.
func BucketEnd(start time.Time, period domain.PeriodType) time.Time {
	switch period {
	case domain.PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case domain.PeriodMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// PeriodLabel renders a bucket start for display.
func PeriodLabel(start time.Time, period domain.PeriodType) string {
	switch period {
	case domain.PeriodWeekly:
		year, week := start.ISOWeek()
		return fmt.Sprintf("Week %d, %d (%s)", week, year, start.Format("Jan 02"))
	case domain.PeriodMonthly:
		return start.Format("January 2006")
	default:
		return start.Format("Jan 02, 2006")
	}
}

// SQLTrunc maps a period type onto the PostgreSQL date_trunc field.
func SQLTrunc(period domain.PeriodType) string {
	switch period {
	case domain.PeriodWeekly:
		return "week"
	case domain.PeriodMonthly:
		return "month"
	default:
		return "day"
	}
}
