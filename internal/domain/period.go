package domain

import "time"

// Period is the granularity used when bucketing entries by time.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates a period query parameter.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(s), nil
	default:
		return "", ErrInvalidPeriod
	}
}

// periodDateLayout is the canonical bucket key format.
const periodDateLayout = "2006-01-02"

// BucketKey maps a timestamp to its calendar-truncated bucket: the day
// itself, the Monday of its week, or the first day of its month, always
// in UTC. Truncated dates avoid the year-boundary ambiguity of bare
// week-of-year or month numbers.
func (p Period) BucketKey(t time.Time) string {
	t = t.UTC()

	switch p {
	case PeriodWeekly:
		// time.Weekday puts Sunday at 0; shift so weeks start on Monday.
		offset := (int(t.Weekday()) + 6) % 7
		t = t.AddDate(0, 0, -offset)
	case PeriodMonthly:
		t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	return t.Format(periodDateLayout)
}
