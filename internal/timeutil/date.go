package timeutil

import "time"

const (
	OneHour = time.Hour
	OneDay  = 24 * time.Hour
)

// DateHelper computes calendar boundaries relative to a fixed instant.
// All boundaries keep the location of Now.
type DateHelper struct {
	Now time.Time
}

func NewDateHelper() *DateHelper {
	return &DateHelper{Now: time.Now().UTC()}
}

func (h *DateHelper) ThisHour() time.Time {
	n := h.Now
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), 0, 0, 0, n.Location())
}

func (h *DateHelper) NextHour() time.Time {
	return h.ThisHour().Add(OneHour)
}

func (h *DateHelper) PreviousHour() time.Time {
	return h.ThisHour().Add(-OneHour)
}

// Today is midnight of the current day.
func (h *DateHelper) Today() time.Time {
	return midnight(h.Now)
}

func (h *DateHelper) Yesterday() time.Time {
	return h.Today().AddDate(0, 0, -1)
}

func (h *DateHelper) Tomorrow() time.Time {
	return h.Today().AddDate(0, 0, 1)
}

func (h *DateHelper) ThisMonthStart() time.Time {
	return h.MonthStart(h.Now)
}

func (h *DateHelper) LastMonthStart() time.Time {
	return h.PreviousMonth(h.Now)
}

func (h *DateHelper) NextMonthStart() time.Time {
	return h.NextMonth(h.Now)
}

// ThisMonthEnd is midnight on the last day of the current month.
func (h *DateHelper) ThisMonthEnd() time.Time {
	return h.MonthEnd(h.Now)
}

func (h *DateHelper) LastMonthEnd() time.Time {
	return h.MonthEnd(h.LastMonthStart())
}

func (h *DateHelper) NextMonthEnd() time.Time {
	return h.MonthEnd(h.NextMonthStart())
}

// MonthStart is midnight on the 1st of t's month.
func (h *DateHelper) MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd is midnight on the last day of t's month.
func (h *DateHelper) MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), h.DaysInMonth(t), 0, 0, 0, 0, t.Location())
}

// NextMonth returns the first of the month following t.
func (h *DateHelper) NextMonth(t time.Time) time.Time {
	return h.MonthEnd(t).AddDate(0, 0, 1)
}

// PreviousMonth returns the first of the month preceding t.
func (h *DateHelper) PreviousMonth(t time.Time) time.Time {
	return h.MonthStart(h.MonthStart(t).AddDate(0, 0, -1))
}

// NDaysAgo returns midnight n days before t.
func (h *DateHelper) NDaysAgo(t time.Time, n int) time.Time {
	return midnight(t).AddDate(0, 0, -n)
}

// ListDays returns every midnight from start's day through end's day, inclusive.
func (h *DateHelper) ListDays(start, end time.Time) []time.Time {
	first := midnight(start)
	last := midnight(end)
	days := make([]time.Time, 0)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ListMonths returns the first of every month touched by [start, end].
func (h *DateHelper) ListMonths(start, end time.Time) []time.Time {
	months := make([]time.Time, 0)
	limit := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
	for m := h.MonthStart(start); m.Before(limit); m = h.NextMonth(m) {
		months = append(months, m)
	}
	return months
}

func (h *DateHelper) DaysInMonth(t time.Time) int {
	// day 0 of the next month normalizes to the last day of this one
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
