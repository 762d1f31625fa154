package records

import (
	"time"

	"github.com/dentalog/dentalog/internal/i18n"
)

// QuickRange names a date-range shortcut.
type QuickRange string

const (
	QuickRangeToday QuickRange = "today"
	QuickRangeWeek  QuickRange = "week"
	QuickRangeMonth QuickRange = "month"
	QuickRangeClear QuickRange = "clear"
)

// ParseQuickRange validates a quick-range kind from the wire.
func ParseQuickRange(kind string) (QuickRange, bool) {
	switch QuickRange(kind) {
	case QuickRangeToday, QuickRangeWeek, QuickRangeMonth, QuickRangeClear:
		return QuickRange(kind), true
	}
	return "", false
}

// ResolveQuickRange computes the inclusive ISO date bounds for a named range
// relative to the reference instant, in the instant's own location. The week
// always runs Sunday through Saturday regardless of locale. Clear yields
// empty bounds; clearing any record selection alongside is the caller's job.
func ResolveQuickRange(kind QuickRange, now time.Time) (dateFrom, dateTo string) {
	switch kind {
	case QuickRangeToday:
		day := i18n.ToISODate(now)
		return day, day
	case QuickRangeWeek:
		// time.Weekday numbers Sunday as 0, matching the fixed week rule.
		start := now.AddDate(0, 0, -int(now.Weekday()))
		end := start.AddDate(0, 0, 6)
		return i18n.ToISODate(start), i18n.ToISODate(end)
	case QuickRangeMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		// Day zero of the next month is the last day of this one.
		end := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
		return i18n.ToISODate(start), i18n.ToISODate(end)
	}
	return "", ""
}
