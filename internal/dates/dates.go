// Package dates resolves the day-range cells of the event table into concrete
// calendar dates.
//
// Rows only carry day numbers. The year and month come from the most recent
// anchor row, whose date cell embeds a machine-readable <time> tag. The
// resolver is a pure fold step: Step takes the context produced by the
// previous row and returns the context for the next one.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DayLayout is the serialized form of a resolved day.
const DayLayout = "2006-01-02"

var (
	anchorPattern   = regexp.MustCompile(`<time datetime="(2[0-9]{3})-([0-9]{2})-01T00:00:00Z">`)
	dayRangePattern = regexp.MustCompile(`^([0-9]{1,2})(?:[-–]([0-9]{1,2}))?$`)
)

// Context is the year and month carried from the last anchor row. A zero
// field means no anchor has been seen yet.
type Context struct {
	Year  int
	Month int
}

// Complete reports whether both anchor values are known.
func (c Context) Complete() bool {
	return c.Year != 0 && c.Month != 0
}

// Range is an inclusive span of whole days. Start is midnight UTC of the
// first day and End is the last second of the final day.
type Range struct {
	Start time.Time
	End   time.Time
}

// StartDay formats the first day as YYYY-MM-DD.
func (r Range) StartDay() string { return r.Start.UTC().Format(DayLayout) }

// EndDay formats the last day as YYYY-MM-DD.
func (r Range) EndDay() string { return r.End.UTC().Format(DayLayout) }

// Anchor extracts the year and month of an anchor tag in cell.
func Anchor(cell string) (year, month int, ok bool) {
	m := anchorPattern.FindStringSubmatch(cell)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// DayRange parses "N", "N-M" or "N–M". end is zero when the cell names a
// single day. A start day of 0 is not a day range.
func DayRange(cell string) (start, end int, ok bool) {
	m := dayRangePattern.FindStringSubmatch(strings.TrimSpace(cell))
	if m == nil {
		return 0, 0, false
	}
	start, _ = strconv.Atoi(m[1])
	if start == 0 {
		return 0, 0, false
	}
	if m[2] != "" {
		end, _ = strconv.Atoi(m[2])
	}
	return start, end, true
}

// Resolve turns a day range into concrete instants within ctx.
//
// An end day smaller than the start day continues into the following month.
// Month overflow is normalized by the calendar, so a December range rolls
// into January of the next year.
func Resolve(ctx Context, startDay, endDay int) Range {
	start := midnight(ctx.Year, ctx.Month, startDay)
	last := start
	switch {
	case endDay == 0:
	case endDay < startDay:
		last = midnight(ctx.Year, ctx.Month+1, endDay)
	default:
		last = midnight(ctx.Year, ctx.Month, endDay)
	}
	return Range{
		Start: start,
		End:   last.AddDate(0, 0, 1).Add(-time.Second),
	}
}

// Step applies one date cell to ctx. The returned context reflects any anchor
// in the cell. ok is true when the cell is a day range and the context is
// complete, in which case rng holds the resolved dates.
func Step(ctx Context, cell string) (next Context, rng Range, ok bool) {
	next = ctx
	if year, month, found := Anchor(cell); found {
		next = Context{Year: year, Month: month}
	}
	startDay, endDay, matched := DayRange(cell)
	if !matched || !next.Complete() {
		return next, Range{}, false
	}
	return next, Resolve(next, startDay, endDay), true
}

func midnight(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
