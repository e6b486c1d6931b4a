// Package cronexpr wraps robfig/cron/v3's expression parser for on-demand
// "next occurrence after t" computation. It deliberately uses only
// cron.Parser and cron.Schedule — never cron.Cron's own goroutine-based
// runner — since the scheduler drives its own sleep/wake loop (see
// internal/scheduler).
package cronexpr

import (
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts the standard 5-field cron format plus the predefined
// descriptors (@daily, @hourly, ...), matching the field set documented in
// spec.md's schedule grammar.
var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Schedule wraps a parsed cron.Schedule together with the IANA timezone (if
// any) it should be evaluated in.
type Schedule struct {
	inner cron.Schedule
	loc   *time.Location
}

// Parse parses expr under robfig/cron/v3's standard grammar. tz, if
// non-empty, must be a valid IANA zone name; an empty tz means UTC.
func Parse(expr, tz string) (Schedule, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return Schedule{}, err
	}
	loc := time.UTC
	if tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return Schedule{}, err
		}
	}
	return Schedule{inner: sched, loc: loc}, nil
}

// ValidateExpr reports whether expr parses as a valid cron expression,
// without needing a timezone. Used by the catalog on create/update.
func ValidateExpr(expr string) error {
	_, err := parser.Parse(expr)
	return err
}

// ValidateTimezone reports whether tz parses as a valid IANA zone.
func ValidateTimezone(tz string) error {
	_, err := time.LoadLocation(tz)
	return err
}

// Next returns the next occurrence strictly after t. t is converted into
// the Schedule's timezone, the occurrence is computed in local time, and
// the result is converted back to t's original location — matching
// robfig/cron/v3's own exclusive-on-t semantics exactly (Schedule.Next(t)
// never returns t itself, even when t is an exact match).
func (s Schedule) Next(t time.Time) time.Time {
	local := t.In(s.loc)
	next := s.inner.Next(local)
	return next.In(t.Location())
}
