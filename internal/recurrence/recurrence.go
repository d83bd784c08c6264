// Package recurrence turns an event's recurrence rule into concrete session dates and
// the release date of each session's tickets.
//
// Dates are calendar days held as UTC midnight, so stepping never crosses a DST edge.
package recurrence

import (
	"strings"
	"time"

	"ticketly/internal/shared/apperrors"
)

type Kind string

const (
	Single   Kind = "single"
	MultiDay Kind = "multi-day"
	Weekly   Kind = "weekly"
)

// Rule describes when an event happens
type Rule struct {
	Kind             Kind
	StartDate        time.Time
	EndDate          *time.Time
	SelectedWeekdays []string
}

// Schedule controls how session tickets are released ahead of the first date
type Schedule struct {
	LeadDays   int
	CohortSize int
}

func DefaultSchedule() Schedule {
	return Schedule{LeadDays: 20, CohortSize: 7}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts full English names and their three-letter abbreviations, in any case
func ParseWeekday(name string) (time.Weekday, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if d, ok := weekdays[n]; ok {
		return d, true
	}
	if len(n) == 3 {
		for full, d := range weekdays {
			if strings.HasPrefix(full, n) {
				return d, true
			}
		}
	}
	return 0, false
}

// Date truncates t to midnight UTC of its calendar day
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Expand lists the session dates of rule in ascending order. A rule that matches no day
// yields an empty list; a malformed rule is a configuration error.
func Expand(rule Rule) ([]time.Time, error) {
	if rule.StartDate.IsZero() {
		return nil, apperrors.Configuration("start date is required")
	}
	start := Date(rule.StartDate)

	switch rule.Kind {
	case Single:
		return []time.Time{start}, nil
	case MultiDay, Weekly:
	default:
		return nil, apperrors.Configuration("unknown recurrence %q", rule.Kind)
	}

	if rule.EndDate == nil || rule.EndDate.IsZero() {
		return nil, apperrors.Configuration("end date is required for %s events", rule.Kind)
	}
	end := Date(*rule.EndDate)
	if end.Before(start) {
		return nil, apperrors.Configuration("end date %s is before start date %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	include := func(time.Time) bool { return true }
	if rule.Kind == Weekly {
		if len(rule.SelectedWeekdays) == 0 {
			return nil, apperrors.Configuration("weekly events need at least one weekday")
		}
		selected := make(map[time.Weekday]bool, len(rule.SelectedWeekdays))
		for _, name := range rule.SelectedWeekdays {
			d, ok := ParseWeekday(name)
			if !ok {
				return nil, apperrors.Configuration("unknown weekday %q", name)
			}
			selected[d] = true
		}
		include = func(t time.Time) bool { return selected[t.Weekday()] }
	}

	dates := []time.Time{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if include(d) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

// ReleaseStepDays is how far each cohort's release date follows the previous one
const ReleaseStepDays = 7

// ReleaseSchedule returns one release date per session date. Releases start LeadDays before
// the first session (never before today) and advance by ReleaseStepDays every CohortSize sessions.
func (s Schedule) ReleaseSchedule(dates []time.Time, now time.Time) []time.Time {
	if len(dates) == 0 {
		return []time.Time{}
	}
	cohort := s.CohortSize
	if cohort < 1 {
		cohort = 1
	}

	base := Date(dates[0]).AddDate(0, 0, -s.LeadDays)
	if today := Date(now); base.Before(today) {
		base = today
	}

	out := make([]time.Time, len(dates))
	for i := range dates {
		out[i] = base.AddDate(0, 0, ReleaseStepDays*(i/cohort))
	}
	return out
}

// ReleaseSchedule applies the default schedule
func ReleaseSchedule(dates []time.Time, now time.Time) []time.Time {
	return DefaultSchedule().ReleaseSchedule(dates, now)
}
