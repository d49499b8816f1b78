// Package deadline implements the business-day arithmetic behind case
// deadlines ("plazos"): due dates, remaining business days and the labels
// shown in the deadlines table. Weekends are the only non-working days.
package deadline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Labels rendered by the front end.
const (
	LabelExpired    = "Vencido"
	LabelDueToday   = "URGENTE RESOLVER EN EL DÍA"
	LabelIncomplete = "Datos incompletos"
	LabelError      = "Error en cálculo"
)

const (
	minYear = 1900
	maxYear = 2100
)

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddBusinessDays moves n business days from start, forwards for positive n
// and backwards for negative n. Weekend days are skipped. The second result is
// false when the walk leaves the years 1900-2100, which flags corrupt input.
func AddBusinessDays(start time.Time, n int) (time.Time, bool) {
	if n == 0 {
		return start, true
	}
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	current := start
	for i := 0; i < n; i++ {
		current = current.AddDate(0, 0, step)
		for isWeekend(current) {
			current = current.AddDate(0, 0, step)
		}
		if y := current.Year(); y < minYear || y > maxYear {
			return time.Time{}, false
		}
	}
	return current, true
}

// DueDate is the day a term of days business days starting at attendedAt
// expires.
func DueDate(attendedAt time.Time, days int) (time.Time, bool) {
	return AddBusinessDays(attendedAt, days)
}

// RemainingBusinessDays counts the weekdays from now through due, both
// included. It returns -1 once due has passed.
func RemainingBusinessDays(now, due time.Time) int {
	if due.Before(now) {
		return -1
	}
	days := int(due.Sub(now) / (24 * time.Hour))
	remaining := 0
	for i := 0; i <= days; i++ {
		if !isWeekend(now.AddDate(0, 0, i)) {
			remaining++
		}
	}
	return remaining
}

// Label renders the remaining business days.
func Label(remaining int) string {
	switch {
	case remaining < 0:
		return LabelExpired
	case remaining == 1:
		return LabelDueToday
	default:
		return fmt.Sprintf("%d días restantes", remaining)
	}
}

// Result is the evaluated state of one deadline.
type Result struct {
	DueDate   *time.Time
	Remaining int
	Label     string
}

// DueDateString formats the due date as YYYY-MM-DD, or "" when unknown.
func (r Result) DueDateString() string {
	if r.DueDate == nil {
		return ""
	}
	return r.DueDate.Format("2006-01-02")
}

// Evaluate computes the due date and label of a deadline that started at
// attendedAt and lasts term business days. term is free text in the store;
// hearings carry a description instead of a number and evaluate as errors.
func Evaluate(attendedAt *time.Time, term string, now time.Time) Result {
	term = strings.TrimSpace(term)
	if attendedAt == nil || attendedAt.IsZero() || term == "" {
		return Result{Label: LabelIncomplete}
	}
	days, err := strconv.Atoi(term)
	if err != nil || days < 0 {
		return Result{Label: LabelError}
	}
	due, ok := DueDate(*attendedAt, days)
	if !ok {
		return Result{Label: LabelError}
	}
	remaining := RemainingBusinessDays(now, due)
	return Result{DueDate: &due, Remaining: remaining, Label: Label(remaining)}
}

// IsNumericTerm reports whether term is a number of days, as opposed to a
// hearing description. Rows are split on this into actions and hearings.
func IsNumericTerm(term string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(term))
	return err == nil
}
