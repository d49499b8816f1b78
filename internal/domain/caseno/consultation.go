package caseno

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ConsultationPrefix starts every consultation record number.
const ConsultationPrefix = "CONS-"

// ValidYear reports whether year is a four-digit year.
func ValidYear(year string) bool {
	return yearRe.MatchString(year)
}

// ConsultationPattern is the LIKE pattern matching the consultation numbers
// of year.
func ConsultationPattern(year string) string {
	return ConsultationPrefix + "%-" + year
}

// NextConsultation returns the consultation number following the highest
// CONS-<n>-<year> in existing, zero-padded to three digits. Numbers of other
// years, suffixed numbers and anything else are ignored. The first number of
// a year is CONS-001-<year>.
func NextConsultation(existing []string, year string) string {
	re := regexp.MustCompile(`^CONS-(\d+)-` + regexp.QuoteMeta(year) + `$`)
	highest := 0
	for _, n := range existing {
		m := re.FindStringSubmatch(strings.TrimSpace(n))
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if v > highest {
			highest = v
		}
	}
	return fmt.Sprintf("%s%03d-%s", ConsultationPrefix, highest+1, year)
}

// SpecialConsultation builds a hand-picked consultation number,
// CONS-<number>-<year> with an optional -<suffix>. number is used as given.
func SpecialConsultation(number, year, suffix string) string {
	out := ConsultationPrefix + strings.TrimSpace(number) + "-" + year
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		out += "-" + suffix
	}
	return out
}
