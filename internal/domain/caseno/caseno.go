// Package caseno parses, orders and matches case numbers ("registro PPU") such
// as D-123-2024, LEG-45-2021-A or L. 7-2020. It is pure and has no I/O.
package caseno

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind is the case-number family, derived from its prefix.
type Kind int

const (
	KindOther Kind = iota
	KindDenuncia
	KindLegajo
	KindLegajoShort
)

// String returns the prefix family name.
func (k Kind) String() string {
	switch k {
	case KindDenuncia:
		return "DENUNCIA"
	case KindLegajo:
		return "LEGAJO"
	case KindLegajoShort:
		return "LEGAJO_CORTO"
	default:
		return "OTRO"
	}
}

// listingOrder merges both legajo spellings into one rank.
func (k Kind) listingOrder() int {
	switch k {
	case KindDenuncia:
		return 0
	case KindLegajo, KindLegajoShort:
		return 1
	default:
		return 2
	}
}

// Number is a parsed case number. Missing numeric parts are zero.
type Number struct {
	Raw    string
	Kind   Kind
	Number int
	Year   int
	Suffix string
}

var (
	digitsRe = regexp.MustCompile(`\d+`)
	suffixRe = regexp.MustCompile(`-[A-Z]+$`)
)

// Parse splits s into family, number, year and suffix. It never fails: input
// that does not look like a case number yields KindOther with zero parts.
func Parse(s string) Number {
	p := strings.ToUpper(strings.TrimSpace(s))
	n := Number{Raw: p}

	switch {
	case strings.HasPrefix(p, "D-"):
		n.Kind = KindDenuncia
	case strings.HasPrefix(p, "LEG-"):
		n.Kind = KindLegajo
	case strings.HasPrefix(p, "L."):
		n.Kind = KindLegajoShort
	default:
		n.Kind = KindOther
	}

	nums := digitsRe.FindAllString(p, 2)
	if len(nums) >= 1 {
		n.Number, _ = strconv.Atoi(nums[0])
	}
	if len(nums) >= 2 {
		n.Year, _ = strconv.Atoi(nums[1])
	}
	n.Suffix = suffixRe.FindString(p)
	return n
}

// Compare orders case numbers for listings: newest year first, then
// denuncias before legajos before the rest, then by number, then unsuffixed
// before suffixed, then by raw text.
func Compare(a, b string) int {
	pa, pb := Parse(a), Parse(b)
	switch {
	case pa.Year != pb.Year:
		return cmpInt(pb.Year, pa.Year)
	case pa.Kind.listingOrder() != pb.Kind.listingOrder():
		return cmpInt(pa.Kind.listingOrder(), pb.Kind.listingOrder())
	case pa.Number != pb.Number:
		return cmpInt(pa.Number, pb.Number)
	case pa.Suffix != pb.Suffix:
		return strings.Compare(pa.Suffix, pb.Suffix)
	default:
		return strings.Compare(pa.Raw, pb.Raw)
	}
}

// Sort orders numbers in place using Compare.
func Sort(numbers []string) {
	sort.SliceStable(numbers, func(i, j int) bool {
		return Compare(numbers[i], numbers[j]) < 0
	})
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Filename tokens
// ─────────────────────────────────────────────────────────────────────────────

var tokenRe = regexp.MustCompile(`(?i)(D-\d{1,4}-\d{4}(?:-[A-Z])?|LEG-\d{1,4}-\d{4}(?:-[A-Z])?|L\.?\s?\d{1,4}-\d{4}(?:-[A-Z])?)`)

// FindToken returns the first case number embedded in a filename, upper-cased.
func FindToken(filename string) (string, bool) {
	m := tokenRe.FindString(filename)
	if m == "" {
		return "", false
	}
	return strings.ToUpper(m), true
}
