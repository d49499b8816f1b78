package caseno

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Search queries
// ─────────────────────────────────────────────────────────────────────────────

var queryRe = regexp.MustCompile(`^(D-|LEG-|L\. ?|CONS-)?(\d{1,4})(?:-(\d{1,4}))?(?:-([A-Z]))?$`)

// defaultPrefixes are tried when a query omits the family prefix.
var defaultPrefixes = []string{"D-", "LEG-", "L. ", "L.", "CONS-"}

// Query is a partially specified case number typed into the search box, such
// as "12", "12-2024" or "LEG-12-2024-A".
type Query struct {
	Prefix string
	Number int
	Year   string
	Suffix string
}

// ParseQuery recognises a search query. Numbers may be typed with or without
// leading zeros.
func ParseQuery(q string) (Query, bool) {
	m := queryRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(q)))
	if m == nil {
		return Query{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return Query{}, false
	}
	return Query{Prefix: m[1], Number: n, Year: m[3], Suffix: m[4]}, true
}

// Variants expands the query into SQL LIKE patterns covering every stored
// spelling: zero padding to widths 1-4, every prefix family when none was
// typed, and wildcards for a missing year or suffix.
func (q Query) Variants() []string {
	prefixes := defaultPrefixes
	if q.Prefix != "" {
		prefixes = []string{q.Prefix}
	}

	year := "%"
	if q.Year != "" {
		year = q.Year + "%"
	}
	suffix := "%"
	if q.Suffix != "" {
		suffix = "-" + q.Suffix
	}

	seen := make(map[string]struct{})
	var out []string
	for _, prefix := range prefixes {
		for width := 1; width <= 4; width++ {
			v := fmt.Sprintf("%s%0*d-%s%s", prefix, width, q.Number, year, suffix)
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Listings
// ─────────────────────────────────────────────────────────────────────────────

// ListingKind selects one of the two per-year case listings.
type ListingKind string

const (
	ListingLegajo   ListingKind = "LEGAJO"
	ListingDenuncia ListingKind = "DENUNCIA"
)

var yearRe = regexp.MustCompile(`^\d{4}$`)

// Listing matches the case numbers of one family and year.
type Listing struct {
	Kind ListingKind
	Year string
	re   *regexp.Regexp
}

// NewListing validates kind and year and compiles the matcher.
func NewListing(kind ListingKind, year string) (*Listing, error) {
	if !yearRe.MatchString(year) {
		return nil, fmt.Errorf("caseno: year %q must have four digits", year)
	}
	var pattern string
	switch kind {
	case ListingLegajo:
		pattern = `^(L\. ?|LEG-)\d{1,4}-` + year + `($|-[A-Z]+$)`
	case ListingDenuncia:
		pattern = `^D-\d+-` + year + `($|-[A-Z]+$)`
	default:
		return nil, fmt.Errorf("caseno: listing kind %q is invalid; expected LEGAJO|DENUNCIA", kind)
	}
	return &Listing{Kind: kind, Year: year, re: regexp.MustCompile(pattern)}, nil
}

// SQLPrefixes returns LIKE patterns that pre-filter candidates in the store.
func (l *Listing) SQLPrefixes() []string {
	if l.Kind == ListingLegajo {
		return []string{"L.%", "LEG-%"}
	}
	return []string{"D-%"}
}

// Matches reports whether number belongs to the listing.
func (l *Listing) Matches(number string) bool {
	return l.re.MatchString(number)
}

// Filter keeps the matching numbers and returns them in listing order.
func (l *Listing) Filter(numbers []string) []string {
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if l.Matches(n) {
			out = append(out, n)
		}
	}
	Sort(out)
	return out
}

// SearchPattern returns the POSIX regex selecting one year of case numbers of
// kind (LEGAJO, DENUNCIA or anything else for both families). ok is false
// when year is not four digits.
func SearchPattern(kind ListingKind, year string) (string, bool) {
	if !yearRe.MatchString(year) {
		return "", false
	}
	denuncia := `D-[0-9]+-` + year + `(-[A-Z])?`
	legajo := `LEG-[0-9]+-` + year + `(-[A-Z])?|L\.? ?[0-9]+-` + year + `(-[A-Z])?`
	switch kind {
	case ListingDenuncia:
		return `^(` + denuncia + `)$`, true
	case ListingLegajo:
		return `^(` + legajo + `)$`, true
	default:
		return `^(` + denuncia + `|` + legajo + `)$`, true
	}
}
