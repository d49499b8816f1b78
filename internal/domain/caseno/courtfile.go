package caseno

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CourtFile is the seven-part court file number ("expediente de juzgado"),
// e.g. 01234-2023-5-1801-JR-PE-02, captured field by field by the front end.
type CourtFile struct {
	Part1 string `json:"campo1"`
	Part2 string `json:"campo2"`
	Part3 string `json:"campo3"`
	Part4 string `json:"campo4"`
	Part5 string `json:"campo5"`
	Part6 string `json:"campo6"`
	Part7 string `json:"campo7"`
}

var (
	fiveDigits  = regexp.MustCompile(`^\d{5}$`)
	fourDigits  = regexp.MustCompile(`^\d{4}$`)
	upTo3Digits = regexp.MustCompile(`^\d{1,3}$`)
	upTo2Digits = regexp.MustCompile(`^\d{1,2}$`)
	twoLetters  = regexp.MustCompile(`^[A-Z]{2}$`)
)

func (c CourtFile) parts() []string {
	return []string{
		strings.TrimSpace(c.Part1), strings.TrimSpace(c.Part2), strings.TrimSpace(c.Part3),
		strings.TrimSpace(c.Part4), strings.TrimSpace(c.Part5), strings.TrimSpace(c.Part6),
		strings.TrimSpace(c.Part7),
	}
}

// Validate returns one message per invalid part keyed "campo1".."campo7".
// An empty map means the court file number is well formed.
func (c CourtFile) Validate() map[string]string {
	p := c.parts()
	errs := make(map[string]string)

	if !fiveDigits.MatchString(p[0]) {
		errs["campo1"] = "Debe tener exactamente 5 dígitos."
	}
	if !fourDigits.MatchString(p[1]) {
		errs["campo2"] = "Debe tener exactamente 4 dígitos."
	} else if y, _ := strconv.Atoi(p[1]); y < 1900 || y > 3000 {
		errs["campo2"] = "Debe estar entre 1900 y 3000."
	}
	if !upTo3Digits.MatchString(p[2]) {
		errs["campo3"] = "Debe tener entre 1 y 3 dígitos."
	}
	if !fourDigits.MatchString(p[3]) {
		errs["campo4"] = "Debe tener exactamente 4 dígitos."
	}
	if !twoLetters.MatchString(p[4]) {
		errs["campo5"] = "Debe tener exactamente 2 letras mayúsculas."
	}
	if !twoLetters.MatchString(p[5]) {
		errs["campo6"] = "Debe tener exactamente 2 letras mayúsculas."
	}
	if !upTo2Digits.MatchString(p[6]) {
		errs["campo7"] = "Debe tener entre 1 y 2 dígitos."
	}
	return errs
}

// String renders the court file as stored in the origen column.
func (c CourtFile) String() string {
	return fmt.Sprintf("Exp. %s", strings.Join(c.parts(), "-"))
}
