package idcard

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// LineWidth is the fixed width of every MRZ line.
	LineWidth = 44

	mrzFiller      = '<'
	mrzPrefix      = "IDKYA"
	mrzIssuerCode  = "4041"
	mrzDocClass    = "B"
	mrzCheckSuffix = "2"
	unknownDate    = "00000000"
	unknownID      = "00000000"
	unknownName    = "UNKNOWN"
)

// Holder carries the personal fields encoded into the MRZ.
type Holder struct {
	IDNumber    string
	FullName    string
	Gender      string
	DateOfBirth time.Time
}

// MRZ builds the three machine-readable lines for a holder card issued at issued.
func MRZ(h Holder, issued time.Time) [3]string {
	id := sanitize(h.IDNumber)
	if id == "" {
		id = unknownID
	}

	age := "00"
	if !h.DateOfBirth.IsZero() {
		years := Age(h.DateOfBirth, issued)
		if years > 99 {
			years = 99
		}
		age = fmt.Sprintf("%02d", years)
	}

	line1 := mrzPrefix + id + "<" + mrzIssuerCode + "<" + age + "<" + mrzIssuerCode

	dob := unknownDate
	if !h.DateOfBirth.IsZero() {
		dob = h.DateOfBirth.Format("02012006")
	}
	line2 := dob + genderMarker(h.Gender) + issued.Format("02012006") + "<" + mrzDocClass + firstN(id, 8) + "<" + mrzCheckSuffix

	line3 := nameField(h.FullName)

	return [3]string{fit(line1), fit(line2), fit(line3)}
}

func genderMarker(gender string) string {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male", "m":
		return "M"
	case "female", "f":
		return "F"
	default:
		return string(mrzFiller)
	}
}

// nameField collapses whitespace runs to a single filler and replaces anything outside [A-Z0-9].
func nameField(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return unknownName
	}
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToUpper(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteRune(mrzFiller)
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(mrzRune(r))
	}
	return b.String()
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(value)) {
		b.WriteRune(mrzRune(r))
	}
	return b.String()
}

func mrzRune(r rune) rune {
	if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
		return r
	}
	return mrzFiller
}

func firstN(value string, n int) string {
	if len(value) <= n {
		return value
	}
	return value[:n]
}

func fit(line string) string {
	if len(line) >= LineWidth {
		return line[:LineWidth]
	}
	return line + strings.Repeat(string(mrzFiller), LineWidth-len(line))
}
