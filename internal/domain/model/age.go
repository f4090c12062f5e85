package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Legacy numeric age codes used by club spreadsheets.
const (
	OpenCode          = 99
	CrossCategoryCode = 998
)

type ageKind uint8

const (
	ageUpTo ageKind = iota + 1
	ageOpen
	ageCross
)

// AgeCategory is the closed set of age brackets: "n & Under", Open, or a
// cross-category relay that draws one swimmer from each of several
// brackets. The zero value is invalid.
type AgeCategory struct {
	kind ageKind
	max  int
}

// UpTo returns the "n & Under" category.
func UpTo(n int) AgeCategory { return AgeCategory{kind: ageUpTo, max: n} }

// Open returns the category with no upper age bound.
func Open() AgeCategory { return AgeCategory{kind: ageOpen} }

// CrossCategory returns the mixed-bracket relay category.
func CrossCategory() AgeCategory { return AgeCategory{kind: ageCross} }

// IsValid reports whether a is one of the three categories.
func (a AgeCategory) IsValid() bool { return a.kind != 0 }

// IsOpen reports whether a has no upper bound.
func (a AgeCategory) IsOpen() bool { return a.kind == ageOpen }

// IsCrossCategory reports whether a is the mixed-bracket relay category.
func (a AgeCategory) IsCrossCategory() bool { return a.kind == ageCross }

// MaxAge returns the upper bound and whether there is one.
func (a AgeCategory) MaxAge() (int, bool) {
	if a.kind != ageUpTo {
		return 0, false
	}
	return a.max, true
}

// Admits reports whether a swimmer of the given competition age may swim
// in a. Cross-category brackets are checked per bracket by the caller.
func (a AgeCategory) Admits(age int) bool {
	if a.kind == ageUpTo {
		return age <= a.max
	}
	return a.kind != 0
}

// Code returns the legacy numeric code (n, 99 or 998).
func (a AgeCategory) Code() int {
	switch a.kind {
	case ageOpen:
		return OpenCode
	case ageCross:
		return CrossCategoryCode
	default:
		return a.max
	}
}

// Label is the compact form used in result rows: "11U", "Open", "Mixed Age".
func (a AgeCategory) Label() string {
	switch a.kind {
	case ageUpTo:
		return strconv.Itoa(a.max) + "U"
	case ageOpen:
		return "Open"
	case ageCross:
		return "Mixed Age"
	default:
		return "?"
	}
}

func (a AgeCategory) String() string {
	if a.kind == ageUpTo {
		return fmt.Sprintf("%d & Under", a.max)
	}
	return a.Label()
}

// AgeCategoryFromCode maps a legacy numeric code onto a category.
func AgeCategoryFromCode(code int) (AgeCategory, error) {
	switch {
	case code == OpenCode:
		return Open(), nil
	case code == CrossCategoryCode:
		return CrossCategory(), nil
	case code > 0 && code < OpenCode:
		return UpTo(code), nil
	default:
		return AgeCategory{}, fmt.Errorf("%w: %d", ErrInvalidAge, code)
	}
}

var ageSuffixes = []string{" & under", "& under", " and under", " under", "u"}

// ParseAgeCategory accepts legacy codes ("11", "99", "998"), labels
// ("11U", "11 & Under", "Open") and cross-category aliases.
func ParseAgeCategory(s string) (AgeCategory, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	switch raw {
	case "open", "o":
		return Open(), nil
	case "mixed", "mixed age", "cross", "cross-category", "crosscategory", "squadrun":
		return CrossCategory(), nil
	}
	for _, suffix := range ageSuffixes {
		if strings.HasSuffix(raw, suffix) {
			raw = strings.TrimSpace(strings.TrimSuffix(raw, suffix))
			break
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return AgeCategory{}, fmt.Errorf("%w: %q", ErrInvalidAge, s)
	}
	return AgeCategoryFromCode(n)
}

// MarshalJSON writes the legacy numeric code.
func (a AgeCategory) MarshalJSON() ([]byte, error) {
	if !a.IsValid() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(a.Code())), nil
}

// UnmarshalJSON accepts either a numeric code or a string label.
func (a *AgeCategory) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		v, err := AgeCategoryFromCode(n)
		if err != nil {
			return err
		}
		*a = v
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAge, string(b))
	}
	v, err := ParseAgeCategory(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
