package hymnal

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Festivity identifies a festive Sunday type. The zero value means an
// ordinary Sunday with no festivity.
type Festivity string

const (
	// FestivityNone marks an ordinary Sunday.
	FestivityNone Festivity = ""
	// FestivityChristmas selects the natale repertoire.
	FestivityChristmas Festivity = "natale"
	// FestivityEaster selects the pasqua repertoire.
	FestivityEaster Festivity = "pasqua"
)

// Hymn categories with special meaning for selection.
const (
	CategorySacramento      = "sacramento"
	CategorySpecialOccasion = "occasioni speciali"
)

// ParseFestivity normalizes and validates a festivity name.
func ParseFestivity(value string) (Festivity, error) {
	switch Festivity(normalizeText(value)) {
	case FestivityNone:
		return FestivityNone, nil
	case FestivityChristmas:
		return FestivityChristmas, nil
	case FestivityEaster:
		return FestivityEaster, nil
	default:
		return FestivityNone, fmt.Errorf("unknown festivity %q", value)
	}
}

func (f Festivity) String() string { return string(f) }

// Other returns the opposite festivity, used to detect conflicting tags.
func (f Festivity) Other() Festivity {
	switch f {
	case FestivityChristmas:
		return FestivityEaster
	case FestivityEaster:
		return FestivityChristmas
	default:
		return FestivityNone
	}
}

// Hymn is a single catalog entry. Category and Tags are stored normalized to
// lowercase so lookups never need to case-fold again.
type Hymn struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Slug     string   `json:"slug,omitempty"`
}

// HasTag reports whether the hymn carries the given normalized tag.
func (h Hymn) HasTag(tag string) bool {
	for _, t := range h.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// normalizeText lowercases with Italian casing rules and trims whitespace.
func normalizeText(value string) string {
	return strings.TrimSpace(cases.Lower(language.Italian).String(value))
}
