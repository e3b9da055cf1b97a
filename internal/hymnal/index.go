package hymnal

import "sort"

// otherPoolFloor is the largest number of non-sacramento slots a service can
// need: four hymns minus the fixed sacramento slot.
const otherPoolFloor = 3

// Index answers catalog queries for selection. It is built once from a
// Catalog and is safe for concurrent readers.
type Index struct {
	hymns      []Hymn
	byNumber   map[int]Hymn
	byCategory map[string][]Hymn
	byTag      map[string][]Hymn
	categories []string
	tags       []string
}

// NewIndex builds lookup tables over the catalog. Construction is
// deterministic: pools preserve catalog order, name lists are sorted.
func NewIndex(catalog *Catalog) *Index {
	hymns := catalog.Hymns()
	ix := &Index{
		hymns:      hymns,
		byNumber:   make(map[int]Hymn, len(hymns)),
		byCategory: make(map[string][]Hymn),
		byTag:      make(map[string][]Hymn),
	}
	for _, hymn := range hymns {
		ix.byNumber[hymn.Number] = hymn
		ix.byCategory[hymn.Category] = append(ix.byCategory[hymn.Category], hymn)
		for _, tag := range hymn.Tags {
			ix.byTag[tag] = append(ix.byTag[tag], hymn)
		}
	}
	ix.categories = sortedKeys(ix.byCategory)
	ix.tags = sortedKeys(ix.byTag)
	return ix
}

// All returns every hymn in catalog order.
func (ix *Index) All() []Hymn { return ix.hymns }

// Len returns the number of indexed hymns.
func (ix *Index) Len() int { return len(ix.hymns) }

// ByNumber looks up a hymn by its number.
func (ix *Index) ByNumber(number int) (Hymn, bool) {
	hymn, ok := ix.byNumber[number]
	return hymn, ok
}

// ByCategory returns hymns whose category matches name, case-insensitively.
func (ix *Index) ByCategory(name string) []Hymn {
	return ix.byCategory[normalizeText(name)]
}

// ByTag returns hymns carrying the tag, case-insensitively.
func (ix *Index) ByTag(tag string) []Hymn {
	return ix.byTag[normalizeText(tag)]
}

// Categories returns the sorted list of distinct categories.
func (ix *Index) Categories() []string { return ix.categories }

// Tags returns the sorted list of distinct tags.
func (ix *Index) Tags() []string { return ix.tags }

// SacramentoPool returns the sacramento hymns eligible for the given
// festivity. With FestivityNone every festively categorized or tagged hymn is
// excluded.
func (ix *Index) SacramentoPool(festivity Festivity) []Hymn {
	return excludeFestive(ix.byCategory[CategorySacramento], festivity)
}

// OtherPool returns the non-sacramento hymns eligible for the given
// festivity.
//
// On ordinary Sundays the pool is every hymn outside the sacramento and
// occasioni speciali categories that carries no festive category or tag. On
// festive Sundays the pool is the union of hymns in the festivity's category
// and hymns tagged with it; when that leaves fewer than three candidates the
// shortfall, and only the shortfall, is filled from occasioni speciali,
// skipping hymns tagged with the opposite festivity.
func (ix *Index) OtherPool(festivity Festivity) []Hymn {
	if festivity == FestivityNone {
		pool := make([]Hymn, 0, len(ix.hymns))
		for _, hymn := range ix.hymns {
			if hymn.Category == CategorySacramento || hymn.Category == CategorySpecialOccasion {
				continue
			}
			pool = append(pool, hymn)
		}
		return excludeFestive(pool, FestivityNone)
	}

	seen := make(map[int]struct{})
	merged := make([]Hymn, 0)
	for _, hymn := range ix.byCategory[string(festivity)] {
		if _, ok := seen[hymn.Number]; ok {
			continue
		}
		seen[hymn.Number] = struct{}{}
		merged = append(merged, hymn)
	}
	for _, hymn := range ix.byTag[string(festivity)] {
		if hymn.Category == CategorySacramento || hymn.Category == string(festivity) {
			continue
		}
		if _, ok := seen[hymn.Number]; ok {
			continue
		}
		seen[hymn.Number] = struct{}{}
		merged = append(merged, hymn)
	}

	pool := excludeFestive(merged, festivity)

	if needed := otherPoolFloor - len(pool); needed > 0 {
		conflict := string(festivity.Other())
		for _, hymn := range ix.byCategory[CategorySpecialOccasion] {
			if needed == 0 {
				break
			}
			if _, ok := seen[hymn.Number]; ok {
				continue
			}
			if hymn.HasTag(conflict) {
				continue
			}
			seen[hymn.Number] = struct{}{}
			pool = append(pool, hymn)
			needed--
		}
	}
	return pool
}

// Filter selects a single hymn by any combination of criteria. Zero values
// mean "any"; set criteria combine with AND logic.
type Filter struct {
	Number   int
	Category string
	Tag      string
}

// Match returns the hymns satisfying every set filter criterion, in catalog
// order.
func (ix *Index) Match(filter Filter) []Hymn {
	category := normalizeText(filter.Category)
	tag := normalizeText(filter.Tag)

	matches := make([]Hymn, 0)
	for _, hymn := range ix.hymns {
		if filter.Number != 0 && hymn.Number != filter.Number {
			continue
		}
		if category != "" && hymn.Category != category {
			continue
		}
		if tag != "" && !hymn.HasTag(tag) {
			continue
		}
		matches = append(matches, hymn)
	}
	return matches
}

// Stats summarizes the indexed catalog.
type Stats struct {
	TotalHymns      int `json:"total_hymns"`
	Categories      int `json:"categories"`
	Tags            int `json:"tags"`
	SacramentoHymns int `json:"sacramento_hymns"`
}

// Stats reports catalog totals. SacramentoHymns counts the ordinary-Sunday
// sacramento pool.
func (ix *Index) Stats() Stats {
	return Stats{
		TotalHymns:      len(ix.hymns),
		Categories:      len(ix.categories),
		Tags:            len(ix.tags),
		SacramentoHymns: len(ix.SacramentoPool(FestivityNone)),
	}
}

func excludeFestive(hymns []Hymn, allowed Festivity) []Hymn {
	kept := make([]Hymn, 0, len(hymns))
	for _, hymn := range hymns {
		if festiveConflict(hymn, allowed) {
			continue
		}
		kept = append(kept, hymn)
	}
	return kept
}

// festiveConflict reports whether a hymn belongs to a festive repertoire
// other than the allowed one. Both the category and the tags carry festive
// markers, and both are checked.
func festiveConflict(hymn Hymn, allowed Festivity) bool {
	switch hymn.Category {
	case string(FestivityChristmas):
		if allowed != FestivityChristmas {
			return true
		}
	case string(FestivityEaster):
		if allowed != FestivityEaster {
			return true
		}
	}
	if allowed != FestivityChristmas && hymn.HasTag(string(FestivityChristmas)) {
		return true
	}
	if allowed != FestivityEaster && hymn.HasTag(string(FestivityEaster)) {
		return true
	}
	return false
}

func sortedKeys(m map[string][]Hymn) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
