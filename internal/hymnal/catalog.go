package hymnal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidCatalog marks catalog sources that cannot be used: missing files,
// malformed JSON, or data with no usable hymns.
var ErrInvalidCatalog = errors.New("invalid hymn catalog")

// Catalog is the immutable set of hymns loaded from a catalog file. Build one
// at startup and share it freely; it is never mutated after construction.
type Catalog struct {
	hymns []Hymn
}

// Load reads and parses a catalog JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidCatalog, path, err)
	}
	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// Parse decodes catalog JSON. The source is a list of records carrying
// songNumber, title, bookSectionTitle, and tags, where tags may be either a
// string list or a comma-separated string.
func Parse(data []byte) (*Catalog, error) {
	var records []catalogRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no hymns in data", ErrInvalidCatalog)
	}

	hymns := make([]Hymn, 0, len(records))
	seen := make(map[int]struct{}, len(records))
	for i, record := range records {
		hymn, err := record.toHymn()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidCatalog, i, err)
		}
		if _, ok := seen[hymn.Number]; ok {
			return nil, fmt.Errorf("%w: duplicate song number %d", ErrInvalidCatalog, hymn.Number)
		}
		seen[hymn.Number] = struct{}{}
		hymns = append(hymns, hymn)
	}
	return &Catalog{hymns: hymns}, nil
}

// Hymns returns the catalog entries in source order. Callers must treat the
// returned slice as read-only.
func (c *Catalog) Hymns() []Hymn { return c.hymns }

// Len returns the number of hymns in the catalog.
func (c *Catalog) Len() int { return len(c.hymns) }

type catalogRecord struct {
	Number   int             `json:"songNumber"`
	Title    string          `json:"title"`
	Category string          `json:"bookSectionTitle"`
	Tags     json.RawMessage `json:"tags"`
	Slug     string          `json:"slug"`
}

func (r catalogRecord) toHymn() (Hymn, error) {
	if r.Number <= 0 {
		return Hymn{}, fmt.Errorf("song number %d is not positive", r.Number)
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return Hymn{}, errors.New("missing title")
	}
	tags, err := parseTags(r.Tags)
	if err != nil {
		return Hymn{}, err
	}
	return Hymn{
		Number:   r.Number,
		Title:    title,
		Category: normalizeText(r.Category),
		Tags:     tags,
		Slug:     strings.TrimSpace(r.Slug),
	}, nil
}

// parseTags accepts both shapes the upstream API has used over time: a JSON
// array of strings and a single comma-separated string.
func parseTags(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return nil, fmt.Errorf("tags must be a string list or comma string, got %s", raw)
		}
		list = strings.Split(joined, ",")
	}

	tags := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, tag := range list {
		normalized := normalizeText(tag)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		tags = append(tags, normalized)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}
