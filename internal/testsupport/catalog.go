package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"innario/internal/hymnal"
)

// CatalogRecord mirrors the catalog file's JSON shape.
type CatalogRecord struct {
	Number   int      `json:"songNumber"`
	Title    string   `json:"title"`
	Category string   `json:"bookSectionTitle"`
	Tags     []string `json:"tags,omitempty"`
	Slug     string   `json:"slug,omitempty"`
}

// SampleCatalog returns a small hymnal exercising every selection pool:
// sacrament hymns, ordinary repertoire, both festivities, a festive tag, and
// an occasioni speciali entry.
func SampleCatalog() []CatalogRecord {
	return []CatalogRecord{
		{Number: 6, Title: "Santi, venite", Category: "Restaurazione"},
		{Number: 41, Title: "Quale fondamento", Category: "Vangelo"},
		{Number: 49, Title: "Il mio pastore", Category: "Conforto"},
		{Number: 85, Title: "Dolce è il lavor", Category: "Lode"},
		{Number: 90, Title: "Grato il cuor", Category: "Lode", Tags: []string{"natale"}},
		{Number: 97, Title: "Guidami a Te", Category: "Vangelo"},
		{Number: 171, Title: "Con umiltà, o Salvator", Category: "Sacramento"},
		{Number: 172, Title: "O Dio, Padre Eterno", Category: "Sacramento"},
		{Number: 180, Title: "Attoniti e stupiti", Category: "Sacramento"},
		{Number: 192, Title: "Cristo è risorto", Category: "Pasqua"},
		{Number: 201, Title: "Regnava nel silenzio", Category: "Natale"},
		{Number: 202, Title: "Astro del ciel", Category: "Natale"},
		{Number: 300, Title: "Preghiera di ringraziamento", Category: "Occasioni Speciali"},
	}
}

// WriteCatalog writes the records as a catalog JSON file.
func WriteCatalog(t testing.TB, path string, records []CatalogRecord) {
	t.Helper()

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir catalog dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
}

// MustLoadIndex parses the records and builds a catalog index.
func MustLoadIndex(t testing.TB, records []CatalogRecord) *hymnal.Index {
	t.Helper()

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	catalog, err := hymnal.Parse(data)
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return hymnal.NewIndex(catalog)
}
