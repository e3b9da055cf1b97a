package hymnal_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"innario/internal/hymnal"
)

func TestParseNormalizesRecords(t *testing.T) {
	data := []byte(`[
		{"songNumber": 1, "title": "  Attendiam, Gesù  ", "bookSectionTitle": "Restaurazione", "tags": ["Natale", " lode ", "natale"], "slug": "attendiam-gesu"},
		{"songNumber": 108, "title": "O vieni, o Santo Spirito", "bookSectionTitle": "SACRAMENTO", "tags": "Pentecoste, Spirito "},
		{"songNumber": 2, "title": "Un fermo sostegno", "bookSectionTitle": ""}
	]`)

	catalog, err := hymnal.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if catalog.Len() != 3 {
		t.Fatalf("expected 3 hymns, got %d", catalog.Len())
	}

	hymns := catalog.Hymns()
	if hymns[0].Title != "Attendiam, Gesù" {
		t.Fatalf("expected trimmed title, got %q", hymns[0].Title)
	}
	if hymns[0].Category != "restaurazione" {
		t.Fatalf("expected lowercase category, got %q", hymns[0].Category)
	}
	if len(hymns[0].Tags) != 2 || hymns[0].Tags[0] != "natale" || hymns[0].Tags[1] != "lode" {
		t.Fatalf("expected deduped lowercase tags, got %v", hymns[0].Tags)
	}
	if hymns[0].Slug != "attendiam-gesu" {
		t.Fatalf("unexpected slug: %q", hymns[0].Slug)
	}

	if hymns[1].Category != "sacramento" {
		t.Fatalf("expected lowercase category, got %q", hymns[1].Category)
	}
	if len(hymns[1].Tags) != 2 || hymns[1].Tags[0] != "pentecoste" || hymns[1].Tags[1] != "spirito" {
		t.Fatalf("expected comma-string tags parsed, got %v", hymns[1].Tags)
	}

	if hymns[2].Category != "" {
		t.Fatalf("expected empty category preserved, got %q", hymns[2].Category)
	}
	if len(hymns[2].Tags) != 0 {
		t.Fatalf("expected no tags, got %v", hymns[2].Tags)
	}
}

func TestParseRejectsBadData(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"invalid json", `{not json`},
		{"not a list", `{"songNumber": 1}`},
		{"empty list", `[]`},
		{"missing title", `[{"songNumber": 1, "bookSectionTitle": "sacramento"}]`},
		{"zero number", `[{"songNumber": 0, "title": "x", "bookSectionTitle": "sacramento"}]`},
		{"negative number", `[{"songNumber": -3, "title": "x", "bookSectionTitle": "sacramento"}]`},
		{"duplicate number", `[
			{"songNumber": 5, "title": "a", "bookSectionTitle": "sacramento"},
			{"songNumber": 5, "title": "b", "bookSectionTitle": "vangelo"}
		]`},
		{"bad tags shape", `[{"songNumber": 1, "title": "x", "bookSectionTitle": "vangelo", "tags": 7}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := hymnal.Parse([]byte(tc.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, hymnal.ErrInvalidCatalog) {
				t.Fatalf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hymns.json")
	data := `[{"songNumber": 42, "title": "Sorgi, o Signor", "bookSectionTitle": "Vangelo"}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	catalog, err := hymnal.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if catalog.Len() != 1 {
		t.Fatalf("expected 1 hymn, got %d", catalog.Len())
	}
	if catalog.Hymns()[0].Number != 42 {
		t.Fatalf("unexpected hymn: %+v", catalog.Hymns()[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := hymnal.Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, hymnal.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestParseFestivity(t *testing.T) {
	if f, err := hymnal.ParseFestivity(" Natale "); err != nil || f != hymnal.FestivityChristmas {
		t.Fatalf("ParseFestivity natale: %v %v", f, err)
	}
	if f, err := hymnal.ParseFestivity("PASQUA"); err != nil || f != hymnal.FestivityEaster {
		t.Fatalf("ParseFestivity pasqua: %v %v", f, err)
	}
	if f, err := hymnal.ParseFestivity(""); err != nil || f != hymnal.FestivityNone {
		t.Fatalf("ParseFestivity empty: %v %v", f, err)
	}
	if _, err := hymnal.ParseFestivity("ferragosto"); err == nil {
		t.Fatal("expected error for unknown festivity")
	}
}
