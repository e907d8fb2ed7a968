package services

import (
	"errors"
	"testing"

	"lithos-pipeline/models"
)

func testRulesets() []models.Ruleset {
	return []models.Ruleset{
		{
			Name: "darwin-glass", Slug: "darwin-glass",
			Filter: models.TitleFilter{AnyOf: [][]string{{"darwin glass"}}},
		},
		{
			Name: "_darwin-glass_", Slug: "darwin-glass",
			Filter: models.TitleFilter{AnyOf: [][]string{{"darwin glass"}}},
		},
		{
			Name: "trinitite", Slug: "trinitite",
			Filter: models.TitleFilter{
				AnyOf:  [][]string{{"trinitite"}},
				NoneOf: []string{"red"},
			},
		},
		{
			Name: "nwa-martian", Slug: "nwa-martian-meteorite",
			Filter: models.TitleFilter{
				AnyOf: [][]string{{"martian"}, {"nwa", "mars"}, {"shergottite"}},
			},
		},
		{
			Name: "kt-boundary", Slug: "kpg-boundary",
			Filter: models.TitleFilter{AnyOf: [][]string{{"kt"}, {"cretaceous"}, {"boundary"}}},
		},
		{
			Name: "cretaceous-boundary", Slug: "kpg-boundary",
			Filter: models.TitleFilter{AnyOf: [][]string{{"cretaceous"}, {"boundary"}}},
		},
	}
}

func TestNewClassifierEmptyTable(t *testing.T) {
	if _, err := NewClassifier(nil); !errors.Is(err, ErrNoRulesets) {
		t.Errorf("NewClassifier(nil) error = %v; want ErrNoRulesets", err)
	}
}

func TestResolveExactBeforeSubstring(t *testing.T) {
	c, err := NewClassifier(testRulesets())
	if err != nil {
		t.Fatal(err)
	}

	// "darwin-glass" is a substring of "_darwin-glass_" too; the exact
	// match must win.
	rs, ok := c.Resolve("darwin-glass")
	if !ok || rs.Name != "darwin-glass" {
		t.Errorf("Resolve(darwin-glass) = %v, %v; want exact entry", rs, ok)
	}

	rs, ok = c.Resolve("_darwin-glass_")
	if !ok || rs.Name != "_darwin-glass_" {
		t.Errorf("Resolve(_darwin-glass_) = %v, %v; want legacy entry", rs, ok)
	}
}

func TestResolveSubstring(t *testing.T) {
	c, _ := NewClassifier(testRulesets())

	tests := []struct {
		source string
		want   string
	}{
		{"trinitite-2024-export", "trinitite"},
		{"TRINITITE", "trinitite"},
		{"nwa-martian-batch-2", "nwa-martian"},
		{"kt-bound", "kt-boundary"}, // context contained in a ruleset name
	}

	for _, tt := range tests {
		rs, ok := c.Resolve(tt.source)
		if !ok {
			t.Errorf("Resolve(%q) failed; want %q", tt.source, tt.want)
			continue
		}
		if rs.Name != tt.want {
			t.Errorf("Resolve(%q) = %q; want %q", tt.source, rs.Name, tt.want)
		}
	}

	if _, ok := c.Resolve("moldavite"); ok {
		t.Error("Resolve(moldavite) should fail: no ruleset claims it")
	}
}

func TestClassifyFilterGate(t *testing.T) {
	c, _ := NewClassifier(testRulesets())

	tests := []struct {
		source string
		title  string
		slug   string
		ok     bool
	}{
		{"trinitite", "Trinitite fragment from Trinity site 5g", "trinitite", true},
		{"trinitite", "RED Trinitite rare specimen", "", false},
		{"trinitite", "Genuine moon dust vial", "", false},
		{"nwa-martian", "NWA 13190 Mars rock slice", "nwa-martian-meteorite", true},
		{"nwa-martian", "Shergottite thin section", "nwa-martian-meteorite", true},
		{"nwa-martian", "NWA chondrite slice", "", false},
		{"unknown-source", "Trinitite fragment", "", false},
	}

	for _, tt := range tests {
		slug, ok := c.Classify(tt.source, tt.title)
		if ok != tt.ok || slug != tt.slug {
			t.Errorf("Classify(%q, %q) = %q, %v; want %q, %v",
				tt.source, tt.title, slug, ok, tt.slug, tt.ok)
		}
	}
}

func TestMergeGroupSharesSlug(t *testing.T) {
	c, _ := NewClassifier(testRulesets())

	slug1, ok1 := c.Classify("kt-boundary", "KT boundary clay sample")
	slug2, ok2 := c.Classify("cretaceous-boundary", "Cretaceous boundary layer section")

	if !ok1 || !ok2 {
		t.Fatalf("merge-group classification failed: %v %v", ok1, ok2)
	}
	if slug1 != "kpg-boundary" || slug2 != "kpg-boundary" {
		t.Errorf("merge group slugs: %q, %q; want both kpg-boundary", slug1, slug2)
	}
}

func TestTitleFilterClauses(t *testing.T) {
	f := models.TitleFilter{
		AnyOf:  [][]string{{"uranium", "glass"}},
		NoneOf: nil,
	}
	if !f.Matches("uranium glass vaseline tumbler") {
		t.Error("conjunction clause should match when both terms appear")
	}
	if f.Matches("uranium ore sample") {
		t.Error("conjunction clause should fail when one term is missing")
	}

	empty := models.TitleFilter{}
	if !empty.Matches("anything at all") {
		t.Error("empty filter should match everything")
	}
}
