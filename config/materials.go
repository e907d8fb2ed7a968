package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lithos-pipeline/models"
)

// LoadRulesets returns the ordered material ruleset table. When path is empty
// the built-in table is used; otherwise the YAML file at path replaces it
// entirely. Table order is significant: substring routing and title filters
// are evaluated first-match-wins, so it must never be derived from a map.
func LoadRulesets(path string) ([]models.Ruleset, error) {
	if path == "" {
		return DefaultRulesets(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("materials: read %q: %w", path, err)
	}

	var rulesets []models.Ruleset
	if err := yaml.Unmarshal(data, &rulesets); err != nil {
		return nil, fmt.Errorf("materials: parse %q: %w", path, err)
	}

	if len(rulesets) == 0 {
		return nil, fmt.Errorf("materials: %q contains no rulesets", path)
	}
	for i, r := range rulesets {
		if r.Name == "" || r.Slug == "" {
			return nil, fmt.Errorf("materials: ruleset %d is missing a name or slug", i)
		}
	}

	return rulesets, nil
}

// DefaultRulesets is the curated table of collectible materials. Several
// entries share one slug: the K-Pg group collapses three independently
// searched boundary-layer categories into a single canonical material.
func DefaultRulesets() []models.Ruleset {
	return []models.Ruleset{
		{
			Name: "darwin-glass", Slug: "darwin-glass",
			Queries: []string{"Darwin Glass"},
			Filter:  models.TitleFilter{AnyOf: [][]string{{"darwin glass"}}},
		},
		{
			// Legacy export name for the same material.
			Name:   "_darwin-glass_",
			Slug:   "darwin-glass",
			Filter: models.TitleFilter{AnyOf: [][]string{{"darwin glass"}}},
		},
		{
			Name: "trinitite", Slug: "trinitite",
			Queries: []string{"trinitite"},
			Filter: models.TitleFilter{
				AnyOf:  [][]string{{"trinitite"}},
				NoneOf: []string{"red"},
			},
		},
		{
			Name: "australite", Slug: "australite",
			Filter: models.TitleFilter{AnyOf: [][]string{{"australite"}}},
		},
		{
			Name: "philippinite", Slug: "philippinite",
			Filter: models.TitleFilter{AnyOf: [][]string{{"philippinite"}}},
		},
		{
			Name: "georgiaite", Slug: "georgiaite",
			Filter: models.TitleFilter{AnyOf: [][]string{{"georgiaite"}}},
		},
		{
			Name: "bediasite", Slug: "bediasite",
			Filter: models.TitleFilter{AnyOf: [][]string{{"bediasite"}}},
		},
		{
			Name: "gibeon", Slug: "gibeon-meteorite",
			Filter: models.TitleFilter{AnyOf: [][]string{{"gibeon"}}},
		},
		{
			Name: "seymchan", Slug: "seymchan-meteorite",
			Filter: models.TitleFilter{AnyOf: [][]string{{"seymchan"}}},
		},
		{
			Name: "chelyabinsk", Slug: "chelyabinsk-meteorite",
			Filter: models.TitleFilter{AnyOf: [][]string{{"chelyabinsk"}}},
		},
		{
			Name: "canyon-diablo", Slug: "canyon-diablo-meteorite",
			Filter: models.TitleFilter{AnyOf: [][]string{{"canyon diablo"}}},
		},
		{
			Name: "fulgurite", Slug: "fulgurite",
			Filter: models.TitleFilter{AnyOf: [][]string{{"fulgurite"}}},
		},
		{
			Name: "osmium", Slug: "osmium",
			Filter: models.TitleFilter{AnyOf: [][]string{{"osmium"}}},
		},
		{
			Name: "iridium", Slug: "iridium",
			Filter: models.TitleFilter{AnyOf: [][]string{{"iridium"}}},
		},
		{
			Name: "gallium", Slug: "gallium",
			Filter: models.TitleFilter{AnyOf: [][]string{{"gallium"}}},
		},
		{
			Name: "bismuth", Slug: "bismuth",
			Filter: models.TitleFilter{AnyOf: [][]string{{"bismuth"}}},
		},
		{
			Name: "uranium-glass", Slug: "uranium-glass",
			Filter: models.TitleFilter{AnyOf: [][]string{{"uranium", "glass"}}},
		},
		{
			Name: "allende", Slug: "allende-meteorite",
			Queries: []string{"Allende meteorite"},
			Filter:  models.TitleFilter{AnyOf: [][]string{{"allende"}}},
		},
		{
			Name: "indochinite", Slug: "indochinite",
			Queries: []string{"indochinite tektite", "indochinite"},
			Filter:  models.TitleFilter{AnyOf: [][]string{{"indochinite"}}},
		},
		{
			Name: "nwa-martian", Slug: "nwa-martian-meteorite",
			Queries: []string{"NWA martian meteorite", "martian meteorite shergottite"},
			Filter: models.TitleFilter{
				AnyOf: [][]string{{"martian"}, {"nwa", "mars"}, {"shergottite"}},
			},
		},
		{
			Name: "muonionalusta", Slug: "muonionalusta-meteorite",
			Queries: []string{"muonionalusta meteorite"},
			Filter:  models.TitleFilter{AnyOf: [][]string{{"muonionalusta"}}},
		},
		{
			Name: "nwa-lunar", Slug: "nwa-lunar-meteorite",
			Queries: []string{"NWA lunar meteorite", "lunar meteorite NWA"},
			Filter: models.TitleFilter{
				AnyOf: [][]string{{"lunar"}, {"nwa", "moon"}},
			},
		},
		{
			Name: "libyan-desert-glass", Slug: "libyan-desert-glass",
			Queries: []string{"Libyan Desert Glass"},
			Filter:  models.TitleFilter{AnyOf: [][]string{{"libyan"}, {"ldg"}}},
		},
		{
			Name: "sikhote", Slug: "sikhote-alin-meteorite",
			Queries: []string{"Sikhote-Alin meteorite"},
			Filter:  models.TitleFilter{AnyOf: [][]string{{"sikhote"}}},
		},
		{
			Name: "campo", Slug: "campo-del-cielo-meteorite",
			Queries: []string{"Campo del Cielo meteorite"},
			Filter:  models.TitleFilter{AnyOf: [][]string{{"campo"}}},
		},
		{
			Name: "kt-boundary", Slug: "kpg-boundary",
			Queries: []string{"KT boundary", "KPG boundary", "cretaceous boundary"},
			Filter: models.TitleFilter{
				AnyOf: [][]string{{"kt"}, {"k-t"}, {"k-pg"}, {"kpg"}, {"cretaceous"}, {"boundary"}},
			},
		},
		{
			Name: "cretaceous-boundary", Slug: "kpg-boundary",
			Filter: models.TitleFilter{
				AnyOf: [][]string{{"cretaceous"}, {"kt"}, {"k-t"}, {"k-pg"}, {"boundary"}},
			},
		},
		{
			Name: "impact-spherules", Slug: "kpg-boundary",
			Filter: models.TitleFilter{
				AnyOf: [][]string{{"spherule"}, {"impact"}, {"kt"}, {"cretaceous"}},
			},
		},
	}
}
