package models

import "strings"

// TitleFilter decides whether a lowercased listing title belongs to a
// material. AnyOf is a list of clauses; a clause is a list of substrings that
// must all appear, and at least one clause must hold (an empty AnyOf always
// holds). NoneOf lists substrings that must not appear.
//
// The clause form covers every predicate the curated rulesets need, e.g.
// "martian" OR ("nwa" AND "mars") OR "shergottite".
type TitleFilter struct {
	AnyOf  [][]string `yaml:"any_of,omitempty"`
	NoneOf []string   `yaml:"none_of,omitempty"`
}

// Matches reports whether the lowercased title passes the filter.
func (f TitleFilter) Matches(lowerTitle string) bool {
	for _, term := range f.NoneOf {
		if strings.Contains(lowerTitle, term) {
			return false
		}
	}
	if len(f.AnyOf) == 0 {
		return true
	}
	for _, clause := range f.AnyOf {
		ok := true
		for _, term := range clause {
			if !strings.Contains(lowerTitle, term) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Ruleset routes one named source context to a canonical material slug and
// validates its titles. Several rulesets may share one slug (a merge group).
// Queries drive the scraper; rulesets without queries are process-only.
type Ruleset struct {
	Name    string      `yaml:"name"`
	Slug    string      `yaml:"slug"`
	Queries []string    `yaml:"queries,omitempty"`
	Filter  TitleFilter `yaml:"filter"`
}
