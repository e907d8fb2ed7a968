package services

import (
	"errors"
	"strings"

	"lithos-pipeline/models"
)

// ErrNoRulesets is returned when the classifier is built without a ruleset
// table. This is the one fatal configuration error: without rules nothing
// can be classified, so the run must not start.
var ErrNoRulesets = errors.New("classifier: ruleset table is empty")

// Classifier maps a listing's source context and title to a canonical
// material slug using the ordered ruleset table. Routing and filtering are
// two separate gates: a batch is first routed to a ruleset by name, then
// every title must pass that ruleset's filter, because search results are
// routinely contaminated with off-topic listings.
type Classifier struct {
	rulesets []models.Ruleset
}

// NewClassifier builds a Classifier over the ordered ruleset table.
func NewClassifier(rulesets []models.Ruleset) (*Classifier, error) {
	if len(rulesets) == 0 {
		return nil, ErrNoRulesets
	}
	return &Classifier{rulesets: rulesets}, nil
}

// Resolve routes a source context to its ruleset. Exact name match wins;
// otherwise the first table entry whose name contains the context (or vice
// versa) is used. Returns false when no ruleset claims the context.
func (c *Classifier) Resolve(source string) (*models.Ruleset, bool) {
	name := strings.ToLower(strings.TrimSpace(source))

	for i := range c.rulesets {
		if strings.ToLower(c.rulesets[i].Name) == name {
			return &c.rulesets[i], true
		}
	}
	for i := range c.rulesets {
		rn := strings.ToLower(c.rulesets[i].Name)
		if strings.Contains(name, rn) || strings.Contains(rn, name) {
			return &c.rulesets[i], true
		}
	}
	return nil, false
}

// Classify resolves the source context and applies the ruleset's title
// filter, returning the canonical material slug. Either gate failing
// rejects the listing.
func (c *Classifier) Classify(source, title string) (string, bool) {
	rs, ok := c.Resolve(source)
	if !ok {
		return "", false
	}
	if !rs.Filter.Matches(strings.ToLower(title)) {
		return "", false
	}
	return rs.Slug, true
}

// Rulesets exposes the ordered table, primarily for the scraper's query list.
func (c *Classifier) Rulesets() []models.Ruleset {
	return c.rulesets
}
