package services

import "strings"

// dedupPrefixLen is the number of characters of lowercased title used as the
// duplicate fingerprint. Short deliberately: near-identical relistings differ
// only in trailing condition/shipping noise. A collision drops the later
// record unconditionally.
const dedupPrefixLen = 60

// Deduplicator suppresses repeated listings across every material and batch
// processed in one run. It is scoped to one pipeline run; tests and repeat
// runs each build their own so state never leaks between them.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty run-scoped Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Admit reports whether the listing title is new. The first caller with a
// given fingerprint claims it; later calls return false and record nothing.
func (d *Deduplicator) Admit(title string) bool {
	key := Fingerprint(title)
	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct fingerprints admitted so far.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}

// Fingerprint derives the dedup key: the lowercased title truncated to the
// fixed prefix length.
func Fingerprint(title string) string {
	key := strings.ToLower(title)
	if runes := []rune(key); len(runes) > dedupPrefixLen {
		return string(runes[:dedupPrefixLen])
	}
	return key
}
