package services

import (
	"strings"
	"testing"
)

func TestDeduplicatorAdmitsOnce(t *testing.T) {
	d := NewDeduplicator()

	if !d.Admit("Darwin Glass tektite 5.2g sold") {
		t.Error("first Admit should return true")
	}
	// Case-variant with the same lowercased prefix is a duplicate.
	if d.Admit("darwin glass tektite 5.2g SOLD") {
		t.Error("case-variant duplicate should be rejected")
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d; want 1", d.Len())
	}
}

func TestDeduplicatorIdempotent(t *testing.T) {
	titles := []string{
		"Trinitite fragment 3.1g",
		"Libyan Desert Glass 12g polished",
		"Campo del Cielo 250g slice",
	}

	d := NewDeduplicator()
	admitted := 0
	for _, title := range titles {
		if d.Admit(title) {
			admitted++
		}
	}
	if admitted != len(titles) {
		t.Fatalf("first pass admitted %d; want %d", admitted, len(titles))
	}

	// Second pass of the same sequence admits nothing new.
	for _, title := range titles {
		if d.Admit(title) {
			t.Errorf("second pass admitted %q", title)
		}
	}
	if d.Len() != len(titles) {
		t.Errorf("Len = %d; want %d", d.Len(), len(titles))
	}
}

func TestDeduplicatorPrefixWindow(t *testing.T) {
	prefix := strings.Repeat("x", 60)
	d := NewDeduplicator()

	if !d.Admit(prefix + " first variant") {
		t.Fatal("first long title should be admitted")
	}
	// Differs only beyond the 60-character window: same fingerprint.
	if d.Admit(prefix + " second variant") {
		t.Error("title differing only after the prefix window should be a duplicate")
	}

	// Differs inside the window: distinct fingerprint.
	if !d.Admit(strings.Repeat("y", 60) + " first variant") {
		t.Error("title differing inside the prefix window should be admitted")
	}
}

func TestFingerprint(t *testing.T) {
	if got := Fingerprint("Short Title"); got != "short title" {
		t.Errorf("Fingerprint = %q; want lowercased input", got)
	}

	long := strings.Repeat("Ab", 50)
	got := Fingerprint(long)
	if len([]rune(got)) != 60 {
		t.Errorf("Fingerprint length = %d runes; want 60", len([]rune(got)))
	}
	if got != strings.ToLower(long)[:60] {
		t.Errorf("Fingerprint = %q; want the first 60 lowercased characters", got)
	}
}

func TestDeduplicatorRunScoped(t *testing.T) {
	// Two deduplicators never share state.
	a := NewDeduplicator()
	b := NewDeduplicator()

	a.Admit("osmium crystal 1g ampoule")
	if !b.Admit("osmium crystal 1g ampoule") {
		t.Error("a fresh Deduplicator must not see another run's fingerprints")
	}
}
