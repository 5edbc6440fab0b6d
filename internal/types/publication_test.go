package types

import "testing"

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func TestPublicationPatchColumnsOnlyNonNil(t *testing.T) {
	patch := PublicationPatch{Title: strPtr("Paxos Made Live"), Year: intPtr(2007)}
	cols := patch.Columns()
	if len(cols) != 2 {
		t.Fatalf("expected 2 columns, got %v", cols)
	}
	if cols["title"] != "Paxos Made Live" {
		t.Fatalf("unexpected title column: %v", cols["title"])
	}
	if cols["year"] != 2007 {
		t.Fatalf("unexpected year column: %v", cols["year"])
	}
	if _, ok := cols["venue"]; ok {
		t.Fatalf("nil venue must not produce a column")
	}
}

func TestPublicationPatchEmpty(t *testing.T) {
	if !(PublicationPatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}
	if (PublicationPatch{Venue: strPtr("OSDI")}).IsEmpty() {
		t.Fatalf("patch with venue should not be empty")
	}
}
