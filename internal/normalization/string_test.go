package normalization

import "testing"

func TestNormalizeNameCollapsesCaseAndWhitespace(t *testing.T) {
	if got := NormalizeName("  Carnegie   Mellon  University "); got != "carnegie mellon university" {
		t.Fatalf("unexpected normalized name: %q", got)
	}
}

func TestNormalizeKeywordsDedupes(t *testing.T) {
	got := NormalizeKeywords([]string{" Network ", "network", "", "Internet"})
	if len(got) != 2 || got[0] != "network" || got[1] != "internet" {
		t.Fatalf("unexpected keywords: %v", got)
	}
}
