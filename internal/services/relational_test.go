package services

import "testing"

func TestMergeSuggestionsPrefixTierFirst(t *testing.T) {
	// Keyword set {"network", "internet", "net"} searched with "net":
	// prefix matches come back alphabetical, contains matches after.
	got := mergeSuggestions([]string{"net", "network"}, []string{"internet"})
	want := []string{"net", "network", "internet"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q (full: %v)", i, want[i], got[i], got)
		}
	}
}

func TestMergeSuggestionsDropsCrossTierDuplicates(t *testing.T) {
	got := mergeSuggestions([]string{"Net", "network"}, []string{"net", "internet"})
	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %v", got)
	}
	if got[0] != "Net" || got[1] != "network" || got[2] != "internet" {
		t.Fatalf("unexpected merge order: %v", got)
	}
}

func TestMergeSuggestionsEmptyTiers(t *testing.T) {
	if got := mergeSuggestions(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
