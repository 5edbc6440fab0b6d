package normalization

import (
  "strings"
)

func ParseInputString(input string) string {
  normalized := strings.ToLower(strings.TrimSpace(input))
  return normalized
}

// NormalizeName is the cross-store join key for university display names.
// The three stores carry no shared numeric key, so name matching happens on
// the trimmed, case-folded form; anything that still mismatches is "no data".
func NormalizeName(name string) string {
  return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func NormalizeKeywords(keywords []string) []string {
  out := make([]string, 0, len(keywords))
  seen := make(map[string]bool, len(keywords))
  for _, kw := range keywords {
    normalized := ParseInputString(kw)
    if normalized == "" || seen[normalized] {
      continue
    }
    seen[normalized] = true
    out = append(out, normalized)
  }
  return out
}
