package bulk

import "strings"

// ParseTags turns raw user input ("important, review,, urgent") into a tag
// set: comma-split, trimmed, empties discarded, case preserved, duplicates
// collapsed while keeping first-seen order.
func ParseTags(input string) []string {
	parts := strings.Split(input, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.TrimSpace(p)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// unionTags appends the new tags that existing does not already carry,
// preserving the existing order. The result is the ordered-set union the
// tag operation applies per target.
func unionTags(existing, added []string) []string {
	out := append([]string(nil), existing...)
	have := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		have[t] = struct{}{}
	}
	for _, t := range added {
		if _, ok := have[t]; ok {
			continue
		}
		have[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
