package args

import "strings"

// Categorize regroups flat parsed values by prefix. A key "<category>_<rest>"
// lands in out[category][rest]; the first matching category in declared
// order wins. Unmatched keys stay at the top level and every category is
// present, even when empty.
func Categorize(values map[string]any, categories []string) map[string]any {
	out := make(map[string]any, len(values)+len(categories))
	groups := make(map[string]map[string]any, len(categories))
	for _, category := range categories {
		groups[category] = map[string]any{}
		out[category] = groups[category]
	}

	for _, key := range sortedKeys(values) {
		placed := false
		for _, category := range categories {
			prefix := category + "_"
			if strings.HasPrefix(key, prefix) {
				groups[category][strings.TrimPrefix(key, prefix)] = values[key]
				placed = true
				break
			}
		}
		if !placed {
			out[key] = values[key]
		}
	}

	return out
}
