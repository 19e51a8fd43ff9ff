package tabskema

import (
	"strconv"
	"strings"
)

// DeduplicateNames makes names usable as field names. Blank names become
// "field{n}" (1-based position) and the k-th repeat of a name (k >= 2)
// becomes "{name}{k}".
func DeduplicateNames(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			n = "field" + strconv.Itoa(i+1)
		}
		seen[n]++
		if k := seen[n]; k > 1 {
			n += strconv.Itoa(k)
		}
		out[i] = n
	}
	return out
}
