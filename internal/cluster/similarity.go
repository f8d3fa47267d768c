package cluster

import "strings"

// Jaccard computes |A ∩ B| / |A ∪ B| over two keyword sets.
// Both empty yields 0, not 1: no shared vocabulary is no similarity.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// SummaryOverlap is Jaccard over whitespace-split lowercase word tokens of
// two problem summaries. Symmetric and deterministic.
func SummaryOverlap(a, b string) float64 {
	return Jaccard(tokenize(a), tokenize(b))
}

func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:()[]\"'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
