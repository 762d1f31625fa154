package records

import "strings"

// Filter returns the order-preserving subsequence of records matching the
// filter state. A record matches when all three predicates hold: the trimmed
// search text is a case-insensitive substring of "name surname mobile", and
// the record date falls inside both inclusive ISO date bounds. Bounds compare
// lexicographically, which is exact for YYYY-MM-DD strings.
//
// The function is pure: it never mutates its input and returns equal output
// for equal input, so callers may memoize on (records, search, from, to).
func Filter(recs []Record, state FilterState) []Record {
	query := strings.ToLower(strings.TrimSpace(state.Search))

	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if query != "" {
			haystack := strings.ToLower(rec.Name + " " + rec.Surname + " " + rec.Mobile)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		if state.DateFrom != "" && rec.Date < state.DateFrom {
			continue
		}
		if state.DateTo != "" && rec.Date > state.DateTo {
			continue
		}
		out = append(out, rec)
	}
	return out
}
