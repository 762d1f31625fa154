package records

import "math"

// Summarize computes totals over a record subset. Money is accumulated as
// integer cents so repeated summation cannot drift below cent precision.
// Custom materials are intentionally left out of the totals: they are
// per-record free text, not counters.
func Summarize(recs []Record) SummaryTotals {
	totals := SummaryTotals{
		Count:          len(recs),
		MaterialTotals: make(map[MaterialKey]int, len(MaterialKeys)),
	}
	for _, key := range MaterialKeys {
		totals.MaterialTotals[key] = 0
	}

	var cents int64
	for _, rec := range recs {
		cents += int64(math.Round(rec.Money * 100))
		for _, key := range MaterialKeys {
			totals.MaterialTotals[key] += rec.MaterialCount(key)
		}
	}
	totals.TotalMoney = float64(cents) / 100

	return totals
}
