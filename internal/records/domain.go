package records

import "time"

// MaterialKey names one of the fixed material counters tracked per visit.
type MaterialKey string

// The fixed material counters, in canonical column order. Export projections
// and summary totals follow this order exactly.
const (
	MaterialKeramika          MaterialKey = "keramika"
	MaterialTsirkoni          MaterialKey = "tsirkoni"
	MaterialBalka             MaterialKey = "balka"
	MaterialPlastmassi        MaterialKey = "plastmassi"
	MaterialShabloni          MaterialKey = "shabloni"
	MaterialCisferiPlastmassi MaterialKey = "cisferi_plastmassi"
)

// MaterialKeys lists the fixed counters in canonical order.
var MaterialKeys = []MaterialKey{
	MaterialKeramika,
	MaterialTsirkoni,
	MaterialBalka,
	MaterialPlastmassi,
	MaterialShabloni,
	MaterialCisferiPlastmassi,
}

// CustomMaterial is an open-ended per-record material entry outside the fixed
// counter set. These are rendered per record and never aggregated.
type CustomMaterial struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// Record is one clinic visit entry.
type Record struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Surname           string           `json:"surname"`
	Mobile            string           `json:"mobile"`
	Date              string           `json:"date"`
	Money             float64          `json:"money"`
	Keramika          int              `json:"keramika"`
	Tsirkoni          int              `json:"tsirkoni"`
	Balka             int              `json:"balka"`
	Plastmassi        int              `json:"plastmassi"`
	Shabloni          int              `json:"shabloni"`
	CisferiPlastmassi int              `json:"cisferi_plastmassi"`
	CustomMaterials   []CustomMaterial `json:"custom_materials"`
	Notes             string           `json:"notes"`
	CreatedAt         time.Time        `json:"created_at"`
}

// MaterialCount returns the counter value for a fixed material key. Unknown
// keys count as zero.
func (r Record) MaterialCount(key MaterialKey) int {
	switch key {
	case MaterialKeramika:
		return r.Keramika
	case MaterialTsirkoni:
		return r.Tsirkoni
	case MaterialBalka:
		return r.Balka
	case MaterialPlastmassi:
		return r.Plastmassi
	case MaterialShabloni:
		return r.Shabloni
	case MaterialCisferiPlastmassi:
		return r.CisferiPlastmassi
	}
	return 0
}

// FilterState captures the search box and the inclusive date bounds. Empty
// strings mean "no bound". Out-of-order bounds are legal and simply match
// nothing.
type FilterState struct {
	Search   string `json:"search"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// SummaryTotals aggregates a record subset. Derived, never persisted.
type SummaryTotals struct {
	Count          int                 `json:"count"`
	TotalMoney     float64             `json:"total_money"`
	MaterialTotals map[MaterialKey]int `json:"material_totals"`
}
