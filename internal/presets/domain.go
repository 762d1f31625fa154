package presets

import "time"

// Preset is a named, persisted snapshot of search/date filter state. Names
// are user-chosen and not guaranteed unique.
type Preset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Search    string    `json:"search"`
	DateFrom  *string   `json:"date_from"`
	DateTo    *string   `json:"date_to"`
	CreatedAt time.Time `json:"created_at"`
}

// Input carries the fields persisted when creating a preset. Nil date bounds
// mean "no bound"; empty strings never reach storage.
type Input struct {
	Name     string
	Search   string
	DateFrom *string
	DateTo   *string
}
