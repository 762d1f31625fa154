package settings

import "time"

// Settings holds the per-user dashboard panel toggles.
type Settings struct {
	ShowSummary bool      `json:"show_summary"`
	ShowFilters bool      `json:"show_filters"`
	ShowTable   bool      `json:"show_table"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Defaults returns the panel state for a user without stored settings:
// everything visible.
func Defaults() Settings {
	return Settings{ShowSummary: true, ShowFilters: true, ShowTable: true}
}
