package presets

import (
	"strings"

	"github.com/dentalog/dentalog/internal/records"
)

// ErrEmptyName reports a preset name that is empty after trimming.
// Callers surface it as a field-level validation message, never a fault.
var ErrEmptyName = errEmptyName{}

type errEmptyName struct{}

func (errEmptyName) Error() string { return "preset name must not be empty" }

// ToInput captures the current filter state under a user-chosen name.
// The name is trimmed; empty date bounds become NULL for storage.
func ToInput(name string, state records.FilterState) (Input, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Input{}, ErrEmptyName
	}
	return Input{
		Name:     trimmed,
		Search:   state.Search,
		DateFrom: nullableDate(state.DateFrom),
		DateTo:   nullableDate(state.DateTo),
	}, nil
}

// FromPreset maps a stored preset back onto filter state, normalising NULL
// bounds to empty strings.
func FromPreset(p Preset) records.FilterState {
	return records.FilterState{
		Search:   p.Search,
		DateFrom: orEmpty(p.DateFrom),
		DateTo:   orEmpty(p.DateTo),
	}
}

func nullableDate(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
