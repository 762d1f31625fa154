// Package export flattens clinic records into tabular documents: CSV files
// for re-import into spreadsheets and Gotenberg-rendered PDF receipts and
// reports. Column order is fixed and shared between every output format.
package export

import (
	"strconv"
	"strings"

	"github.com/dentalog/dentalog/internal/i18n"
	"github.com/dentalog/dentalog/internal/records"
)

// Header returns the machine-readable column names in canonical order.
func Header() []string {
	header := []string{"name", "surname", "mobile", "date", "money"}
	for _, key := range records.MaterialKeys {
		header = append(header, string(key))
	}
	return append(header, "custom_materials", "notes")
}

// LocalizedHeader returns the column titles translated for human-facing
// documents, in the same canonical order as Header.
func LocalizedHeader(lang i18n.Lang) []string {
	header := []string{
		i18n.T(lang, "name"),
		i18n.T(lang, "surname"),
		i18n.T(lang, "mobile"),
		i18n.T(lang, "date"),
		i18n.T(lang, "money"),
	}
	for _, key := range records.MaterialKeys {
		header = append(header, i18n.T(lang, materialLabelKey(key)))
	}
	return append(header, i18n.T(lang, "customMaterials"), i18n.T(lang, "notes"))
}

// RawRow projects a record into machine-readable cells: ISO dates and plain
// numbers, suitable for CSV.
func RawRow(rec records.Record) []string {
	row := []string{
		rec.Name,
		rec.Surname,
		rec.Mobile,
		rec.Date,
		strconv.FormatFloat(rec.Money, 'f', -1, 64),
	}
	for _, key := range records.MaterialKeys {
		row = append(row, strconv.Itoa(rec.MaterialCount(key)))
	}
	return append(row, JoinCustomMaterials(rec.CustomMaterials), rec.Notes)
}

// DisplayRow projects a record into human-facing cells with localised date
// and currency formatting, suitable for PDF tables.
func DisplayRow(rec records.Record, lang i18n.Lang) []string {
	row := []string{
		rec.Name,
		rec.Surname,
		rec.Mobile,
		i18n.FormatDate(rec.Date, lang),
		i18n.FormatMoney(rec.Money, lang),
	}
	for _, key := range records.MaterialKeys {
		row = append(row, strconv.Itoa(rec.MaterialCount(key)))
	}
	return append(row, JoinCustomMaterials(rec.CustomMaterials), rec.Notes)
}

// JoinCustomMaterials flattens custom material entries into a single cell.
// Entries with blank names are skipped; an empty list yields an empty cell.
func JoinCustomMaterials(items []records.CustomMaterial) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		parts = append(parts, item.Name+": "+strconv.Itoa(item.Qty))
	}
	return strings.Join(parts, "; ")
}

func materialLabelKey(key records.MaterialKey) string {
	switch key {
	case records.MaterialKeramika:
		return "materialKeramika"
	case records.MaterialTsirkoni:
		return "materialTsirkoni"
	case records.MaterialBalka:
		return "materialBalka"
	case records.MaterialPlastmassi:
		return "materialPlastmassi"
	case records.MaterialShabloni:
		return "materialShabloni"
	case records.MaterialCisferiPlastmassi:
		return "materialCisferiPlastmassi"
	}
	return string(key)
}
