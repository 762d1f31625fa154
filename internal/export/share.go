package export

import (
	"strconv"
	"strings"

	"github.com/dentalog/dentalog/internal/i18n"
	"github.com/dentalog/dentalog/internal/records"
)

// ShareText builds the plain-text visit summary handed to messengers. The
// date stays in wire format; only the amount is localised.
func ShareText(rec records.Record, lang i18n.Lang) string {
	items := make([]string, 0, len(records.MaterialKeys))
	for _, key := range records.MaterialKeys {
		if qty := rec.MaterialCount(key); qty > 0 {
			items = append(items, i18n.T(lang, materialLabelKey(key))+": "+strconv.Itoa(qty))
		}
	}

	var b strings.Builder
	if lang == i18n.LangEN {
		b.WriteString("Hello " + rec.Name + " " + rec.Surname + ",\n")
		b.WriteString("Your visit details:\n")
		b.WriteString("Date: " + rec.Date + "\n")
		b.WriteString("Amount: " + i18n.FormatMoney(rec.Money, lang) + "\n")
		if len(items) > 0 {
			b.WriteString("Materials: " + strings.Join(items, ", ") + "\n")
		}
		if rec.Notes != "" {
			b.WriteString("Note: " + rec.Notes)
		}
	} else {
		b.WriteString("გამარჯობა " + rec.Name + " " + rec.Surname + ",\n")
		b.WriteString("თქვენი ვიზიტის დეტალები:\n")
		b.WriteString("თარიღი: " + rec.Date + "\n")
		b.WriteString("თანხა: " + i18n.FormatMoney(rec.Money, lang) + "\n")
		if len(items) > 0 {
			b.WriteString("მასალები: " + strings.Join(items, ", ") + "\n")
		}
		if rec.Notes != "" {
			b.WriteString("შენიშვნა: " + rec.Notes)
		}
	}
	return strings.TrimSpace(b.String())
}
