package i18n

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ISODate is the wire format for calendar dates throughout the application.
const ISODate = "2006-01-02"

var gel = currency.MustParseISO("GEL")

var langTags = map[Lang]language.Tag{
	LangKA: language.MustParse("ka-GE"),
	LangEN: language.AmericanEnglish,
}

// shortMonthsKA carries the abbreviated Georgian month names, indexed by
// time.Month-1.
var shortMonthsKA = [12]string{
	"იან", "თებ", "მარ", "აპრ", "მაი", "ივნ",
	"ივლ", "აგვ", "სექ", "ოქტ", "ნოე", "დეკ",
}

// Tag returns the BCP 47 tag backing a supported language.
func Tag(lang Lang) language.Tag {
	if tag, ok := langTags[lang]; ok {
		return tag
	}
	return langTags[LangKA]
}

// FormatMoney renders a GEL amount for human-facing output in the given
// language. CSV exports bypass this and emit raw numbers.
func FormatMoney(value float64, lang Lang) string {
	printer := message.NewPrinter(Tag(lang))
	return printer.Sprintf("%v", currency.Symbol(gel.Amount(value)))
}

// FormatDate renders an ISO date for human-facing output: day, abbreviated
// month and year. Empty or malformed inputs render as empty strings rather
// than failing the surrounding document.
func FormatDate(isoDate string, lang Lang) string {
	if isoDate == "" {
		return ""
	}
	t, err := time.Parse(ISODate, isoDate)
	if err != nil {
		return ""
	}
	if lang == LangKA {
		return fmt.Sprintf("%02d %s. %d", t.Day(), shortMonthsKA[t.Month()-1], t.Year())
	}
	return t.Format("Jan 02, 2006")
}

// ToISODate converts an instant to its local calendar date in wire format.
func ToISODate(t time.Time) string {
	return t.Format(ISODate)
}
