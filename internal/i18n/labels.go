// Package i18n holds the label dictionaries and locale-aware formatting
// used on receipts, share texts and exports. The application ships two
// languages: Georgian (default) and English.
package i18n

// Lang identifies one of the supported interface languages.
type Lang string

const (
	// LangKA is Georgian, the default language.
	LangKA Lang = "ka"
	// LangEN is English.
	LangEN Lang = "en"
)

// ParseLang normalises a language tag, falling back to Georgian.
func ParseLang(tag string) Lang {
	if tag == string(LangEN) {
		return LangEN
	}
	return LangKA
}

var labels = map[Lang]map[string]string{
	LangKA: {
		"client":                   "კლიენტი",
		"name":                     "სახელი",
		"surname":                  "გვარი",
		"mobile":                   "მობილური",
		"date":                     "თარიღი",
		"money":                    "თანხა",
		"total":                    "ჯამი",
		"materials":                "მასალები / პროცედურები",
		"count":                    "რაოდენობა",
		"notes":                    "შენიშვნები",
		"manager":                  "მენეჯერი",
		"customMaterials":          "სხვა მასალები",
		"materialKeramika":         "კერამიკა",
		"materialTsirkoni":         "ცირკონი",
		"materialBalka":            "ბალკა",
		"materialPlastmassi":       "პლასტმასი",
		"materialShabloni":         "შაბლონი",
		"materialCisferiPlastmassi": "ცისფერი პლასტმასი",
	},
	LangEN: {
		"client":                   "Client",
		"name":                     "Name",
		"surname":                  "Surname",
		"mobile":                   "Mobile",
		"date":                     "Date",
		"money":                    "Money",
		"total":                    "Total",
		"materials":                "Material / Procedure",
		"count":                    "Count",
		"notes":                    "Notes",
		"manager":                  "Manager",
		"customMaterials":          "Other materials",
		"materialKeramika":         "Keramika",
		"materialTsirkoni":         "Tsirkoni",
		"materialBalka":            "Balka",
		"materialPlastmassi":       "Plastmassi",
		"materialShabloni":         "Shabloni",
		"materialCisferiPlastmassi": "Cisferi plastmassi",
	},
}

// T resolves a label key for the given language. Unknown keys resolve to the
// key itself so a missing translation is visible but never fatal.
func T(lang Lang, key string) string {
	if set, ok := labels[lang]; ok {
		if value, ok := set[key]; ok {
			return value
		}
	}
	if lang != LangKA {
		if value, ok := labels[LangKA][key]; ok {
			return value
		}
	}
	return key
}
