package i18n

import (
	"strings"
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	if got := FormatDate("2024-03-05", LangEN); got != "Mar 05, 2024" {
		t.Fatalf("english date: %q", got)
	}
	if got := FormatDate("2024-03-05", LangKA); got != "05 მარ. 2024" {
		t.Fatalf("georgian date: %q", got)
	}
}

func TestFormatDateToleratesBadInput(t *testing.T) {
	if got := FormatDate("", LangEN); got != "" {
		t.Fatalf("empty input: %q", got)
	}
	if got := FormatDate("15/03/2024", LangEN); got != "" {
		t.Fatalf("malformed input: %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	got := FormatMoney(1234.5, LangEN)
	if !strings.Contains(got, "1,234.50") {
		t.Fatalf("english money: %q", got)
	}
	if !strings.Contains(got, "GEL") && !strings.Contains(got, "₾") {
		t.Fatalf("currency marker missing: %q", got)
	}
}

func TestToISODate(t *testing.T) {
	now := time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)
	if got := ToISODate(now); got != "2024-03-15" {
		t.Fatalf("iso date: %q", got)
	}
}

func TestParseLang(t *testing.T) {
	if ParseLang("en") != LangEN {
		t.Fatal("en should parse")
	}
	for _, tag := range []string{"", "ka", "fr", "EN"} {
		if got := ParseLang(tag); tag != "en" && got != LangKA {
			t.Fatalf("tag %q should fall back to georgian, got %q", tag, got)
		}
	}
}

func TestLabelFallback(t *testing.T) {
	if got := T(LangEN, "client"); got != "Client" {
		t.Fatalf("english label: %q", got)
	}
	if got := T(LangKA, "client"); got != "კლიენტი" {
		t.Fatalf("georgian label: %q", got)
	}
	// Unknown keys stay visible instead of breaking the document.
	if got := T(LangEN, "doesNotExist"); got != "doesNotExist" {
		t.Fatalf("unknown key: %q", got)
	}
}
