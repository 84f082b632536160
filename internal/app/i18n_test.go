package app

import "testing"

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"ja", LangJapanese},
		{"jp", LangJapanese},
		{"japanese", LangJapanese},
		{"en", LangEnglish},
		{"", LangEnglish},
		{"fr", LangEnglish},
	}
	for _, tt := range tests {
		if got := ParseLanguage(tt.in); got != tt.want {
			t.Fatalf("ParseLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTranslatorFallbacks(t *testing.T) {
	ja := NewTranslator(LangJapanese)
	en := NewTranslator(LangEnglish)

	if got := ja("sessions"); got != "セッション" {
		t.Fatalf("ja sessions = %q", got)
	}
	if got := en("sessions"); got != "Sessions" {
		t.Fatalf("en sessions = %q", got)
	}
	// Unknown language falls back to the English table.
	other := NewTranslator(Language("de"))
	if got := other("sessions"); got != "Sessions" {
		t.Fatalf("fallback table = %q", got)
	}
	// A missing key renders as itself rather than blank.
	if got := en("noSuchKey"); got != "noSuchKey" {
		t.Fatalf("missing key = %q", got)
	}
}

func TestTranslationTablesCoverSameKeys(t *testing.T) {
	enTable := translations[LangEnglish]
	jaTable := translations[LangJapanese]
	for key := range enTable {
		if _, ok := jaTable[key]; !ok {
			t.Errorf("ja table missing %q", key)
		}
	}
	for key := range jaTable {
		if _, ok := enTable[key]; !ok {
			t.Errorf("en table missing %q", key)
		}
	}
}
