package i18n_test

import (
	"slices"
	"testing"

	"stemzipper/internal/config"
	"stemzipper/internal/i18n"
)

func TestCatalogsCoverSupportedLocales(t *testing.T) {
	available := i18n.Locales()
	if available[0] != i18n.DefaultLocale {
		t.Fatalf("expected default locale first, got %v", available)
	}
	for _, code := range config.SupportedLocales {
		if !slices.Contains(available, code) {
			t.Fatalf("missing catalog for %s", code)
		}
	}
}

func TestCatalogsShareKeys(t *testing.T) {
	want := i18n.Keys(i18n.DefaultLocale)
	if len(want) == 0 {
		t.Fatal("expected english keys")
	}
	for _, code := range i18n.Locales() {
		if got := i18n.Keys(code); !slices.Equal(got, want) {
			t.Fatalf("locale %s keys differ:\n got %v\nwant %v", code, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		candidates []string
		want       string
	}{
		{[]string{"de"}, "de"},
		{[]string{"de_DE.UTF-8"}, "de"},
		{[]string{"pt-BR"}, "pt"},
		{[]string{"fr_CA"}, "fr"},
		{[]string{"", "C", "it_IT"}, "it"},
		{[]string{"ja"}, "en"},
		{[]string{"ja", "es"}, "es"},
		{nil, "en"},
	}
	for _, tt := range tests {
		if got := i18n.Resolve(tt.candidates...); got != tt.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tt.candidates, got, tt.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	en := i18n.New("en")
	if got := en.T("msg_finished", i18n.Params{"count": 3}); got != "3 ZIP files created successfully." {
		t.Fatalf("unexpected english message %q", got)
	}
	de := i18n.New("de-AT")
	if de.Locale() != "de" {
		t.Fatalf("expected de, got %s", de.Locale())
	}
	if got := de.T("msg_no_files", nil); got != "Keine unterstützten Audiodateien gefunden." {
		t.Fatalf("unexpected german message %q", got)
	}
	got := en.T("msg_invalid_max_size", i18n.Params{"max": 500, "reset": 48})
	if got != "Please enter a value greater than 0 and up to 500 MB. Resetting to 48 MB." {
		t.Fatalf("unexpected clamp message %q", got)
	}
	if got := en.T("no_such_key", nil); got != "no_such_key" {
		t.Fatalf("expected unknown key to render as itself, got %q", got)
	}
}
