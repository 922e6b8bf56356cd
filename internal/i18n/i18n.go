package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// DefaultLocale is used when no candidate matches a catalog.
const DefaultLocale = "en"

//go:embed locales/*.toml
var catalogFS embed.FS

// Params fills {name} placeholders.
type Params map[string]any

var (
	loadOnce sync.Once
	catalogs map[string]map[string]string
	locales  []string
	matcher  language.Matcher
	loadErr  error
)

func load() {
	entries, err := catalogFS.ReadDir("locales")
	if err != nil {
		loadErr = fmt.Errorf("read catalogs: %w", err)
		return
	}
	catalogs = make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		code := strings.TrimSuffix(entry.Name(), ".toml")
		data, err := catalogFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			loadErr = fmt.Errorf("read catalog %s: %w", code, err)
			return
		}
		messages := make(map[string]string)
		if err := toml.Unmarshal(data, &messages); err != nil {
			loadErr = fmt.Errorf("parse catalog %s: %w", code, err)
			return
		}
		catalogs[code] = messages
		locales = append(locales, code)
	}
	sort.Strings(locales)

	// The default goes first so the matcher falls back to it.
	tags := []language.Tag{language.MustParse(DefaultLocale)}
	ordered := []string{DefaultLocale}
	for _, code := range locales {
		if code == DefaultLocale {
			continue
		}
		tags = append(tags, language.MustParse(code))
		ordered = append(ordered, code)
	}
	locales = ordered
	matcher = language.NewMatcher(tags)
}

func ensureLoaded() error {
	loadOnce.Do(load)
	return loadErr
}

// Locales returns the available catalog codes, default first.
func Locales() []string {
	if ensureLoaded() != nil {
		return []string{DefaultLocale}
	}
	return append([]string(nil), locales...)
}

// Resolve returns the first candidate that matches a catalog. Candidates may
// be BCP 47 tags or POSIX locale strings such as "de_DE.UTF-8".
func Resolve(candidates ...string) string {
	if ensureLoaded() != nil {
		return DefaultLocale
	}
	for _, candidate := range candidates {
		tag, ok := parseCandidate(candidate)
		if !ok {
			continue
		}
		_, idx, confidence := matcher.Match(tag)
		if confidence == language.No {
			continue
		}
		return locales[idx]
	}
	return DefaultLocale
}

func parseCandidate(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	if value == "" || value == "C" || value == "POSIX" {
		return language.Tag{}, false
	}
	tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return language.Tag{}, false
	}
	return tag, true
}

// Translator renders messages for one locale.
type Translator struct {
	locale string
}

// New returns a Translator for the catalog best matching locale.
func New(locale string) *Translator {
	return &Translator{locale: Resolve(locale)}
}

// Locale returns the resolved catalog code.
func (t *Translator) Locale() string {
	return t.locale
}

// T renders key with params.
func (t *Translator) T(key string, params Params) string {
	template := key
	if ensureLoaded() == nil {
		if msg, ok := catalogs[t.locale][key]; ok {
			template = msg
		} else if msg, ok := catalogs[DefaultLocale][key]; ok {
			template = msg
		}
	}
	if len(params) == 0 {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Keys returns the message keys of a locale's catalog, sorted.
func Keys(locale string) []string {
	if ensureLoaded() != nil {
		return nil
	}
	messages := catalogs[locale]
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
