package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLocale is used for month labels when the configured locale has no
// month names.
const DefaultLocale = "en"

// Ukrainian labels use the nominative month names, as in a calendar header.
var monthNames = map[string][12]string{
	"uk": {"Січень", "Лютий", "Березень", "Квітень", "Травень", "Червень",
		"Липень", "Серпень", "Вересень", "Жовтень", "Листопад", "Грудень"},
	"de": {"Januar", "Februar", "März", "April", "Mai", "Juni",
		"Juli", "August", "September", "Oktober", "November", "Dezember"},
	"fr": {"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
}

// baseLanguage reduces "uk-UA" or "en_US" to "uk" / "en".
func baseLanguage(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}
	return locale
}

// SupportedLocale reports whether month names exist for locale.
func SupportedLocale(locale string) bool {
	base := baseLanguage(locale)
	if base == DefaultLocale {
		return true
	}
	_, ok := monthNames[base]
	return ok
}

// MonthLabel renders "January 2024" style labels in the given locale,
// falling back to English.
func MonthLabel(t time.Time, locale string) string {
	names, ok := monthNames[baseLanguage(locale)]
	if !ok {
		return t.Format("January 2006")
	}
	return fmt.Sprintf("%s %d", names[t.Month()-1], t.Year())
}
