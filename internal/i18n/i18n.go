// Package i18n provides the user-facing message catalog. Messages live
// in embedded locale files; English is the fallback for languages and
// keys the catalog does not cover.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer
)

// Init loads the translation bundle and selects the given language.
// Calling it again switches languages.
func Init(lang string) error {
	if _, err := language.Parse(lang); err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	b := goi18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		b.MustParseMessageFileBytes(data, e.Name())
	}

	bundle = b
	localizer = goi18n.NewLocalizer(b, lang, "en")
	return nil
}

// T translates a message by ID. Unknown IDs come back verbatim so a
// missing translation never hides the underlying condition.
func T(msgID string) string {
	if localizer == nil {
		return msgID
	}
	s, err := localizer.Localize(&goi18n.LocalizeConfig{MessageID: msgID})
	if err != nil {
		return msgID
	}
	return s
}

// Td translates a message by ID with template data.
func Td(msgID string, data map[string]any) string {
	if localizer == nil {
		return msgID
	}
	s, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
	if err != nil {
		return msgID
	}
	return s
}

// MessageFor returns the user-facing text for a failure kind, e.g.
// "timeout" maps to the "Error.timeout" catalog entry.
func MessageFor(kind string) string {
	return T("Error." + kind)
}
