package assistant

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-addressbook/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// loadBundle builds the translation bundle from the embedded locale files
// and returns the languages it found.
func loadBundle() (*i18n.Bundle, []string) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return bundle, nil
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detected = append(detected, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	return bundle, detected
}

// normalizeLanguage maps a user supplied tag ("fr-CA", "EN") onto a loaded language.
func normalizeLanguage(lang string, available []string) (string, error) {
	if lang == "" {
		return config.DefaultLanguage, nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("%s: %q: %w", config.ErrLanguage, lang, err)
	}
	base, _ := tag.Base()
	if !slices.Contains(available, base.String()) {
		return "", fmt.Errorf("%s: %q", config.ErrLanguage, lang)
	}
	return base.String(), nil
}

// msg translates a key. The key itself is returned when no translation exists.
func (a *Assistant) msg(key string, data map[string]any) string {
	return a.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// msgN translates a key that has plural forms.
func (a *Assistant) msgN(key string, count int, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	data["Count"] = count
	return a.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data, PluralCount: count})
}

func (a *Assistant) localize(lc *i18n.LocalizeConfig) string {
	if a.localizer == nil {
		return lc.MessageID
	}
	msg, err := a.localizer.Localize(lc)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return lc.MessageID
	}
	return msg
}

// summaryFormatter localizes the titles of exported calendar events.
func (a *Assistant) summaryFormatter() func(name string, age int, yearKnown bool) string {
	return func(name string, age int, yearKnown bool) string {
		data := map[string]any{"Name": name, "Age": age}

		key := config.TKeyEvtSummary
		fallback := fmt.Sprintf(config.FallbackSummary, name)
		switch {
		case yearKnown && age == 0:
			key = config.TKeyEvtSummaryBirth
			fallback = fmt.Sprintf(config.FallbackSummaryBday, name)
		case yearKnown:
			key = config.TKeyEvtSummaryAge
			fallback = fmt.Sprintf(config.FallbackSummaryAge, name, age)
		}

		if msg := a.msg(key, data); msg != key && msg != "" {
			return msg
		}
		return fallback
	}
}
