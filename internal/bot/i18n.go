package bot

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-addressbook/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Messages translates console replies. The zero value is not usable; create
// one with NewMessages.
type Messages struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer

	// Languages lists the locale codes found in the embedded files.
	Languages []string
}

// NewMessages loads every embedded locale and selects lang, falling back to
// English for missing languages and keys.
func NewMessages(lang string) *Messages {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	m := &Messages{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

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

		m.Languages = append(m.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	m.SetLanguage(lang)
	return m
}

// SetLanguage switches the active language.
func (m *Messages) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	m.localizer = i18n.NewLocalizer(m.bundle, lang, config.DefaultLanguage)
}

// T translates key with optional template data. Missing keys are logged and
// returned verbatim.
func (m *Messages) T(key string, data map[string]any) string {
	msg, err := m.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// SummaryFormatter returns the localized event title used by
// engine.Generator.
func (m *Messages) SummaryFormatter() func(name string, age int) string {
	return func(name string, age int) string {
		key := config.TKeyEvtSummaryAge
		if age == 0 {
			key = config.TKeyEvtSummaryBirth
		}

		msg := m.T(key, map[string]any{"Name": name, "Age": age})
		if msg != key {
			return msg
		}
		if age == 0 {
			return fmt.Sprintf(config.FallbackSummaryBirth, name)
		}
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
}
