package ui

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// viewKeys maps each view to its switcher label.
var viewKeys = map[engine.ViewMode]string{
	engine.ViewDay:      config.TKeyViewDay,
	engine.ViewWeek:     config.TKeyViewWeek,
	engine.ViewMonth:    config.TKeyViewMonth,
	engine.ViewYear:     config.TKeyViewYear,
	engine.ViewLifetime: config.TKeyViewLifetime,
}

// SetupI18n initializes the translation bundle and detects available languages.
func (app *LifeCalendarApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	app.SupportedLanguages = detectedLangs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator based on the user's language preference.
func (app *LifeCalendarApp) UpdateLocalizer() {
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	if app.I18nBundle == nil {
		return
	}
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// GetMsg is a helper to translate a key safely. Missing keys come back verbatim.
func (app *LifeCalendarApp) GetMsg(key string) string {
	return app.GetMsgWith(key, nil)
}

// GetMsgWith translates a templated message.
func (app *LifeCalendarApp) GetMsgWith(key string, data map[string]any) string {
	if app.Localizer == nil {
		return key
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// viewLabel is the localized switcher label of v.
func (app *LifeCalendarApp) viewLabel(v engine.ViewMode) string {
	return app.GetMsg(viewKeys[v])
}

// viewFromLabel reverses viewLabel for the current language.
func (app *LifeCalendarApp) viewFromLabel(label string) (engine.ViewMode, bool) {
	for _, v := range engine.Views() {
		if app.viewLabel(v) == label {
			return v, true
		}
	}
	return 0, false
}

// buildSummaryFormatter returns a closure that localizes the anniversary event titles.
// An empty result lets the exporter fall back to its English summaries.
func (app *LifeCalendarApp) buildSummaryFormatter() func(age int) string {
	localizer := app.Localizer
	return func(age int) string {
		if localizer == nil {
			return ""
		}
		var (
			msg string
			err error
		)
		if age == 0 {
			msg, err = localizer.Localize(&i18n.LocalizeConfig{MessageID: config.TKeyEvtBirth})
		} else {
			msg, err = localizer.Localize(&i18n.LocalizeConfig{
				MessageID:    config.TKeyEvtAge,
				TemplateData: map[string]any{"Age": age},
			})
		}
		if err != nil {
			return ""
		}
		return msg
	}
}
