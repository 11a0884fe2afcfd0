package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
)

// By being in package 'ui', we can test the private settings helpers.
func TestValidatePort(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"Valid", "18090", ""},
		{"Lower bound", "1", ""},
		{"Upper bound", "65535", ""},
		{"Empty", "", "Port is required"},
		{"Pasted letters", "80a", "Port must be a number"},
		{"Zero", "0", "Port must be between 1 and 65535"},
		{"Too large", "70000", "Port must be between 1 and 65535"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := app.validatePort(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestSettings_InitialValues(t *testing.T) {
	app, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefServerPort, "18100")
	app.Preferences.SetString(config.PrefView, config.ViewLifetime)

	sw := app.buildSettingsWidgets()

	assert.Equal(t, "en", sw.langSelect.Selected)
	assert.Equal(t, []string{"en", "fr"}, sw.langSelect.Options)
	assert.Equal(t, "Lifetime", sw.viewSelect.Selected)
	assert.Len(t, sw.viewSelect.Options, len(engine.Views()))
	assert.Equal(t, "18100", sw.entryPort.Text)
}

func TestSettings_SingleWindow(t *testing.T) {
	app, _ := setupTestApp(t)

	app.ShowSettingsWindow()
	first := app.settingsWindow
	require.NotNil(t, first)

	app.ShowSettingsWindow()
	assert.Same(t, first, app.settingsWindow)
	assert.Equal(t, "Settings", first.Title())
}

func TestSettings_Save(t *testing.T) {
	app := startSession(t, "1990-06-15")
	app.ShowSettingsWindow()
	w := app.settingsWindow

	sw := app.buildSettingsWidgets()
	sw.langSelect.SetSelected("fr")
	sw.viewSelect.SetSelected("Year")
	sw.entryPort.SetText("18111")

	app.saveSettings(sw, w)

	assert.Equal(t, "fr", app.Preferences.String(config.PrefLanguage))
	assert.Equal(t, config.ViewYear, app.Preferences.String(config.PrefView))
	assert.Equal(t, "18111", app.Preferences.String(config.PrefServerPort))

	// The language applies at once, the running session keeps its view.
	assert.Equal(t, "Paramètres...", app.GetMsg(config.TKeyMenuSettings))
	assert.Equal(t, "Mois", app.cal.viewRadio.Selected)
	assert.Contains(t, fetchFeed(t, app.Server), "SUMMARY:Naissance\r\n")
}

func TestSettings_SaveKeepsLanguage(t *testing.T) {
	app, _ := setupTestApp(t)
	app.ShowSettingsWindow()

	sw := app.buildSettingsWidgets()
	sw.viewSelect.SetSelected("Day")
	app.saveSettings(sw, app.settingsWindow)

	assert.Equal(t, "en", app.Preferences.String(config.PrefLanguage))
	assert.Equal(t, config.ViewDay, app.Preferences.String(config.PrefView))
	assert.Equal(t, config.DefaultPort, app.Preferences.String(config.PrefServerPort))
}
