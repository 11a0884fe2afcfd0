package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	langSelect *widget.Select
	viewSelect *widget.Select
	entryPort  *NumericalEntry
	btnSave    *widget.Button
	btnCancel  *widget.Button
}

// ShowSettingsWindow displays the preferences dialog. A second call focuses the open one.
func (app *LifeCalendarApp) ShowSettingsWindow() {
	if app.settingsWindow != nil {
		slog.Debug(config.MsgFocusSettings, config.LogKeyComponent, config.CompUISet)
		app.settingsWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgOpenSettings, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.settingsWindow = w

	sw := app.buildSettingsWidgets()

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	itemView := widget.NewFormItem(app.GetMsg(config.TKeyLblView), sw.viewSelect)

	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.entryPort)
	itemPort.HintText = app.GetMsg(config.TKeyHelpPort)

	generalCard := widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", widget.NewForm(itemLang, itemView, itemPort))

	sw.btnSave = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		// Only the port blocks saving; the selects always hold a valid choice.
		if err := sw.entryPort.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw, w)
	})
	sw.btnSave.Importance = widget.HighImportance
	sw.btnCancel = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footerLabel := widget.NewLabel(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version))
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewPadded(container.NewVBox(
		generalCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, sw.btnCancel, sw.btnSave),
		footerLabel,
	))

	w.SetContent(content)
	w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.settingsWindow = nil })
	w.Show()
}

func (app *LifeCalendarApp) buildSettingsWidgets() *settingsWidgets {
	sw := &settingsWidgets{}

	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	views := make([]string, 0, len(engine.Views()))
	for _, v := range engine.Views() {
		views = append(views, app.viewLabel(v))
	}
	sw.viewSelect = widget.NewSelect(views, nil)
	current, err := engine.ParseViewMode(app.Preferences.StringWithFallback(config.PrefView, config.DefaultView))
	if err != nil {
		current, _ = engine.ParseViewMode(config.DefaultView)
	}
	sw.viewSelect.SetSelected(app.viewLabel(current))

	sw.entryPort = NewPortEntry()
	sw.entryPort.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.entryPort.Validator = app.validatePort

	return sw
}

// validatePort accepts a TCP port in [MinPort, MaxPort] and reports errors in the active language.
func (app *LifeCalendarApp) validatePort(s string) error {
	if s == "" {
		return errors.New(app.GetMsg(config.TKeyErrPortReq))
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return errors.New(app.GetMsg(config.TKeyErrPortNum))
	}
	if port < config.MinPort || port > config.MaxPort {
		return errors.New(app.GetMsg(config.TKeyErrPortRange))
	}
	return nil
}

// saveSettings persists the preferences and applies the language immediately.
// The port takes effect at the next start.
func (app *LifeCalendarApp) saveSettings(sw *settingsWidgets, w fyne.Window) {
	slog.Info(config.MsgSavingPrefs, config.LogKeyComponent, config.CompUISet)

	// Map the view label back before the language changes.
	if v, ok := app.viewFromLabel(sw.viewSelect.Selected); ok {
		app.Preferences.SetString(config.PrefView, v.String())
	}
	if sw.entryPort.Text != "" {
		app.Preferences.SetString(config.PrefServerPort, sw.entryPort.Text)
	}

	oldLang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	if sw.langSelect.Selected != "" {
		app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	}
	if sw.langSelect.Selected != "" && sw.langSelect.Selected != oldLang {
		app.relocalize()
	}

	w.Close()
}
