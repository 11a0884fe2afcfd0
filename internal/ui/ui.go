package ui

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
	"github.com/tartampluch/go-lifecalendar/internal/server"
)

//go:embed Icon.png
var appIconData []byte

// LifeCalendarApp encapsulates the UI state, preferences and the session controller.
// All fields are touched from the Fyne event loop only.
type LifeCalendarApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Server *server.CalendarServer
	Clock  engine.Clock // Injected clock for testability

	// InitialView overrides the default view preference when set (CLI flag).
	InitialView *engine.ViewMode

	Controller *engine.Controller

	Tray             desktop.App
	Menu             *fyne.Menu
	TrayTodayItem    *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string

	settingsWindow fyne.Window
	cal            *calendarWidgets
	intake         *intakeWidgets
}

// NewLifeCalendarApp constructs the application and wires dependencies.
func NewLifeCalendarApp(a fyne.App, ctx context.Context, srv *server.CalendarServer) *LifeCalendarApp {
	a.SetIcon(fyne.NewStaticResource(config.IconFile, appIconData))

	return &LifeCalendarApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
	}
}

// Run launches the feed server and the main window, then blocks in the UI loop.
// A zero birth shows the intake form first.
func (app *LifeCalendarApp) Run(birth engine.BirthDate) {
	app.SetupI18n()

	// The server blocks until Ctx is cancelled, so it gets its own goroutine.
	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			// Most likely the port is taken. The calendar still works without the feed.
			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	// The tray only exists on desktop drivers.
	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.MsgTrayMissing, config.LogKeyComponent, config.CompUI)
	}

	app.ShowMainWindow(birth)
	app.App.Run()
}

// ShowMainWindow creates the main window with either the intake form or the calendar.
func (app *LifeCalendarApp) ShowMainWindow(birth engine.BirthDate) {
	if app.Window == nil {
		app.Window = app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
		app.Window.SetMaster() // closing it quits the app, the tray included
		app.Window.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	}

	if birth.IsZero() {
		app.showIntake()
	} else {
		app.acceptBirth(birth)
	}
	app.Window.Show()
}

// acceptBirth starts a session for birth and publishes its feed.
func (app *LifeCalendarApp) acceptBirth(birth engine.BirthDate) {
	app.Controller = engine.NewController(app.Clock, birth, app.startView())
	app.publish()
	app.showCalendar()
}

// publish regenerates the iCalendar feed with the current language.
func (app *LifeCalendarApp) publish() {
	if app.Controller == nil || app.Server == nil {
		return
	}
	// Event summaries follow the active language.
	app.Server.Exporter.FormatSummary = app.buildSummaryFormatter()
	if err := app.Server.Publish(app.Ctx, app.Controller.State().Birth); err != nil {
		// The previous feed keeps being served.
		slog.Error(config.ErrExportFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return
	}
	slog.Info(config.MsgPublished,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyPort, app.Server.Port)
}

// startView resolves the first view: CLI flag, then preference, then the default.
func (app *LifeCalendarApp) startView() engine.ViewMode {
	if app.InitialView != nil {
		return *app.InitialView
	}
	name := app.Preferences.StringWithFallback(config.PrefView, config.DefaultView)
	v, err := engine.ParseViewMode(name)
	if err != nil {
		slog.Warn(config.ErrUnknownView,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyView, name)
		v, _ = engine.ParseViewMode(config.DefaultView) // a constant, cannot fail
	}
	return v
}

// setupTrayMenu constructs the system tray menu.
func (app *LifeCalendarApp) setupTrayMenu() {
	app.TrayTodayItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuToday), func() {
		if app.Controller == nil {
			return
		}
		app.Controller.JumpToToday()
		app.refresh()
		if app.Window != nil {
			app.Window.RequestFocus()
		}
	})

	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayTodayItem,
		fyne.NewMenuItemSeparator(),
		app.TraySettingsItem,
	)

	// Nil in headless tests.
	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *LifeCalendarApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayTodayItem.Label = app.GetMsg(config.TKeyMenuToday)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// relocalize rebuilds every visible surface after a language change.
func (app *LifeCalendarApp) relocalize() {
	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	if app.Window != nil {
		app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))
	}
	// No session yet: only the intake form is on screen.
	if app.Controller == nil {
		if app.intake != nil {
			app.showIntake()
		}
		return
	}
	app.publish()
	app.showCalendar()
}

// settingsButton opens the settings window from the main window toolbar.
func (app *LifeCalendarApp) settingsButton() *widget.Button {
	return widget.NewButton(app.GetMsg(config.TKeyMenuSettings), app.ShowSettingsWindow)
}

func padded(obj fyne.CanvasObject) fyne.CanvasObject {
	return container.NewPadded(obj)
}
