package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
	"github.com/tartampluch/go-lifecalendar/internal/server"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockTray implements minimal system tray functionality for headless testing.
type MockTray struct {
	Menu *fyne.Menu
}

func (m *MockTray) SetSystemTrayMenu(menu *fyne.Menu) {
	m.Menu = menu
}

func (m *MockTray) SetSystemTrayIcon(icon fyne.Resource) {}
func (m *MockTray) SetSystemTrayWindow(w fyne.Window)    {}
func (m *MockTray) Run()                                 {}
func (m *MockTray) Quit()                                {}

// Saturday, June 15th 2024.
var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

// setupTestApp initializes a headless Fyne app with mocked dependencies.
func setupTestApp(t *testing.T) (*LifeCalendarApp, *MockTray) {
	a := test.NewApp()
	t.Cleanup(a.Quit)

	clock := MockClock{CurrentTime: fixedNow}
	srv := server.NewCalendarServer("0", clock)
	mockTray := &MockTray{}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := NewLifeCalendarApp(a, ctx, srv)
	app.Tray = mockTray
	app.Clock = clock

	// Run() is skipped, load translations by hand.
	app.Preferences.SetString(config.PrefLanguage, "en")
	app.SetupI18n()

	return app, mockTray
}

// startSession opens the main window on an accepted birth date.
func startSession(t *testing.T, raw string) *LifeCalendarApp {
	t.Helper()
	app, _ := setupTestApp(t)
	birth, err := engine.ValidateBirthDate(raw, fixedNow)
	require.NoError(t, err)
	app.ShowMainWindow(birth)
	require.NotNil(t, app.cal)
	return app
}

func fetchFeed(t *testing.T, srv *server.CalendarServer) string {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

// bodyGrid returns the grid container rendered by the week and month views.
func bodyGrid(t *testing.T, app *LifeCalendarApp) *fyne.Container {
	t.Helper()
	require.Len(t, app.cal.body.Objects, 1)
	grid, ok := app.cal.body.Objects[0].(*fyne.Container)
	require.True(t, ok)
	return grid
}

// -----------------------------------------------------------------------------
// Localization Tests
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _ := setupTestApp(t)

	assert.Equal(t, []string{"en", "fr"}, app.SupportedLanguages)
	assert.Equal(t, "Settings...", app.GetMsg(config.TKeyMenuSettings))

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Paramètres...", app.GetMsg(config.TKeyMenuSettings))

	// Unknown keys come back verbatim.
	assert.Equal(t, "no_such_key", app.GetMsg("no_such_key"))
}

func TestLocalization_Templates(t *testing.T) {
	app, _ := setupTestApp(t)

	msg := app.GetMsgWith(config.TKeyLblPercentLived, map[string]any{"Percent": "37.8", "Years": 90})
	assert.Equal(t, "37.8% of 90 years lived", msg)
}

func TestLocalization_SummaryFormatter(t *testing.T) {
	app, _ := setupTestApp(t)

	formatter := app.buildSummaryFormatter()
	assert.Equal(t, "Birth", formatter(0))
	assert.Equal(t, "Birthday (34)", formatter(34))

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	fr := app.buildSummaryFormatter()
	assert.Equal(t, "Naissance", fr(0))
	assert.Equal(t, "Birthday (34)", formatter(34), "A formatter keeps the language it was built with")

	app.Localizer = nil
	assert.Empty(t, app.buildSummaryFormatter()(34))
}

func TestViewLabels_RoundTrip(t *testing.T) {
	app, _ := setupTestApp(t)

	for _, v := range engine.Views() {
		got, ok := app.viewFromLabel(app.viewLabel(v))
		require.True(t, ok)
		assert.Equal(t, v, got)
	}
	_, ok := app.viewFromLabel("Fortnight")
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------
// Intake Tests
// -----------------------------------------------------------------------------

func TestIntake_ShownWithoutBirthDate(t *testing.T) {
	app, _ := setupTestApp(t)
	app.ShowMainWindow(engine.BirthDate{})

	require.NotNil(t, app.intake)
	assert.Nil(t, app.cal)
	assert.Nil(t, app.Controller)
	assert.False(t, app.intake.errLabel.Visible())
}

func TestIntake_Rejections(t *testing.T) {
	tests := []struct {
		name string
		lang string
		raw  string
		want string
	}{
		{"empty", "en", "", "Please select a birth date"},
		{"future", "en", "2030-01-01", "Birth date must be in the past"},
		{"too old", "en", "1890-01-01", "Birth date seems unreasonable (more than 120 years ago)"},
		{"localized", "fr", "2030-01-01", "La date de naissance doit être dans le passé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)
			app.Preferences.SetString(config.PrefLanguage, tt.lang)
			app.UpdateLocalizer()
			app.ShowMainWindow(engine.BirthDate{})

			app.intake.entry.SetText(tt.raw)
			test.Tap(app.intake.submit)

			assert.True(t, app.intake.errLabel.Visible())
			assert.Equal(t, tt.want, app.intake.errLabel.Text)
			assert.Nil(t, app.Controller)
		})
	}
}

func TestIntake_AcceptPublishesFeed(t *testing.T) {
	app, _ := setupTestApp(t)
	app.ShowMainWindow(engine.BirthDate{})

	app.intake.entry.SetText("1990-06-15")
	test.Tap(app.intake.submit)

	require.NotNil(t, app.Controller)
	assert.Nil(t, app.intake)
	require.NotNil(t, app.cal)
	assert.Equal(t, "June 2024", app.cal.title.Text)
	assert.Equal(t, "1990-06-15", app.Controller.State().Birth.String())

	feed := fetchFeed(t, app.Server)
	assert.Contains(t, feed, "SUMMARY:Birth\r\n")
	assert.Contains(t, feed, "Birthday (34)")
}

// -----------------------------------------------------------------------------
// Calendar Tests
// -----------------------------------------------------------------------------

func TestCalendar_StartView(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		app, _ := setupTestApp(t)
		assert.Equal(t, engine.ViewMonth, app.startView())
	})

	t.Run("preference", func(t *testing.T) {
		app, _ := setupTestApp(t)
		app.Preferences.SetString(config.PrefView, config.ViewYear)
		assert.Equal(t, engine.ViewYear, app.startView())
	})

	t.Run("broken preference", func(t *testing.T) {
		app, _ := setupTestApp(t)
		app.Preferences.SetString(config.PrefView, "fortnight")
		assert.Equal(t, engine.ViewMonth, app.startView())
	})

	t.Run("flag wins", func(t *testing.T) {
		app, _ := setupTestApp(t)
		app.Preferences.SetString(config.PrefView, config.ViewYear)
		v := engine.ViewDay
		app.InitialView = &v
		assert.Equal(t, engine.ViewDay, app.startView())
	})
}

func TestCalendar_Navigation(t *testing.T) {
	app := startSession(t, "1990-06-15")
	cw := app.cal

	assert.True(t, cw.todayBtn.Disabled(), "Today is disabled on the current month")

	test.Tap(cw.nextBtn)
	assert.Equal(t, "July 2024", cw.title.Text)
	assert.False(t, cw.todayBtn.Disabled())

	test.Tap(cw.prevBtn)
	test.Tap(cw.prevBtn)
	assert.Equal(t, "May 2024", cw.title.Text)

	test.Tap(cw.todayBtn)
	assert.Equal(t, "June 2024", cw.title.Text)
	assert.True(t, cw.todayBtn.Disabled())
}

func TestCalendar_ViewSwitching(t *testing.T) {
	app := startSession(t, "1990-06-15")
	cw := app.cal

	cw.viewRadio.SetSelected("Week")
	assert.Equal(t, engine.ViewWeek, app.Controller.State().View)
	assert.Equal(t, "Jun 10 - Jun 16, 2024", cw.title.Text)
	// 7 weekday headers followed by 7 days.
	assert.Len(t, bodyGrid(t, app).Objects, 14)

	cw.viewRadio.SetSelected("Day")
	assert.Equal(t, "Saturday, June 15, 2024", cw.title.Text)

	cw.viewRadio.SetSelected("Lifetime")
	assert.Equal(t, engine.ViewLifetime, app.Controller.State().View)
	assert.Equal(t, "Your Life in Years", cw.title.Text)
	assert.True(t, cw.prevBtn.Disabled())
	assert.True(t, cw.nextBtn.Disabled())
	assert.True(t, cw.todayBtn.Disabled())

	cw.viewRadio.SetSelected("Month")
	assert.False(t, cw.prevBtn.Disabled())
	assert.Equal(t, "June 2024", cw.title.Text)
}

// TestCalendar_WeekdayHeaderOrder checks that week rows start on Monday and month rows on
// Sunday, each under the matching header.
func TestCalendar_WeekdayHeaderOrder(t *testing.T) {
	app := startSession(t, "1990-06-15")
	cw := app.cal

	header := func(i int) string {
		lbl, ok := bodyGrid(t, app).Objects[i].(*widget.Label)
		require.True(t, ok)
		return lbl.Text
	}
	firstDay := func() string {
		btn, ok := bodyGrid(t, app).Objects[config.DaysPerWeek].(*widget.Button)
		require.True(t, ok)
		return btn.Text
	}

	assert.Equal(t, "Sun", header(0))
	assert.Equal(t, "26", firstDay(), "June 2024 grid opens on Sunday May 26")

	cw.viewRadio.SetSelected("Week")
	assert.Equal(t, "Mon", header(0))
	assert.Equal(t, "Sun", header(config.DaysPerWeek-1))
	assert.Equal(t, "10", firstDay(), "Monday June 10")
}

func TestCalendar_DayClick(t *testing.T) {
	app := startSession(t, "1990-06-15")

	// June 2024 starts on a Saturday: six padding days, then June 1st.
	grid := bodyGrid(t, app)
	require.Len(t, grid.Objects, config.DaysPerWeek+42)
	june3, ok := grid.Objects[config.DaysPerWeek+8].(*widget.Button)
	require.True(t, ok)
	assert.Equal(t, "3", june3.Text)

	test.Tap(june3)

	anchor := app.Controller.State().Anchor
	assert.Equal(t, time.June, anchor.Month())
	assert.Equal(t, 3, anchor.Day())
	assert.Equal(t, engine.ViewMonth, app.Controller.State().View)

	selected := bodyGrid(t, app).Objects[config.DaysPerWeek+8].(*widget.Button)
	assert.Equal(t, widget.HighImportance, selected.Importance)
}

func TestCalendar_DaysBeforeBirthDisabled(t *testing.T) {
	app := startSession(t, "2024-06-10")
	before := app.Controller.State().Anchor

	grid := bodyGrid(t, app)
	june3 := grid.Objects[config.DaysPerWeek+8].(*widget.Button)
	assert.True(t, june3.Disabled())

	test.Tap(june3)
	assert.Equal(t, before, app.Controller.State().Anchor)

	birthday := grid.Objects[config.DaysPerWeek+15].(*widget.Button)
	assert.False(t, birthday.Disabled())
	assert.Equal(t, "10"+config.MarkerBirthday, birthday.Text)
}

func TestCalendar_YearMonthClick(t *testing.T) {
	app := startSession(t, "1990-06-15")
	app.cal.viewRadio.SetSelected("Year")
	assert.Equal(t, "2024", app.cal.title.Text)

	months := bodyGrid(t, app)
	require.Len(t, months.Objects, config.MonthsInYear)

	card, ok := months.Objects[2].(*widget.Card)
	require.True(t, ok)
	head := card.Content.(*fyne.Container).Objects[0].(*widget.Button)
	assert.Equal(t, "Mar", head.Text)

	test.Tap(head)

	state := app.Controller.State()
	assert.Equal(t, engine.ViewYear, state.View)
	assert.Equal(t, time.March, state.Anchor.Month())
	assert.Equal(t, 1, state.Anchor.Day())
}

func TestCalendar_Relocalize(t *testing.T) {
	app := startSession(t, "1990-06-15")

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.relocalize()

	assert.Equal(t, "Précédent", app.cal.prevBtn.Text)
	assert.Contains(t, app.cal.viewRadio.Options, "Mois")
	assert.Equal(t, "Mois", app.cal.viewRadio.Selected)
	assert.Contains(t, fetchFeed(t, app.Server), "SUMMARY:Naissance\r\n")
}

// -----------------------------------------------------------------------------
// Tray Tests
// -----------------------------------------------------------------------------

func TestTray_Menu(t *testing.T) {
	app := startSession(t, "1990-06-15")
	mockTray := app.Tray.(*MockTray)
	app.setupTrayMenu()

	require.NotNil(t, mockTray.Menu)
	assert.Equal(t, "Go to today", app.TrayTodayItem.Label)

	test.Tap(app.cal.nextBtn)
	assert.Equal(t, "July 2024", app.cal.title.Text)

	app.TrayTodayItem.Action()
	assert.Equal(t, "June 2024", app.cal.title.Text)

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	assert.Equal(t, "Paramètres...", app.TraySettingsItem.Label)
}
