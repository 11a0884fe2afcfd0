package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
)

// calendarWidgets holds the toolbar and the swappable body of the main window.
type calendarWidgets struct {
	viewRadio *widget.RadioGroup
	prevBtn   *widget.Button
	nextBtn   *widget.Button
	todayBtn  *widget.Button
	title     *widget.Label
	body      *fyne.Container
}

// showCalendar replaces the window content with the toolbar and the active view.
func (app *LifeCalendarApp) showCalendar() {
	cw := &calendarWidgets{}

	labels := make([]string, 0, len(engine.Views()))
	for _, v := range engine.Views() {
		labels = append(labels, app.viewLabel(v))
	}
	cw.viewRadio = widget.NewRadioGroup(labels, nil)
	cw.viewRadio.Horizontal = true
	cw.viewRadio.Required = true
	cw.viewRadio.SetSelected(app.viewLabel(app.Controller.State().View))
	cw.viewRadio.OnChanged = func(label string) {
		v, ok := app.viewFromLabel(label)
		if !ok {
			return
		}
		app.Controller.SetView(v)
		app.refresh()
	}

	cw.prevBtn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnPrevious), theme.NavigateBackIcon(), func() {
		app.Controller.Navigate(engine.DirPrevious)
		app.refresh()
	})
	cw.nextBtn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnNext), theme.NavigateNextIcon(), func() {
		app.Controller.Navigate(engine.DirNext)
		app.refresh()
	})
	cw.nextBtn.IconPlacement = widget.ButtonIconTrailingText
	cw.todayBtn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnToday), theme.HomeIcon(), func() {
		app.Controller.JumpToToday()
		app.refresh()
	})

	cw.title = widget.NewLabel("")
	cw.title.TextStyle = fyne.TextStyle{Bold: true}
	cw.title.Alignment = fyne.TextAlignCenter

	cw.body = container.NewStack()
	app.cal = cw

	nav := container.NewBorder(nil, nil,
		container.NewHBox(cw.prevBtn, cw.todayBtn),
		cw.nextBtn,
		cw.title)
	toolbar := container.NewVBox(
		container.NewBorder(nil, nil, nil, app.settingsButton(), container.NewCenter(cw.viewRadio)),
		nav,
		widget.NewSeparator(),
	)

	app.Window.SetContent(container.NewBorder(toolbar, nil, nil, nil, container.NewVScroll(padded(cw.body))))
	app.refresh()
}

// refresh renders the controller state into the body and updates the toolbar.
func (app *LifeCalendarApp) refresh() {
	if app.cal == nil || app.Controller == nil {
		return
	}
	cw := app.cal
	r := app.Controller.Render()

	var content fyne.CanvasObject
	if r.Projection != nil {
		cw.title.SetText(app.GetMsg(config.TKeyLblLifeTitle))
		cw.prevBtn.Disable()
		cw.nextBtn.Disable()
		cw.todayBtn.Disable()
		content = app.renderLifetime(*r.Projection)
	} else {
		g := *r.Grid
		cw.title.SetText(g.Title)
		cw.prevBtn.Enable()
		cw.nextBtn.Enable()
		if g.IsCurrentPeriod {
			cw.todayBtn.Disable()
		} else {
			cw.todayBtn.Enable()
		}
		switch g.View {
		case engine.ViewDay:
			content = app.renderDay(g)
		case engine.ViewYear:
			content = app.renderYear(g)
		default:
			content = app.renderDays(g.Weekdays, g.Days, false)
		}
	}

	cw.body.Objects = []fyne.CanvasObject{content}
	cw.body.Refresh()
}

func (app *LifeCalendarApp) renderDay(g engine.Grid) fyne.CanvasObject {
	rows := container.NewVBox()
	for _, slot := range g.Hours {
		lbl := widget.NewLabel(slot.Label)
		if slot.IsCurrentHour {
			lbl.SetText(fmt.Sprintf(config.FormatHourMarker, slot.Label, app.GetMsg(config.TKeyLblNow)))
			lbl.TextStyle = fyne.TextStyle{Bold: true}
			lbl.Importance = widget.HighImportance
		}
		rows.Add(lbl)
		rows.Add(widget.NewSeparator())
	}
	return rows
}

// renderDays lays cells out seven per row, in the order of the grid's Weekdays header.
func (app *LifeCalendarApp) renderDays(weekdays []string, cells []engine.Cell, compact bool) fyne.CanvasObject {
	grid := container.NewGridWithColumns(config.DaysPerWeek)
	for _, wd := range weekdays {
		h := widget.NewLabel(wd)
		h.Alignment = fyne.TextAlignCenter
		h.TextStyle = fyne.TextStyle{Bold: !compact}
		grid.Add(h)
	}
	for _, c := range cells {
		grid.Add(app.dayButton(c))
	}
	return grid
}

func (app *LifeCalendarApp) dayButton(c engine.Cell) *widget.Button {
	label := c.Label
	if c.IsBirthday {
		label = fmt.Sprintf(config.FormatCellLabel, label, config.MarkerBirthday)
	}
	if c.IsToday {
		label = fmt.Sprintf(config.FormatCellLabel, label, config.MarkerToday)
	}

	date := c.Date
	btn := widget.NewButton(label, func() {
		if app.Controller.SelectDate(date) {
			app.refresh()
		}
	})

	switch {
	case c.IsSelected:
		btn.Importance = widget.HighImportance
	case c.IsToday:
		btn.Importance = widget.SuccessImportance
	case !c.InCurrentPeriod:
		btn.Importance = widget.LowImportance
	}
	if !c.Selectable() {
		btn.Disable()
	}
	return btn
}

func (app *LifeCalendarApp) renderYear(g engine.Grid) fyne.CanvasObject {
	grid := container.NewGridWithColumns(config.LayoutColumnsYear)
	for _, m := range g.Months {
		month := m.Month
		title := m.Title
		if m.IsBirthMonth {
			title = fmt.Sprintf(config.FormatCellLabel, title, config.MarkerBirthday)
		}
		head := widget.NewButton(title, func() {
			if app.Controller.SelectMonth(month) {
				app.refresh()
			}
		})
		if m.IsCurrentMonth {
			head.Importance = widget.HighImportance
		} else {
			head.Importance = widget.LowImportance
		}
		if m.IsBeforeBirthMonth {
			head.Disable()
		}
		grid.Add(widget.NewCard("", "", container.NewVBox(head, app.renderDays(g.Weekdays, m.Cells, true))))
	}
	return grid
}

func (app *LifeCalendarApp) renderLifetime(p engine.Projection) fyne.CanvasObject {
	stat := func(key string, value string) fyne.CanvasObject {
		v := widget.NewLabel(value)
		v.TextStyle = fyne.TextStyle{Bold: true}
		v.Alignment = fyne.TextAlignCenter
		caption := widget.NewLabel(app.GetMsg(key))
		caption.Alignment = fyne.TextAlignCenter
		return widget.NewCard("", "", container.NewVBox(v, caption))
	}
	withUnit := func(n int, unitKey string) string {
		return strconv.Itoa(n) + " " + app.GetMsg(unitKey)
	}

	stats := container.NewGridWithColumns(config.LayoutColumnsStat,
		stat(config.TKeyLblAgeNow, withUnit(p.Age, config.TKeyUnitYears)),
		stat(config.TKeyLblWeeksLived, withUnit(p.WeeksLived, config.TKeyUnitWeeks)),
		stat(config.TKeyLblLifeExpect, withUnit(p.LifeExpectancy, config.TKeyUnitYears)),
		stat(config.TKeyLblNextBirthday, p.NextBirthday.Format(config.DateFormatFullDash)),
	)

	percent := app.GetMsgWith(config.TKeyLblPercentLived, map[string]any{
		"Percent": p.PercentLived.StringFixed(config.PercentPrecision),
		"Years":   p.LifeExpectancy,
	})
	progress := widget.NewProgressBar()
	progress.Max = 100
	progress.SetValue(p.PercentLived.InexactFloat64())
	progress.TextFormatter = func() string { return percent }

	legend := container.NewHBox(
		widget.NewLabel(fmt.Sprintf(config.FormatHourMarker, config.MarkerPast, app.GetMsg(config.TKeyLegendLived))),
		widget.NewLabel(fmt.Sprintf(config.FormatHourMarker, config.MarkerCurrent, app.GetMsg(config.TKeyLegendCurrent))),
		widget.NewLabel(fmt.Sprintf(config.FormatHourMarker, config.MarkerFuture, app.GetMsg(config.TKeyLegendFuture))),
		widget.NewLabel(fmt.Sprintf(config.FormatHourMarker, config.MarkerBirthday, app.GetMsg(config.TKeyLegendBirth))),
	)

	rows := container.NewVBox()
	for _, row := range engine.Rows(p.Buckets, config.LifetimeRowSize) {
		line := container.NewGridWithColumns(config.LifetimeRowSize)
		for _, b := range row {
			line.Add(bucketLabel(b))
		}
		rows.Add(line)
	}

	footer := widget.NewLabel(app.GetMsgWith(config.TKeyLblLifeFooter, map[string]any{
		"Date":    p.NextBirthday.Format(config.DateFormatFullDash),
		"AgeNext": p.AgeNext,
	}))
	footer.Alignment = fyne.TextAlignCenter
	footer.TextStyle = fyne.TextStyle{Italic: true}

	yearsLived := widget.NewLabel(app.GetMsg(config.TKeyLblYearsLived))

	return container.NewVBox(stats, yearsLived, progress, legend, widget.NewSeparator(), rows, footer)
}

func bucketLabel(b engine.YearBucket) *widget.Label {
	marker := config.MarkerFuture
	switch b.Status {
	case engine.StatusPast:
		marker = config.MarkerPast
	case engine.StatusCurrent:
		marker = config.MarkerCurrent
	}
	text := fmt.Sprintf(config.FormatBucketLabel, marker, b.Year)
	if b.IsBirthYear {
		text = fmt.Sprintf(config.FormatCellLabel, text, config.MarkerBirthday)
	}

	lbl := widget.NewLabel(text)
	lbl.Alignment = fyne.TextAlignCenter
	lbl.TextStyle = fyne.TextStyle{Bold: b.IsDecade, Monospace: true}
	switch b.Status {
	case engine.StatusCurrent:
		lbl.Importance = widget.HighImportance
	case engine.StatusFuture:
		lbl.Importance = widget.LowImportance
	}
	return lbl
}
