package ui

import (
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
)

// intakeWidgets holds the birth date form so tests can drive it.
type intakeWidgets struct {
	entry    *widget.Entry
	errLabel *widget.Label
	submit   *widget.Button
}

// showIntake replaces the window content with the birth date form.
func (app *LifeCalendarApp) showIntake() {
	iw := &intakeWidgets{}

	iw.entry = widget.NewEntry()
	iw.entry.PlaceHolder = config.EntryPlaceholder
	if app.intake != nil {
		iw.entry.SetText(app.intake.entry.Text)
	}

	iw.errLabel = widget.NewLabel("")
	iw.errLabel.Importance = widget.DangerImportance
	iw.errLabel.Wrapping = fyne.TextWrapWord
	iw.errLabel.Hide()

	iw.submit = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnContinue), theme.ConfirmIcon(), func() {
		app.submitBirth(iw.entry.Text)
	})
	iw.submit.Importance = widget.HighImportance
	iw.entry.OnSubmitted = app.submitBirth

	app.intake = iw
	app.cal = nil

	title := widget.NewLabel(app.GetMsg(config.TKeyIntakeTitle))
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	subtitle := widget.NewLabel(app.GetMsg(config.TKeyIntakeSubtitle))
	subtitle.Wrapping = fyne.TextWrapWord
	subtitle.Alignment = fyne.TextAlignCenter

	form := widget.NewForm(widget.NewFormItem(app.GetMsg(config.TKeyLblBirthDate), iw.entry))

	card := container.NewVBox(title, subtitle, form, iw.errLabel, iw.submit)
	sized := container.NewGridWrap(fyne.NewSize(config.IntakeWindowWidth, card.MinSize().Height), card)

	app.Window.SetContent(container.NewCenter(sized))
}

// submitBirth validates raw against the injected clock and opens the calendar on success.
func (app *LifeCalendarApp) submitBirth(raw string) {
	birth, err := engine.ValidateBirthDate(raw, app.Clock.Now())
	if err != nil {
		app.showIntakeError(err)
		return
	}

	slog.Info(config.MsgBirthAccepted,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyDOB, birth.String())

	app.intake = nil
	app.acceptBirth(birth)
}

func (app *LifeCalendarApp) showIntakeError(err error) {
	msg := err.Error()
	var vErr *engine.ValidationError
	if errors.As(err, &vErr) {
		msg = app.GetMsg(vErr.Kind.TranslationKey())
		slog.Debug(config.ErrBirthRejected,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyKind, vErr.Kind.String(),
			config.LogKeyValue, vErr.Input)
	}
	if app.intake == nil {
		return
	}
	app.intake.errLabel.SetText(msg)
	app.intake.errLabel.Show()
}
