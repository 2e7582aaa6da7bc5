package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/zalando/go-keyring"
)

// Preference values paired with the translation key of their label.
var (
	sourceModeKeys = [][2]string{
		{config.SourceModeWeb, config.TKeyModeCardDAV},
		{config.SourceModeLocal, config.TKeyModeLocal},
	}
	reminderUnitKeys = [][2]string{
		{config.UnitDays, config.TKeyUnitDays},
		{config.UnitHours, config.TKeyUnitHours},
		{config.UnitMinutes, config.TKeyUnitMinutes},
	}
	reminderDirKeys = [][2]string{
		{config.DirBefore, config.TKeyDirBefore},
		{config.DirAfter, config.TKeyDirAfter},
	}
)

// reminderPrefs is the alarm configuration attached to birthday events.
type reminderPrefs struct {
	enabled bool
	value   int
	unit    string
	dir     string
}

func (app *ContactsApp) loadReminderPrefs() reminderPrefs {
	return reminderPrefs{
		enabled: app.Preferences.Bool(config.PrefReminderEnabled),
		value:   app.Preferences.IntWithFallback(config.PrefReminderValue, config.DefaultReminderValue),
		unit:    app.Preferences.StringWithFallback(config.PrefReminderUnit, config.UnitDays),
		dir:     app.Preferences.StringWithFallback(config.PrefReminderDir, config.DirBefore),
	}
}

func (app *ContactsApp) storeReminderPrefs(r reminderPrefs) {
	app.Preferences.SetBool(config.PrefReminderEnabled, r.enabled)
	app.Preferences.SetInt(config.PrefReminderValue, r.value)
	app.Preferences.SetString(config.PrefReminderUnit, r.unit)
	app.Preferences.SetString(config.PrefReminderDir, r.dir)
}

// trigger renders the ISO 8601 alarm offset. Hours and minutes belong to the
// time part of the duration. Disabled reminders yield "".
func (r reminderPrefs) trigger() string {
	if !r.enabled {
		return ""
	}

	sign := config.ISOPeriodPrefix
	if r.dir == config.DirBefore {
		sign = config.ISONegativePrefix
	}

	switch r.unit {
	case config.UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, config.ISOTime, r.value, config.ISOHour)
	case config.UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, config.ISOTime, r.value, config.ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, r.value, config.ISODay)
	}
}

// choice is a Select bound to preference values through their labels.
type choice struct {
	*widget.Select
	labels map[string]string // value -> label
	values map[string]string // label -> value
}

func (app *ContactsApp) newChoice(pairs [][2]string, selected string) *choice {
	c := &choice{labels: map[string]string{}, values: map[string]string{}}
	options := make([]string, 0, len(pairs))
	for _, p := range pairs {
		label := app.GetMsg(p[1])
		c.labels[p[0]] = label
		c.values[label] = p[0]
		options = append(options, label)
	}
	c.Select = widget.NewSelect(options, nil)
	if label, ok := c.labels[selected]; ok {
		c.SetSelected(label)
	} else {
		c.SetSelected(options[0])
	}
	return c
}

func (c *choice) value() string {
	return c.values[c.Selected]
}

// settingsForm holds the settings widgets so saving can read them back.
type settingsForm struct {
	window fyne.Window

	mode *choice
	url  *widget.Entry
	user *widget.Entry
	pass *widget.Entry
	path *widget.Entry
	port *DigitEntry

	remind    *widget.Check
	remValue  *DigitEntry
	remUnit   *choice
	remDir    *choice
	remLayout *fyne.Container

	webSection   fyne.CanvasObject
	localSection fyne.CanvasObject
}

// ShowSettingsWindow displays the import source, feed port and reminder settings.
func (app *ContactsApp) ShowSettingsWindow() {
	app.openSettingsWindow()
}

func (app *ContactsApp) openSettingsWindow() *settingsForm {
	if app.settingsWindow != nil {
		slog.Debug(config.MsgFocusWindow, config.LogKeyComponent, config.CompUISet)
		app.settingsWindow.RequestFocus()
		return nil
	}

	slog.Info(config.MsgOpenSettings, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.settingsWindow = w

	rem := app.loadReminderPrefs()
	f := &settingsForm{
		window:   w,
		mode:     app.newChoice(sourceModeKeys, app.Preferences.StringWithFallback(config.PrefSourceMode, config.SourceModeLocal)),
		url:      widget.NewEntry(),
		user:     widget.NewEntry(),
		pass:     widget.NewPasswordEntry(),
		path:     widget.NewEntry(),
		port:     NewDigitEntry(config.MaxPortDigits),
		remind:   widget.NewCheck(app.GetMsg(config.TKeyLblEnableRem), nil),
		remValue: NewDigitEntry(config.MaxOffsetDigits),
		remUnit:  app.newChoice(reminderUnitKeys, rem.unit),
		remDir:   app.newChoice(reminderDirKeys, rem.dir),
	}

	f.url.PlaceHolder = config.PlaceholderURL
	f.url.SetText(app.Preferences.String(config.PrefCardDAVURL))
	f.user.SetText(app.Preferences.String(config.PrefUsername))
	if f.user.Text != "" {
		if pwd, err := keyring.Get(config.KeyringService, f.user.Text); err == nil {
			f.pass.SetText(pwd)
		}
	}
	f.path.SetText(app.Preferences.String(config.PrefLocalPath))

	f.port.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	f.port.Validator = app.validatePort

	f.remind.Checked = rem.enabled
	f.remValue.SetText(strconv.Itoa(rem.value))

	portItem := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), f.port)
	portItem.HintText = app.GetMsg(config.TKeyHelpPort)

	save := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		if err := f.port.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(f)
	})
	save.Importance = widget.HighImportance
	cancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), w.Close)

	footer := widget.NewLabelWithStyle(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version),
		fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	content := container.NewPadded(container.NewVBox(
		app.sourceCard(f),
		widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", widget.NewForm(portItem)),
		app.reminderCard(f),
		container.NewGridWithColumns(config.LayoutColumnsDouble, cancel, save),
		footer,
	))

	// Showing or hiding a section changes the height the window needs.
	relayout := func() {
		content.Refresh()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	}
	f.mode.OnChanged = func(string) { f.applySourceVisibility(); relayout() }
	f.remind.OnChanged = func(on bool) { setVisible(f.remLayout, on); relayout() }

	w.SetContent(content)
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.settingsWindow = nil })
	relayout()
	w.Show()
	return f
}

// validatePort accepts a TCP port number between config.MinPort and config.MaxPort.
func (app *ContactsApp) validatePort(s string) error {
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

// sourceCard lays out the import source: a URL with credentials, or a
// local file picked with a browse button.
func (app *ContactsApp) sourceCard(f *settingsForm) *widget.Card {
	browse := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil || r == nil {
				return
			}
			_ = r.Close()
			f.path.SetText(r.URI().Path())
		}, f.window)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
	})

	urlItem := widget.NewFormItem(app.GetMsg(config.TKeyLblURL), f.url)
	urlItem.HintText = app.GetMsg(config.TKeyHelpURL)

	web := widget.NewForm(
		urlItem,
		widget.NewFormItem(app.GetMsg(config.TKeyLblUser), f.user),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPass), f.pass),
	)
	local := container.NewBorder(nil, nil, nil, browse, f.path)

	f.webSection, f.localSection = web, local
	f.applySourceVisibility()

	return widget.NewCard(app.GetMsg(config.TKeyLblSource), "", container.NewVBox(f.mode.Select, web, local))
}

func (f *settingsForm) applySourceVisibility() {
	web := f.mode.value() == config.SourceModeWeb
	setVisible(f.webSection, web)
	setVisible(f.localSection, !web)
}

// reminderCard lays out "[x] remind  <value> <unit> <before|after> the start of the day".
func (app *ContactsApp) reminderCard(f *settingsForm) *widget.Card {
	controls := container.NewHBox(f.remUnit.Select, f.remDir.Select, widget.NewLabel(app.GetMsg(config.TKeyLblStartDay)))
	f.remLayout = container.NewBorder(nil, nil, nil, controls, f.remValue)
	setVisible(f.remLayout, f.remind.Checked)

	return widget.NewCard(app.GetMsg(config.TKeyLblNotif), "", container.NewVBox(f.remind, f.remLayout))
}

func setVisible(o fyne.CanvasObject, visible bool) {
	if visible {
		o.Show()
	} else {
		o.Hide()
	}
}

// saveSettings persists the preferences and re-renders the feeds so new
// reminder settings apply at once. A port change applies on restart.
func (app *ContactsApp) saveSettings(f *settingsForm) {
	slog.Info(config.MsgSettingsSaved, config.LogKeyComponent, config.CompUISet)

	app.Preferences.SetString(config.PrefSourceMode, f.mode.value())
	app.Preferences.SetString(config.PrefCardDAVURL, f.url.Text)
	app.Preferences.SetString(config.PrefUsername, f.user.Text)
	app.Preferences.SetString(config.PrefLocalPath, f.path.Text)
	if f.port.Text != "" {
		app.Preferences.SetString(config.PrefServerPort, f.port.Text)
	}

	if f.user.Text != "" && f.pass.Text != "" {
		if err := keyring.Set(config.KeyringService, f.user.Text, f.pass.Text); err != nil {
			slog.Error(config.ErrKeyringSave, config.LogKeyError, err, config.LogKeyComponent, config.CompUISet)
		}
	}

	rem := app.loadReminderPrefs()
	rem.enabled = f.remind.Checked
	rem.unit = f.remUnit.value()
	rem.dir = f.remDir.value()
	if v, err := strconv.Atoi(f.remValue.Text); err == nil {
		rem.value = v
	} else {
		// An empty offset disables reminders even when the box is checked.
		rem.enabled = false
		slog.Info(config.MsgRemindersOff, config.LogKeyComponent, config.CompUISet)
	}
	app.storeReminderPrefs(rem)

	app.onBookChanged(app.Book.Snapshot())
	f.window.Close()
}
