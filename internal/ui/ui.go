package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/model"
	"github.com/tartampluch/go-contacts/internal/server"
	"github.com/tartampluch/go-contacts/internal/store"
	"github.com/tartampluch/go-contacts/internal/validate"
	"github.com/zalando/go-keyring"
)

// ContactsApp encapsulates the UI state, preferences and the address book.
type ContactsApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Book     *engine.Book
	Server   *server.FeedServer
	Importer *engine.Importer
	Clock    engine.Clock // Injected clock for testability

	// Warden escalates delimiter warnings. Exit runs once its script is
	// exhausted and the final message is dismissed.
	Warden *validate.Warden
	Exit   func()

	SupportedLanguages []string

	table       *widget.Table
	status      *widget.Label
	commaDialog dialog.Dialog
	exitPending bool

	// Feed state shared with the upcoming birthdays window.
	entriesMut sync.RWMutex
	entries    []engine.BirthdayEntry
	todayCount int

	addWindow      fyne.Window
	settingsWindow fyne.Window
	upcomingWindow fyne.Window
}

// NewContactsApp constructs the application and wires dependencies.
func NewContactsApp(a fyne.App, ctx context.Context, book *engine.Book, srv *server.FeedServer, importer *engine.Importer) *ContactsApp {
	a.SetIcon(theme.AccountIcon())

	return &ContactsApp{
		App:         a,
		Preferences: a.Preferences(),
		Ctx:         ctx,
		Book:        book,
		Server:      srv,
		Importer:    importer,
		Clock:       engine.RealClock{},
		Exit:        a.Quit,
	}
}

// Init loads translations, builds the main window and reads the contacts
// file. The window is usable even when loading fails.
func (app *ContactsApp) Init() error {
	app.SetupI18n()
	app.Warden = validate.NewWarden(app.commaScript(), func() { app.exitPending = true })

	app.Window = app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	app.Window.SetContent(app.buildMainContent())
	app.Window.SetMaster()

	app.Book.OnChange = app.onBookChanged
	return app.Book.Load()
}

// Run launches the feed server and the main UI loop.
func (app *ContactsApp) Run() {
	if err := app.Init(); err != nil {
		app.reportLoadError(err)
	}

	go func() {
		if app.Server == nil {
			return
		}
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	app.Window.ShowAndRun()
}

// buildMainContent assembles the action bar, the contacts table and the status line.
func (app *ContactsApp) buildMainContent() fyne.CanvasObject {
	app.table = app.newContactsTable()
	app.status = widget.NewLabel("")

	actions := container.NewHBox(
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyActAdd), theme.ContentAddIcon(), app.ShowAddWindow),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyActImport), theme.DownloadIcon(), app.startImport),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyActExport), theme.UploadIcon(), app.startExport),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyActUpcoming), theme.HistoryIcon(), app.ShowUpcomingWindow),
		widget.NewButtonWithIcon(app.GetMsg(config.TKeyActSettings), theme.SettingsIcon(), app.ShowSettingsWindow),
	)

	return container.NewBorder(actions, app.status, nil, nil, app.table)
}

// onBookChanged re-renders the feeds and the main window after every reload.
func (app *ContactsApp) onBookChanged(contacts []model.Contact) {
	cal := &engine.Calendar{
		Clock:           app.Clock,
		ReminderTrigger: app.reminderTrigger(),
		FormatSummary:   app.buildSummaryFormatter(),
	}

	ics, entries, today, err := cal.Generate(contacts)
	if err != nil {
		slog.Error(config.ErrFeedRender, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	} else if app.Server != nil {
		app.Server.UpdateCalendar(ics)
	}

	var vcf bytes.Buffer
	if err := engine.ExportVCard(&vcf, contacts); err != nil {
		slog.Error(config.ErrFeedRender, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	} else if app.Server != nil {
		app.Server.UpdateContacts(vcf.Bytes())
	}

	app.entriesMut.Lock()
	app.entries = entries
	app.todayCount = today
	app.entriesMut.Unlock()

	if app.table != nil {
		app.table.Refresh()
	}
	if app.status != nil {
		app.status.SetText(app.statusText(len(contacts), today))
	}
}

func (app *ContactsApp) statusText(count, today int) string {
	return app.GetMsgWith(config.TKeyStatus,
		map[string]any{"Count": count, "Today": today},
		count,
		fmt.Sprintf(config.FallbackStatus, count, today))
}

// reportLoadError tells the user why the contacts file could not be fully read.
func (app *ContactsApp) reportLoadError(err error) {
	if errors.Is(err, store.ErrStorage) {
		slog.Error(config.ErrContactLoad, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		app.showError(config.TKeyTitleStorage, err)
		return
	}
	slog.Warn(config.MsgLoadMalformed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	dialog.ShowInformation(app.GetMsg(config.TKeyTitleWarning), err.Error(), app.Window)
}

func (app *ContactsApp) showError(titleKey string, err error) {
	dialog.ShowInformation(app.GetMsg(titleKey), err.Error(), app.Window)
}

// loadImportConfig assembles the import source from preferences and the keyring.
func (app *ContactsApp) loadImportConfig() engine.ImportConfig {
	cfg := engine.ImportConfig{
		Mode:      app.Preferences.StringWithFallback(config.PrefSourceMode, config.SourceModeLocal),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefCardDAVURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}

	if cfg.Mode == config.SourceModeWeb && cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return cfg
}

// reminderTrigger builds the ISO8601 alarm offset from preferences.
// An empty string disables alarms.
func (app *ContactsApp) reminderTrigger() string {
	return app.loadReminderPrefs().trigger()
}

// buildSummaryFormatter returns a closure that localizes the event summary.
func (app *ContactsApp) buildSummaryFormatter() func(name string, age int) string {
	return func(name string, age int) string {
		if age == 0 {
			return app.GetMsgWith(config.TKeyEvtSummaryBirth,
				map[string]any{"Name": name}, nil,
				fmt.Sprintf(config.FallbackSummaryBirth, name))
		}
		return app.GetMsgWith(config.TKeyEvtSummaryAge,
			map[string]any{"Name": name, "Age": age}, nil,
			fmt.Sprintf(config.FallbackSummaryAge, name, age))
	}
}
