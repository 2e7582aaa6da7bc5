package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/model"
	"github.com/tartampluch/go-contacts/internal/server"
	"github.com/tartampluch/go-contacts/internal/store"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the engine.VCardFetcher interface using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

const (
	adaLine    = "Ada Lovelace,ada@example.com,12 St James Square,10/12/1815,555-123-4567;555-765-4321"
	alanLine   = "Alan Turing,Not Filled In,Not Filled In,23/06/1912,Not Filled In"
	graceVCard = "BEGIN:VCARD\nVERSION:3.0\nFN:Grace Hopper\nTEL:555-000-1111\nBDAY:19061209\nEND:VCARD\n"
	badVCard   = "BEGIN:VCARD\nVERSION:3.0\nFN:Nobody\nEMAIL:not-an-email\nEND:VCARD\n"
)

// setupTestApp initializes a headless Fyne app over a temporary contacts file
// holding lines, then runs Init.
func setupTestApp(t *testing.T, lines ...string) (*ContactsApp, *MockFetcher, string) {
	t.Helper()
	keyring.MockInit()

	a := test.NewApp()
	t.Cleanup(a.Quit)

	path := filepath.Join(t.TempDir(), config.ContactFileName)
	if len(lines) > 0 {
		require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fetcher := new(MockFetcher)
	book := engine.NewBook(store.New(path))
	app := NewContactsApp(a, ctx, book, server.NewFeedServer("0"), &engine.Importer{Fetcher: fetcher})

	// Ada's birthday is "today".
	app.Clock = MockClock{CurrentTime: time.Date(2025, 12, 10, 9, 0, 0, 0, time.UTC)}
	app.Exit = func() { t.Error("unexpected exit") }

	require.NoError(t, app.Init())
	return app, fetcher, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func serveFeed(t *testing.T, app *ContactsApp, route string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, route, nil))
	return rec
}

// -----------------------------------------------------------------------------
// Main window
// -----------------------------------------------------------------------------

func TestInit_LoadsContacts(t *testing.T) {
	app, _, _ := setupTestApp(t, adaLine, alanLine)

	assert.Equal(t, 2, app.Book.Len())
	assert.Equal(t, "2 contacts, 1 birthday(s) today", app.status.Text)

	rows, cols := app.table.Length()
	assert.Equal(t, 2, rows)
	assert.Equal(t, config.ColCount, cols)
}

func TestInit_MissingFile(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Zero(t, app.Book.Len())
	assert.Equal(t, "0 contacts, 0 birthday(s) today", app.status.Text)
}

func TestInit_RendersFeeds(t *testing.T) {
	app, _, _ := setupTestApp(t, adaLine)

	cal := serveFeed(t, app, config.RouteCalendar)
	require.Equal(t, http.StatusOK, cal.Code)
	assert.Contains(t, cal.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, cal.Body.String(), "Ada Lovelace")

	vcf := serveFeed(t, app, config.RouteContacts)
	require.Equal(t, http.StatusOK, vcf.Code)
	assert.Contains(t, vcf.Body.String(), "FN:Ada Lovelace")
	assert.Contains(t, vcf.Body.String(), "555-765-4321")
}

func TestStatusText_Plural(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, "1 contact, 0 birthday(s) today", app.statusText(1, 0))
	assert.Equal(t, "3 contacts, 2 birthday(s) today", app.statusText(3, 2))
}

// -----------------------------------------------------------------------------
// Inline edits
// -----------------------------------------------------------------------------

func TestCommitEdit_Accepted(t *testing.T) {
	app, _, path := setupTestApp(t, adaLine)

	app.commitEdit(0, model.Email, "  countess@example.com ")

	c, err := app.Book.At(0)
	require.NoError(t, err)
	assert.Equal(t, "countess@example.com", c.Email)
	assert.Contains(t, readFile(t, path), ",countess@example.com,")
}

func TestCommitEdit_DisplayPhonesStored(t *testing.T) {
	app, _, path := setupTestApp(t, adaLine)

	app.commitEdit(0, model.PhoneNumbers, "555-111-2222, 555-333-4444")

	assert.Contains(t, readFile(t, path), "555-111-2222;555-333-4444")
}

func TestCommitEdit_BlankStoresPlaceholder(t *testing.T) {
	app, _, path := setupTestApp(t, adaLine)

	app.commitEdit(0, model.Address, "   ")

	assert.Contains(t, readFile(t, path), ",ada@example.com,"+model.Placeholder+",")
}

func TestCommitEdit_RejectedLeavesFile(t *testing.T) {
	app, _, path := setupTestApp(t, adaLine)
	before := readFile(t, path)

	app.commitEdit(0, model.Birthday, "31/02/2000")

	assert.Equal(t, before, readFile(t, path))
	assert.Zero(t, app.Warden.Count())
}

func TestCommitEdit_CommaEscalates(t *testing.T) {
	app, _, path := setupTestApp(t, adaLine)
	before := readFile(t, path)

	app.commitEdit(0, model.Name, "Lovelace, Ada")

	assert.Equal(t, before, readFile(t, path))
	assert.Equal(t, 1, app.Warden.Count())
	assert.NotNil(t, app.commaDialog)
}

func TestCommitEdit_EmailCommaIsFormatError(t *testing.T) {
	app, _, _ := setupTestApp(t, adaLine)

	app.commitEdit(0, model.Email, "a,b@example.com")

	assert.Zero(t, app.Warden.Count())
	assert.Nil(t, app.commaDialog)
}

func TestCommitEdit_LineBreakRejected(t *testing.T) {
	app, _, path := setupTestApp(t, adaLine)
	before := readFile(t, path)

	app.commitEdit(0, model.Address, "12 St James Square\nLondon")

	assert.Equal(t, before, readFile(t, path))
	assert.Zero(t, app.Warden.Count(), "line breaks do not escalate")
	assert.Nil(t, app.commaDialog)
}

func TestContactCell_CommitsOnFocusLoss(t *testing.T) {
	app, _, path := setupTestApp(t, adaLine)

	cell := newContactCell("x")
	app.updateCell(widget.TableCellID{Row: 0, Col: config.ColIDEmail}, cell)
	require.Equal(t, "ada@example.com", cell.entry.Text)

	cell.entry.SetText("countess@example.com")
	cell.entry.FocusLost()

	assert.Contains(t, readFile(t, path), ",countess@example.com,")
}

func TestContactCell_ColumnsMapToFields(t *testing.T) {
	app, _, _ := setupTestApp(t, adaLine)

	want := map[int]string{
		config.ColIDName:     "Ada Lovelace",
		config.ColIDPhones:   "555-123-4567,555-765-4321",
		config.ColIDEmail:    "ada@example.com",
		config.ColIDAddress:  "12 St James Square",
		config.ColIDBirthday: "10/12/1815",
	}
	for col, text := range want {
		cell := newContactCell("x")
		app.updateCell(widget.TableCellID{Row: 0, Col: col}, cell)
		assert.Equal(t, text, cell.entry.Text, "column %d", col)
	}
}

func TestCellEntry_CommitsOncePerChange(t *testing.T) {
	setupTestApp(t)

	var got []string
	e := newCellEntry()
	e.bind("a", func(s string) { got = append(got, s) })

	e.FocusLost()
	assert.Empty(t, got, "unchanged text is not committed")

	e.SetText("b")
	e.OnSubmitted(e.Text)
	e.FocusLost()
	assert.Equal(t, []string{"b"}, got)

	e.bind("c", func(s string) { got = append(got, s) })
	e.FocusLost()
	assert.Equal(t, []string{"b"}, got, "rebinding does not commit")
}

func TestDeleteRow(t *testing.T) {
	app, _, path := setupTestApp(t, adaLine, alanLine)

	app.deleteRow(0)

	require.Equal(t, 1, app.Book.Len())
	assert.Equal(t, alanLine+"\n", readFile(t, path))
	assert.Equal(t, "1 contact, 0 birthday(s) today", app.status.Text)
}

// -----------------------------------------------------------------------------
// Delimiter warden
// -----------------------------------------------------------------------------

func TestGuardDelimiter_StripsAndScolds(t *testing.T) {
	app, _, _ := setupTestApp(t)

	var seen []string
	entry := widget.NewEntry()
	entry.OnChanged = func(s string) { seen = append(seen, s) }
	app.guardDelimiter(entry, app.Window)

	entry.SetText("Ada, Countess")

	assert.Equal(t, "Ada Countess", entry.Text)
	assert.Equal(t, 1, app.Warden.Count())
	assert.Equal(t, []string{"Ada Countess"}, seen)
}

func TestScoldComma_ExhaustionExitsAfterFinalMessage(t *testing.T) {
	app, _, _ := setupTestApp(t)

	exited := 0
	app.Exit = func() { exited++ }

	for i := 0; i < config.CommaScriptLength; i++ {
		assert.Zero(t, exited, "exit before final message was dismissed")
		app.scoldComma(app.Window)
	}

	assert.Zero(t, app.Warden.Count(), "counter resets after the final message")
	assert.False(t, app.exitPending)
	assert.Zero(t, exited)

	app.commaDialog.Hide()
	assert.Equal(t, 1, exited)
}

// -----------------------------------------------------------------------------
// Add window
// -----------------------------------------------------------------------------

func TestSubmitAdd_Success(t *testing.T) {
	app, _, path := setupTestApp(t, alanLine)

	f := app.openAddWindow()
	require.NotNil(t, f)
	f.name.SetText("Grace Hopper")
	f.phones.SetText("5550001111")
	f.bday.SetText("09/12/1906")

	app.submitAdd(f)

	require.Equal(t, 2, app.Book.Len())
	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	assert.Equal(t, "Grace Hopper,Not Filled In,Not Filled In,09/12/1906,5550001111", lines[1])
}

func TestSubmitAdd_InvalidKeepsWindow(t *testing.T) {
	app, _, path := setupTestApp(t)

	f := app.openAddWindow()
	require.NotNil(t, f)
	f.email.SetText("nope")
	f.bday.SetText("1906-12-09")

	app.submitAdd(f)

	assert.Zero(t, app.Book.Len())
	assert.NoFileExists(t, path)
	assert.NotNil(t, app.addWindow)
}

func TestAddWindow_Singleton(t *testing.T) {
	app, _, _ := setupTestApp(t)

	require.NotNil(t, app.openAddWindow())
	assert.Nil(t, app.openAddWindow(), "second open focuses the existing window")
}

func TestAddWindow_GuardsEveryEntry(t *testing.T) {
	app, _, _ := setupTestApp(t)

	f := app.openAddWindow()
	require.NotNil(t, f)
	for _, e := range []*widget.Entry{f.name, f.phones, f.email, f.addr, f.bday} {
		e.SetText("x,y")
		assert.Equal(t, "xy", e.Text)
	}
	assert.Equal(t, 5, app.Warden.Count())
}

// -----------------------------------------------------------------------------
// Import & export
// -----------------------------------------------------------------------------

func TestImport_FromWeb(t *testing.T) {
	app, fetcher, path := setupTestApp(t, adaLine)

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefCardDAVURL, "http://dav.local/contacts")

	fetcher.On("Fetch", mock.Anything, "http://dav.local/contacts", "", "").
		Return(io.NopCloser(bytes.NewBufferString(graceVCard+badVCard)), nil)

	contacts, problems, err := app.Importer.Fetch(app.Ctx, app.loadImportConfig())
	app.applyImport(contacts, problems, err)

	fetcher.AssertExpectations(t)
	require.Equal(t, 2, app.Book.Len())
	assert.Contains(t, readFile(t, path), "Grace Hopper,Not Filled In,Not Filled In,09/12/1906,555-000-1111")
	assert.NotContains(t, readFile(t, path), "Nobody")
}

func TestImport_SourceFailure(t *testing.T) {
	app, _, path := setupTestApp(t, adaLine)
	before := readFile(t, path)

	app.applyImport(nil, nil, errors.New("connection refused"))

	assert.Equal(t, before, readFile(t, path))
	assert.Equal(t, 1, app.Book.Len())
}

func TestLoadImportConfig_ReadsKeyring(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefCardDAVURL, "https://secure.example.com")
	app.Preferences.SetString(config.PrefUsername, "admin")
	require.NoError(t, keyring.Set(config.KeyringService, "admin", "s3cret"))

	cfg := app.loadImportConfig()

	assert.Equal(t, config.SourceModeWeb, cfg.Mode)
	assert.Equal(t, "https://secure.example.com", cfg.WebURL)
	assert.Equal(t, "admin", cfg.WebUser)
	assert.Equal(t, "s3cret", cfg.WebPass)
}

// -----------------------------------------------------------------------------
// Settings & calendar rendering
// -----------------------------------------------------------------------------

func TestReminderTrigger(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Empty(t, app.reminderTrigger(), "disabled by default")

	tests := []struct {
		value    int
		unit     string
		dir      string
		expected string
	}{
		{2, config.UnitDays, config.DirBefore, "-P2D"},
		{1, config.UnitDays, config.DirAfter, "P1D"},
		{3, config.UnitHours, config.DirBefore, "-PT3H"},
		{30, config.UnitMinutes, config.DirAfter, "PT30M"},
	}

	app.Preferences.SetBool(config.PrefReminderEnabled, true)
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			app.Preferences.SetInt(config.PrefReminderValue, tt.value)
			app.Preferences.SetString(config.PrefReminderUnit, tt.unit)
			app.Preferences.SetString(config.PrefReminderDir, tt.dir)
			assert.Equal(t, tt.expected, app.reminderTrigger())
		})
	}
}

func TestSaveSettings(t *testing.T) {
	app, _, _ := setupTestApp(t, adaLine)

	sw := app.openSettingsWindow()
	require.NotNil(t, sw)

	sw.mode.SetSelected(app.GetMsg(config.TKeyModeCardDAV))
	sw.url.SetText("https://dav.example.com")
	sw.user.SetText("ada")
	sw.pass.SetText("engine")
	sw.port.SetText("18100")
	sw.remind.SetChecked(true)
	sw.remValue.SetText("2")
	sw.remUnit.SetSelected(app.GetMsg(config.TKeyUnitHours))
	sw.remDir.SetSelected(app.GetMsg(config.TKeyDirBefore))

	app.saveSettings(sw)

	assert.Equal(t, config.SourceModeWeb, app.Preferences.String(config.PrefSourceMode))
	assert.Equal(t, "https://dav.example.com", app.Preferences.String(config.PrefCardDAVURL))
	assert.Equal(t, "18100", app.Preferences.String(config.PrefServerPort))
	assert.Equal(t, "-PT2H", app.reminderTrigger())

	pwd, err := keyring.Get(config.KeyringService, "ada")
	require.NoError(t, err)
	assert.Equal(t, "engine", pwd)

	// The calendar feed is re-rendered with the new alarm.
	assert.Contains(t, serveFeed(t, app, config.RouteCalendar).Body.String(), "TRIGGER:-PT2H")
}

func TestSaveSettings_EmptyOffsetDisablesReminders(t *testing.T) {
	app, _, _ := setupTestApp(t)

	sw := app.openSettingsWindow()
	require.NotNil(t, sw)
	sw.remind.SetChecked(true)
	sw.remValue.SetText("")

	app.saveSettings(sw)

	assert.False(t, app.Preferences.Bool(config.PrefReminderEnabled))
	assert.Empty(t, app.reminderTrigger())
}

func TestSettingsWindow_SourceSections(t *testing.T) {
	app, _, _ := setupTestApp(t)

	sw := app.openSettingsWindow()
	require.NotNil(t, sw)
	assert.Equal(t, config.SourceModeLocal, sw.mode.value())
	assert.False(t, sw.webSection.Visible())
	assert.True(t, sw.localSection.Visible())

	sw.mode.SetSelected(app.GetMsg(config.TKeyModeCardDAV))
	assert.True(t, sw.webSection.Visible())
	assert.False(t, sw.localSection.Visible())

	assert.Nil(t, app.openSettingsWindow(), "second open focuses the existing window")
}

func TestValidatePort(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.NoError(t, app.validatePort("8080"))
	assert.EqualError(t, app.validatePort(""), "Port is required")
	assert.EqualError(t, app.validatePort("http"), "Port must be a number")
	assert.EqualError(t, app.validatePort("70000"), "Port must be between 1 and 65535")
}

func TestSummaryFormatter(t *testing.T) {
	app, _, _ := setupTestApp(t)
	format := app.buildSummaryFormatter()

	assert.Equal(t, "Ada Lovelace's birthday (210)", format("Ada Lovelace", 210))
	assert.Equal(t, "Ada Lovelace is born", format("Ada Lovelace", 0))
}

func TestUpcomingCellText(t *testing.T) {
	app, _, _ := setupTestApp(t)
	next := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    engine.BirthdayEntry
		col      int
		expected string
	}{
		{"Name", engine.BirthdayEntry{Name: "Ada"}, config.UpColIDName, "Ada"},
		{"Date", engine.BirthdayEntry{NextOccurrence: next}, config.UpColIDDate, "Wed 10 Dec 2025"},
		{"Transition", engine.BirthdayEntry{AgeNext: 26}, config.UpColIDAge, "25 → 26"},
		{"First birthday", engine.BirthdayEntry{AgeNext: 1}, config.UpColIDAge, "Birth → 1"},
		{"Newborn", engine.BirthdayEntry{AgeNext: 0}, config.UpColIDAge, config.AgeBirth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, app.upcomingCellText(tt.entry, tt.col))
		})
	}
}

func TestUpcomingWindow_Singleton(t *testing.T) {
	app, _, _ := setupTestApp(t, adaLine, alanLine)

	app.ShowUpcomingWindow()
	require.NotNil(t, app.upcomingWindow)
	first := app.upcomingWindow

	app.ShowUpcomingWindow()
	assert.Same(t, first, app.upcomingWindow)

	app.entriesMut.RLock()
	assert.Len(t, app.entries, 2)
	app.entriesMut.RUnlock()
}
