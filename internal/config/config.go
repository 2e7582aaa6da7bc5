package config

import (
	"fmt"
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// BuildString renders the build variables for --version output.
func BuildString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

// UserAgent identifies the HTTP client used for vCard imports.
var UserAgent = "Go-Contacts/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Contacts"
	CLIName           = "contactsctl"
	AppID             = "com.github.tartampluch.go-contacts"
	KeyringService    = "com.github.tartampluch.go-contacts"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"

	// ContactFileName is the fixed name of the backing file, resolved in the
	// user config directory unless overridden on the command line.
	ContactFileName = "ListOfContacts.csv"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for the contacts file and logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagData         = "data"
	FlagStrict       = "strict"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescData     = "Path to the contacts file (default: user config directory)"
	FlagDescStrict   = "Report malformed lines in the contacts file instead of skipping them"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// Malformed-line policy names.
const (
	PolicyLenient = "lenient"
	PolicyStrict  = "strict"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 930
	MainWindowHeight    = 600
	AddWindowWidth      = 480
	SettingsWindowWidth = 600

	// Preference Keys
	PrefCardDAVURL      = "carddav_url"
	PrefUsername        = "username"
	PrefServerPort      = "server_port"
	PrefSourceMode      = "source_mode"
	PrefLocalPath       = "local_path"
	PrefReminderEnabled = "reminder_enabled"
	PrefReminderValue   = "reminder_value"
	PrefReminderUnit    = "reminder_unit"
	PrefReminderDir     = "reminder_direction"
	PrefLastRun         = "last_run_version"
)

// -----------------------------------------------------------------------------
// Contacts Table Constants
// -----------------------------------------------------------------------------

const (
	// Column IDs. The first five follow model.Fields.
	ColIDName     = 0
	ColIDPhones   = 1
	ColIDEmail    = 2
	ColIDAddress  = 3
	ColIDBirthday = 4
	ColIDDelete   = 5
	ColCount      = 6

	ColWidthName     = 150
	ColWidthPhones   = 170
	ColWidthEmail    = 200
	ColWidthAddress  = 250
	ColWidthBirthday = 100
	ColWidthDelete   = 60
)

// -----------------------------------------------------------------------------
// Upcoming Birthdays Window Constants
// -----------------------------------------------------------------------------

const (
	UpcomingWinWidth  = 550
	UpcomingWinHeight = 400

	// Table Column IDs
	UpColIDName = 0
	UpColIDDate = 1
	UpColIDAge  = 2

	UpColWidthName = 250
	UpColWidthDate = 120
	UpColWidthAge  = 120

	// Display Formats & Placeholders
	DateFormatDisplay = "2006-01-02"
	TablePlaceholder  = "Cell Content"
	AgeBirth          = "(birth)"
	AgeTransitionFmt  = "%d → %d"
	AgeFromBirthFmt   = "%s → %d"
	FallbackAgeBirth  = "Birth"
	LogMsgOpenWin     = "Opening upcoming birthdays window"
	LogMsgSorted      = "Upcoming birthdays sorted"

	// Sorting Indicators
	SortIconAsc  = " ▲"
	SortIconDesc = " ▼"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle     = "win_title"
	TKeyWinAdd       = "win_add_title"
	TKeyWinSettings  = "win_settings_title"
	TKeyWinUpcoming  = "win_upcoming_title"
	TKeyActAdd       = "action_add"
	TKeyActImport    = "action_import"
	TKeyActExport    = "action_export"
	TKeyActUpcoming  = "action_upcoming"
	TKeyActSettings  = "action_settings"
	TKeyStatus       = "status_line"      // Requires Count, Today
	TKeyNotifImport  = "notif_import_ok"  // Requires Added, Skipped
	TKeyNotifExport  = "notif_export_ok"  // Requires Count
	TKeyModeCardDAV  = "mode_carddav"
	TKeyModeLocal    = "mode_local"
	TKeyLblPort      = "lbl_server_port"
	TKeyHelpPort     = "help_port"
	TKeyLblGeneral   = "lbl_general"
	TKeyLblEnableRem = "lbl_enable_reminders"
	TKeyUnitDays     = "unit_days"
	TKeyUnitHours    = "unit_hours"
	TKeyUnitMinutes  = "unit_minutes"
	TKeyDirBefore    = "dir_before"
	TKeyDirAfter     = "dir_after"
	TKeyLblNotif     = "lbl_notifications"
	TKeyBtnSave      = "btn_save"
	TKeyBtnCancel    = "btn_cancel"
	TKeyBtnDelete    = "btn_delete"
	TKeyLblFooter    = "lbl_footer"
	TKeyBtnBrowse    = "btn_browse"
	TKeyLblURL       = "lbl_url"
	TKeyHelpURL      = "help_carddav_url"
	TKeyLblUser      = "lbl_user"
	TKeyLblPass      = "lbl_pass"
	TKeyLblSource    = "lbl_source"
	TKeyLblStartDay  = "lbl_start_of_day"

	// Add dialog
	TKeyLblName       = "lbl_name"
	TKeyLblPhones     = "lbl_phones"
	TKeyLblEmail      = "lbl_email"
	TKeyLblAddress    = "lbl_address"
	TKeyLblBirthday   = "lbl_birthday"
	TKeyHelpPhones    = "help_phones"
	TKeyHelpPhonesMix = "help_phones_mixed"

	// Alerts
	TKeyTitleComma     = "title_comma"
	TKeyTitleWarning   = "title_warning"
	TKeyTitleInput     = "title_input_error"
	TKeyHeaderInput    = "header_input_error"
	TKeyTitleStorage   = "title_storage_error"
	TKeyTitleImport    = "title_import_error"
	TKeyTitleName      = "title_invalid_name"
	TKeyTitlePhones    = "title_invalid_phones"
	TKeyTitleEmail     = "title_invalid_email"
	TKeyTitleAddress   = "title_invalid_address"
	TKeyTitleBirthday  = "title_invalid_birthday"
	TKeyCommaScriptFmt = "comma_%02d" // Escalation script entries, 1-based

	// Calendar summaries
	TKeyEvtSummaryAge   = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBirth = "event_summary_birth" // Requires Name (For age 0)

	// Column Headers & Formats
	TKeyColName     = "col_name"
	TKeyColPhones   = "col_phones"
	TKeyColEmail    = "col_email"
	TKeyColAddress  = "col_address"
	TKeyColBirthday = "col_birthday"
	TKeyColDelete   = "col_delete"
	TKeyColDate     = "col_date"
	TKeyColAge      = "col_age"
	TKeyFormatDate  = "format_date_short" // Date format pattern (e.g., "2006-01-02")
	TKeyAgeBirth    = "age_birth"         // Word for "Birth" in list

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
)

// CommaScriptLength is the number of escalating delimiter messages.
const CommaScriptLength = 25

// SupportedLanguages lists the bundled message catalogs.
var SupportedLanguages = []string{"en"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb        = "web"
	SourceModeLocal      = "local"
	DefaultPort          = "18081"
	DefaultLanguage      = "en"
	DefaultReminderValue = 1
	UIDNamespace         = "https://github.com/tartampluch/go-contacts" // Namespace for deterministic UIDs

	// BirthdayLayout is the DD/MM/YYYY layout of stored birthdays.
	BirthdayLayout = "02/01/2006"
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISODay            = "D"
	ISOTime           = "T"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Contacts//Birthdays//EN"
	ICalCalName   = "Contact Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gocontacts"

	// iCal Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	// vCard
	VCardVersion   = "4.0"
	VCardUIDPrefix = "urn:uuid:"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted from vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	VCardTelPrefix      = "tel:"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// MaxRecordBytes bounds a single line of the contacts file
	MaxRecordBytes = 64 << 20

	// Digit limits of the numeric settings entries
	MaxPortDigits   = 5
	MaxOffsetDigits = 3

	// UID Generation
	FormatHashInput = "%s|%s"
	FormatUID       = "%s-%d@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"

	ExportFileName = "contacts.vcf"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	MaxImportSize      = 64 * 1024 * 1024 // 64MB, local files and downloads
	SchemeHTTP         = "http"
	SchemeHTTPS        = "https"
	RouteRoot          = "/"
	RouteCalendar      = "/birthdays.ics"
	RouteContacts      = "/contacts.vcf"
	AddrSeparator      = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderAccept          = "Accept"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextVCard       = "text/vcard; charset=utf-8"
	MimeNoSniff         = "nosniff"
	MimeAcceptVCard     = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Validation Messages (shown to the user)
// -----------------------------------------------------------------------------

const (
	MsgNoDelimiter     = "Commas are NOT allowed in this field."
	MsgEmailDelimiter  = "Email addresses cannot contain commas or spaces."
	MsgNoLineBreak     = "Line breaks are NOT allowed in this field."
	MsgEmailFormat     = "Please enter a valid email address in the form username@domain.tld"
	MsgPhoneFormat     = "Phone numbers should ideally be in the format ###-###-####, separated by semicolons (only digits are also allowed)"
	MsgPhoneWarning    = "Format is not a US or CA phone number format"
	MsgBirthdayFormat  = "Birthday should be in the format DD/MM/YYYY"
	MsgBirthdayMonth   = "Birthday month should be between 01 and 12"
	MsgBirthdayDay     = "Birthday day should be between 01 and %02d for that month"
	ErrKindDelimiter   = "delimiter violation"
	ErrKindFormat      = "format violation"
	ErrKindRange       = "range violation"
	MsgWardenStep      = "Delimiter typed"
	MsgWardenExhausted = "Delimiter warning script exhausted"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrStorage          = "contacts storage failure"
	ErrMalformedLine    = "malformed contacts line"
	ErrUnknownContact   = "contact is not part of the current address book"
	ErrConfigDir        = "could not determine user config dir"
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrVCardEncode      = "failed to encode vCard data"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrContactLoad      = "failed to load contacts"
	ErrFeedRender       = "failed to render feeds"
	ErrRowOutOfRange    = "row out of range"
	ErrExportFailed     = "export failed"
	ErrImportFailed     = "import failed"
	ErrCommandFailed    = "command failed"
	ErrKeyringSave      = "Failed to save credentials to keyring"
	ErrCardSkipped      = "vCard skipped"
	ErrContactRejected  = "imported contact rejected"
	ErrBirthdayNoYear   = "birthday without year"
	ErrRequestCreate    = "failed to create request"
	ErrNetwork          = "network error during fetch"
	ErrHTTPStatus       = "server returned unexpected status"
	ErrSourceAuth       = "import source rejected the credentials"
	ErrSourceNotFound   = "import source not found"
	ErrNotVCard         = "import source did not return vCard data"
	ErrSourceTooLarge   = "import source exceeds the size limit"
	ErrCardNoName       = "vCard has no name"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgNotFound     = "Not Found"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"
	FallbackStatus       = "%d contacts, %d birthdays today"
	FallbackName         = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"

	MsgPortBusy         = "Port %s is busy or unavailable."
	MsgAppStop          = "Application stopped gracefully"
	MsgCtxCancel        = "Context cancelled, shutting down UI"
	MsgAppStarting      = "Starting application"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Feed cache updated"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgPassFail         = "Password retrieval failed (might be empty)"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgBdayToday        = "Birthday found today"
	MsgGenSuccess       = "Calendar generation successful"
	MsgSkippedDate      = "Skipping invalid birthday"
	MsgSkippedCard      = "Skipping malformed vCard"
	MsgStoreMissing     = "Contacts file does not exist yet"
	MsgStoreLoaded      = "Contacts loaded"
	MsgStoreAppended    = "Contacts appended"
	MsgStoreOverwritten = "Contacts file rewritten"
	MsgStoreSkipLine    = "Skipping line with too few fields"
	MsgStoreExtraFields = "Ignoring extra fields"
	MsgStoreMalformed   = "Malformed lines found"
	MsgBookReloaded     = "Address book reloaded"
	MsgEditRejected     = "Edit rejected"
	MsgEditApplied      = "Edit applied"
	MsgContactAdded     = "Contact added"
	MsgContactDeleted   = "Contact deleted"
	MsgImportStarted    = "Import started"
	MsgImportDone       = "Import finished"
	MsgExportDone       = "Export finished"
	MsgSettingsSaved    = "Saving preferences"
	MsgFetchStart       = "Initiating vCard download"
	MsgFetchStatus      = "Server rejected the vCard request"
	MsgFetchDownload    = "vCards downloading"
	MsgOpenLocal        = "Opening local vCard file"
	MsgOpenSettings     = "Opening settings window"
	MsgFocusWindow      = "Window already open, requesting focus"
	MsgOpenAdd          = "Opening add contact window"
	MsgRemindersOff     = "Reminders disabled via settings (value is empty)"
	MsgLoadMalformed    = "Contacts file contains malformed lines"
	MsgDataFile         = "Using contacts file"
	MsgCorrectErrors    = "Please correct the following errors:"

	PlaceholderURL = "https://..."
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyUser      = "user"
	LogKeyOp        = "op"
	LogKeyLine      = "line"
	LogKeyFields    = "fields"
	LogKeyField     = "field"
	LogKeyRow       = "row"
	LogKeyPolicy    = "policy"
	LogKeyTotal     = "total_contacts"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "birthdays_today"
	LogKeyAdded     = "added"
	LogKeySkipped   = "skipped"
	LogKeySizeBytes = "size_bytes"
	LogKeyLength    = "content_length"
	LogKeyETag      = "etag"
	LogKeyRoute     = "route"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeySortCol   = "sort_column"
	LogKeySortAsc   = "sort_asc"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompUISet    = "ui_settings"
	CompEngine   = "engine"
	CompBook     = "book"
	CompStore    = "store"
	CompValidate = "validate"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompMain     = "main"
	CompCLI      = "cli"
	CompI18n     = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
)
