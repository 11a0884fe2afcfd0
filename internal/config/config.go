package config

import (
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

// UserAgent identifies the app in outgoing requests and in the Server response header.
var UserAgent = "Go-LifeCalendar/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Life Calendar"
	AppID             = "com.github.tartampluch.go-lifecalendar"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	IconFile          = "Icon.png"
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
	FlagBirth        = "birth"
	FlagVCard        = "vcard"
	FlagView         = "view"
	FlagPort         = "port"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescBirth    = "Birth date (YYYY-MM-DD) to skip the intake form"
	FlagDescVCard    = "Read the birth date from the BDAY of a vCard file or http(s) URL"
	FlagDescView     = "Initial view: day, week, month, year or lifetime"
	FlagDescPort     = "Port of the local calendar feed (overrides preferences)"
	MsgVersionOutput = "%s version %s (commit %s, built %s) %s/%s\n"
)

// -----------------------------------------------------------------------------
// Life Calendar Policy
// -----------------------------------------------------------------------------

const (
	// LifeExpectancyYears bounds the lifetime projection.
	LifeExpectancyYears = 90

	// MaxBirthYearsAgo is the coarse year-difference limit applied at intake.
	MaxBirthYearsAgo = 120

	// LifetimeRowSize is the number of year buckets per display row.
	LifetimeRowSize = 10

	// DecadeSpan marks the buckets that carry an age label.
	DecadeSpan = 10

	HoursPerDay  = 24
	DaysPerWeek  = 7
	MonthsInYear = 12

	// PercentPrecision is the number of fractional digits kept for PercentLived.
	PercentPrecision = 1

	DefaultView     = "month"
	DefaultLanguage = "en"
	DefaultPort     = "18090"
	DefaultLeapYear = 2000 // Leap year fallback for year-less dates like --02-29
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// View Names
// -----------------------------------------------------------------------------

const (
	ViewDay      = "day"
	ViewWeek     = "week"
	ViewMonth    = "month"
	ViewYear     = "year"
	ViewLifetime = "lifetime"

	DirPrevious = "previous"
	DirNext     = "next"

	StatusPast    = "past"
	StatusCurrent = "current"
	StatusFuture  = "future"
)

// -----------------------------------------------------------------------------
// Date Formats
// -----------------------------------------------------------------------------

const (
	// Layouts accepted by the birth date intake and the vCard BDAY parser.
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Header patterns per view.
	TitleFormatDay       = "Monday, January 2, 2006"
	TitleFormatWeekStart = "Jan 2"
	TitleFormatWeekEnd   = "Jan 2, 2006"
	TitleFormatMonth     = "January 2006"
	TitleFormatYear      = "2006"
	TitleFormatMiniMonth = "Jan"
	TitleFormatWeekday   = "Mon"
	TitleFormatDayNumber = "2"
	FormatWeekRange      = "%s - %s"
	FormatHourSlot       = "%02d:00"
)

// -----------------------------------------------------------------------------
// Preferences
// -----------------------------------------------------------------------------

const (
	PrefLanguage   = "language"
	PrefServerPort = "server_port"
	PrefView       = "default_view"
	PrefLastRun    = "last_run_version"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 900
	MainWindowHeight    = 720
	IntakeWindowWidth   = 420
	SettingsWindowWidth = 420
	EntryPlaceholder    = "YYYY-MM-DD"
	MarkerBirthday      = "*"
	MarkerToday         = "•"
	MarkerPast          = "●"
	MarkerCurrent       = "◉"
	MarkerFuture        = "○"
	LayoutColumnsStat   = 4
	LayoutColumnsYear   = 4
	LayoutColumnsDouble = 2
	FormatCellLabel     = "%s%s"
	FormatBucketLabel   = "%s %d"
	FormatHourMarker    = "%s %s"

	MinPort       = 1
	MaxPort       = 65535
	PortMaxDigits = 5
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle        = "win_title"
	TKeyIntakeTitle     = "intake_title"
	TKeyIntakeSubtitle  = "intake_subtitle"
	TKeyLblBirthDate    = "lbl_birth_date"
	TKeyBtnContinue     = "btn_continue"
	TKeyBtnPrevious     = "btn_previous"
	TKeyBtnNext         = "btn_next"
	TKeyBtnToday        = "btn_today"
	TKeyViewDay         = "view_day"
	TKeyViewWeek        = "view_week"
	TKeyViewMonth       = "view_month"
	TKeyViewYear        = "view_year"
	TKeyViewLifetime    = "view_lifetime"
	TKeyLblNow          = "lbl_now"
	TKeyLblAgeNow       = "lbl_age_now"
	TKeyLblWeeksLived   = "lbl_weeks_lived"
	TKeyLblLifeExpect   = "lbl_life_expectancy"
	TKeyLblPercentLived = "lbl_percent_lived"
	TKeyLblLifeFooter   = "lbl_lifetime_footer"
	TKeyLblLifeTitle    = "lbl_lifetime_title"
	TKeyLblYearsLived   = "lbl_years_lived"
	TKeyLblNextBirthday = "lbl_next_birthday"
	TKeyUnitYears       = "unit_years"
	TKeyUnitWeeks       = "unit_weeks"
	TKeyLegendLived     = "legend_lived"
	TKeyLegendCurrent   = "legend_current"
	TKeyLegendFuture    = "legend_future"
	TKeyLegendBirth     = "legend_birth"
	TKeyErrEmptyInput   = "err_empty_input"
	TKeyErrNotInPast    = "err_not_in_past"
	TKeyErrTooOld       = "err_unreasonably_old"

	TKeyMenuToday    = "menu_today"
	TKeyMenuSettings = "menu_settings"
	TKeyWinSettings  = "win_settings"
	TKeyLblGeneral   = "lbl_general"
	TKeyLblLanguage  = "lbl_language"
	TKeyHelpLanguage = "help_language"
	TKeyLblPort      = "lbl_port"
	TKeyHelpPort     = "help_port"
	TKeyLblView      = "lbl_default_view"
	TKeyBtnSave      = "btn_save"
	TKeyBtnCancel    = "btn_cancel"
	TKeyLblFooter    = "lbl_footer"
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_numeric"
	TKeyErrPortRange = "err_port_range"

	TKeyEvtBirth = "evt_summary_birth"
	TKeyEvtAge   = "evt_summary_age"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Life Calendar//Engine//EN"
	ICalCalName   = "Life Calendar"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "golifecalendar"

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

	VCardBDAY = "BDAY"

	DefaultICalRefresh = 24 * time.Hour
	DefaultReminder    = "-P1D"

	// UIDNamespace seeds the name-based UUIDs of anniversary events.
	UIDNamespace = "urn:go-lifecalendar:v1"
	FormatUIDKey = "%s|%d"
	FormatUID    = "%s@%s"

	SummaryBirth = "Birth"
	SummaryAge   = "Birthday (%d)"
	DescCurrent  = "This year"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	MaxHTTPResponseSize = 4 * 1024 * 1024 // 4MB, a single contact card is tiny
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"

	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	AddrSeparator      = ":"
	CORSMaxAge         = 300

	RouteCalendar = "/calendar.ics"
	RouteAPI      = "/api"
	RouteView     = "/view"
	RouteMetrics  = "/metrics"

	QueryView   = "view"
	QueryAnchor = "anchor"

	MetricRequests     = "lifecalendar_http_requests_total"
	MetricRequestsHelp = "Total number of HTTP requests served by the calendar feed"
	MetricLabelRoute   = "route"
	MetricLabelStatus  = "status"
	MetricFeedBytes    = "lifecalendar_feed_size_bytes"
	MetricFeedHelp     = "Size of the iCalendar feed currently served"
	MetricUnmatched    = "unmatched"
)

// AllowedOrigins lists the local front-ends allowed to read the JSON API.
var AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

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
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderServer          = "Server"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Validation Messages (User-facing, English)
// -----------------------------------------------------------------------------

const (
	MsgEmptyInput      = "Please select a birth date"
	MsgNotInPast       = "Birth date must be in the past"
	MsgUnreasonablyOld = "Birth date seems unreasonable (more than 120 years ago)"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrVCardParse     = "failed to parse vCard stream"
	ErrVCardNoBDAY    = "no vCard with a BDAY property"
	ErrVCardOpen      = "failed to open vCard file"
	ErrDateParse      = "unable to parse date"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrUnknownView    = "unknown view"
	ErrInvalidAnchor  = "invalid anchor date"
	ErrAnchorPreBirth = "anchor date precedes the birth date"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrExportFailed   = "failed to export life calendar"
	ErrBirthRejected  = "birth date rejected"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	// StubVCalendar is the minimal valid iCalendar object used when no events are produced.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	MsgPortBusy       = "Port %s is busy or unavailable."

	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgBirthAccepted  = "Birth date accepted"
	MsgViewChanged    = "View changed"
	MsgNavigated      = "Anchor moved"
	MsgSelectRejected = "Selection before birth ignored"
	MsgExported       = "Life calendar exported"
	MsgRendered       = "View rendered"
	MsgRequestServed  = "HTTP request served"
	MsgOpenSettings   = "Opening settings window"
	MsgFocusSettings  = "Settings window already open, requesting focus"
	MsgSavingPrefs    = "Saving preferences"
	MsgTrayMissing    = "System tray not supported on this platform"
	MsgPublished      = "Life calendar feed published"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyView      = "view"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyAnchor    = "anchor"
	LogKeyDirection = "direction"
	LogKeyDOB       = "date_of_birth"
	LogKeyValue     = "value"
	LogKeyKind      = "kind"
	LogKeyEvents    = "events"
	LogKeyCells     = "cells"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeySource    = "source"
	LogKeyMethod    = "method"
	LogKeyRoute     = "route"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
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
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompEngine  = "engine"
	CompFetcher = "fetcher"
	CompServer  = "server"
	CompMain    = "main"
	CompI18n    = "i18n"
)
