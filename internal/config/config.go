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

// UserAgent identifies the HTTP client.
var UserAgent = "Go-AddressBook/" + Version

// ValidatePhoneTag is the validator rule for a phone number of exactly PhoneDigits digits.
var ValidatePhoneTag = fmt.Sprintf("required,len=%d,number", PhoneDigits)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go AddressBook"
	AppID             = "com.github.tartampluch.go-addressbook"
	BinaryName        = "go-addressbook"
	KeyringService    = "com.github.tartampluch.go-addressbook"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
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
	// Used for sensitive files like logs and exported calendars.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands & Flags
// -----------------------------------------------------------------------------

const (
	FlagDebug    = "debug"
	FlagConfig   = "config"
	FlagLang     = "lang"
	FlagToday    = "today"
	FlagSource   = "source"
	FlagUser     = "user"
	FlagPort     = "port"
	FlagInterval = "interval"

	FlagDescDebug    = "Enable debug logging to stderr"
	FlagDescConfig   = "Path to a YAML settings file"
	FlagDescLang     = "Language of assistant messages (en, fr)"
	FlagDescToday    = "Pretend today is this date (YYYY-MM-DD)"
	FlagDescSource   = "vCard file path or http(s) URL"
	FlagDescUser     = "Username for HTTP basic auth"
	FlagDescPort     = "Port of the local feed server"
	FlagDescInterval = "Refresh interval in minutes (0 disables refresh)"

	CmdShortRoot      = "Interactive contact and birthday assistant"
	CmdShortBirthdays = "Print the upcoming week's birthdays from a vCard source"
	CmdShortServe     = "Serve the address book as an iCalendar feed"
	CmdShortLogin     = "Store the password of a vCard server in the OS keyring"
	CmdShortVersion   = "Show application version and exit"

	MsgVersionOutput = "%s version %s (%s, %s/%s)\n"
	MsgPasswordAsk   = "Password for %s: "
	MsgPasswordSaved = "Password saved for %s.\n"
)

// -----------------------------------------------------------------------------
// Assistant Commands (REPL)
// -----------------------------------------------------------------------------

const (
	CmdHello        = "hello"
	CmdAdd          = "add"
	CmdChange       = "change"
	CmdPhone        = "phone"
	CmdRemovePhone  = "remove-phone"
	CmdDelete       = "delete"
	CmdAll          = "all"
	CmdAddBirthday  = "add-birthday"
	CmdShowBirthday = "show-birthday"
	CmdBirthdays    = "birthdays"
	CmdImport       = "import"
	CmdExport       = "export"
	CmdHelp         = "help"
	CmdClose        = "close"
	CmdExit         = "exit"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWelcome        = "welcome"
	TKeyPrompt         = "prompt"
	TKeyGoodbye        = "goodbye"
	TKeyHello          = "hello"
	TKeyInvalidCommand = "invalid_command"
	TKeyHelp           = "help"

	TKeyContactAdded    = "contact_added"
	TKeyContactUpdated  = "contact_updated"
	TKeyContactDeleted  = "contact_deleted"
	TKeyPhoneUpdated    = "phone_updated"    // Requires Name
	TKeyPhoneRemoved    = "phone_removed"    // Requires Name
	TKeyPhoneList       = "phone_list"       // Requires Name, Phones
	TKeyNoPhones        = "no_phones"        // Requires Name
	TKeyBirthdayAdded   = "birthday_added"   // Requires Name
	TKeyBirthdayShow    = "birthday_show"    // Requires Name, Birthday
	TKeyBirthdayMissing = "birthday_missing" // Requires Name
	TKeyNoUpcoming      = "no_upcoming"
	TKeyBookEmpty       = "book_empty"
	TKeyImportDone      = "import_done" // Requires Count
	TKeyExportDone      = "export_done" // Requires Count, Path

	TKeyErrNotFound      = "err_not_found"
	TKeyErrInvalidPhone  = "err_invalid_phone"
	TKeyErrInvalidDate   = "err_invalid_date"
	TKeyErrBirthdaySet   = "err_birthday_set"
	TKeyErrPhoneNotFound = "err_phone_not_found" // Requires Name
	TKeyErrNameRequired  = "err_name_required"
	TKeyErrImport        = "err_import" // Requires Error
	TKeyErrExport        = "err_export" // Requires Error

	TKeyUsageAdd          = "usage_add"
	TKeyUsageChange       = "usage_change"
	TKeyUsagePhone        = "usage_phone"
	TKeyUsageRemovePhone  = "usage_remove_phone"
	TKeyUsageDelete       = "usage_delete"
	TKeyUsageAddBirthday  = "usage_add_birthday"
	TKeyUsageShowBirthday = "usage_show_birthday"
	TKeyUsageImport       = "usage_import"
	TKeyUsageExport       = "usage_export"

	TKeyEvtSummary      = "event_summary"       // Requires Name
	TKeyEvtSummaryAge   = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBirth = "event_summary_birth" // Requires Name (For age 0)
)

// SupportedLanguages defines the list of available assistant languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb        = "web"
	SourceModeLocal      = "local"
	DefaultPort          = "18080"
	DefaultRefreshMin    = 60
	DefaultLanguage      = "en"
	DefaultLeapYear      = 2000 // Leap year fallback for dates like --02-29 or 29.02
	DefaultReminderValue = 1
	UIDSalt              = "go-addressbook-v1-" // Salt for deterministic UID generation
	DisabledInterval     = 0

	// PhoneDigits is the exact length of a valid phone number.
	PhoneDigits = 10

	// UpcomingWindowDays is the length of the birthday look-ahead window.
	UpcomingWindowDays = 7
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go AddressBook//Engine//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goaddressbook"

	// iCal/vCard Fields
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
	VCardFN   = "FN"
	VCardTEL  = "TEL"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Layouts accepted for birthdays typed by the user.
	// A single-digit layout also accepts zero-padded values ("1.2.2000", "01.02.2000").
	BirthdayLayout       = "2.1.2006"
	BirthdayLayoutNoYear = "2.1"

	// Layouts used when rendering imported birthdays back to text.
	BirthdayFormat       = "02.01.2006"
	BirthdayFormatNoYear = "02.01"

	// Layout of the --today flag.
	DateFormatISO = "2006-01-02"

	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"


	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// Output Formats
	FormatRecord        = "Contact name: %s, phones: %s"
	FormatRecordBday    = ", Birthday: %s"
	FormatBucket        = "%s: %s\n"
	SeparatorPhones     = "; "
	SeparatorNames      = ", "
	FallbackName        = "Unknown"
	FallbackSummary     = "Birthday: %s"
	FallbackSummaryAge  = "Birthday: %s (%d)"
	FallbackSummaryBday = "Birthday: %s (birth)"

	// File Extensions
	ExtVCF = ".vcf"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteCalendar       = "/birthdays.ics"
	RouteUpcoming       = "/upcoming"
	AddrSeparator       = ":"
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
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Domain)
// -----------------------------------------------------------------------------

const (
	ErrInvalidPhone    = "invalid phone number format"
	ErrInvalidDate     = "invalid date format"
	ErrBirthdayExists  = "birthday already exists for this contact"
	ErrContactNotFound = "no such contact found"
	ErrPhoneNotFound   = "no such phone number"
	ErrNameRequired    = "contact name is required"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty = "configuration error: local path is empty"
	ErrWebURLEmpty    = "configuration error: web URL is empty"
	ErrFetcherMissing = "internal error: network fetcher is not initialized"
	ErrModeUnsupport  = "configuration error: unsupported source mode"
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrPortNumber     = "server port must be a number"
	ErrPortRange      = "server port must be between 1 and 65535"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrVCardParse     = "failed to parse vCard stream"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrDateParse      = "unable to parse date"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrWriteFile      = "failed to write file"
	ErrReadInput      = "failed to read input"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrLanguage       = "unsupported language"
	ErrSettingsRead   = "failed to read settings file"
	ErrSettingsParse  = "failed to parse settings file"
	ErrTodayFlag      = "invalid --today value (expected YYYY-MM-DD)"
	ErrKeyring        = "keyring operation failed"
	ErrSourceRequired = "a vCard source is required"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgImportStarted  = "Import started"
	MsgImportDone     = "Import finished"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgSkippedPhone   = "Skipping invalid phone number"
	MsgGenSuccess     = "Calendar generation successful"
	MsgUpcomingDone   = "Upcoming birthdays computed"
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgFeedUpdated    = "Feed cache updated"
	MsgRefreshFailed  = "Feed refresh failed"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgBdayToday      = "Birthday found today"
	MsgCommand        = "Command handled"
	MsgSessionStarted = "Assistant session started"
	MsgSessionEnded   = "Assistant session ended"
	MsgSettingsLoaded = "Settings loaded"
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
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyRoute     = "route"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyDuration  = "duration_ms"
	LogKeyCommand   = "command"
	LogKeyArgs      = "args"
	LogKeyBuckets   = "buckets"

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
	CompAssistant = "assistant"
	CompEngine    = "engine"
	CompScheduler = "scheduler"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompWorker    = "worker"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompSettings  = "settings"
)
