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

// UserAgent identifies the HTTP client used for remote vCard imports.
var UserAgent = "Go-AddressBook/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go AddressBook"
	AppID             = "com.github.tartampluch.go-addressbook"
	CommandName       = "go-addressbook"
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
	// Used for the snapshot, exports and logs.
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
	FlagDebug     = "debug"
	FlagFile      = "file"
	FlagLang      = "lang"
	FlagOut       = "out"
	FlagURL       = "url"
	FlagUser      = "user"
	FlagDescDebug = "Enable debug logging to stderr"
	FlagDescFile  = "Path of the address book snapshot"
	FlagDescLang  = "Language of console messages (en, fr)"
	FlagDescOut   = "Output file (stdout when empty)"
	FlagDescURL   = "Fetch the vCard file from this CardDAV/WebDAV URL"
	FlagDescUser  = "Username for the remote vCard URL (password is read from the keyring)"

	CmdShortRoot   = "Console contact manager"
	CmdShortExport = "Export the address book"
	CmdShortICal   = "Export birthdays as an iCalendar feed"
	CmdShortVCard  = "Export contacts as vCard 4.0"
	CmdShortImport = "Import contacts"
	CmdShortImpVCF = "Import contacts from a vCard file or URL"
	CmdShortServe  = "Serve the birthday calendar and vCard feeds over HTTP"
	CmdShortLogin  = "Store the CardDAV password of a user in the system keyring"

	MsgVersionTemplate = "{{.Name}} version {{.Version}}\n"
	MsgPasswordPrompt  = "Password for %s: "
	MsgPasswordStored  = "Password stored in the system keyring."
	MsgImportSummary   = "Imported %d contacts (%d created, %d merged, %d fields skipped).\n"
	MsgServing         = "Serving %s and %s on http://%s:%s (Ctrl+C to stop)\n"
	MsgPrompt          = "Enter command: "
	MsgIntro           = "\nType \"help\" for list of commands.\n"
	MsgAllSaved        = "\nDon't worry. All saved."
	MsgFatal           = "Unexpected error occurred: %v\n"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultDataFile   = "contacts.dat"
	DefaultPort       = "18080"
	DefaultLanguage   = "en"
	DefaultRefreshMin = 5 // minutes between two reads of the data file by "serve"
	EnvPrefix         = "ADDRESSBOOK"

	// MaxPhoneDigits bounds the length of a phone number.
	MaxPhoneDigits = 20

	// NameWordJoiner replaces whitespace in imported contact names.
	NameWordJoiner = "_"

	// PhoneSeparator joins phones in the search projection and the table.
	PhoneSeparator = "; "
	// ProjectionSeparator joins the fields of a record's search projection.
	ProjectionSeparator = "|"
	// EmptyCell is rendered in the table for absent values.
	EmptyCell = "-"

	UIDSalt       = "go-addressbook-v1-" // Salt for deterministic UID generation
	UIDHashLength = 16
)

// SupportedLanguages defines the list of available console languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// ExitPhrases end the interactive session. Compared case-insensitively against
// the whole input line.
var ExitPhrases = []string{"good bye", "exit", "close", "bye", "."}

// TableHeaders are the column names of the contact table.
var TableHeaders = []string{"Name", "Phones", "Birthday", "Email"}

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

	VCardVersion = "4.0"

	DefaultICalRefresh = 24 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats
// -----------------------------------------------------------------------------

const (
	// DateFormatDisplay is the canonical rendering of a birthday.
	DateFormatDisplay = "2006-01-02"

	// Layouts accepted for vCard BDAY values.
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"

	// BirthdayDelimiters separate day, month and year in user input.
	BirthdayDelimiters = `-_\/`

	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Snapshot Format
// -----------------------------------------------------------------------------

const (
	// SnapshotMagic prefixes every snapshot file, before the compressed payload.
	SnapshotMagic = "GABK"
	// SnapshotVersion is bumped on incompatible wire changes.
	SnapshotVersion = 1
	// MaxSnapshotSize bounds the decompressed payload of a snapshot.
	MaxSnapshotSize = 64 * 1024 * 1024 // 64MB
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
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteCalendar       = "/birthdays.ics"
	RouteVCard          = "/contacts.vcf"
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
	MimeTextVCard       = "text/vcard; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Translation Keys (i18n)
// -----------------------------------------------------------------------------

const (
	TKeyHello     = "Hello"
	TKeyHelp      = "Help"
	TKeyGoodbye   = "Goodbye"
	TKeyNoResults = "NoResults"

	TKeyRecordAdded     = "RecordAdded"
	TKeyPhoneAdded      = "PhoneAdded"
	TKeyEmailAdded      = "EmailAdded"
	TKeyBirthdayAdded   = "BirthdayAdded"
	TKeyPhoneChanged    = "PhoneChanged"
	TKeyEmailChanged    = "EmailChanged"
	TKeyBirthdayChanged = "BirthdayChanged"
	TKeyRecordDeleted   = "RecordDeleted"
	TKeyPhoneDeleted    = "PhoneDeleted"
	TKeyEmailDeleted    = "EmailDeleted"
	TKeyBirthdayDeleted = "BirthdayDeleted"

	TKeySaved        = "Saved"
	TKeyLoaded       = "Loaded"
	TKeyExported     = "Exported"
	TKeyImported     = "Imported"
	TKeyBirthdayLine = "BirthdayLine"
	TKeyBirthdayNone = "BirthdayNone"

	TKeyErrArity      = "ErrArity"
	TKeyErrUnknown    = "ErrUnknown"
	TKeyErrSubject    = "ErrSubject"
	TKeyErrValidation = "ErrValidation"
	TKeyErrDuplicate  = "ErrDuplicate"
	TKeyErrNotFound   = "ErrNotFound"
	TKeyErrFailed     = "ErrFailed"

	TKeyEvtSummaryAge   = "EvtSummaryAge"
	TKeyEvtSummaryBirth = "EvtSummaryBirth"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup  = "server startup failed"
	ErrServerShutdown = "server shutdown failed"
	ErrPortRequired   = "server port is required"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrVCardEncode    = "failed to encode vCard data"
	ErrVCardParse     = "failed to parse vCard stream"
	ErrDateParse      = "unable to parse date"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrCreateDir      = "could not create app cache dir"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrSettings       = "failed to load settings"
	ErrSnapshotOpen   = "failed to open snapshot"
	ErrSnapshotWrite  = "failed to write snapshot"
	ErrSnapshotRead   = "failed to read snapshot"
	ErrSnapshotFormat = "snapshot is corrupt or has an unknown format"
	ErrOutputOpen     = "failed to open output file"
	ErrKeyring        = "keyring access failed"
	ErrReadPassword   = "failed to read password"
	ErrRecovered      = "recovered from panic"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"

	MsgAppStop       = "Application stopped gracefully"
	MsgAppStarting   = "Starting application"
	MsgSessionStart  = "Interactive session started"
	MsgSessionEnd    = "Interactive session ended"
	MsgCommand       = "Command executed"
	MsgCommandFailed = "Command failed"
	MsgSnapshotSaved = "Snapshot saved"
	MsgSnapshotLoad  = "Snapshot loaded"
	MsgSnapshotNone  = "No snapshot found, starting empty"
	MsgGenSuccess    = "Calendar generation successful"
	MsgBdayToday     = "Birthday found today"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedField  = "Skipping invalid vCard field"
	MsgImportDone    = "vCard import finished"
	MsgExportDone    = "Export finished"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Feed cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgSignal        = "Termination signal received, saving"
	MsgWorkerStart   = "Feed refresh worker started"
	MsgWorkerStop    = "Feed refresh worker stopped"
	MsgRefreshFailed = "Feed refresh failed, keeping previous content"
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
	LogKeyUser      = "user"
	LogKeyCommand   = "command"
	LogKeyRecords   = "records"
	LogKeyCreated   = "created"
	LogKeyMerged    = "merged"
	LogKeySkipped   = "skipped"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyRoute     = "route"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyInterval  = "interval"
	LogKeyFormat    = "format"

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
	CompBook    = "book"
	CompBot     = "bot"
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompWorker  = "worker"
)
