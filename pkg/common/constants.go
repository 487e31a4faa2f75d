package common

const (
	RedisKeyTelegramOffset = "digest:telegram:offset"

	// MaxReasonLength bounds every why/rationale string shown to users.
	MaxReasonLength = 140

	// MaxFetchItems caps how many headlines a single source may return.
	MaxFetchItems = 50

	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultLookbackHours = 12

	// MaxLookbackHours bounds every requested window to one year.
	MaxLookbackHours = 24 * 365
)
