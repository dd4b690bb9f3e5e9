package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// External call timeouts. Each dependency call is bounded so a slow turn
// degrades into a recoverable failure instead of a hung session.
const (
	GeminiTimeout     = 30 * time.Second
	CalendarTimeout   = 15 * time.Second
	TranscribeTimeout = 30 * time.Second
	TTSTimeout        = 8 * time.Second
)

// Voice upload limit, matching the 25MB cap of the transcription backend
const MaxAudioBytes = 25 << 20

// Chat request body limit
const MaxChatBodyBytes = 64 << 10
