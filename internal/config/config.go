package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                  int    `env:"PORT" envDefault:"8080"`
	DatabaseURL           string `env:"DATABASE_URL,required"`
	RedisURL              string `env:"REDIS_URL,required"`
	GeminiAPIKey          string `env:"GEMINI_API_KEY,required"`
	GeminiModel           string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash-002"`
	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" envDefault:"credentials.json"`
	CalendarID            string `env:"CALENDAR_ID" envDefault:"primary"`
	Timezone              string `env:"TIMEZONE" envDefault:"Asia/Kolkata"`
	ElevenLabsAPIKey      string `env:"ELEVENLABS_API_KEY"`
	VoiceID               string `env:"VOICE_ID" envDefault:"EXAVITQu4vr4xnSDxMaL"`
	WhisperURL            string `env:"WHISPER_URL" envDefault:"http://localhost:8090"`
	SessionTTLMinutes     int    `env:"SESSION_TTL_MINUTES" envDefault:"60"`
	ChatRateLimitPerMin   int    `env:"CHAT_RATE_LIMIT_PER_MIN" envDefault:"30"`
	BookingRetentionDays  int    `env:"BOOKING_RETENTION_DAYS" envDefault:"90"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) BookingRetention() time.Duration {
	return time.Duration(c.BookingRetentionDays) * 24 * time.Hour
}

// Location loads the deployment timezone. Every stored time value carries
// this location; naive timestamps are never constructed.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	if c.ChatRateLimitPerMin <= 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT_PER_MIN must be positive")
	}
	if c.ElevenLabsAPIKey == "" {
		log.Warn().Msg("ELEVENLABS_API_KEY is empty: voice replies will fail until it is set")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
