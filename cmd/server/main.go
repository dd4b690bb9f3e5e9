package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smartsched/scheduler-server-go/internal/calendar"
	"github.com/smartsched/scheduler-server-go/internal/config"
	"github.com/smartsched/scheduler-server-go/internal/database"
	"github.com/smartsched/scheduler-server-go/internal/gemini"
	"github.com/smartsched/scheduler-server-go/internal/handler"
	"github.com/smartsched/scheduler-server-go/internal/jobs"
	"github.com/smartsched/scheduler-server-go/internal/middleware"
	"github.com/smartsched/scheduler-server-go/internal/redis"
	"github.com/smartsched/scheduler-server-go/internal/repository"
	"github.com/smartsched/scheduler-server-go/internal/service"
	"github.com/smartsched/scheduler-server-go/internal/speech"
	"github.com/smartsched/scheduler-server-go/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load timezone")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	geminiClient, err := gemini.NewClient(startupCtx, cfg.GeminiAPIKey, cfg.GeminiModel, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gemini client")
	}
	log.Info().Str("model", cfg.GeminiModel).Msg("gemini client ready")

	googleCalendar, err := calendar.NewGoogleCalendar(startupCtx, cfg.GoogleCredentialsFile, cfg.CalendarID, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create calendar client")
	}
	log.Info().Str("calendarId", cfg.CalendarID).Msg("calendar client ready")

	bookingRepo := repository.NewBookingRepository(db.DB)
	sessionStore := store.NewSessionStore()

	slotFinder := service.NewSlotFinder(googleCalendar, loc)
	scheduler := service.NewSchedulerService(
		sessionStore, geminiClient, geminiClient, slotFinder,
		googleCalendar, bookingRepo, loc,
	)

	whisperClient := speech.NewWhisperClient(cfg.WhisperURL)
	elevenLabsClient := speech.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.VoiceID)

	go func() {
		warmupCtx, cancelWarmup := context.WithTimeout(context.Background(), config.TranscribeTimeout)
		defer cancelWarmup()
		if err := whisperClient.Warmup(warmupCtx); err != nil {
			log.Warn().Err(err).Msg("transcription server not ready, voice requests may fail")
		}
	}()

	rateLimitMiddleware := middleware.NewRateLimitMiddleware(redisClient.Client, cfg.ChatRateLimitPerMin)

	chatHandler := handler.NewChatHandler(scheduler, cfg.SessionTTL())
	voiceHandler := handler.NewVoiceHandler(scheduler, whisperClient, elevenLabsClient, cfg.SessionTTL())
	bookingsHandler := handler.NewBookingsHandler(bookingRepo)
	healthHandler := handler.NewHealthHandler(
		db.Ping,
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		sessionStore, bookingRepo,
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", healthHandler.Health)

	chatBodyLimit := middleware.NewBodyLimitMiddleware(config.MaxChatBodyBytes)
	voiceBodyLimit := middleware.NewBodyLimitMiddleware(config.MaxAudioBytes)

	r.Group(func(r chi.Router) {
		r.Use(rateLimitMiddleware.Handler)

		r.With(chatBodyLimit.Handler).Post("/chat", chatHandler.Chat)
		r.With(chatBodyLimit.Handler).Post("/reset", chatHandler.Reset)
		r.With(voiceBodyLimit.Handler).Post("/voice-chat", voiceHandler.VoiceChat)
		r.Get("/bookings", bookingsHandler.Bookings)
	})

	cleanupJob := jobs.NewCleanupJob(
		sessionStore, bookingRepo,
		cfg.SessionTTL(), cfg.BookingRetention(), config.CleanupJobInterval,
	)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
