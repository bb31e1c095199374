package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wardline/osler/internal/api"
	"github.com/wardline/osler/internal/archive"
	"github.com/wardline/osler/internal/config"
	"github.com/wardline/osler/internal/conversation"
	"github.com/wardline/osler/internal/events"
	"github.com/wardline/osler/internal/pipeline"
	"github.com/wardline/osler/internal/provider"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("osler starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Completion backends
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	interviewer := provider.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	slog.Info("interview backend ready", "model", cfg.OpenAIModel)

	// The dedicated medical model writes the notes when configured;
	// otherwise the interview backend covers both stages.
	var scribe provider.Completer = interviewer
	medicalConfigured := false
	if cfg.MedicalEndpointURL != "" {
		scribe = provider.NewMedicalClient(cfg.MedicalEndpointURL, cfg.HuggingFaceAPIKey)
		medicalConfigured = true
		slog.Info("medical endpoint ready", "url", cfg.MedicalEndpointURL)
	} else {
		slog.Warn("no medical endpoint configured — notes use the interview backend")
	}

	// Conversation state is in-memory only and does not survive a restart.
	store := conversation.NewMemoryStore()

	// Note archive (optional — osler works without it, notes are just not kept)
	var arch *archive.Archive
	if cfg.NotesDatabaseURL != "" {
		var err error
		arch, err = archive.New(ctx, cfg.NotesDatabaseURL)
		if err != nil {
			slog.Error("failed to connect to note archive", "error", err)
			os.Exit(1)
		}
		defer arch.Close()
		if err := arch.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare note archive schema", "error", err)
			os.Exit(1)
		}
		slog.Info("note archive connected")
	} else {
		slog.Warn("note archive not configured — completed notes are not persisted")
	}

	// Event bus (optional)
	var bus *events.Client
	if cfg.NatsURL != "" {
		var err error
		bus, err = events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — note events disabled")
	}

	pipe := pipeline.New(store, interviewer, scribe, arch, bus, cfg.InterviewMaxTokens, cfg.NoteMaxTokens, slog.Default())

	srv := api.NewServer(cfg.Port, pipe, store, arch, bus, true, medicalConfigured, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if bus != nil {
		if err := bus.Publish(events.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("osler ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("osler stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
