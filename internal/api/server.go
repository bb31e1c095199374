package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wardline/osler/internal/archive"
	"github.com/wardline/osler/internal/conversation"
	"github.com/wardline/osler/internal/events"
	"github.com/wardline/osler/internal/pipeline"
)

// sessionCookie binds a browser to its current conversation for /reset.
const sessionCookie = "osler_conversation"

type Server struct {
	router *chi.Mux
	port   int
	pipe   *pipeline.Pipeline
	store  conversation.Store
	arch   *archive.Archive // optional
	bus    *events.Client   // optional

	providerReady   bool
	medicalEndpoint bool

	logger *slog.Logger
}

func NewServer(port int, pipe *pipeline.Pipeline, store conversation.Store, arch *archive.Archive, bus *events.Client, providerReady, medicalEndpoint bool, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:          router,
		port:            port,
		pipe:            pipe,
		store:           store,
		arch:            arch,
		bus:             bus,
		providerReady:   providerReady,
		medicalEndpoint: medicalEndpoint,
		logger:          logger,
	}

	router.Get("/health", s.health)
	router.Post("/chat", s.chat)
	router.Post("/analyze", s.analyze)
	router.Post("/reset", s.reset)
	router.Route("/conversations", func(r chi.Router) {
		r.Get("/", s.listConversations)
		r.Post("/", s.createConversation)
		r.Get("/{id}", s.getConversation)
		r.Delete("/{id}", s.deleteConversation)
	})
	router.Get("/notes", s.listNotes)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}

	if s.providerReady {
		body["provider"] = "ready"
	} else {
		body["provider"] = "not configured"
	}
	if s.medicalEndpoint {
		body["medical_endpoint"] = "ready"
	} else {
		body["medical_endpoint"] = "not configured"
	}

	if s.bus == nil {
		body["bus"] = "not configured"
	} else if s.bus.Connected() {
		body["bus"] = "connected"
	} else {
		body["bus"] = "disconnected"
	}

	if s.arch == nil {
		body["archive"] = "not configured"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.arch.Ping(ctx); err != nil {
			body["archive"] = "unreachable"
		} else {
			body["archive"] = "ok"
		}
	}

	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
