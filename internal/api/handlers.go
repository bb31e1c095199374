package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wardline/osler/internal/conversation"
	"github.com/wardline/osler/internal/pipeline"
	"github.com/wardline/osler/internal/prompt"
	"github.com/wardline/osler/internal/provider"
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatResponse struct {
	Response         string `json:"response"`
	ConversationID   string `json:"conversation_id"`
	ShowSOAPButton   bool   `json:"show_soap_button"`
	UserMessageCount int    `json:"user_message_count"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	res, err := s.pipe.Chat(r.Context(), req.ConversationID, message)
	if err != nil {
		var provErr *provider.Error
		if errors.As(err, &provErr) {
			// Keep the chat UI functional: a backend failure degrades to a
			// fixed reply instead of a 5xx. The patient turn is preserved.
			s.setConversationCookie(w, res.ConversationID)
			writeJSON(w, http.StatusOK, chatResponse{
				Response:         pipeline.DegradedResponse,
				ConversationID:   res.ConversationID,
				UserMessageCount: res.PatientTurnCount,
			})
			return
		}
		s.logger.Error("chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}

	s.setConversationCookie(w, res.ConversationID)
	writeJSON(w, http.StatusOK, chatResponse{
		Response:         res.Response,
		ConversationID:   res.ConversationID,
		ShowSOAPButton:   res.ShowNoteButton,
		UserMessageCount: res.PatientTurnCount,
	})
}

type analyzeRequest struct {
	ConversationID string `json:"conversation_id"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	note, err := s.pipe.Analyze(r.Context(), req.ConversationID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"response": note})
	case errors.Is(err, conversation.ErrNotFound):
		writeError(w, http.StatusNotFound, "Conversation not found")
	case errors.Is(err, prompt.ErrInsufficientData):
		writeError(w, http.StatusBadRequest, "Insufficient data for analysis. Need at least 2 patient messages.")
	case errors.Is(err, pipeline.ErrAlreadySummarized):
		writeError(w, http.StatusBadRequest, "Analysis already completed for this conversation.")
	default:
		var provErr *provider.Error
		if errors.As(err, &provErr) {
			// Conversation state is untouched; the caller can resubmit.
			writeJSON(w, http.StatusOK, map[string]string{
				"response": "Unable to generate SOAP note. Please try again.",
			})
			return
		}
		s.logger.Error("analyze failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analyze failed")
	}
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": s.store.List(),
	})
}

func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	c := s.store.Create()
	s.setConversationCookie(w, c.ID)
	writeJSON(w, http.StatusOK, map[string]string{"conversation_id": c.ID})
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(chi.URLParam(r, "id"))
	if errors.Is(err, conversation.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversation": c})
}

func (s *Server) deleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); errors.Is(err, conversation.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// reset clears the cookie-bound conversation back to the interviewing stage.
// Always reports reset, even when no conversation is bound, matching the
// clear-the-session behavior callers expect.
func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := s.pipe.Reset(cookie.Value); err != nil && !errors.Is(err, conversation.ErrNotFound) {
			s.logger.Error("reset failed", "conversation_id", cookie.Value, "error", err)
		}
	}
	s.clearConversationCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	if s.arch == nil {
		writeError(w, http.StatusNotFound, "note archive not configured")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	notes, err := s.arch.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("list notes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (s *Server) setConversationCookie(w http.ResponseWriter, id string) {
	if id == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearConversationCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
