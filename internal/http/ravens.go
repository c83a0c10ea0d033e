package httpapp

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/store"
)

func (s *Server) handleRavenInbox(w http.ResponseWriter, r *http.Request) {
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	ravens, err := s.store.ListRavenInbox(r.Context(), verified.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ravens": ravens})
}

func (s *Server) handleRavenSent(w http.ResponseWriter, r *http.Request) {
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	ravens, err := s.store.ListRavenSent(r.Context(), verified.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ravens": ravens})
}

func (s *Server) handleSendRaven(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "raven", s.cfg.RateLimits.RavenPerMinute) {
		return
	}
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		To   string `json:"to" validate:"required"`
		Body string `json:"body" validate:"required,min=1,max=4000"`
	}
	if err := s.readValid(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	recipient, err := s.store.GetProfileByUsername(r.Context(), req.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, errors.New("recipient not found"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if recipient.ID == verified.UserID {
		writeError(w, http.StatusBadRequest, errors.New("cannot send a raven to yourself"))
		return
	}

	raven := model.Raven{
		ID:           uuid.NewString(),
		FromID:       verified.UserID,
		FromUsername: verified.Username,
		ToID:         recipient.ID,
		ToUsername:   recipient.Username,
		Body:         req.Body,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateRaven(r.Context(), &raven); err != nil {
		writeStoreError(w, err)
		return
	}

	s.notify(r.Context(), model.Notification{
		UserID:  recipient.ID,
		Type:    model.NotifyRaven,
		Title:   "A raven has arrived",
		Message: verified.Username + " sent you a raven",
	})

	writeJSON(w, http.StatusCreated, map[string]any{"raven": raven})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "1"
	notifications, err := s.store.ListNotifications(r.Context(), verified.UserID, unreadOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "notificationID")
	if err := s.store.MarkNotificationRead(r.Context(), verified.UserID, id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if err := s.store.MarkAllNotificationsRead(r.Context(), verified.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
