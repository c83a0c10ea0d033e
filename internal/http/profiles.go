package httpapp

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/westeroschronicles/chronicle/internal/achieve"
	"github.com/westeroschronicles/chronicle/internal/auth"
	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/store"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required,min=2,max=40"`
		Password string `json:"password" validate:"required,min=8,max=128"`
		House    string `json:"house" validate:"omitempty,max=40"`
	}
	if err := s.readValid(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	profile, token, err := s.auth.Signup(r.Context(), req.Username, req.Password, req.House)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"profile": profile, "token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := s.readValid(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	profile, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile, "token": token})
}

// handleMe is the getCurrentUser surface: the signed-in persona or 401.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	profile, err := s.store.GetProfile(r.Context(), verified.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

// handleGetProfile serves a public profile with its stats and badges.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	profile, err := s.store.GetProfileByUsername(r.Context(), username)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	f, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	commentCount, err := s.store.CountCommentsByAuthor(r.Context(), profile.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	stats := achieve.Stats(profile, f.AuthoredBy(profile.ID), commentCount)
	writeJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"stats":   stats,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Bio  *string `json:"bio" validate:"omitempty,max=1000"`
		Snow *bool   `json:"snow"`
	}
	if err := s.readValid(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	profile, err := s.store.GetProfile(r.Context(), verified.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	bio := profile.Bio
	if req.Bio != nil {
		bio = *req.Bio
	}
	snow := profile.Snow
	if req.Snow != nil {
		snow = *req.Snow
	}

	if err := s.store.UpdateProfile(r.Context(), profile.ID, bio, snow); err != nil {
		writeStoreError(w, err)
		return
	}
	profile.Bio = bio
	profile.Snow = snow
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

// handleRealm serves the region map: every region with its tagline and
// chapter count, in map order.
func (s *Server) handleRealm(w http.ResponseWriter, r *http.Request) {
	f, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	counts := f.RegionCounts()

	type regionCard struct {
		Name    string `json:"name"`
		Tagline string `json:"tagline"`
		Count   int    `json:"count"`
	}
	cards := make([]regionCard, len(model.Regions))
	for i, name := range model.Regions {
		cards[i] = regionCard{
			Name:    name,
			Tagline: model.RegionTaglines[name],
			Count:   counts[name],
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": cards})
}

func (s *Server) handleSiteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetSiteStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
