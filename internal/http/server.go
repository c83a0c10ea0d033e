// Package httpapp exposes the chronicle JSON API: chapters and their
// threads, votes, ravens, discussions, notifications and profiles.
package httpapp

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/westeroschronicles/chronicle/internal/auth"
	"github.com/westeroschronicles/chronicle/internal/config"
	"github.com/westeroschronicles/chronicle/internal/rate"
	"github.com/westeroschronicles/chronicle/internal/store"
	"github.com/westeroschronicles/chronicle/internal/vote"
)

type Server struct {
	store    store.Store
	auth     *auth.Service
	ledger   *vote.Ledger
	limiter  rate.Limiter
	cfg      config.Config
	log      *zap.Logger
	validate *validator.Validate
	router   chi.Router
}

func NewServer(st store.Store, authSvc *auth.Service, ledger *vote.Ledger, limiter rate.Limiter, cfg config.Config, log *zap.Logger) *Server {
	s := &Server{
		store:    st,
		auth:     authSvc,
		ledger:   ledger,
		limiter:  limiter,
		cfg:      cfg,
		log:      log,
		validate: validator.New(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/feed.xml", s.handleFeed)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/auth/me", s.handleMe)

		r.Get("/stories", s.handleListStories)
		r.Post("/stories", s.handleCreateStory)
		r.Get("/stories/{storyID}", s.handleGetStory)
		r.Get("/stories/{storyID}/tree", s.handleStoryTree)
		r.Get("/stories/{storyID}/comments", s.handleListComments)
		r.Post("/stories/{storyID}/comments", s.handleCreateComment)
		r.Post("/stories/{storyID}/recount", s.handleRecountStory)

		r.Post("/votes", s.handleCastVote)

		r.Get("/realm", s.handleRealm)

		r.Get("/ravens/inbox", s.handleRavenInbox)
		r.Get("/ravens/sent", s.handleRavenSent)
		r.Post("/ravens", s.handleSendRaven)

		r.Get("/notifications", s.handleListNotifications)
		r.Post("/notifications/{notificationID}/read", s.handleMarkNotificationRead)
		r.Post("/notifications/read-all", s.handleMarkAllNotificationsRead)

		r.Get("/discussions", s.handleListDiscussions)
		r.Post("/discussions", s.handleCreateDiscussion)
		r.Get("/discussions/{discussionID}", s.handleGetDiscussion)
		r.Post("/discussions/{discussionID}/replies", s.handleCreateDiscussionReply)
		r.Post("/discussions/{discussionID}/votes", s.handleCastDiscussionVote)

		r.Get("/profiles/{username}", s.handleGetProfile)
		r.Patch("/profile", s.handleUpdateProfile)

		r.Get("/stats", s.handleSiteStats)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ---- Middleware ----

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// ---- Auth helpers ----

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// requireAuth rejects the request and returns false when no valid bearer
// token is present. Mutating handlers call it before touching any state.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (auth.Verified, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return auth.Verified{}, false
	}
	verified, err := s.auth.Authenticate(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return auth.Verified{}, false
	}
	return verified, true
}

// optionalAuth returns the verified persona or nil for anonymous readers.
func (s *Server) optionalAuth(r *http.Request) *auth.Verified {
	token := bearerToken(r)
	if token == "" {
		return nil
	}
	verified, err := s.auth.Authenticate(r.Context(), token)
	if err != nil {
		return nil
	}
	return &verified
}

// ---- Rate limiting ----

func (s *Server) allowRateLimit(w http.ResponseWriter, r *http.Request, action string, limit int) bool {
	if limit <= 0 {
		return true
	}
	key := action + ":" + clientKey(r)
	ok, retry := s.limiter.Allow(key, limit, time.Minute)
	if !ok {
		writeRateLimit(w, retry)
		return false
	}
	return true
}

func clientKey(r *http.Request) string {
	if token := bearerToken(r); token != "" {
		return token
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ---- JSON helpers ----

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func (s *Server) readValid(body io.ReadCloser, dest any) error {
	if err := readJSON(body, dest); err != nil {
		return err
	}
	if err := s.validate.Struct(dest); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return err
		}
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			f := fields[0]
			return errors.New("invalid field: " + strings.ToLower(f.Field()))
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeStoreError maps store sentinels onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeRateLimit(w http.ResponseWriter, retry time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate limit exceeded",
		"retry_after": int(retry.Seconds()),
	})
}

func parseIntDefault(value string, def int) int {
	if value == "" {
		return def
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return def
}
