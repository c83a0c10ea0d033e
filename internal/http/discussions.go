package httpapp

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/westeroschronicles/chronicle/internal/forest"
	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/store"
	"github.com/westeroschronicles/chronicle/internal/vote"
)

type discussionView struct {
	model.Discussion
	Score    int `json:"score"`
	UserVote int `json:"user_vote"`
}

func (s *Server) handleListDiscussions(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !model.ValidCategory(category) {
		writeError(w, http.StatusBadRequest, errors.New("unknown category"))
		return
	}

	discussions, err := s.store.ListDiscussions(r.Context(), store.DiscussionListOpts{
		Category: category,
		Limit:    parseIntDefault(r.URL.Query().Get("limit"), 50),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	userVotes := map[string]int{}
	if verified := s.optionalAuth(r); verified != nil {
		userVotes, err = s.store.ListVotesForUser(r.Context(), verified.UserID, model.TargetDiscussion)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	views := make([]discussionView, len(discussions))
	for i, d := range discussions {
		views[i] = discussionView{
			Discussion: d,
			Score:      d.Score(),
			UserVote:   userVotes[d.ID],
		}
	}

	now := time.Now()
	switch r.URL.Query().Get("sort") {
	case "top":
		sort.SliceStable(views, func(i, j int) bool { return views[i].Score > views[j].Score })
	case "new":
		sort.SliceStable(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	default: // hot
		sort.SliceStable(views, func(i, j int) bool {
			return forest.HotRank(views[i].Score, views[i].CreatedAt, now) >
				forest.HotRank(views[j].Score, views[j].CreatedAt, now)
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"discussions": views})
}

func (s *Server) handleCreateDiscussion(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "discussion", s.cfg.RateLimits.StoryPerMinute) {
		return
	}
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Title    string `json:"title" validate:"required,min=3,max=200"`
		Category string `json:"category" validate:"required"`
		Content  string `json:"content" validate:"required,min=1,max=20000"`
	}
	if err := s.readValid(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !model.ValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, errors.New("unknown category"))
		return
	}

	d := model.Discussion{
		ID:             uuid.NewString(),
		AuthorID:       verified.UserID,
		AuthorUsername: verified.Username,
		Title:          req.Title,
		Category:       req.Category,
		ContentHTML:    sanitizeHTML(req.Content),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateDiscussion(r.Context(), &d); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"discussion": discussionView{Discussion: d}})
}

func (s *Server) handleGetDiscussion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "discussionID")
	d, err := s.store.GetDiscussion(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	userID := ""
	if verified := s.optionalAuth(r); verified != nil {
		userID = verified.UserID
	}
	state, err := s.ledger.ScoreAndVote(r.Context(), userID, model.TargetDiscussion, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	replies, err := s.store.ListDiscussionReplies(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"discussion": discussionView{Discussion: d, Score: state.Score, UserVote: state.UserVote},
		"replies":    replies,
	})
}

func (s *Server) handleCreateDiscussionReply(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "reply", s.cfg.RateLimits.CommentPerMinute) {
		return
	}
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "discussionID")
	if _, err := s.store.GetDiscussion(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	var req struct {
		Content string `json:"content" validate:"required,min=1,max=20000"`
	}
	if err := s.readValid(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	reply := model.DiscussionReply{
		ID:             uuid.NewString(),
		DiscussionID:   id,
		AuthorID:       verified.UserID,
		AuthorUsername: verified.Username,
		ContentHTML:    sanitizeHTML(req.Content),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateDiscussionReply(r.Context(), &reply); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"reply": reply})
}

func (s *Server) handleCastDiscussionVote(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "vote", s.cfg.RateLimits.VotePerMinute) {
		return
	}
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Direction string `json:"direction" validate:"required"`
	}
	if err := s.readValid(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dir, err := vote.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := chi.URLParam(r, "discussionID")
	res, err := s.ledger.Cast(r.Context(), verified.UserID, model.TargetDiscussion, id, dir)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
