package httpapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/westeroschronicles/chronicle/internal/forest"
	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/store"
	"github.com/westeroschronicles/chronicle/internal/vote"
)

// storyView decorates a story with the aggregates the list UI shows.
type storyView struct {
	model.Story
	Score       int `json:"score"`
	BranchCount int `json:"branch_count"`
	UserVote    int `json:"user_vote,omitempty"`
}

// snapshot loads the full collection into a forest. All tree queries and
// aggregates are answered from this in-memory view.
func (s *Server) snapshot(ctx context.Context) (*forest.Forest, error) {
	stories, err := s.store.ListStories(ctx)
	if err != nil {
		return nil, err
	}
	return forest.New(stories), nil
}

func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	f, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	q := forest.Query{
		Search: r.URL.Query().Get("search"),
		Region: r.URL.Query().Get("region"),
		Sort:   r.URL.Query().Get("sort"),
	}
	selected := f.Select(q)

	limit := parseIntDefault(r.URL.Query().Get("limit"), 0)
	if limit > 0 && limit < len(selected) {
		selected = selected[:limit]
	}

	userVotes := map[string]int{}
	if verified := s.optionalAuth(r); verified != nil {
		if votes, err := s.store.ListVotesForUser(r.Context(), verified.UserID, model.TargetStory); err == nil {
			userVotes = votes
		}
	}

	views := make([]storyView, len(selected))
	for i, st := range selected {
		views[i] = storyView{
			Story:       st,
			Score:       st.Score(),
			BranchCount: len(f.ChildrenOf(st.ID)),
			UserVote:    userVotes[st.ID],
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"stories": views})
}

func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "story", s.cfg.RateLimits.StoryPerMinute) {
		return
	}
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Title    string `json:"title" validate:"required,min=1,max=200"`
		Content  string `json:"content" validate:"required,min=1"`
		Region   string `json:"region" validate:"omitempty,max=40"`
		ParentID string `json:"parent_id" validate:"omitempty,uuid4"`
	}
	if err := s.readValid(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Region != "" && !model.ValidRegion(req.Region) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown region: %s", req.Region))
		return
	}

	profile, err := s.store.GetProfile(r.Context(), verified.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var parent model.Story
	if req.ParentID != "" {
		parent, err = s.store.GetStory(r.Context(), req.ParentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusBadRequest, errors.New("parent story not found"))
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	story := model.Story{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Content:        req.Content,
		Region:         req.Region,
		AuthorID:       profile.ID,
		AuthorUsername: profile.Username,
		House:          profile.House,
		ParentID:       req.ParentID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateStory(r.Context(), &story); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if parent.ID != "" && parent.AuthorID != profile.ID {
		s.notify(r.Context(), model.Notification{
			UserID:  parent.AuthorID,
			Type:    model.NotifyContinued,
			Title:   "Your chapter was continued",
			Message: fmt.Sprintf("%s continued \"%s\" with \"%s\".", profile.Username, parent.Title, story.Title),
			StoryID: story.ID,
		})
	}

	writeJSON(w, http.StatusCreated, map[string]any{"story": story})
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "storyID")
	story, err := s.store.GetStory(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	f, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	root := f.RootOf(story)

	comments, err := s.store.ListCommentsByStory(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	userID := ""
	if verified := s.optionalAuth(r); verified != nil {
		userID = verified.UserID
	}
	voteState, err := s.ledger.ScoreAndVote(r.Context(), userID, model.TargetStory, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"story":            story,
		"content_html":     renderMarkdown(story.Content),
		"root_id":          root.ID,
		"root_title":       root.Title,
		"is_root":          root.ID == story.ID,
		"branch_count":     len(f.ChildrenOf(id)),
		"descendant_count": f.DescendantCount(id),
		"score":            voteState.Score,
		"user_vote":        voteState.UserVote,
		"comments":         comments,
	})
}

func (s *Server) handleStoryTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "storyID")
	f, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	view := f.TreeView(id)
	if view == nil {
		writeError(w, http.StatusNotFound, errors.New("story not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tree": view})
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "storyID")
	if _, err := s.store.GetStory(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	comments, err := s.store.ListCommentsByStory(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "comment", s.cfg.RateLimits.CommentPerMinute) {
		return
	}
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	storyID := chi.URLParam(r, "storyID")
	story, err := s.store.GetStory(r.Context(), storyID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req struct {
		Text string `json:"text" validate:"required,min=1,max=4000"`
	}
	if err := s.readValid(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	comment := model.Comment{
		ID:             uuid.NewString(),
		StoryID:        storyID,
		AuthorID:       verified.UserID,
		AuthorUsername: verified.Username,
		Text:           req.Text,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateComment(r.Context(), &comment); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if story.AuthorID != verified.UserID {
		s.notify(r.Context(), model.Notification{
			UserID:  story.AuthorID,
			Type:    model.NotifyCommented,
			Title:   "New comment on your chapter",
			Message: fmt.Sprintf("%s commented on \"%s\".", verified.Username, story.Title),
			StoryID: story.ID,
		})
	}

	writeJSON(w, http.StatusCreated, map[string]any{"comment": comment})
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r, "vote", s.cfg.RateLimits.VotePerMinute) {
		return
	}
	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		StoryID   string `json:"story_id" validate:"required"`
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

	res, err := s.ledger.Cast(r.Context(), verified.UserID, model.TargetStory, req.StoryID, dir)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRecountStory rebuilds a story's counters from the vote rows, the
// repair path for drifted aggregates.
func (s *Server) handleRecountStory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	id := chi.URLParam(r, "storyID")
	res, err := s.ledger.Recompute(r.Context(), model.TargetStory, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// notify records a notification; failures are logged, never surfaced, since
// the triggering action already succeeded.
func (s *Server) notify(ctx context.Context, n model.Notification) {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	if err := s.store.CreateNotification(ctx, &n); err != nil {
		s.log.Warn("create notification failed",
			zap.String("user_id", n.UserID),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
	}
}
