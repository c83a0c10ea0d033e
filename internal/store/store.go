package store

import (
	"context"
	"errors"

	"github.com/westeroschronicles/chronicle/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("duplicate username")
)

type DiscussionListOpts struct {
	Category string
	Limit    int
}

type Store interface {
	StoryStore
	CommentStore
	VoteStore
	CounterStore
	ProfileStore
	RavenStore
	NotificationStore
	DiscussionStore
	GetSiteStats(ctx context.Context) (model.SiteStats, error)
	Close() error
}

type StoryStore interface {
	CreateStory(ctx context.Context, story *model.Story) error
	GetStory(ctx context.Context, id string) (model.Story, error)
	// ListStories returns the full collection in creation order; the
	// forest snapshot and all aggregates are computed from it in memory.
	ListStories(ctx context.Context) ([]model.Story, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListCommentsByStory(ctx context.Context, storyID string) ([]model.Comment, error)
	CountCommentsByAuthor(ctx context.Context, authorID string) (int, error)
}

type VoteStore interface {
	GetVote(ctx context.Context, userID, targetType, targetID string) (model.Vote, error)
	ListVotesForUser(ctx context.Context, userID, targetType string) (map[string]int, error)
	UpsertVote(ctx context.Context, vote model.Vote) error
	DeleteVote(ctx context.Context, userID, targetType, targetID string) error
	CountVotes(ctx context.Context, targetType, targetID string) (up, down int, err error)
}

// CounterStore reads and writes the denormalized per-target vote counters.
// AdjustCounters applies deltas atomically so concurrent voters on the same
// target never lose updates; SetCounters overwrites, for reconciliation.
type CounterStore interface {
	GetCounters(ctx context.Context, targetType, targetID string) (up, down int, err error)
	AdjustCounters(ctx context.Context, targetType, targetID string, dUp, dDown int) error
	SetCounters(ctx context.Context, targetType, targetID string, up, down int) error
}

type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, id string) (model.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (model.Profile, error)
	UpdateProfile(ctx context.Context, id string, bio string, snow bool) error
}

type RavenStore interface {
	CreateRaven(ctx context.Context, raven *model.Raven) error
	ListRavenInbox(ctx context.Context, userID string) ([]model.Raven, error)
	ListRavenSent(ctx context.Context, userID string) ([]model.Raven, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
}

type DiscussionStore interface {
	CreateDiscussion(ctx context.Context, d *model.Discussion) error
	GetDiscussion(ctx context.Context, id string) (model.Discussion, error)
	ListDiscussions(ctx context.Context, opts DiscussionListOpts) ([]model.Discussion, error)
	CreateDiscussionReply(ctx context.Context, reply *model.DiscussionReply) error
	ListDiscussionReplies(ctx context.Context, discussionID string) ([]model.DiscussionReply, error)
}
