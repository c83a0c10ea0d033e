package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedProfile(t *testing.T, st *Store, username string) model.Profile {
	t.Helper()
	p := model.Profile{
		ID:           uuid.NewString(),
		Username:     username,
		House:        "Stark",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.CreateProfile(context.Background(), &p); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func seedStory(t *testing.T, st *Store, author model.Profile, title, parentID string) model.Story {
	t.Helper()
	s := model.Story{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   "content",
		Region:    "The North",
		AuthorID:  author.ID,
		House:     author.House,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateStory(context.Background(), &s); err != nil {
		t.Fatalf("create story: %v", err)
	}
	return s
}

func TestStoryRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	author := seedProfile(t, st, "ned")

	root := seedStory(t, st, author, "The King's Road", "")
	child := seedStory(t, st, author, "A Detour", root.ID)

	got, err := st.GetStory(ctx, child.ID)
	if err != nil {
		t.Fatalf("get story: %v", err)
	}
	if got.ParentID != root.ID {
		t.Fatalf("parent_id = %q, want %q", got.ParentID, root.ID)
	}
	if got.AuthorUsername != "ned" {
		t.Fatalf("author username = %q", got.AuthorUsername)
	}

	all, err := st.ListStories(ctx)
	if err != nil {
		t.Fatalf("list stories: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(all))
	}

	if _, err := st.GetStory(ctx, uuid.NewString()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateUsername(t *testing.T) {
	st := newTestStore(t)
	seedProfile(t, st, "cersei")

	dup := model.Profile{
		ID:           uuid.NewString(),
		Username:     "CERSEI",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	err := st.CreateProfile(context.Background(), &dup)
	if !errors.Is(err, store.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	got, err := st.GetProfileByUsername(context.Background(), "Cersei")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Username != "cersei" {
		t.Fatalf("username = %q", got.Username)
	}
}

func TestVoteUpsertAndCount(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	author := seedProfile(t, st, "arya")
	voter := seedProfile(t, st, "gendry")
	story := seedStory(t, st, author, "Needle Work", "")

	vote := model.Vote{
		UserID:     voter.ID,
		TargetType: model.TargetStory,
		TargetID:   story.ID,
		Value:      1,
		CreatedAt:  time.Now().UTC(),
	}
	if err := st.UpsertVote(ctx, vote); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Upsert replaces, never duplicates.
	vote.Value = -1
	if err := st.UpsertVote(ctx, vote); err != nil {
		t.Fatalf("upsert flip: %v", err)
	}
	up, down, err := st.CountVotes(ctx, model.TargetStory, story.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if up != 0 || down != 1 {
		t.Fatalf("counts = %d/%d, want 0/1", up, down)
	}

	got, err := st.GetVote(ctx, voter.ID, model.TargetStory, story.ID)
	if err != nil {
		t.Fatalf("get vote: %v", err)
	}
	if got.Value != -1 {
		t.Fatalf("value = %d", got.Value)
	}

	votes, err := st.ListVotesForUser(ctx, voter.ID, model.TargetStory)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if votes[story.ID] != -1 {
		t.Fatalf("votes map = %v", votes)
	}

	if err := st.DeleteVote(ctx, voter.ID, model.TargetStory, story.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetVote(ctx, voter.ID, model.TargetStory, story.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCounters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	author := seedProfile(t, st, "hodor")
	story := seedStory(t, st, author, "Hold the Door", "")

	if err := st.AdjustCounters(ctx, model.TargetStory, story.ID, 2, 1); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	up, down, err := st.GetCounters(ctx, model.TargetStory, story.ID)
	if err != nil {
		t.Fatalf("get counters: %v", err)
	}
	if up != 2 || down != 1 {
		t.Fatalf("counters = %d/%d", up, down)
	}

	if err := st.SetCounters(ctx, model.TargetStory, story.ID, 0, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	up, down, _ = st.GetCounters(ctx, model.TargetStory, story.ID)
	if up != 0 || down != 0 {
		t.Fatalf("counters after set = %d/%d", up, down)
	}

	if _, _, err := st.GetCounters(ctx, model.TargetStory, uuid.NewString()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotificationsReadFlow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := seedProfile(t, st, "sam")
	other := seedProfile(t, st, "gilly")

	for i := 0; i < 3; i++ {
		n := model.Notification{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Type:      model.NotifyCommented,
			Title:     "t",
			Message:   "m",
			CreatedAt: time.Now().UTC(),
		}
		if err := st.CreateNotification(ctx, &n); err != nil {
			t.Fatalf("create notification: %v", err)
		}
	}

	unread, err := st.ListNotifications(ctx, user.ID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unread) != 3 {
		t.Fatalf("unread = %d", len(unread))
	}

	// Marking someone else's notification is not found.
	if err := st.MarkNotificationRead(ctx, other.ID, unread[0].ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := st.MarkNotificationRead(ctx, user.ID, unread[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := st.MarkAllNotificationsRead(ctx, user.ID); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	unread, _ = st.ListNotifications(ctx, user.ID, true)
	if len(unread) != 0 {
		t.Fatalf("unread after mark-all = %d", len(unread))
	}
	all, _ := st.ListNotifications(ctx, user.ID, false)
	if len(all) != 3 {
		t.Fatalf("all = %d", len(all))
	}
}

func TestRavensJoinUsernames(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	from := seedProfile(t, st, "jon")
	to := seedProfile(t, st, "ygritte")

	raven := model.Raven{
		ID:        uuid.NewString(),
		FromID:    from.ID,
		ToID:      to.ID,
		Body:      "I know things now.",
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateRaven(ctx, &raven); err != nil {
		t.Fatalf("create raven: %v", err)
	}

	inbox, err := st.ListRavenInbox(ctx, to.ID)
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(inbox) != 1 || inbox[0].FromUsername != "jon" || inbox[0].ToUsername != "ygritte" {
		t.Fatalf("inbox = %+v", inbox)
	}
	sent, err := st.ListRavenSent(ctx, from.ID)
	if err != nil {
		t.Fatalf("sent: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("sent = %d", len(sent))
	}
}

func TestDiscussionsAndReplies(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	author := seedProfile(t, st, "tyrion")

	d := model.Discussion{
		ID:          uuid.NewString(),
		AuthorID:    author.ID,
		Title:       "I drink and I know things",
		Category:    "General",
		ContentHTML: "<p>hello</p>",
		CreatedAt:   time.Now().UTC(),
	}
	if err := st.CreateDiscussion(ctx, &d); err != nil {
		t.Fatalf("create discussion: %v", err)
	}

	listed, err := st.ListDiscussions(ctx, store.DiscussionListOpts{Category: "General"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].AuthorUsername != "tyrion" {
		t.Fatalf("listed = %+v", listed)
	}
	empty, _ := st.ListDiscussions(ctx, store.DiscussionListOpts{Category: "Theories"})
	if len(empty) != 0 {
		t.Fatalf("expected no theories, got %d", len(empty))
	}

	reply := model.DiscussionReply{
		ID:           uuid.NewString(),
		DiscussionID: d.ID,
		AuthorID:     author.ID,
		ContentHTML:  "<p>reply</p>",
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.CreateDiscussionReply(ctx, &reply); err != nil {
		t.Fatalf("create reply: %v", err)
	}
	replies, err := st.ListDiscussionReplies(ctx, d.ID)
	if err != nil {
		t.Fatalf("list replies: %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("replies = %d", len(replies))
	}
}

func TestSiteStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	author := seedProfile(t, st, "bran")
	seedStory(t, st, author, "The Three-Eyed Raven", "")

	stats, err := st.GetSiteStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Profiles != 1 || stats.Stories != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
