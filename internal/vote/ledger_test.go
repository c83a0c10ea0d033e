package vote

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/store"
	"github.com/westeroschronicles/chronicle/internal/store/sqlite"
)

func newTestLedger(t *testing.T) (*Ledger, *sqlite.Store, string) {
	t.Helper()
	dsnName := strings.NewReplacer("/", "_").Replace(t.Name())
	st, err := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", dsnName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	author := model.Profile{
		ID:           "author-1",
		Username:     "Jon",
		House:        "Night's Watch",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, st.CreateProfile(ctx, &author))

	story := model.Story{
		ID:        "story-1",
		Title:     "The Long Watch",
		Content:   "Snow fell.",
		Region:    "Beyond the Wall",
		AuthorID:  author.ID,
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.CreateStory(ctx, &story))

	return NewLedger(st), st, story.ID
}

func TestCastToggleOff(t *testing.T) {
	ledger, _, storyID := newTestLedger(t)
	ctx := context.Background()

	res, err := ledger.Cast(ctx, "u1", model.TargetStory, storyID, Up)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UserVote)
	assert.Equal(t, 1, res.Upvotes)

	// Clicking the active direction again clears the vote and restores the
	// counter to its pre-click value.
	res, err = ledger.Cast(ctx, "u1", model.TargetStory, storyID, Up)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UserVote)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 0, res.Downvotes)
}

func TestCastFlip(t *testing.T) {
	ledger, _, storyID := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.Cast(ctx, "u1", model.TargetStory, storyID, Up)
	require.NoError(t, err)

	// Opposite direction flips in one step, no neutral click in between.
	res, err := ledger.Cast(ctx, "u1", model.TargetStory, storyID, Down)
	require.NoError(t, err)
	assert.Equal(t, -1, res.UserVote)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)
}

func TestCastExclusivityAcrossUsers(t *testing.T) {
	ledger, st, storyID := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.Cast(ctx, "u1", model.TargetStory, storyID, Up)
	require.NoError(t, err)
	_, err = ledger.Cast(ctx, "u2", model.TargetStory, storyID, Up)
	require.NoError(t, err)
	res, err := ledger.Cast(ctx, "u3", model.TargetStory, storyID, Down)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)
	assert.Equal(t, 1, res.Score)

	// Counters equal the sum of the recorded per-user votes.
	up, down, err := st.CountVotes(ctx, model.TargetStory, storyID)
	require.NoError(t, err)
	assert.Equal(t, res.Upvotes, up)
	assert.Equal(t, res.Downvotes, down)
}

func TestCastUnknownTarget(t *testing.T) {
	ledger, st, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.Cast(ctx, "u1", model.TargetStory, "no-such-story", Up)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Nothing was recorded.
	_, err = st.GetVote(ctx, "u1", model.TargetStory, "no-such-story")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCastSequence(t *testing.T) {
	ledger, _, storyID := newTestLedger(t)
	ctx := context.Background()

	// Any sequence of clicks by one user leaves at most one active direction.
	dirs := []Direction{Up, Down, Down, Up, Up, Down, Up}
	var res Result
	var err error
	for _, d := range dirs {
		res, err = ledger.Cast(ctx, "u1", model.TargetStory, storyID, d)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Upvotes+res.Downvotes, 1)
		assert.GreaterOrEqual(t, res.Upvotes, 0)
		assert.GreaterOrEqual(t, res.Downvotes, 0)
	}
	assert.Equal(t, 1, res.UserVote)
}

func TestCastConcurrentUsers(t *testing.T) {
	ledger, _, storyID := newTestLedger(t)
	ctx := context.Background()

	const voters = 20
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := Up
			if i%4 == 0 {
				dir = Down
			}
			_, err := ledger.Cast(ctx, fmt.Sprintf("u%d", i), model.TargetStory, storyID, dir)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	res, err := ledger.ScoreAndVote(ctx, "", model.TargetStory, storyID)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Upvotes)
	assert.Equal(t, 5, res.Downvotes)
}

func TestScoreAndVote(t *testing.T) {
	ledger, _, storyID := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.Cast(ctx, "u1", model.TargetStory, storyID, Up)
	require.NoError(t, err)

	res, err := ledger.ScoreAndVote(ctx, "u1", model.TargetStory, storyID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UserVote)
	assert.Equal(t, 1, res.Score)

	// Anonymous reader sees the score with no active vote.
	res, err = ledger.ScoreAndVote(ctx, "", model.TargetStory, storyID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UserVote)
	assert.Equal(t, 1, res.Score)
}

func TestRecompute(t *testing.T) {
	ledger, st, storyID := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.Cast(ctx, "u1", model.TargetStory, storyID, Up)
	require.NoError(t, err)
	_, err = ledger.Cast(ctx, "u2", model.TargetStory, storyID, Down)
	require.NoError(t, err)

	// Drift the cached counters, then repair from the vote rows.
	require.NoError(t, st.AdjustCounters(ctx, model.TargetStory, storyID, 5, 3))

	res, err := ledger.Recompute(ctx, model.TargetStory, storyID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)

	up, down, err := st.GetCounters(ctx, model.TargetStory, storyID)
	require.NoError(t, err)
	assert.Equal(t, 1, up)
	assert.Equal(t, 1, down)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, Up, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}
