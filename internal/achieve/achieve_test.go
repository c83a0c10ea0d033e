package achieve

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westeroschronicles/chronicle/internal/model"
)

func badgeIDs(badges []model.Achievement) []string {
	ids := make([]string, len(badges))
	for i, b := range badges {
		ids[i] = b.ID
	}
	return ids
}

func TestEvaluateEmpty(t *testing.T) {
	got := Evaluate(model.Profile{Username: "Sam", House: "Tarly"}, nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFirstQuill(t *testing.T) {
	jon := model.Profile{ID: "u1", Username: "Jon", House: "Night's Watch"}
	authored := []model.Story{
		{ID: "a", AuthorID: "u1", Region: "Beyond the Wall"},
	}

	got := Evaluate(jon, authored)
	ids := badgeIDs(got)
	assert.Contains(t, ids, "first-quill")
	assert.Contains(t, ids, "oath-kept")
	assert.NotContains(t, ids, "seasoned-bard")
}

func TestSeasonedBard(t *testing.T) {
	p := model.Profile{ID: "u1", Username: "Tyrion", House: "Lannister"}
	var authored []model.Story
	for i := 0; i < 5; i++ {
		authored = append(authored, model.Story{ID: fmt.Sprintf("s%d", i), AuthorID: "u1"})
	}

	ids := badgeIDs(Evaluate(p, authored))
	assert.Contains(t, ids, "seasoned-bard")
	assert.Contains(t, ids, "first-quill")
}

func TestCrowdFavorite(t *testing.T) {
	p := model.Profile{ID: "u1", Username: "Arya", House: "Stark"}
	authored := []model.Story{
		{ID: "a", AuthorID: "u1", Upvotes: 7},
		{ID: "b", AuthorID: "u1", Upvotes: 5, Downvotes: 2},
	}

	ids := badgeIDs(Evaluate(p, authored))
	assert.Contains(t, ids, "crowd-favorite")

	// One point short: 7 + 2 = 9.
	authored[1].Upvotes = 4
	ids = badgeIDs(Evaluate(p, authored))
	assert.NotContains(t, ids, "crowd-favorite")
}

func TestHouseRegionRules(t *testing.T) {
	story := model.Story{ID: "a", AuthorID: "u1", Region: "The North"}

	stark := model.Profile{ID: "u1", Username: "Sansa", House: "Stark"}
	assert.Contains(t, badgeIDs(Evaluate(stark, []model.Story{story})), "wolf-of-the-north")

	// Same region, wrong house.
	greyjoy := model.Profile{ID: "u1", Username: "Theon", House: "Greyjoy"}
	assert.NotContains(t, badgeIDs(Evaluate(greyjoy, []model.Story{story})), "wolf-of-the-north")

	// Right house, no chapter in the region.
	vale := model.Story{ID: "b", AuthorID: "u1", Region: "The Vale"}
	assert.NotContains(t, badgeIDs(Evaluate(stark, []model.Story{vale})), "wolf-of-the-north")
}

func TestMonotonicity(t *testing.T) {
	p := model.Profile{ID: "u1", Username: "Bran", House: "Stark"}
	var authored []model.Story
	earned := map[string]bool{}

	for i := 0; i < 8; i++ {
		authored = append(authored, model.Story{
			ID:       fmt.Sprintf("s%d", i),
			AuthorID: "u1",
			Region:   "The North",
			Upvotes:  2,
		})
		got := badgeIDs(Evaluate(p, authored))
		for id := range earned {
			assert.Contains(t, got, id, "badge %s lost after adding story %d", id, i)
		}
		for _, id := range got {
			earned[id] = true
		}
	}
}

func TestStats(t *testing.T) {
	p := model.Profile{ID: "u1", Username: "Davos", House: "Seaworth"}
	authored := []model.Story{
		{ID: "a", AuthorID: "u1", Upvotes: 3, Downvotes: 1},
		{ID: "b", AuthorID: "u1", Upvotes: 1},
	}

	stats := Stats(p, authored, 4)
	assert.Equal(t, 2, stats.StoryCount)
	assert.Equal(t, 4, stats.CommentCount)
	assert.Equal(t, 3, stats.TotalScore)
	assert.Equal(t, []string{"first-quill"}, badgeIDs(stats.Achievements))
}
