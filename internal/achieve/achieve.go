// Package achieve derives badges from a persona's authored chapters. Badges
// are recomputed on demand and never stored; every rule is independent, so
// earning one can never revoke another.
package achieve

import (
	"github.com/westeroschronicles/chronicle/internal/model"
)

// Tally is the per-author input the rules see.
type Tally struct {
	StoryCount int
	TotalScore int
	House      string
	Regions    map[string]bool
}

// Rule awards a badge when its thresholds hold. Zero-valued fields do not
// constrain: a rule with only MinStories set ignores score, house and region.
type Rule struct {
	Badge      model.Achievement
	MinStories int
	MinScore   int
	Region     string
	House      string
}

func (r Rule) earned(t Tally) bool {
	if t.StoryCount < r.MinStories {
		return false
	}
	if t.TotalScore < r.MinScore {
		return false
	}
	if r.Region != "" && !t.Regions[r.Region] {
		return false
	}
	if r.House != "" && t.House != r.House {
		return false
	}
	return true
}

// Rules is the badge table, in display order.
var Rules = []Rule{
	{
		Badge: model.Achievement{
			ID:          "first-quill",
			Name:        "First Quill",
			Description: "Submitted your first chapter.",
		},
		MinStories: 1,
	},
	{
		Badge: model.Achievement{
			ID:          "seasoned-bard",
			Name:        "Seasoned Bard",
			Description: "Submitted five or more chapters.",
		},
		MinStories: 5,
	},
	{
		Badge: model.Achievement{
			ID:          "crowd-favorite",
			Name:        "Crowd Favorite",
			Description: "Earned a total score of 10 or more on your chapters.",
		},
		MinScore: 10,
	},
	{
		Badge: model.Achievement{
			ID:          "wolf-of-the-north",
			Name:        "Wolf of the North",
			Description: "A Stark writing tales of the North.",
		},
		MinStories: 1,
		Region:     "The North",
		House:      "Stark",
	},
	{
		Badge: model.Achievement{
			ID:          "oath-kept",
			Name:        "Oath Kept",
			Description: "A brother of the Watch telling tales beyond the Wall.",
		},
		MinStories: 1,
		Region:     "Beyond the Wall",
		House:      "Night's Watch",
	},
}

// TallyFor sums a persona's authored stories.
func TallyFor(profile model.Profile, authored []model.Story) Tally {
	t := Tally{House: profile.House, Regions: make(map[string]bool)}
	for _, s := range authored {
		t.StoryCount++
		t.TotalScore += s.Score()
		if s.Region != "" {
			t.Regions[s.Region] = true
		}
	}
	return t
}

// Evaluate returns the badges earned by profile over its authored stories,
// in rule-table order. An empty result is a valid state, not an error.
func Evaluate(profile model.Profile, authored []model.Story) []model.Achievement {
	return EvaluateRules(Rules, TallyFor(profile, authored))
}

// EvaluateRules runs an explicit rule table, for callers that configure
// their own.
func EvaluateRules(rules []Rule, t Tally) []model.Achievement {
	badges := make([]model.Achievement, 0, len(rules))
	for _, r := range rules {
		if r.earned(t) {
			badges = append(badges, r.Badge)
		}
	}
	return badges
}

// Stats bundles the profile-tab summary: counts, cumulative score and badges.
func Stats(profile model.Profile, authored []model.Story, commentCount int) model.UserStats {
	t := TallyFor(profile, authored)
	return model.UserStats{
		StoryCount:   t.StoryCount,
		CommentCount: commentCount,
		TotalScore:   t.TotalScore,
		Achievements: EvaluateRules(Rules, t),
	}
}
