package model

import "time"

// Regions of the realm, in map order. Region is fixed at story creation.
var Regions = []string{
	"The North",
	"The Vale",
	"The Riverlands",
	"The Westerlands",
	"The Reach",
	"Dorne",
	"The Stormlands",
	"The Crownlands",
	"Beyond the Wall",
}

// RegionTaglines feeds the realm map cards.
var RegionTaglines = map[string]string{
	"The North":       "Snow, wolves, and old gods.",
	"The Vale":        "Mountains and sky.",
	"The Riverlands":  "Rivers run red with history.",
	"The Westerlands": "Gold in the hills.",
	"The Reach":       "Fields of plenty.",
	"Dorne":           "Sun, spears, and wine.",
	"The Stormlands":  "Thunder and stubborn kings.",
	"The Crownlands":  "Where the throne casts a long shadow.",
	"Beyond the Wall": "Only the brave return.",
}

// DiscussionCategories is the fixed set of discussion boards.
var DiscussionCategories = []string{
	"General",
	"Theories",
	"Writing Help",
	"Character Analysis",
	"Site Feedback",
}

func ValidRegion(region string) bool {
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}

func ValidCategory(category string) bool {
	for _, c := range DiscussionCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Story is a chapter: a node in the story forest. ParentID empty means the
// story roots its own thread. Title, content and attribution are immutable
// after creation; only the vote counters change.
type Story struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Region         string    `json:"region,omitempty"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	House          string    `json:"house,omitempty"`
	ParentID       string    `json:"parent_id,omitempty"`
	Upvotes        int       `json:"upvotes"`
	Downvotes      int       `json:"downvotes"`
	CreatedAt      time.Time `json:"created_at"`
}

// Score is upvotes minus downvotes.
func (s Story) Score() int {
	return s.Upvotes - s.Downvotes
}

type Comment struct {
	ID             string    `json:"id"`
	StoryID        string    `json:"story_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Vote target kinds.
const (
	TargetStory      = "story"
	TargetDiscussion = "discussion"
)

// Vote is one user's active vote on one target. Value is always +1 or -1; a
// cleared vote is deleted, never stored as zero.
type Vote struct {
	UserID     string    `json:"user_id"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Value      int       `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}

// Profile is a signed-up persona. ID is the stable join key everywhere;
// Username is a unique display alias resolved at the API boundary.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	House     string    `json:"house,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Snow      bool      `json:"snow"`
	CreatedAt time.Time `json:"created_at"`

	// Never serialized.
	PasswordHash string `json:"-"`
}

// Raven is a direct message between two personas.
type Raven struct {
	ID           string    `json:"id"`
	FromID       string    `json:"from_id"`
	FromUsername string    `json:"from_username"`
	ToID         string    `json:"to_id"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

type NotificationType string

const (
	NotifyContinued NotificationType = "story_continued"
	NotifyCommented NotificationType = "story_commented"
	NotifyRaven     NotificationType = "raven_received"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	StoryID   string           `json:"story_id,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// Discussion is a community thread with rich-text content. ContentHTML is
// sanitized before storage and served as-is.
type Discussion struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	ContentHTML    string    `json:"content_html"`
	Upvotes        int       `json:"upvotes"`
	Downvotes      int       `json:"downvotes"`
	CreatedAt      time.Time `json:"created_at"`
}

func (d Discussion) Score() int {
	return d.Upvotes - d.Downvotes
}

type DiscussionReply struct {
	ID             string    `json:"id"`
	DiscussionID   string    `json:"discussion_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	ContentHTML    string    `json:"content_html"`
	CreatedAt      time.Time `json:"created_at"`
}

// Achievement is a derived badge; never persisted.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UserStats is the profile tab summary.
type UserStats struct {
	StoryCount   int           `json:"story_count"`
	CommentCount int           `json:"comment_count"`
	TotalScore   int           `json:"total_score"`
	Achievements []Achievement `json:"achievements"`
}

type SiteStats struct {
	Profiles    int64 `json:"profiles"`
	Stories     int64 `json:"stories"`
	Ravens      int64 `json:"ravens"`
	Discussions int64 `json:"discussions"`
}
