package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite permits one writer at a time; a single pooled connection keeps
	// concurrent callers from tripping SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrations is an ordered list of SQL migrations.
// Each migration runs exactly once, tracked by schema_version table.
var migrations = []string{
	// Migration 1: Initial schema
	`
CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL COLLATE NOCASE,
	house TEXT,
	bio TEXT,
	snow INTEGER NOT NULL DEFAULT 0,
	password_hash TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_username ON profiles(username);

CREATE TABLE IF NOT EXISTS stories (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	region TEXT,
	author_id TEXT NOT NULL,
	house TEXT,
	parent_id TEXT,
	upvotes INTEGER NOT NULL DEFAULT 0,
	downvotes INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(author_id) REFERENCES profiles(id)
);
CREATE INDEX IF NOT EXISTS idx_stories_created_at ON stories(created_at);
CREATE INDEX IF NOT EXISTS idx_stories_parent_id ON stories(parent_id);
CREATE INDEX IF NOT EXISTS idx_stories_author_id ON stories(author_id);

CREATE TABLE IF NOT EXISTS comments (
	id TEXT PRIMARY KEY,
	story_id TEXT NOT NULL,
	author_id TEXT NOT NULL,
	text TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(story_id) REFERENCES stories(id),
	FOREIGN KEY(author_id) REFERENCES profiles(id)
);
CREATE INDEX IF NOT EXISTS idx_comments_story_id ON comments(story_id);

CREATE TABLE IF NOT EXISTS votes (
	user_id TEXT NOT NULL,
	target_type TEXT NOT NULL,
	target_id TEXT NOT NULL,
	value INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, target_type, target_id)
);
CREATE INDEX IF NOT EXISTS idx_votes_target ON votes(target_type, target_id);

CREATE TABLE IF NOT EXISTS ravens (
	id TEXT PRIMARY KEY,
	from_id TEXT NOT NULL,
	to_id TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(from_id) REFERENCES profiles(id),
	FOREIGN KEY(to_id) REFERENCES profiles(id)
);
CREATE INDEX IF NOT EXISTS idx_ravens_to_id ON ravens(to_id);
CREATE INDEX IF NOT EXISTS idx_ravens_from_id ON ravens(from_id);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	story_id TEXT,
	read INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, read);

CREATE TABLE IF NOT EXISTS discussions (
	id TEXT PRIMARY KEY,
	author_id TEXT NOT NULL,
	title TEXT NOT NULL,
	category TEXT NOT NULL,
	content_html TEXT NOT NULL,
	upvotes INTEGER NOT NULL DEFAULT 0,
	downvotes INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(author_id) REFERENCES profiles(id)
);
CREATE INDEX IF NOT EXISTS idx_discussions_category ON discussions(category);

CREATE TABLE IF NOT EXISTS discussion_replies (
	id TEXT PRIMARY KEY,
	discussion_id TEXT NOT NULL,
	author_id TEXT NOT NULL,
	content_html TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(discussion_id) REFERENCES discussions(id)
);
CREATE INDEX IF NOT EXISTS idx_discussion_replies_discussion_id ON discussion_replies(discussion_id);
`,
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}

// ---- Stories ----

const storyColumns = `s.id, s.title, s.content, s.region, s.author_id, p.username, s.house, s.parent_id, s.upvotes, s.downvotes, s.created_at`

func (s *Store) CreateStory(ctx context.Context, story *model.Story) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO stories (id, title, content, region, author_id, house, parent_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, story.ID, story.Title, story.Content, nullIfEmpty(story.Region), story.AuthorID,
		nullIfEmpty(story.House), nullIfEmpty(story.ParentID), story.CreatedAt.Unix())
	return err
}

func (s *Store) GetStory(ctx context.Context, id string) (model.Story, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+storyColumns+`
FROM stories s
LEFT JOIN profiles p ON p.id = s.author_id
WHERE s.id = ?
LIMIT 1
`, id)
	return scanStory(row)
}

func (s *Store) ListStories(ctx context.Context) ([]model.Story, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+storyColumns+`
FROM stories s
LEFT JOIN profiles p ON p.id = s.author_id
ORDER BY s.created_at ASC, s.id ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []model.Story
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

func scanStory(scanner interface{ Scan(dest ...any) error }) (model.Story, error) {
	var st model.Story
	var region, username, house, parentID sql.NullString
	var created int64
	if err := scanner.Scan(&st.ID, &st.Title, &st.Content, &region, &st.AuthorID, &username, &house, &parentID, &st.Upvotes, &st.Downvotes, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Story{}, store.ErrNotFound
		}
		return model.Story{}, err
	}
	st.Region = region.String
	st.AuthorUsername = username.String
	st.House = house.String
	st.ParentID = parentID.String
	st.CreatedAt = time.Unix(created, 0).UTC()
	return st, nil
}

// ---- Comments ----

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO comments (id, story_id, author_id, text, created_at)
VALUES (?, ?, ?, ?, ?)
`, comment.ID, comment.StoryID, comment.AuthorID, comment.Text, comment.CreatedAt.Unix())
	return err
}

func (s *Store) ListCommentsByStory(ctx context.Context, storyID string) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.id, c.story_id, c.author_id, p.username, c.text, c.created_at
FROM comments c
LEFT JOIN profiles p ON p.id = c.author_id
WHERE c.story_id = ?
ORDER BY c.created_at ASC, c.id ASC
`, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		var username sql.NullString
		var created int64
		if err := rows.Scan(&c.ID, &c.StoryID, &c.AuthorID, &username, &c.Text, &created); err != nil {
			return nil, err
		}
		c.AuthorUsername = username.String
		c.CreatedAt = time.Unix(created, 0).UTC()
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) CountCommentsByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE author_id = ?`, authorID)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ---- Votes ----

func (s *Store) GetVote(ctx context.Context, userID, targetType, targetID string) (model.Vote, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT user_id, target_type, target_id, value, created_at
FROM votes
WHERE user_id = ? AND target_type = ? AND target_id = ?
LIMIT 1
`, userID, targetType, targetID)
	var v model.Vote
	var created int64
	if err := row.Scan(&v.UserID, &v.TargetType, &v.TargetID, &v.Value, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vote{}, store.ErrNotFound
		}
		return model.Vote{}, err
	}
	v.CreatedAt = time.Unix(created, 0).UTC()
	return v, nil
}

func (s *Store) ListVotesForUser(ctx context.Context, userID, targetType string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT target_id, value FROM votes WHERE user_id = ? AND target_type = ?
`, userID, targetType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := make(map[string]int)
	for rows.Next() {
		var targetID string
		var value int
		if err := rows.Scan(&targetID, &value); err != nil {
			return nil, err
		}
		votes[targetID] = value
	}
	return votes, rows.Err()
}

func (s *Store) UpsertVote(ctx context.Context, vote model.Vote) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO votes (user_id, target_type, target_id, value, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id, target_type, target_id) DO UPDATE SET value = excluded.value
`, vote.UserID, vote.TargetType, vote.TargetID, vote.Value, vote.CreatedAt.Unix())
	return err
}

func (s *Store) DeleteVote(ctx context.Context, userID, targetType, targetID string) error {
	_, err := s.db.ExecContext(ctx, `
DELETE FROM votes WHERE user_id = ? AND target_type = ? AND target_id = ?
`, userID, targetType, targetID)
	return err
}

func (s *Store) CountVotes(ctx context.Context, targetType, targetID string) (int, int, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT
	COALESCE(SUM(CASE WHEN value = 1 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN value = -1 THEN 1 ELSE 0 END), 0)
FROM votes
WHERE target_type = ? AND target_id = ?
`, targetType, targetID)
	var up, down int
	if err := row.Scan(&up, &down); err != nil {
		return 0, 0, err
	}
	return up, down, nil
}

// ---- Counters ----

func counterTable(targetType string) (string, error) {
	switch targetType {
	case model.TargetStory:
		return "stories", nil
	case model.TargetDiscussion:
		return "discussions", nil
	default:
		return "", fmt.Errorf("unknown vote target type: %s", targetType)
	}
}

func (s *Store) GetCounters(ctx context.Context, targetType, targetID string) (int, int, error) {
	table, err := counterTable(targetType)
	if err != nil {
		return 0, 0, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT upvotes, downvotes FROM `+table+` WHERE id = ? LIMIT 1`, targetID)
	var up, down int
	if err := row.Scan(&up, &down); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, store.ErrNotFound
		}
		return 0, 0, err
	}
	return up, down, nil
}

func (s *Store) AdjustCounters(ctx context.Context, targetType, targetID string, dUp, dDown int) error {
	table, err := counterTable(targetType)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE `+table+` SET upvotes = upvotes + ?, downvotes = downvotes + ? WHERE id = ?
`, dUp, dDown, targetID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) SetCounters(ctx context.Context, targetType, targetID string, up, down int) error {
	table, err := counterTable(targetType)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE `+table+` SET upvotes = ?, downvotes = ? WHERE id = ?
`, up, down, targetID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ---- Profiles ----

func (s *Store) CreateProfile(ctx context.Context, profile *model.Profile) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO profiles (id, username, house, bio, snow, password_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, profile.ID, profile.Username, nullIfEmpty(profile.House), nullIfEmpty(profile.Bio),
		boolToInt(profile.Snow), profile.PasswordHash, profile.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, username, house, bio, snow, password_hash, created_at
FROM profiles WHERE id = ? LIMIT 1
`, id)
	return scanProfile(row)
}

func (s *Store) GetProfileByUsername(ctx context.Context, username string) (model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, username, house, bio, snow, password_hash, created_at
FROM profiles WHERE username = ? LIMIT 1
`, username)
	return scanProfile(row)
}

func (s *Store) UpdateProfile(ctx context.Context, id string, bio string, snow bool) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE profiles SET bio = ?, snow = ? WHERE id = ?
`, nullIfEmpty(bio), boolToInt(snow), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanProfile(scanner interface{ Scan(dest ...any) error }) (model.Profile, error) {
	var p model.Profile
	var house, bio sql.NullString
	var snow int
	var created int64
	if err := scanner.Scan(&p.ID, &p.Username, &house, &bio, &snow, &p.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, store.ErrNotFound
		}
		return model.Profile{}, err
	}
	p.House = house.String
	p.Bio = bio.String
	p.Snow = snow == 1
	p.CreatedAt = time.Unix(created, 0).UTC()
	return p, nil
}

// ---- Ravens ----

const ravenColumns = `r.id, r.from_id, pf.username, r.to_id, pt.username, r.body, r.created_at`

func (s *Store) CreateRaven(ctx context.Context, raven *model.Raven) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ravens (id, from_id, to_id, body, created_at)
VALUES (?, ?, ?, ?, ?)
`, raven.ID, raven.FromID, raven.ToID, raven.Body, raven.CreatedAt.Unix())
	return err
}

func (s *Store) ListRavenInbox(ctx context.Context, userID string) ([]model.Raven, error) {
	return s.listRavens(ctx, `r.to_id = ?`, userID)
}

func (s *Store) ListRavenSent(ctx context.Context, userID string) ([]model.Raven, error) {
	return s.listRavens(ctx, `r.from_id = ?`, userID)
}

func (s *Store) listRavens(ctx context.Context, where string, userID string) ([]model.Raven, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+ravenColumns+`
FROM ravens r
LEFT JOIN profiles pf ON pf.id = r.from_id
LEFT JOIN profiles pt ON pt.id = r.to_id
WHERE `+where+`
ORDER BY r.created_at DESC, r.id DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ravens []model.Raven
	for rows.Next() {
		var r model.Raven
		var from, to sql.NullString
		var created int64
		if err := rows.Scan(&r.ID, &r.FromID, &from, &r.ToID, &to, &r.Body, &created); err != nil {
			return nil, err
		}
		r.FromUsername = from.String
		r.ToUsername = to.String
		r.CreatedAt = time.Unix(created, 0).UTC()
		ravens = append(ravens, r)
	}
	return ravens, rows.Err()
}

// ---- Notifications ----

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO notifications (id, user_id, type, title, message, story_id, read, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, n.ID, n.UserID, string(n.Type), n.Title, n.Message, nullIfEmpty(n.StoryID),
		boolToInt(n.Read), n.CreatedAt.Unix())
	return err
}

func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	query := `
SELECT id, user_id, type, title, message, story_id, read, created_at
FROM notifications
WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += `
ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		var ntype string
		var storyID sql.NullString
		var read int
		var created int64
		if err := rows.Scan(&n.ID, &n.UserID, &ntype, &n.Title, &n.Message, &storyID, &read, &created); err != nil {
			return nil, err
		}
		n.Type = model.NotificationType(ntype)
		n.StoryID = storyID.String
		n.Read = read == 1
		n.CreatedAt = time.Unix(created, 0).UTC()
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?
`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0
`, userID)
	return err
}

// ---- Discussions ----

const discussionColumns = `d.id, d.author_id, p.username, d.title, d.category, d.content_html, d.upvotes, d.downvotes, d.created_at`

func (s *Store) CreateDiscussion(ctx context.Context, d *model.Discussion) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO discussions (id, author_id, title, category, content_html, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`, d.ID, d.AuthorID, d.Title, d.Category, d.ContentHTML, d.CreatedAt.Unix())
	return err
}

func (s *Store) GetDiscussion(ctx context.Context, id string) (model.Discussion, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+discussionColumns+`
FROM discussions d
LEFT JOIN profiles p ON p.id = d.author_id
WHERE d.id = ?
LIMIT 1
`, id)
	return scanDiscussion(row)
}

func (s *Store) ListDiscussions(ctx context.Context, opts store.DiscussionListOpts) ([]model.Discussion, error) {
	query := `
SELECT ` + discussionColumns + `
FROM discussions d
LEFT JOIN profiles p ON p.id = d.author_id
`
	var args []any
	if opts.Category != "" {
		query += `WHERE d.category = ?
`
		args = append(args, opts.Category)
	}
	query += `ORDER BY d.created_at DESC, d.id DESC`
	if opts.Limit > 0 {
		query += `
LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discussions []model.Discussion
	for rows.Next() {
		d, err := scanDiscussion(rows)
		if err != nil {
			return nil, err
		}
		discussions = append(discussions, d)
	}
	return discussions, rows.Err()
}

func scanDiscussion(scanner interface{ Scan(dest ...any) error }) (model.Discussion, error) {
	var d model.Discussion
	var username sql.NullString
	var created int64
	if err := scanner.Scan(&d.ID, &d.AuthorID, &username, &d.Title, &d.Category, &d.ContentHTML, &d.Upvotes, &d.Downvotes, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Discussion{}, store.ErrNotFound
		}
		return model.Discussion{}, err
	}
	d.AuthorUsername = username.String
	d.CreatedAt = time.Unix(created, 0).UTC()
	return d, nil
}

func (s *Store) CreateDiscussionReply(ctx context.Context, reply *model.DiscussionReply) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO discussion_replies (id, discussion_id, author_id, content_html, created_at)
VALUES (?, ?, ?, ?, ?)
`, reply.ID, reply.DiscussionID, reply.AuthorID, reply.ContentHTML, reply.CreatedAt.Unix())
	return err
}

func (s *Store) ListDiscussionReplies(ctx context.Context, discussionID string) ([]model.DiscussionReply, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT dr.id, dr.discussion_id, dr.author_id, p.username, dr.content_html, dr.created_at
FROM discussion_replies dr
LEFT JOIN profiles p ON p.id = dr.author_id
WHERE dr.discussion_id = ?
ORDER BY dr.created_at ASC, dr.id ASC
`, discussionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replies []model.DiscussionReply
	for rows.Next() {
		var r model.DiscussionReply
		var username sql.NullString
		var created int64
		if err := rows.Scan(&r.ID, &r.DiscussionID, &r.AuthorID, &username, &r.ContentHTML, &created); err != nil {
			return nil, err
		}
		r.AuthorUsername = username.String
		r.CreatedAt = time.Unix(created, 0).UTC()
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

// ---- Site stats ----

func (s *Store) GetSiteStats(ctx context.Context) (model.SiteStats, error) {
	var stats model.SiteStats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`)
	if err := row.Scan(&stats.Profiles); err != nil {
		return stats, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stories`)
	if err := row.Scan(&stats.Stories); err != nil {
		return stats, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ravens`)
	if err := row.Scan(&stats.Ravens); err != nil {
		return stats, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM discussions`)
	if err := row.Scan(&stats.Discussions); err != nil {
		return stats, err
	}
	return stats, nil
}

// ---- Helpers ----

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
