package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/session"
)

// Repository caches the last fetched feed so startup can render instantly,
// and persists the session record and UI preferences.
type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS posts (
  id TEXT PRIMARY KEY,
  author TEXT NOT NULL,
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  is_public INTEGER NOT NULL,
  tags TEXT NOT NULL,
  created_at TEXT NOT NULL,
  access_status TEXT NOT NULL,
  is_subscribed INTEGER NOT NULL,
  comments TEXT NOT NULL,
  latest_comment TEXT,
  position INTEGER NOT NULL,
  fetched_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS session (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  username TEXT NOT NULL,
  access_token TEXT NOT NULL,
  refresh_token TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ui_preferences (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  compact INTEGER NOT NULL,
  relative_time INTEGER NOT NULL,
  show_numbers INTEGER NOT NULL
);
`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *Repository) CheckWritable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS write_probe (id INTEGER)`); err != nil {
		return fmt.Errorf("write probe: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DROP TABLE write_probe`); err != nil {
		return fmt.Errorf("drop write probe: %w", err)
	}
	return nil
}

// SavePosts replaces the cached feed with the given list, preserving order
// through the position column so ties on created_at stay deterministic.
func (r *Repository) SavePosts(ctx context.Context, posts []blogapi.Post) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("clear cached posts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO posts (id, author, title, content, is_public, tags, created_at, access_status, is_subscribed, comments, latest_comment, position, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return fmt.Errorf("prepare save statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, post := range posts {
		tags, err := json.Marshal(post.Tags)
		if err != nil {
			return fmt.Errorf("encode tags for post %s: %w", post.ID, err)
		}
		comments, err := json.Marshal(post.Comments)
		if err != nil {
			return fmt.Errorf("encode comments for post %s: %w", post.ID, err)
		}
		var latest sql.NullString
		if post.LatestComment != nil {
			encoded, err := json.Marshal(post.LatestComment)
			if err != nil {
				return fmt.Errorf("encode latest comment for post %s: %w", post.ID, err)
			}
			latest = sql.NullString{String: string(encoded), Valid: true}
		}
		_, err = stmt.ExecContext(
			ctx,
			post.ID,
			post.Author,
			post.Title,
			post.Content,
			boolToInt(post.IsPublic),
			string(tags),
			post.CreatedAt.UTC().Format(time.RFC3339Nano),
			string(post.AccessStatus),
			boolToInt(post.IsSubscribed),
			string(comments),
			latest,
			i,
			now,
		)
		if err != nil {
			return fmt.Errorf("save post %s: %w", post.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) ListPosts(ctx context.Context) ([]blogapi.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, author, title, content, is_public, tags, created_at, access_status, is_subscribed, comments, latest_comment
FROM posts
ORDER BY position ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]blogapi.Post, 0, 32)
	for rows.Next() {
		var post blogapi.Post
		var isPublic, isSubscribed int
		var tags, comments, createdAt, accessStatus string
		var latest sql.NullString
		if err := rows.Scan(
			&post.ID,
			&post.Author,
			&post.Title,
			&post.Content,
			&isPublic,
			&tags,
			&createdAt,
			&accessStatus,
			&isSubscribed,
			&comments,
			&latest,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		post.IsPublic = isPublic != 0
		post.IsSubscribed = isSubscribed != 0
		post.AccessStatus = blogapi.AccessStatus(accessStatus)
		if err := json.Unmarshal([]byte(tags), &post.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for post %s: %w", post.ID, err)
		}
		if err := json.Unmarshal([]byte(comments), &post.Comments); err != nil {
			return nil, fmt.Errorf("decode comments for post %s: %w", post.ID, err)
		}
		if latest.Valid {
			var comment blogapi.Comment
			if err := json.Unmarshal([]byte(latest.String), &comment); err != nil {
				return nil, fmt.Errorf("decode latest comment for post %s: %w", post.ID, err)
			}
			post.LatestComment = &comment
		}
		post.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse post created_at %q: %w", createdAt, err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return posts, nil
}

// LoadSession implements session.Store.
func (r *Repository) LoadSession(ctx context.Context) (session.Record, bool, error) {
	var record session.Record
	err := r.db.QueryRowContext(ctx, `
SELECT username, access_token, refresh_token FROM session WHERE id = 1
`).Scan(&record.Username, &record.AccessToken, &record.RefreshToken)
	if err == sql.ErrNoRows {
		return session.Record{}, false, nil
	}
	if err != nil {
		return session.Record{}, false, fmt.Errorf("query session: %w", err)
	}
	return record, true, nil
}

// SaveSession implements session.Store.
func (r *Repository) SaveSession(ctx context.Context, record session.Record) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO session (id, username, access_token, refresh_token)
VALUES (1, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  username=excluded.username,
  access_token=excluded.access_token,
  refresh_token=excluded.refresh_token
`, record.Username, record.AccessToken, record.RefreshToken)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearSession implements session.Store.
func (r *Repository) ClearSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

type UIPreferences struct {
	Compact      bool
	RelativeTime bool
	ShowNumbers  bool
}

func (r *Repository) LoadUIPreferences(ctx context.Context) (UIPreferences, error) {
	var compact, relativeTime, showNumbers int
	err := r.db.QueryRowContext(ctx, `
SELECT compact, relative_time, show_numbers FROM ui_preferences WHERE id = 1
`).Scan(&compact, &relativeTime, &showNumbers)
	if err == sql.ErrNoRows {
		return UIPreferences{}, nil
	}
	if err != nil {
		return UIPreferences{}, fmt.Errorf("query preferences: %w", err)
	}
	return UIPreferences{
		Compact:      compact != 0,
		RelativeTime: relativeTime != 0,
		ShowNumbers:  showNumbers != 0,
	}, nil
}

func (r *Repository) SaveUIPreferences(ctx context.Context, prefs UIPreferences) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ui_preferences (id, compact, relative_time, show_numbers)
VALUES (1, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  compact=excluded.compact,
  relative_time=excluded.relative_time,
  show_numbers=excluded.show_numbers
`, boolToInt(prefs.Compact), boolToInt(prefs.RelativeTime), boolToInt(prefs.ShowNumbers))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
