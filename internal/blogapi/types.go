package blogapi

import (
	"encoding/json"
	"fmt"
	"time"
)

// AccessStatus tracks the viewer's standing on an access-gated post. It is
// only meaningful when the post is private; public posts are always readable.
type AccessStatus string

const (
	AccessNone     AccessStatus = ""
	AccessPending  AccessStatus = "pending"
	AccessApproved AccessStatus = "approved"
	AccessRejected AccessStatus = "rejected"
)

// User is the subset of account fields returned by registration.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenPair is the credential pair issued by the login endpoint.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Comment is the canonical comment shape. The server emits two field-name
// variants (author vs author_username, text vs content); both collapse into
// this struct during decoding so nothing downstream branches on wire names.
type Comment struct {
	ID        string
	PostID    string
	Author    string
	Text      string
	CreatedAt time.Time
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             string  `json:"id"`
		PostID         string  `json:"post_id"`
		Author         string  `json:"author"`
		AuthorUsername string  `json:"author_username"`
		Text           string  `json:"text"`
		Content        string  `json:"content"`
		CreatedAt      apiTime `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ID = raw.ID
	c.PostID = raw.PostID
	c.Author = raw.Author
	if c.Author == "" {
		c.Author = raw.AuthorUsername
	}
	c.Text = raw.Text
	if c.Text == "" {
		c.Text = raw.Content
	}
	c.CreatedAt = time.Time(raw.CreatedAt)
	return nil
}

func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string  `json:"id"`
		PostID    string  `json:"post_id,omitempty"`
		Author    string  `json:"author"`
		Text      string  `json:"text"`
		CreatedAt apiTime `json:"created_at"`
	}{c.ID, c.PostID, c.Author, c.Text, apiTime(c.CreatedAt)})
}

// Post is a feed entry. Comments is the full newest-first thread when the
// server includes it; LatestComment is a denormalized one-comment preview
// and is independent of Comments.
type Post struct {
	ID            string       `json:"id"`
	Author        string       `json:"author"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	IsPublic      bool         `json:"is_public"`
	Tags          []string     `json:"tags"`
	CreatedAt     time.Time    `json:"-"`
	AccessStatus  AccessStatus `json:"access_status"`
	IsSubscribed  bool         `json:"is_subscribed"`
	Comments      []Comment    `json:"comments"`
	LatestComment *Comment     `json:"latest_comment"`
}

func (p *Post) UnmarshalJSON(data []byte) error {
	type alias Post
	var raw struct {
		alias
		CreatedAt apiTime `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Post(raw.alias)
	p.CreatedAt = time.Time(raw.CreatedAt)
	return nil
}

func (p Post) MarshalJSON() ([]byte, error) {
	type alias Post
	return json.Marshal(struct {
		alias
		CreatedAt apiTime `json:"created_at"`
	}{alias(p), apiTime(p.CreatedAt)})
}

// PostDraft is the payload for creating or updating a post.
type PostDraft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	IsPublic bool     `json:"is_public"`
	Tags     []string `json:"tags"`
}

// AccessRequest is a non-author's request to read a private post. It is
// owned by the post's author until resolved and is never deleted.
type AccessRequest struct {
	ID        string       `json:"id"`
	PostID    string       `json:"post_id"`
	Requester string       `json:"requester_username"`
	Status    AccessStatus `json:"status"`
	CreatedAt time.Time    `json:"-"`
}

func (r *AccessRequest) UnmarshalJSON(data []byte) error {
	type alias AccessRequest
	var raw struct {
		alias
		CreatedAt apiTime `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = AccessRequest(raw.alias)
	r.CreatedAt = time.Time(raw.CreatedAt)
	return nil
}

// apiTime accepts both RFC 3339 and the server's zone-less datetime form.
// Zone-less values are taken as UTC.
type apiTime time.Time

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = apiTime(time.Time{})
		return nil
	}
	for _, layout := range apiTimeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			*t = apiTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", s)
}

func (t apiTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339Nano))
}
