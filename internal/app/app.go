package app

import (
	"context"
	"fmt"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/feed"
	"github.com/scribe-tui/scribe/internal/session"
	"github.com/scribe-tui/scribe/internal/storage"
)

type BlogClient interface {
	Register(ctx context.Context, username, email, password string) (blogapi.User, error)
	Login(ctx context.Context, username, password string) (blogapi.TokenPair, error)
	PublicFeed(ctx context.Context) ([]blogapi.Post, error)
	Feed(ctx context.Context) ([]blogapi.Post, error)
	CreatePost(ctx context.Context, draft blogapi.PostDraft) (blogapi.Post, error)
	UpdatePost(ctx context.Context, postID string, draft blogapi.PostDraft) (blogapi.Post, error)
	DeletePost(ctx context.Context, postID string) error
	ListComments(ctx context.Context, postID string) ([]blogapi.Comment, error)
	CreateComment(ctx context.Context, postID, text string) (blogapi.Comment, error)
	FollowUser(ctx context.Context, username string) error
	RequestAccess(ctx context.Context, postID string) (blogapi.AccessRequest, error)
	ListMyPostsRequests(ctx context.Context) ([]blogapi.AccessRequest, error)
	GrantAccess(ctx context.Context, requestID string) error
	RejectAccess(ctx context.Context, requestID string) error
}

type Repository interface {
	SavePosts(ctx context.Context, posts []blogapi.Post) error
	ListPosts(ctx context.Context) ([]blogapi.Post, error)
	LoadUIPreferences(ctx context.Context) (storage.UIPreferences, error)
	SaveUIPreferences(ctx context.Context, prefs storage.UIPreferences) error
}

// Service glues the API client, the local cache, and the session. Every
// mutating operation is pessimistic: local state changes only after the
// server confirmed, and reads reconcile from a single source of truth.
type Service struct {
	client  BlogClient
	repo    Repository
	session *session.Session
}

func NewService(client BlogClient, repo Repository, sess *session.Session) *Service {
	return &Service{client: client, repo: repo, session: sess}
}

func (s *Service) Viewer() feed.Viewer {
	return feed.Viewer{
		Username:      s.session.Username(),
		Authenticated: s.session.Authenticated(),
	}
}

// Refresh fetches the feed appropriate for the viewer (personalized when
// authenticated, public otherwise), normalizes and sorts it newest first,
// and replaces the local cache with the result.
func (s *Service) Refresh(ctx context.Context) ([]blogapi.Post, error) {
	var posts []blogapi.Post
	var err error
	if s.session.Authenticated() {
		posts, err = s.client.Feed(ctx)
	} else {
		posts, err = s.client.PublicFeed(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	feed.Normalize(posts)
	feed.Sort(posts)

	if err := s.repo.SavePosts(ctx, posts); err != nil {
		return nil, fmt.Errorf("save feed to cache: %w", err)
	}

	cached, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed from cache: %w", err)
	}
	return cached, nil
}

func (s *Service) ListCached(ctx context.Context) ([]blogapi.Post, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed from cache: %w", err)
	}
	return posts, nil
}

func (s *Service) Register(ctx context.Context, username, email, password string) (blogapi.User, error) {
	return s.client.Register(ctx, username, email, password)
}

// Login exchanges credentials for tokens and activates the session.
func (s *Service) Login(ctx context.Context, username, password string) error {
	pair, err := s.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.session.Login(ctx, username, pair.AccessToken, pair.RefreshToken); err != nil {
		return err
	}
	return nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

// AddComment posts a comment and returns the server's created payload. The
// caller prepends it locally only on success, so failed calls keep the
// typed text around for retry.
func (s *Service) AddComment(ctx context.Context, postID, text string) (blogapi.Comment, error) {
	if !s.session.Authenticated() {
		return blogapi.Comment{}, session.ErrNotAuthenticated
	}
	return s.client.CreateComment(ctx, postID, text)
}

func (s *Service) ListComments(ctx context.Context, postID string) ([]blogapi.Comment, error) {
	return s.client.ListComments(ctx, postID)
}

// RequestAccess asks for a private post. The authentication check happens
// here, before any network traffic; in-flight deduplication per post is
// the server's concern.
func (s *Service) RequestAccess(ctx context.Context, postID string) (blogapi.AccessRequest, error) {
	if !s.session.Authenticated() {
		return blogapi.AccessRequest{}, session.ErrNotAuthenticated
	}
	return s.client.RequestAccess(ctx, postID)
}

// Subscribe follows an author, then reloads the whole feed: is_subscribed
// is derived per post server-side, so local guessing would drift.
func (s *Service) Subscribe(ctx context.Context, author string) ([]blogapi.Post, error) {
	if !s.session.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if err := s.client.FollowUser(ctx, author); err != nil {
		return nil, err
	}
	return s.Refresh(ctx)
}

func (s *Service) CreatePost(ctx context.Context, draft blogapi.PostDraft) ([]blogapi.Post, error) {
	if !s.session.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if _, err := s.client.CreatePost(ctx, draft); err != nil {
		return nil, err
	}
	return s.Refresh(ctx)
}

func (s *Service) UpdatePost(ctx context.Context, postID string, draft blogapi.PostDraft) ([]blogapi.Post, error) {
	if !s.session.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if _, err := s.client.UpdatePost(ctx, postID, draft); err != nil {
		return nil, err
	}
	return s.Refresh(ctx)
}

func (s *Service) DeletePost(ctx context.Context, postID string) ([]blogapi.Post, error) {
	if !s.session.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if err := s.client.DeletePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.Refresh(ctx)
}

// PendingAccessRequests returns the moderation queue for the viewer's own
// posts, pending entries only.
func (s *Service) PendingAccessRequests(ctx context.Context) ([]blogapi.AccessRequest, error) {
	if !s.session.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	requests, err := s.client.ListMyPostsRequests(ctx)
	if err != nil {
		return nil, err
	}
	return feed.PendingRequests(requests), nil
}

// GrantAccess approves a request and refetches the queue rather than
// removing the row locally, trading a round trip for a display that always
// matches server truth.
func (s *Service) GrantAccess(ctx context.Context, requestID string) ([]blogapi.AccessRequest, error) {
	if !s.session.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if err := s.client.GrantAccess(ctx, requestID); err != nil {
		return nil, err
	}
	return s.PendingAccessRequests(ctx)
}

// RejectAccess declines a request; same refetch discipline as GrantAccess.
func (s *Service) RejectAccess(ctx context.Context, requestID string) ([]blogapi.AccessRequest, error) {
	if !s.session.Authenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if err := s.client.RejectAccess(ctx, requestID); err != nil {
		return nil, err
	}
	return s.PendingAccessRequests(ctx)
}

func (s *Service) LoadUIPreferences(ctx context.Context) (storage.UIPreferences, error) {
	return s.repo.LoadUIPreferences(ctx)
}

func (s *Service) SaveUIPreferences(ctx context.Context, prefs storage.UIPreferences) error {
	return s.repo.SaveUIPreferences(ctx, prefs)
}
