package blogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSessionInvalid reports that the access token expired and the refresh
// token could not rescue it. The token source has already been invalidated
// when this is returned; the caller must send the user back to login.
var ErrSessionInvalid = errors.New("session invalid: token refresh failed")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Detail)
}

// TokenSource supplies bearer credentials for outgoing requests and absorbs
// token updates produced by the refresh path. An all-empty source means the
// viewer is anonymous.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	StoreAccessToken(token string) error
	Invalidate() error
}

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client

	// refreshMu serializes token refresh so that simultaneous 401s produce
	// a single refresh call; latecomers reuse the fresh token.
	refreshMu sync.Mutex

	nowFn func() time.Time
}

func NewClient(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    httpClient,
		nowFn:   time.Now,
	}
}

func (c *Client) Register(ctx context.Context, username, email, password string) (User, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return User{}, fmt.Errorf("encode register payload: %w", err)
	}

	var user User
	if err := c.send(ctx, http.MethodPost, "/register", payload, "application/json", &user); err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// Login exchanges credentials for a token pair. The endpoint is
// form-encoded, unlike the rest of the API.
func (c *Client) Login(ctx context.Context, username, password string) (TokenPair, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var pair TokenPair
	err := c.send(ctx, http.MethodPost, "/token", []byte(form.Encode()), "application/x-www-form-urlencoded", &pair)
	if err != nil {
		return TokenPair{}, fmt.Errorf("login: %w", err)
	}
	return pair, nil
}

func (c *Client) PublicFeed(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.send(ctx, http.MethodGet, "/posts/public/feed", nil, "", &posts); err != nil {
		return nil, fmt.Errorf("fetch public feed: %w", err)
	}
	return posts, nil
}

func (c *Client) Feed(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.send(ctx, http.MethodGet, "/posts/feed", nil, "", &posts); err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, draft PostDraft) (Post, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return Post{}, fmt.Errorf("encode post payload: %w", err)
	}
	var post Post
	if err := c.send(ctx, http.MethodPost, "/posts/", payload, "application/json", &post); err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (c *Client) UpdatePost(ctx context.Context, postID string, draft PostDraft) (Post, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return Post{}, fmt.Errorf("encode post payload: %w", err)
	}
	var post Post
	if err := c.send(ctx, http.MethodPut, "/posts/"+url.PathEscape(postID), payload, "application/json", &post); err != nil {
		return Post{}, fmt.Errorf("update post %s: %w", postID, err)
	}
	return post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	if err := c.send(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID), nil, "", nil); err != nil {
		return fmt.Errorf("delete post %s: %w", postID, err)
	}
	return nil
}

func (c *Client) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	path := "/posts/" + url.PathEscape(postID) + "/comments/"
	if err := c.send(ctx, http.MethodGet, path, nil, "", &comments); err != nil {
		return nil, fmt.Errorf("fetch comments for post %s: %w", postID, err)
	}
	return comments, nil
}

// CreateComment posts a comment. The server takes the body text as a query
// parameter, not a request body.
func (c *Client) CreateComment(ctx context.Context, postID, text string) (Comment, error) {
	q := make(url.Values)
	q.Set("content", text)
	path := "/posts/" + url.PathEscape(postID) + "/comments/?" + q.Encode()

	var comment Comment
	if err := c.send(ctx, http.MethodPost, path, nil, "", &comment); err != nil {
		return Comment{}, fmt.Errorf("create comment on post %s: %w", postID, err)
	}
	return comment, nil
}

func (c *Client) FollowUser(ctx context.Context, username string) error {
	if err := c.send(ctx, http.MethodPost, "/users/follow/"+url.PathEscape(username), nil, "", nil); err != nil {
		return fmt.Errorf("follow %s: %w", username, err)
	}
	return nil
}

func (c *Client) RequestAccess(ctx context.Context, postID string) (AccessRequest, error) {
	var request AccessRequest
	if err := c.send(ctx, http.MethodPost, "/posts/access/request/"+url.PathEscape(postID), nil, "", &request); err != nil {
		return AccessRequest{}, fmt.Errorf("request access to post %s: %w", postID, err)
	}
	return request, nil
}

// ListMyPostsRequests returns every access request targeting the viewer's
// own posts, resolved and pending alike.
func (c *Client) ListMyPostsRequests(ctx context.Context) ([]AccessRequest, error) {
	var requests []AccessRequest
	if err := c.send(ctx, http.MethodGet, "/posts/access/my_posts_requests", nil, "", &requests); err != nil {
		return nil, fmt.Errorf("fetch access requests: %w", err)
	}
	return requests, nil
}

func (c *Client) GrantAccess(ctx context.Context, requestID string) error {
	if err := c.send(ctx, http.MethodPost, "/posts/access/grant/"+url.PathEscape(requestID), nil, "", nil); err != nil {
		return fmt.Errorf("grant access request %s: %w", requestID, err)
	}
	return nil
}

func (c *Client) RejectAccess(ctx context.Context, requestID string) error {
	if err := c.send(ctx, http.MethodPost, "/posts/access/reject/"+url.PathEscape(requestID), nil, "", nil); err != nil {
		return fmt.Errorf("reject access request %s: %w", requestID, err)
	}
	return nil
}

// send issues one request and, on a 401, retries exactly once after
// refreshing the access token. A refresh failure invalidates the token
// source and surfaces as ErrSessionInvalid.
func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	token := c.currentAccessToken(ctx)

	resp, err := c.doOnce(ctx, method, path, body, contentType, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil && c.tokens.RefreshToken() != "" {
		drainAndClose(resp.Body)
		fresh, err := c.refreshAccessToken(ctx, token)
		if err != nil {
			if invErr := c.tokens.Invalidate(); invErr != nil {
				return fmt.Errorf("%w (session teardown also failed: %v)", ErrSessionInvalid, invErr)
			}
			return ErrSessionInvalid
		}
		resp, err = c.doOnce(ctx, method, path, body, contentType, fresh)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		drainAndClose(resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte, contentType, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	return resp, nil
}

// currentAccessToken returns the token to attach, refreshing proactively
// when the token is about to expire so the common case avoids a 401 round
// trip. A failed proactive refresh falls through to the reactive path.
func (c *Client) currentAccessToken(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token := c.tokens.AccessToken()
	if token == "" {
		return ""
	}
	if tokenExpiresWithin(token, c.nowFn(), 30*time.Second) && c.tokens.RefreshToken() != "" {
		if fresh, err := c.refreshAccessToken(ctx, token); err == nil {
			return fresh
		}
	}
	return token
}

// refreshAccessToken exchanges the refresh token for a new access token.
// stale is the access token the caller saw fail; if another caller already
// refreshed past it, the stored token is reused without a second call.
func (c *Client) refreshAccessToken(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current := c.tokens.AccessToken(); current != "" && current != stale {
		return current, nil
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": c.tokens.RefreshToken()})
	if err != nil {
		return "", fmt.Errorf("encode refresh payload: %w", err)
	}

	// Refresh never rides the retry path: a 401 here is terminal.
	resp, err := c.doOnce(ctx, http.MethodPost, "/refresh-token", payload, "application/json", "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if refreshed.AccessToken == "" {
		return "", errors.New("refresh response contained no access token")
	}
	if err := c.tokens.StoreAccessToken(refreshed.AccessToken); err != nil {
		return "", fmt.Errorf("store refreshed token: %w", err)
	}
	return refreshed.AccessToken, nil
}

func tokenExpiresWithin(token string, now time.Time, window time.Duration) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now.Add(window))
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		apiErr.Detail = detail.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(body))
	}
	return apiErr
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
