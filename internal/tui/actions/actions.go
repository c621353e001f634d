package actions

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/session"
)

type Service interface {
	Refresh(ctx context.Context) ([]blogapi.Post, error)
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, email, password string) (blogapi.User, error)
	Logout(ctx context.Context) error
	AddComment(ctx context.Context, postID, text string) (blogapi.Comment, error)
	ListComments(ctx context.Context, postID string) ([]blogapi.Comment, error)
	RequestAccess(ctx context.Context, postID string) (blogapi.AccessRequest, error)
	Subscribe(ctx context.Context, author string) ([]blogapi.Post, error)
	CreatePost(ctx context.Context, draft blogapi.PostDraft) ([]blogapi.Post, error)
	UpdatePost(ctx context.Context, postID string, draft blogapi.PostDraft) ([]blogapi.Post, error)
	DeletePost(ctx context.Context, postID string) ([]blogapi.Post, error)
	PendingAccessRequests(ctx context.Context) ([]blogapi.AccessRequest, error)
	GrantAccess(ctx context.Context, requestID string) ([]blogapi.AccessRequest, error)
	RejectAccess(ctx context.Context, requestID string) ([]blogapi.AccessRequest, error)
}

// FeedLoadedMsg carries a freshly loaded feed. Gen is the request
// generation the model stamped when issuing the load; stale generations
// are discarded instead of overwriting newer state.
type FeedLoadedMsg struct {
	Gen      int
	Posts    []blogapi.Post
	Duration time.Duration
	Source   string
	Status   string
}

type FeedErrorMsg struct {
	Gen      int
	Err      error
	Duration time.Duration
	Source   string
}

type LoginSuccessMsg struct {
	Username string
}

type LoginErrorMsg struct {
	Err error
}

type RegisterSuccessMsg struct {
	User blogapi.User
}

type RegisterErrorMsg struct {
	Err error
}

type LogoutMsg struct {
	Err error
}

type CommentAddedMsg struct {
	PostID  string
	Comment blogapi.Comment
}

type CommentsLoadedMsg struct {
	PostID   string
	Comments []blogapi.Comment
}

type AccessRequestedMsg struct {
	PostID string
	Status blogapi.AccessStatus
}

type RequestsLoadedMsg struct {
	Requests []blogapi.AccessRequest
	Status   string
}

// AuthRequiredMsg means the action needs a logged-in viewer; the model
// opens the login prompt and nothing was sent to the server.
type AuthRequiredMsg struct{}

// SessionExpiredMsg means a token refresh failed mid-request; the session
// is already torn down and the viewer is anonymous again.
type SessionExpiredMsg struct{}

type ActionErrorMsg struct {
	Err error
}

type ClearStatusMsg struct {
	ID int
}

type PreferenceSaveErrorMsg struct {
	Err error
}

// wrapErr converts the two recoverable auth conditions into their own
// messages so the model can react without string matching.
func wrapErr(err error, fallback func(error) tea.Msg) tea.Msg {
	if errors.Is(err, session.ErrNotAuthenticated) {
		return AuthRequiredMsg{}
	}
	if errors.Is(err, blogapi.ErrSessionInvalid) {
		return SessionExpiredMsg{}
	}
	return fallback(err)
}

func RefreshCmd(service Service, gen int, source string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		start := time.Now()

		posts, err := service.Refresh(ctx)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg {
				return FeedErrorMsg{Gen: gen, Err: err, Duration: time.Since(start), Source: source}
			})
		}
		return FeedLoadedMsg{Gen: gen, Posts: posts, Duration: time.Since(start), Source: source}
	}
}

func LoginCmd(service Service, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := service.Login(ctx, username, password); err != nil {
			return LoginErrorMsg{Err: err}
		}
		return LoginSuccessMsg{Username: username}
	}
}

func RegisterCmd(service Service, username, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := service.Register(ctx, username, email, password)
		if err != nil {
			return RegisterErrorMsg{Err: err}
		}
		return RegisterSuccessMsg{User: user}
	}
}

func LogoutCmd(service Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return LogoutMsg{Err: service.Logout(ctx)}
	}
}

func AddCommentCmd(service Service, postID, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		comment, err := service.AddComment(ctx, postID, text)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg { return ActionErrorMsg{Err: err} })
		}
		return CommentAddedMsg{PostID: postID, Comment: comment}
	}
}

func LoadCommentsCmd(service Service, postID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		comments, err := service.ListComments(ctx, postID)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg { return ActionErrorMsg{Err: err} })
		}
		return CommentsLoadedMsg{PostID: postID, Comments: comments}
	}
}

func RequestAccessCmd(service Service, postID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		request, err := service.RequestAccess(ctx, postID)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg { return ActionErrorMsg{Err: err} })
		}
		return AccessRequestedMsg{PostID: postID, Status: request.Status}
	}
}

func SubscribeCmd(service Service, gen int, author string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()
		start := time.Now()

		posts, err := service.Subscribe(ctx, author)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg {
				return FeedErrorMsg{Gen: gen, Err: err, Duration: time.Since(start), Source: "subscribe"}
			})
		}
		return FeedLoadedMsg{
			Gen:      gen,
			Posts:    posts,
			Duration: time.Since(start),
			Source:   "subscribe",
			Status:   "Subscribed to " + author,
		}
	}
}

func CreatePostCmd(service Service, gen int, draft blogapi.PostDraft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()
		start := time.Now()

		posts, err := service.CreatePost(ctx, draft)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg {
				return FeedErrorMsg{Gen: gen, Err: err, Duration: time.Since(start), Source: "create"}
			})
		}
		return FeedLoadedMsg{Gen: gen, Posts: posts, Duration: time.Since(start), Source: "create", Status: "Post published"}
	}
}

func UpdatePostCmd(service Service, gen int, postID string, draft blogapi.PostDraft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()
		start := time.Now()

		posts, err := service.UpdatePost(ctx, postID, draft)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg {
				return FeedErrorMsg{Gen: gen, Err: err, Duration: time.Since(start), Source: "update"}
			})
		}
		return FeedLoadedMsg{Gen: gen, Posts: posts, Duration: time.Since(start), Source: "update", Status: "Post updated"}
	}
}

func DeletePostCmd(service Service, gen int, postID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()
		start := time.Now()

		posts, err := service.DeletePost(ctx, postID)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg {
				return FeedErrorMsg{Gen: gen, Err: err, Duration: time.Since(start), Source: "delete"}
			})
		}
		return FeedLoadedMsg{Gen: gen, Posts: posts, Duration: time.Since(start), Source: "delete", Status: "Post deleted"}
	}
}

func LoadRequestsCmd(service Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		requests, err := service.PendingAccessRequests(ctx)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg { return ActionErrorMsg{Err: err} })
		}
		return RequestsLoadedMsg{Requests: requests}
	}
}

func GrantAccessCmd(service Service, requestID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()

		requests, err := service.GrantAccess(ctx, requestID)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg { return ActionErrorMsg{Err: err} })
		}
		return RequestsLoadedMsg{Requests: requests, Status: "Access granted"}
	}
}

func RejectAccessCmd(service Service, requestID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()

		requests, err := service.RejectAccess(ctx, requestID)
		if err != nil {
			return wrapErr(err, func(err error) tea.Msg { return ActionErrorMsg{Err: err} })
		}
		return RequestsLoadedMsg{Requests: requests, Status: "Access rejected"}
	}
}

func ClearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}
