package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/feed"
	"github.com/scribe-tui/scribe/internal/tui/actions"
	"github.com/scribe-tui/scribe/internal/tui/facets"
	tuistate "github.com/scribe-tui/scribe/internal/tui/state"
	tuitheme "github.com/scribe-tui/scribe/internal/tui/theme"
	"github.com/scribe-tui/scribe/internal/tui/view"
)

type mode int

const (
	modeList mode = iota
	modeDetail
	modeCompose
	modeLogin
	modeModeration
)

func (m mode) String() string {
	switch m {
	case modeDetail:
		return "detail"
	case modeCompose:
		return "compose"
	case modeLogin:
		return "login"
	case modeModeration:
		return "moderation"
	default:
		return "list"
	}
}

type Preferences struct {
	Compact      bool
	RelativeTime bool
	ShowNumbers  bool
}

type Model struct {
	service actions.Service
	theme   tuitheme.Theme

	viewer    feed.Viewer
	posts     []blogapi.Post
	selection feed.Selection

	// Derived from posts + selection; rebuilt by reapply.
	filtered []blogapi.Post
	allTags  []string
	authors  []string
	counts   feed.Counts
	rows     []facets.Row

	collapsedSections map[string]bool
	cursor            int
	selectedPostID    string

	// feedGen stamps every feed-replacing request; responses carrying an
	// older generation are dropped so a slow reload cannot clobber the
	// result of a later one.
	feedGen int

	mode     mode
	showHelp bool

	detailTop      int
	commentInput   textinput.Model
	commentFocused bool

	loginInputs  []textinput.Model
	loginFocus   int
	registerMode bool
	loginErr     string

	composeTitle   textinput.Model
	composeTags    textinput.Model
	composeContent textinput.Model
	composeFocus   int
	composePublic  bool
	editingPostID  string

	requests      []blogapi.AccessRequest
	requestCursor int

	pendingDeleteID string

	compact      bool
	relativeTime bool
	showNumbers  bool

	width   int
	height  int
	loading bool
	spin    spinner.Model
	status  string
	statusID int
	err     error

	nowFn             func() time.Time
	savePreferencesFn func(Preferences) error

	cacheLoadDuration      time.Duration
	cacheLoadedEntries     int
	initialRefreshDone     bool
	initialRefreshFailed   bool
	initialRefreshDuration time.Duration
}

func NewModel(service actions.Service, posts []blogapi.Post, viewer feed.Viewer) Model {
	seed := append([]blogapi.Post(nil), posts...)
	feed.Normalize(seed)
	feed.Sort(seed)

	commentInput := textinput.New()
	commentInput.Placeholder = "write a comment"
	commentInput.CharLimit = 500

	username := textinput.New()
	username.Placeholder = "username"
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	email := textinput.New()
	email.Placeholder = "email (register only)"

	composeTitle := textinput.New()
	composeTitle.Placeholder = "title"
	composeTags := textinput.New()
	composeTags.Placeholder = "tags, comma separated"
	composeContent := textinput.New()
	composeContent.Placeholder = "content"
	composeContent.CharLimit = 4000

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		service:           service,
		theme:             tuitheme.Default(),
		viewer:            viewer,
		posts:             seed,
		selection:         feed.NewSelection(),
		collapsedSections: make(map[string]bool),
		commentInput:      commentInput,
		loginInputs:       []textinput.Model{username, password, email},
		composeTitle:      composeTitle,
		composeTags:       composeTags,
		composeContent:    composeContent,
		composePublic:     true,
		feedGen:           1,
		spin:              spin,
		nowFn:             time.Now,
	}
	m.reapply()
	m.cursor = facets.FirstPostRow(m.rows)
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.service != nil {
		cmds = append(cmds, actions.RefreshCmd(m.service, m.feedGen, "init"))
	}
	return tea.Batch(cmds...)
}

// reapply recomputes every derived view of the feed: the filtered subset,
// the facet values, the counts (against the filtered set), and the row
// layout.
func (m *Model) reapply() {
	m.filtered = feed.Filter(m.posts, m.selection, m.viewer)
	m.allTags = feed.Tags(m.posts)
	m.authors = feed.Authors(m.posts)
	m.counts = feed.CountFacets(m.filtered, m.allTags, m.authors, m.viewer)
	m.rows = facets.BuildRows(m.filtered, m.allTags, m.authors, m.selection, m.counts, facets.BuildOptions{
		CollapsedSections: m.collapsedSections,
	})
	m.clampRowCursor()
}

func (m *Model) clampRowCursor() {
	m.cursor = tuistate.ClampCursor(m.cursor, len(m.rows))
}

func (m *Model) restoreSelection(anchorID string) {
	if anchorID != "" {
		if idx := tuistate.PostIndexByID(m.filtered, anchorID); idx >= 0 {
			if row := facets.PostRowForIndex(m.rows, idx); row >= 0 {
				m.cursor = row
				return
			}
		}
	}
	if m.selectedPostID != "" && tuistate.PostIndexByID(m.filtered, m.selectedPostID) < 0 {
		m.selectedPostID = ""
		if m.mode == modeDetail {
			m.mode = modeList
			m.detailTop = 0
		}
	}
	m.clampRowCursor()
}

func (m Model) anchorPostID() string {
	if m.selectedPostID != "" {
		return m.selectedPostID
	}
	if post, ok := m.currentPost(); ok {
		return post.ID
	}
	return ""
}

func (m Model) currentPost() (blogapi.Post, bool) {
	if len(m.rows) == 0 || m.cursor < 0 || m.cursor >= len(m.rows) {
		return blogapi.Post{}, false
	}
	row := m.rows[m.cursor]
	if row.Kind != facets.RowPost || row.PostIndex >= len(m.filtered) {
		return blogapi.Post{}, false
	}
	return m.filtered[row.PostIndex], true
}

func (m Model) detailPost() (blogapi.Post, bool) {
	if m.selectedPostID == "" {
		return blogapi.Post{}, false
	}
	idx := tuistate.PostIndexByID(m.posts, m.selectedPostID)
	if idx < 0 {
		return blogapi.Post{}, false
	}
	return m.posts[idx], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.handleAsync(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "?" && m.mode != modeLogin && m.mode != modeCompose && !m.commentFocused {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.showHelp {
		switch msg.String() {
		case "esc":
			m.showHelp = false
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.mode {
	case modeLogin:
		return m.handleLoginKey(msg)
	case modeCompose:
		return m.handleComposeKey(msg)
	case modeDetail:
		return m.handleDetailKey(msg)
	case modeModeration:
		return m.handleModerationKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursorBy(-1)
		return m, nil
	case "down", "j":
		m.moveCursorBy(1)
		return m, nil
	case "g":
		m.cursor = 0
		return m, nil
	case "G":
		m.cursor = len(m.rows) - 1
		m.clampRowCursor()
		return m, nil
	case "pgup", "ctrl+b":
		m.moveCursorBy(-tuistate.PageStep(m.height, m.status != ""))
		return m, nil
	case "pgdown", "ctrl+f":
		m.moveCursorBy(tuistate.PageStep(m.height, m.status != ""))
		return m, nil
	case "enter":
		return m.activateCurrentRow()
	case "r":
		return m.refreshFeed("manual")
	case "f":
		return m.followCurrentAuthor()
	case "A":
		return m.requestAccessCurrent()
	case "n":
		return m.openCompose(blogapi.Post{}, false)
	case "e":
		post, ok := m.currentPost()
		if !ok {
			return m, nil
		}
		if post.Author != m.viewer.Username || !m.viewer.Authenticated {
			return m.flashStatus("Only your own posts can be edited")
		}
		return m.openCompose(post, true)
	case "D":
		return m.deleteCurrent()
	case "m":
		if !m.viewer.Authenticated {
			return m.openLogin("Moderation requires login")
		}
		m.mode = modeModeration
		m.loading = true
		m.err = nil
		return m, actions.LoadRequestsCmd(m.service)
	case "L":
		if m.viewer.Authenticated {
			return m.flashStatus("Already logged in as " + m.viewer.Username)
		}
		return m.openLogin("")
	case "O":
		if !m.viewer.Authenticated {
			return m, nil
		}
		m.loading = true
		return m, actions.LogoutCmd(m.service)
	case "a":
		m.selection.Authors = make(map[string]bool)
		m.reapply()
		return m.flashStatus("Author filters cleared")
	case "t":
		m.selection.Tags = make(map[string]bool)
		m.reapply()
		return m.flashStatus("Tag filters cleared")
	case "c":
		m.compact = !m.compact
		m.err = nil
		return m.preferenceToggled("Compact mode", m.compact)
	case "d":
		m.relativeTime = !m.relativeTime
		m.err = nil
		return m.preferenceToggled("Relative time", m.relativeTime)
	case "N":
		m.showNumbers = !m.showNumbers
		m.err = nil
		return m.preferenceToggled("Numbering", m.showNumbers)
	}
	return m, nil
}

// activateCurrentRow is the enter action: sections fold, toggles and
// facets flip the filter selection, posts open the detail view.
func (m Model) activateCurrentRow() (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	row := m.rows[m.cursor]
	switch row.Kind {
	case facets.RowSection:
		m.collapsedSections[row.Label] = !m.collapsedSections[row.Label]
		m.reapply()
		return m, nil
	case facets.RowToggle:
		return m.applyToggle(row.Value)
	case facets.RowTag:
		m.selection.ToggleTag(row.Value)
		m.reapply()
		m.restoreSelection(m.anchorPostID())
		return m, nil
	case facets.RowAuthor:
		m.selection.ToggleAuthor(row.Value)
		m.reapply()
		m.restoreSelection(m.anchorPostID())
		return m, nil
	case facets.RowPost:
		post := m.filtered[row.PostIndex]
		m.selectedPostID = post.ID
		m.mode = modeDetail
		m.detailTop = 0
		m.commentFocused = false
		m.commentInput.Blur()
		// The denormalized preview is not the thread; fetch it in full.
		return m, actions.LoadCommentsCmd(m.service, post.ID)
	}
	return m, nil
}

// applyToggle flips one of the viewer-scoped filters. My-posts and
// subscriptions need an identity, so an anonymous viewer gets the login
// prompt instead.
func (m Model) applyToggle(value string) (tea.Model, tea.Cmd) {
	switch value {
	case facets.ToggleMyPosts:
		if !m.viewer.Authenticated {
			return m.openLogin("Filtering your posts requires login")
		}
		m.selection.OnlyMine = !m.selection.OnlyMine
	case facets.ToggleSubscriptions:
		if !m.viewer.Authenticated {
			return m.openLogin("The subscriptions filter requires login")
		}
		m.selection.OnlySubscriptions = !m.selection.OnlySubscriptions
	case facets.ToggleTagMode:
		m.selection.ToggleMode()
	}
	m.reapply()
	m.restoreSelection(m.anchorPostID())
	return m, nil
}

func (m Model) refreshFeed(source string) (tea.Model, tea.Cmd) {
	if m.service == nil {
		return m, nil
	}
	m.loading = true
	m.status = ""
	m.err = nil
	m.feedGen++
	return m, actions.RefreshCmd(m.service, m.feedGen, source)
}

func (m Model) followCurrentAuthor() (tea.Model, tea.Cmd) {
	var post blogapi.Post
	var ok bool
	if m.mode == modeDetail {
		post, ok = m.detailPost()
	} else {
		post, ok = m.currentPost()
	}
	if !ok {
		return m, nil
	}
	if !m.viewer.Authenticated {
		return m.openLogin("Following an author requires login")
	}
	if post.Author == m.viewer.Username {
		return m.flashStatus("That's you")
	}
	m.loading = true
	m.err = nil
	m.feedGen++
	return m, actions.SubscribeCmd(m.service, m.feedGen, post.Author)
}

func (m Model) requestAccessCurrent() (tea.Model, tea.Cmd) {
	var post blogapi.Post
	var ok bool
	if m.mode == modeDetail {
		post, ok = m.detailPost()
	} else {
		post, ok = m.currentPost()
	}
	if !ok {
		return m, nil
	}
	if !m.viewer.Authenticated {
		return m.openLogin("Requesting access requires login")
	}
	vis := feed.PostVisibility(post, m.viewer)
	if vis.ContentVisible {
		return m.flashStatus("You can already read this post")
	}
	if post.AccessStatus == blogapi.AccessPending {
		return m.flashStatus("Request already pending")
	}
	m.loading = true
	m.err = nil
	return m, actions.RequestAccessCmd(m.service, post.ID)
}

func (m Model) deleteCurrent() (tea.Model, tea.Cmd) {
	post, ok := m.currentPost()
	if !ok {
		return m, nil
	}
	if !m.viewer.Authenticated || post.Author != m.viewer.Username {
		return m.flashStatus("Only your own posts can be deleted")
	}
	if m.pendingDeleteID != post.ID {
		m.pendingDeleteID = post.ID
		return m.flashStatus("Press D again to delete \"" + post.Title + "\"")
	}
	m.pendingDeleteID = ""
	m.loading = true
	m.err = nil
	m.feedGen++
	return m, actions.DeletePostCmd(m.service, m.feedGen, post.ID)
}

func (m Model) openLogin(prompt string) (tea.Model, tea.Cmd) {
	m.mode = modeLogin
	m.registerMode = false
	m.loginErr = ""
	m.loginFocus = 0
	for i := range m.loginInputs {
		m.loginInputs[i].SetValue("")
		m.loginInputs[i].Blur()
	}
	m.loginInputs[0].Focus()
	if prompt != "" {
		m.status = prompt
		m.statusID++
		return m, actions.ClearStatusCmd(m.statusID, 4*time.Second)
	}
	return m, nil
}

func (m Model) openCompose(post blogapi.Post, editing bool) (tea.Model, tea.Cmd) {
	if !m.viewer.Authenticated {
		return m.openLogin("Writing a post requires login")
	}
	m.mode = modeCompose
	m.composeFocus = 0
	m.composeTitle.SetValue(post.Title)
	m.composeTags.SetValue(strings.Join(post.Tags, ", "))
	m.composeContent.SetValue(post.Content)
	m.composePublic = post.IsPublic || !editing
	m.editingPostID = ""
	if editing {
		m.editingPostID = post.ID
		m.composePublic = post.IsPublic
	}
	m.composeTitle.Focus()
	m.composeTags.Blur()
	m.composeContent.Blur()
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeList
		m.loginErr = ""
		return m, nil
	case "ctrl+r":
		m.registerMode = !m.registerMode
		m.loginErr = ""
		return m, nil
	case "tab", "shift+tab", "down", "up":
		fields := 2
		if m.registerMode {
			fields = 3
		}
		delta := 1
		if msg.String() == "shift+tab" || msg.String() == "up" {
			delta = -1
		}
		m.loginFocus = (m.loginFocus + delta + fields) % fields
		for i := range m.loginInputs {
			m.loginInputs[i].Blur()
		}
		m.loginInputs[m.loginFocus].Focus()
		return m, nil
	case "enter":
		username := strings.TrimSpace(m.loginInputs[0].Value())
		password := m.loginInputs[1].Value()
		if username == "" || password == "" {
			m.loginErr = "username and password are required"
			return m, nil
		}
		m.loading = true
		m.loginErr = ""
		if m.registerMode {
			email := strings.TrimSpace(m.loginInputs[2].Value())
			if email == "" {
				m.loading = false
				m.loginErr = "email is required for registration"
				return m, nil
			}
			return m, actions.RegisterCmd(m.service, username, email, password)
		}
		return m, actions.LoginCmd(m.service, username, password)
	}

	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return m, cmd
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeList
		return m, nil
	case "ctrl+p":
		m.composePublic = !m.composePublic
		return m, nil
	case "tab", "shift+tab":
		delta := 1
		if msg.String() == "shift+tab" {
			delta = -1
		}
		m.composeFocus = (m.composeFocus + delta + 3) % 3
		m.composeTitle.Blur()
		m.composeTags.Blur()
		m.composeContent.Blur()
		switch m.composeFocus {
		case 0:
			m.composeTitle.Focus()
		case 1:
			m.composeTags.Focus()
		default:
			m.composeContent.Focus()
		}
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.composeTitle.Value())
		content := strings.TrimSpace(m.composeContent.Value())
		if title == "" || content == "" {
			return m.flashStatus("Title and content are required")
		}
		draft := blogapi.PostDraft{
			Title:    title,
			Content:  content,
			IsPublic: m.composePublic,
			Tags:     splitTags(m.composeTags.Value()),
		}
		m.loading = true
		m.err = nil
		m.mode = modeList
		m.feedGen++
		if m.editingPostID != "" {
			return m, actions.UpdatePostCmd(m.service, m.feedGen, m.editingPostID, draft)
		}
		return m, actions.CreatePostCmd(m.service, m.feedGen, draft)
	}

	var cmd tea.Cmd
	switch m.composeFocus {
	case 0:
		m.composeTitle, cmd = m.composeTitle.Update(msg)
	case 1:
		m.composeTags, cmd = m.composeTags.Update(msg)
	default:
		m.composeContent, cmd = m.composeContent.Update(msg)
	}
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.commentFocused {
		switch msg.String() {
		case "esc":
			m.commentFocused = false
			m.commentInput.Blur()
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.commentInput.Value())
			if text == "" {
				return m, nil
			}
			post, ok := m.detailPost()
			if !ok {
				return m, nil
			}
			if !m.viewer.Authenticated {
				return m.openLogin("Commenting requires login")
			}
			// Input keeps its text until the server confirms, so a failed
			// call leaves it there for retry.
			m.loading = true
			m.err = nil
			return m, actions.AddCommentCmd(m.service, post.ID, text)
		}
		var cmd tea.Cmd
		m.commentInput, cmd = m.commentInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.mode = modeList
		m.detailTop = 0
		return m, nil
	case "i":
		if !m.viewer.Authenticated {
			return m.openLogin("Commenting requires login")
		}
		m.commentFocused = true
		m.commentInput.Focus()
		return m, nil
	case "A":
		return m.requestAccessCurrent()
	case "f":
		return m.followCurrentAuthor()
	case "up", "k":
		if m.detailTop > 0 {
			m.detailTop--
		}
		return m, nil
	case "down", "j":
		post, ok := m.detailPost()
		if !ok {
			return m, nil
		}
		lines := view.BuildDetailLines(post, m.viewer, m.contentWidth())
		maxTop := 0
		if overflow := len(lines) - m.detailBodyHeight(); overflow > 0 {
			maxTop = overflow
		}
		if m.detailTop < maxTop {
			m.detailTop++
		}
		return m, nil
	case "[":
		return m.stepDetail(-1)
	case "]":
		return m.stepDetail(1)
	}
	return m, nil
}

func (m Model) stepDetail(delta int) (tea.Model, tea.Cmd) {
	idx := tuistate.PostIndexByID(m.filtered, m.selectedPostID)
	if idx < 0 {
		return m, nil
	}
	next := idx + delta
	if next < 0 || next >= len(m.filtered) {
		return m, nil
	}
	post := m.filtered[next]
	m.selectedPostID = post.ID
	m.detailTop = 0
	if row := facets.PostRowForIndex(m.rows, next); row >= 0 {
		m.cursor = row
	}
	return m, actions.LoadCommentsCmd(m.service, post.ID)
}

func (m Model) handleModerationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.mode = modeList
		return m, nil
	case "up", "k":
		if m.requestCursor > 0 {
			m.requestCursor--
		}
		return m, nil
	case "down", "j":
		if m.requestCursor < len(m.requests)-1 {
			m.requestCursor++
		}
		return m, nil
	case "r":
		m.loading = true
		m.err = nil
		return m, actions.LoadRequestsCmd(m.service)
	case "a":
		if m.requestCursor >= len(m.requests) {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, actions.GrantAccessCmd(m.service, m.requests[m.requestCursor].ID)
	case "x":
		if m.requestCursor >= len(m.requests) {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, actions.RejectAccessCmd(m.service, m.requests[m.requestCursor].ID)
	}
	return m, nil
}

func (m Model) handleAsync(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actions.FeedLoadedMsg:
		if msg.Gen != m.feedGen {
			return m, nil
		}
		if msg.Source == "init" {
			m.initialRefreshDone = true
			m.initialRefreshDuration = msg.Duration
		}
		anchorID := m.anchorPostID()
		m.loading = false
		m.err = nil
		m.posts = msg.Posts
		m.reapply()
		m.restoreSelection(anchorID)
		if msg.Status != "" {
			return m.flashStatus(msg.Status)
		}
		return m, nil
	case actions.FeedErrorMsg:
		if msg.Gen != m.feedGen {
			return m, nil
		}
		if msg.Source == "init" {
			m.initialRefreshDone = true
			m.initialRefreshFailed = true
			m.initialRefreshDuration = msg.Duration
		}
		m.loading = false
		m.status = ""
		m.err = msg.Err
		return m, nil
	case actions.LoginSuccessMsg:
		m.loading = false
		m.mode = modeList
		m.viewer = feed.Viewer{Username: msg.Username, Authenticated: true}
		m.reapply()
		m.feedGen++
		model, cmd := m.flashStatus("Logged in as " + msg.Username)
		return model, tea.Batch(cmd, actions.RefreshCmd(m.service, m.feedGen, "login"))
	case actions.LoginErrorMsg:
		m.loading = false
		m.loginErr = msg.Err.Error()
		return m, nil
	case actions.RegisterSuccessMsg:
		m.loading = false
		m.registerMode = false
		m.loginErr = ""
		return m.flashStatus("Registered " + msg.User.Username + " — now log in")
	case actions.RegisterErrorMsg:
		m.loading = false
		m.loginErr = msg.Err.Error()
		return m, nil
	case actions.LogoutMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.viewer = feed.Viewer{}
		m.selection = feed.NewSelection()
		m.reapply()
		m.feedGen++
		model, cmd := m.flashStatus("Logged out")
		return model, tea.Batch(cmd, actions.RefreshCmd(m.service, m.feedGen, "logout"))
	case actions.CommentAddedMsg:
		m.loading = false
		m.err = nil
		feed.PrependComment(m.posts, msg.PostID, msg.Comment)
		m.reapply()
		m.commentInput.SetValue("")
		m.commentFocused = false
		m.commentInput.Blur()
		return m.flashStatus("Comment added")
	case actions.CommentsLoadedMsg:
		feed.SetComments(m.posts, msg.PostID, msg.Comments)
		m.reapply()
		return m, nil
	case actions.AccessRequestedMsg:
		m.loading = false
		m.err = nil
		feed.SetAccessStatus(m.posts, msg.PostID, msg.Status)
		m.reapply()
		return m.flashStatus("Access requested")
	case actions.RequestsLoadedMsg:
		m.loading = false
		m.err = nil
		m.requests = msg.Requests
		m.requestCursor = tuistate.ClampCursor(m.requestCursor, len(m.requests))
		if msg.Status != "" {
			return m.flashStatus(msg.Status)
		}
		return m, nil
	case actions.AuthRequiredMsg:
		m.loading = false
		return m.openLogin("That action requires login")
	case actions.SessionExpiredMsg:
		m.loading = false
		m.viewer = feed.Viewer{}
		m.selection = feed.NewSelection()
		m.reapply()
		m.feedGen++
		model, cmd := m.openLogin("Session expired — log in again")
		return model, tea.Batch(cmd, actions.RefreshCmd(m.service, m.feedGen, "session-expired"))
	case actions.ActionErrorMsg:
		m.loading = false
		m.status = ""
		m.err = msg.Err
		return m, nil
	case actions.ClearStatusMsg:
		if msg.ID == m.statusID {
			m.status = ""
		}
		return m, nil
	case actions.PreferenceSaveErrorMsg:
		m.err = msg.Err
		m.status = "Could not persist UI preferences"
		return m, nil
	}
	return m, nil
}

func (m Model) flashStatus(status string) (Model, tea.Cmd) {
	m.status = status
	m.statusID++
	return m, actions.ClearStatusCmd(m.statusID, 3*time.Second)
}

func (m Model) preferenceToggled(label string, on bool) (Model, tea.Cmd) {
	suffix := "off"
	if on {
		suffix = "on"
	}
	model, flashCmd := m.flashStatus(label + ": " + suffix)
	return model, tea.Batch(flashCmd, persistPreferencesCmd(model.savePreferencesFn, model.preferences()))
}

func persistPreferencesCmd(saveFn func(Preferences) error, prefs Preferences) tea.Cmd {
	if saveFn == nil {
		return nil
	}
	return func() tea.Msg {
		if err := saveFn(prefs); err != nil {
			return actions.PreferenceSaveErrorMsg{Err: err}
		}
		return nil
	}
}

func (m *Model) moveCursorBy(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	m.clampRowCursor()
}

func (m Model) contentWidth() int {
	if m.width > 0 {
		return m.width - 1
	}
	return 100
}

func (m Model) detailBodyHeight() int {
	if m.height > 0 {
		usedByHeader := 6
		if m.status != "" {
			usedByHeader += 2
		}
		if h := m.height - usedByHeader; h > 3 {
			return h
		}
	}
	return 16
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func (m *Model) ApplyPreferences(prefs Preferences) {
	m.compact = prefs.Compact
	m.relativeTime = prefs.RelativeTime
	m.showNumbers = prefs.ShowNumbers
}

func (m *Model) SetPreferencesSaver(saveFn func(Preferences) error) {
	m.savePreferencesFn = saveFn
}

func (m Model) preferences() Preferences {
	return Preferences{
		Compact:      m.compact,
		RelativeTime: m.relativeTime,
		ShowNumbers:  m.showNumbers,
	}
}

func (m *Model) SetStartupCacheStats(duration time.Duration, entries int) {
	m.cacheLoadDuration = duration
	m.cacheLoadedEntries = entries
}
