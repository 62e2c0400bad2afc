// Package controller drives the repository → issue → comment workflow. A
// single goroutine owns the workflow state; API calls run on tracked worker
// goroutines and hand their results back to it.
package controller

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/andywolf/ghcomment/internal/credentials"
	"github.com/andywolf/ghcomment/internal/github"
)

// API is the subset of the API client the controller calls.
type API interface {
	ListRepositories(ctx context.Context) ([]github.Repository, error)
	ListIssues(ctx context.Context, owner, repo string) ([]github.Issue, error)
	PostComment(ctx context.Context, commentsURL string, issue github.Issue) ([]byte, error)
}

// StructuredLogger receives a copy of every controller log line.
type StructuredLogger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// Controller manages the workflow state machine.
type Controller struct {
	api         API
	view        View
	creds       credentials.Source
	logger      *log.Logger
	cloudLogger StructuredLogger

	events    chan func()
	done      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
	group     *Group

	// Fields below are only touched on the controller goroutine.
	state         State
	repos         []github.Repository
	reposLoaded   bool
	selectedRepo  int
	issues        []github.Issue
	issuesLoaded  bool
	selectedIssue int
	comment       string
	pending       map[opKind]*Operation
}

// Option configures a Controller.
type Option func(*Controller)

// WithView sets the view that receives snapshots and notifications.
func WithView(v View) Option {
	return func(c *Controller) {
		c.view = v
	}
}

// WithCredentials makes LoadRepositories require complete credentials.
func WithCredentials(source credentials.Source) Option {
	return func(c *Controller) {
		c.creds = source
	}
}

// WithLogger sets the local logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithCloudLogger sets the structured logger.
func WithCloudLogger(logger StructuredLogger) Option {
	return func(c *Controller) {
		c.cloudLogger = logger
	}
}

// New creates a controller in the Idle state and starts its goroutine.
// Call Close to stop it.
func New(api API, opts ...Option) (*Controller, error) {
	if api == nil {
		return nil, fmt.Errorf("API client cannot be nil")
	}

	c := &Controller{
		api:           api,
		view:          nopView{},
		logger:        log.New(io.Discard, "", 0),
		events:        make(chan func()),
		done:          make(chan struct{}),
		loopDone:      make(chan struct{}),
		group:         NewGroup(context.Background()),
		state:         StateIdle,
		selectedRepo:  -1,
		selectedIssue: -1,
		pending:       make(map[opKind]*Operation),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.loop()

	return c, nil
}

func (c *Controller) loop() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.done:
			return
		case fn := <-c.events:
			select {
			case <-c.done:
				return
			default:
			}
			fn()
		}
	}
}

// post queues fn for the controller goroutine. It is dropped after Close.
func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

// do runs fn on the controller goroutine and returns its error.
func (c *Controller) do(fn func() error) error {
	errCh := make(chan error, 1)
	select {
	case c.events <- func() { errCh <- fn() }:
	case <-c.done:
		return ErrClosed
	}
	select {
	case err := <-errCh:
		return err
	case <-c.done:
		return ErrClosed
	}
}

// Snapshot returns the current user-visible state.
func (c *Controller) Snapshot() Snapshot {
	var s Snapshot
	_ = c.do(func() error {
		s = c.snapshot()
		return nil
	})
	return s
}

// LoadRepositories requests the user's repositories.
func (c *Controller) LoadRepositories() error {
	return c.do(func() error {
		if c.state.Busy() {
			return ErrOperationPending
		}
		if c.creds != nil && !c.creds.Get().Complete() {
			c.logWarning("cannot load repositories without credentials")
			c.notify(LevelError, "Please enter your credentials", ErrMissingCredentials)
			return ErrMissingCredentials
		}

		prev := c.state
		c.transition(StateLoadingRepositories)
		start(c, opLoadRepositories, c.api.ListRepositories, func(r Result[[]github.Repository]) {
			c.onRepositories(prev, r)
		})
		return nil
	})
}

func (c *Controller) onRepositories(prev State, r Result[[]github.Repository]) {
	if r.Err != nil {
		c.logError("failed to load repositories: %v", r.Err)
		c.setState(prev)
		c.notify(LevelError, "Can not load repositories", r.Err)
		c.render()
		return
	}

	c.repos = r.Value
	c.reposLoaded = true
	c.selectedRepo = -1
	c.resetIssues()
	c.logInfo("Loaded %d repositories", len(c.repos))
	c.transition(StateRepositoriesLoaded)
}

// SelectRepository selects the repository at index and loads its issues.
func (c *Controller) SelectRepository(index int) error {
	return c.do(func() error {
		if c.state.Busy() {
			return ErrOperationPending
		}
		if c.state != StateRepositoriesLoaded && c.state != StateIssuesLoaded {
			return ErrInvalidTrigger
		}
		if index < 0 || index >= len(c.repos) {
			return ErrSelectionDisabled
		}

		c.selectedRepo = index
		c.resetIssues()
		repo := c.repos[index]
		c.logInfo("Loading issues for %s", repo.FullName())
		c.transition(StateLoadingIssues)

		start(c, opLoadIssues, func(ctx context.Context) ([]github.Issue, error) {
			return c.api.ListIssues(ctx, repo.OwnerLogin, repo.Name)
		}, c.onIssues)
		return nil
	})
}

func (c *Controller) onIssues(r Result[[]github.Issue]) {
	if r.Err != nil {
		c.logError("failed to load issues: %v", r.Err)
		c.setState(StateRepositoriesLoaded)
		c.notify(LevelError, "Cannot load issues", r.Err)
		c.render()
		return
	}

	c.issues = r.Value
	c.issuesLoaded = true
	if len(c.issues) > 0 {
		c.selectedIssue = 0
	}
	c.logInfo("Loaded %d issues", len(c.issues))
	c.transition(StateIssuesLoaded)
}

// SelectIssue selects the issue at index as the comment target.
func (c *Controller) SelectIssue(index int) error {
	return c.do(func() error {
		if c.state.Busy() {
			return ErrOperationPending
		}
		if c.state != StateIssuesLoaded {
			return ErrInvalidTrigger
		}
		if index < 0 || index >= len(c.issues) {
			return ErrSelectionDisabled
		}

		c.selectedIssue = index
		c.render()
		return nil
	})
}

// SubmitComment posts text on the selected issue. A blank comment is
// rejected without a network call. The text is kept as the draft until the
// post succeeds.
func (c *Controller) SubmitComment(text string) error {
	return c.do(func() error {
		if c.state.Busy() {
			return ErrOperationPending
		}
		if c.state != StateIssuesLoaded {
			return ErrInvalidTrigger
		}
		if len(c.issues) == 0 || c.selectedIssue < 0 {
			return ErrCommentDisabled
		}

		c.comment = text
		if strings.TrimSpace(text) == "" {
			c.logWarning("refusing to post an empty comment")
			c.notify(LevelError, "Please enter a comment", ErrEmptyInput)
			c.render()
			return ErrEmptyInput
		}

		issue := c.issues[c.selectedIssue]
		issue.Comment = text
		c.logInfo("Posting comment on %s", issue.String())
		c.transition(StateSubmittingComment)

		start(c, opPostComment, func(ctx context.Context) ([]byte, error) {
			return c.api.PostComment(ctx, issue.CommentsURL, issue)
		}, c.onComment)
		return nil
	})
}

func (c *Controller) onComment(r Result[[]byte]) {
	if r.Err != nil {
		c.logError("failed to post comment: %v", r.Err)
		c.setState(StateIssuesLoaded)
		c.notify(LevelError, "Can not create comment", r.Err)
		c.render()
		return
	}

	c.comment = ""
	c.logInfo("Comment created")
	c.setState(StateIssuesLoaded)
	c.notify(LevelInfo, "Comment created", nil)
	c.render()
}

func (c *Controller) resetIssues() {
	c.issues = nil
	c.issuesLoaded = false
	c.selectedIssue = -1
}

func (c *Controller) setState(to State) {
	if c.state != to {
		c.logInfo("State %s -> %s", c.state, to)
	}
	c.state = to
}

func (c *Controller) transition(to State) {
	c.setState(to)
	c.render()
}

func (c *Controller) render() {
	c.view.Render(c.snapshot())
}

func (c *Controller) notify(level Level, msg string, err error) {
	c.view.Notify(Notification{Level: level, Message: msg, Err: err})
}

func (c *Controller) snapshot() Snapshot {
	busy := c.state.Busy()
	s := Snapshot{
		State:       c.state,
		Busy:        busy,
		LoadEnabled: !busy && (c.creds == nil || c.creds.Get().Complete()),
		Comment:     c.comment,
	}

	switch {
	case len(c.repos) > 0:
		s.Repositories = append([]github.Repository(nil), c.repos...)
		s.RepositorySelectionEnabled = !busy
	case c.reposLoaded:
		s.RepositoryPlaceholder = NoRepositories
	default:
		s.RepositoryPlaceholder = RepositoriesNotLoaded
	}
	if c.selectedRepo >= 0 && c.selectedRepo < len(c.repos) {
		repo := c.repos[c.selectedRepo]
		s.SelectedRepository = &repo
	}

	switch {
	case len(c.issues) > 0:
		s.Issues = append([]github.Issue(nil), c.issues...)
		s.IssueSelectionEnabled = !busy
		s.CommentEnabled = !busy
	case c.issuesLoaded:
		s.IssuePlaceholder = NoIssues
	default:
		s.IssuePlaceholder = IssuesNotLoaded
	}
	if c.selectedIssue >= 0 && c.selectedIssue < len(c.issues) {
		issue := c.issues[c.selectedIssue]
		s.SelectedIssue = &issue
	}

	return s
}
