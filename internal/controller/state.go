package controller

import "github.com/andywolf/ghcomment/internal/github"

// State is a state of the workflow.
type State string

const (
	StateIdle                State = "IDLE"
	StateLoadingRepositories State = "LOADING_REPOSITORIES"
	StateRepositoriesLoaded  State = "REPOSITORIES_LOADED"
	StateLoadingIssues       State = "LOADING_ISSUES"
	StateIssuesLoaded        State = "ISSUES_LOADED"
	StateSubmittingComment   State = "SUBMITTING_COMMENT"
)

// Busy reports whether a request is in flight in this state.
func (s State) Busy() bool {
	switch s {
	case StateLoadingRepositories, StateLoadingIssues, StateSubmittingComment:
		return true
	}
	return false
}

// Placeholders shown in place of an empty or not yet loaded list.
const (
	RepositoriesNotLoaded = "No repositories available"
	NoRepositories        = "User has no repositories"
	IssuesNotLoaded       = "Please select repository"
	NoIssues              = "Repository has no issues"
)

// Snapshot is a copy of the user-visible workflow state.
type Snapshot struct {
	State State
	Busy  bool

	// LoadEnabled is false while busy or when credentials are incomplete.
	LoadEnabled bool

	Repositories               []github.Repository
	RepositoryPlaceholder      string
	RepositorySelectionEnabled bool
	SelectedRepository         *github.Repository

	Issues                []github.Issue
	IssuePlaceholder      string
	IssueSelectionEnabled bool
	SelectedIssue         *github.Issue

	CommentEnabled bool
	Comment        string
}

// Level is the severity of a notification.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// Notification is a transient message for the user.
type Notification struct {
	Level   Level
	Message string
	Err     error
}

// View receives state changes. Its methods run on the controller goroutine
// and must not call back into the Controller. A notification raised by a
// trigger or a completion is delivered before the Render that settles it.
type View interface {
	Render(Snapshot)
	Notify(Notification)
}

type nopView struct{}

func (nopView) Render(Snapshot)     {}
func (nopView) Notify(Notification) {}
