package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/andywolf/ghcomment/internal/controller"
	"github.com/andywolf/ghcomment/internal/github"
)

func TestConsoleView_KeepsLatestSettledSnapshot(t *testing.T) {
	v := newConsoleView()

	v.Render(controller.Snapshot{State: controller.StateRepositoriesLoaded})
	v.Render(controller.Snapshot{State: controller.StateLoadingIssues, Busy: true})
	v.Render(controller.Snapshot{State: controller.StateIssuesLoaded})

	select {
	case s := <-v.settled:
		if s.State != controller.StateIssuesLoaded {
			t.Errorf("settled state = %s, want %s", s.State, controller.StateIssuesLoaded)
		}
	default:
		t.Fatal("no settled snapshot")
	}

	select {
	case s := <-v.settled:
		t.Errorf("unexpected extra snapshot %s", s.State)
	default:
	}
}

func TestConsoleView_IgnoresBusySnapshots(t *testing.T) {
	v := newConsoleView()
	v.Render(controller.Snapshot{State: controller.StateSubmittingComment, Busy: true})

	select {
	case s := <-v.settled:
		t.Errorf("busy snapshot %s was delivered", s.State)
	default:
	}
}

func TestConsoleView_LastError(t *testing.T) {
	v := newConsoleView()
	if _, ok := v.lastError(); ok {
		t.Fatal("lastError() on empty view reported a notification")
	}

	first := errors.New("first")
	second := errors.New("second")
	v.Notify(controller.Notification{Level: controller.LevelError, Message: "one", Err: first})
	v.Notify(controller.Notification{Level: controller.LevelError, Message: "two", Err: second})
	v.Notify(controller.Notification{Level: controller.LevelInfo, Message: "Comment created"})

	n, ok := v.lastError()
	if !ok || n.Message != "two" || !errors.Is(n.Err, second) {
		t.Errorf("lastError() = %+v, %v", n, ok)
	}

	v.reset()
	if got := v.notifications(); len(got) != 0 {
		t.Errorf("notifications after reset = %v", got)
	}
}

func TestPrintRepositories(t *testing.T) {
	var buf bytes.Buffer
	printRepositories(&buf, controller.Snapshot{RepositoryPlaceholder: controller.NoRepositories})
	if got := buf.String(); got != controller.NoRepositories+"\n" {
		t.Errorf("empty list printed %q", got)
	}

	buf.Reset()
	printRepositories(&buf, controller.Snapshot{Repositories: []github.Repository{
		{Name: "demo", OwnerLogin: "alice", APIURL: "https://api.github.com/repos/alice/demo"},
	}})
	if got, want := buf.String(), "alice/demo\thttps://api.github.com/repos/alice/demo\n"; got != want {
		t.Errorf("printed %q, want %q", got, want)
	}
}

func TestPrintIssues(t *testing.T) {
	var buf bytes.Buffer
	printIssues(&buf, controller.Snapshot{IssuePlaceholder: controller.IssuesNotLoaded})
	if got := buf.String(); got != controller.IssuesNotLoaded+"\n" {
		t.Errorf("empty list printed %q", got)
	}
}

func TestPrintNotifications_InfoOnly(t *testing.T) {
	var buf bytes.Buffer
	printNotifications(&buf, []controller.Notification{
		{Level: controller.LevelError, Message: "Can not create comment"},
		{Level: controller.LevelInfo, Message: "Comment created"},
	})
	if got := buf.String(); got != "Comment created\n" {
		t.Errorf("printed %q", got)
	}
}
