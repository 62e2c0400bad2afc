package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/andywolf/ghcomment/internal/controller"
)

// consoleView collects controller output for the commands. Only settled
// (non-busy) snapshots are kept; the latest replaces any unread one.
type consoleView struct {
	settled chan controller.Snapshot

	mu    sync.Mutex
	notes []controller.Notification
}

func newConsoleView() *consoleView {
	return &consoleView{settled: make(chan controller.Snapshot, 1)}
}

func (v *consoleView) Render(s controller.Snapshot) {
	if s.Busy {
		return
	}
	for {
		select {
		case v.settled <- s:
			return
		default:
		}
		select {
		case <-v.settled:
		default:
		}
	}
}

func (v *consoleView) Notify(n controller.Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notes = append(v.notes, n)
}

// reset drops unread snapshots and notifications before a new trigger.
func (v *consoleView) reset() {
	select {
	case <-v.settled:
	default:
	}
	v.mu.Lock()
	v.notes = nil
	v.mu.Unlock()
}

// notifications returns the notifications received since the last reset.
func (v *consoleView) notifications() []controller.Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]controller.Notification(nil), v.notes...)
}

// lastError returns the most recent error notification since the last reset.
func (v *consoleView) lastError() (controller.Notification, bool) {
	notes := v.notifications()
	for i := len(notes) - 1; i >= 0; i-- {
		if notes[i].Level == controller.LevelError {
			return notes[i], true
		}
	}
	return controller.Notification{}, false
}

func printRepositories(w io.Writer, s controller.Snapshot) {
	if len(s.Repositories) == 0 {
		fmt.Fprintln(w, s.RepositoryPlaceholder)
		return
	}
	for _, r := range s.Repositories {
		fmt.Fprintf(w, "%s\t%s\n", r.FullName(), r.APIURL)
	}
}

func printIssues(w io.Writer, s controller.Snapshot) {
	if len(s.Issues) == 0 {
		fmt.Fprintln(w, s.IssuePlaceholder)
		return
	}
	for _, issue := range s.Issues {
		fmt.Fprintf(w, "#%d\t%s\n", issue.Number, issue.Title)
	}
}

func printNotifications(w io.Writer, notes []controller.Notification) {
	for _, n := range notes {
		if n.Level == controller.LevelInfo {
			fmt.Fprintln(w, n.Message)
		}
	}
}
