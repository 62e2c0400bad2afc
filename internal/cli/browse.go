package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/andywolf/ghcomment/internal/cli/wizard"
	"github.com/andywolf/ghcomment/internal/controller"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Pick a repository and issue interactively and comment on it",
	Long: `Walk the whole flow interactively: load your repositories, pick one, pick
one of its issues and write a comment. A failed post keeps the draft so it
can be edited and sent again.

Example:
  ghcomment browse`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	s, err := openSessionForCommand(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	return browse(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func browse(ctx context.Context, s *session, out, errOut io.Writer) error {
	snap, err := s.loadRepositories(ctx)
	if err != nil {
		return err
	}
	if len(snap.Repositories) == 0 {
		printRepositories(out, snap)
		return nil
	}

	for {
		index, err := wizard.SelectRepository(snap.Repositories)
		if err != nil {
			return err
		}
		snap, err = s.selectRepositoryAt(ctx, index)
		if err != nil {
			fmt.Fprintln(errOut, err)
		} else if len(snap.Issues) == 0 {
			printIssues(out, snap)
		} else if err := commentLoop(ctx, s, snap, out, errOut); err != nil {
			return err
		}

		again, err := wizard.Confirm("Pick another repository?")
		if err != nil || !again {
			return err
		}
	}
}

// commentLoop posts comments on issues of the selected repository until the
// user stops.
func commentLoop(ctx context.Context, s *session, snap controller.Snapshot, out, errOut io.Writer) error {
	for {
		selected := findIssue(snap.Issues, snap.SelectedIssue.Number)
		index, err := wizard.SelectIssue(snap.Issues, selected)
		if err != nil {
			return err
		}
		snap, err = s.selectIssueAt(ctx, index)
		if err != nil {
			return err
		}

		text, err := wizard.PromptComment(*snap.SelectedIssue, snap.Comment)
		if err != nil {
			return err
		}
		if _, err := s.submitComment(ctx, text); err != nil {
			fmt.Fprintln(errOut, err)
		} else {
			printNotifications(out, s.view.notifications())
		}

		again, err := wizard.Confirm("Comment on another issue?")
		if err != nil || !again {
			return err
		}
		snap = s.ctrl.Snapshot()
	}
}
