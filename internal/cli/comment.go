package cli

import (
	"context"
	"io"

	"github.com/andywolf/ghcomment/internal/cli/wizard"
	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment OWNER/REPO NUMBER",
	Short: "Post a comment on an issue",
	Long: `Post a comment on an issue of one of your repositories.

Without --body an editor form is shown. A blank comment is rejected without
contacting GitHub.

Example:
  ghcomment comment alice/demo 1 --body "LGTM"`,
	Args: cobra.ExactArgs(2),
	RunE: runComment,
}

func init() {
	rootCmd.AddCommand(commentCmd)

	commentCmd.Flags().StringP("body", "b", "", "comment text")
}

func runComment(cmd *cobra.Command, args []string) error {
	number, err := parseIssueNumber(args[1])
	if err != nil {
		return err
	}
	if _, _, err := parseRepoRef(args[0]); err != nil {
		return err
	}

	s, err := openSessionForCommand(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	body, _ := cmd.Flags().GetString("body")
	prompt := !cmd.Flags().Changed("body")
	return postComment(cmd.Context(), s, cmd.OutOrStdout(), args[0], number, body, prompt)
}

// postComment walks the workflow from loading repositories to posting body
// on issue number of ref. When prompt is set the body is asked for once the
// issue is selected.
func postComment(ctx context.Context, s *session, out io.Writer, ref string, number int, body string, prompt bool) error {
	snap, err := s.selectRepository(ctx, ref)
	if err != nil {
		return err
	}

	snap, err = s.selectIssue(ctx, snap, number)
	if err != nil {
		return err
	}

	if prompt {
		body, err = wizard.PromptComment(*snap.SelectedIssue, snap.Comment)
		if err != nil {
			return err
		}
	}

	if _, err := s.submitComment(ctx, body); err != nil {
		return err
	}

	printNotifications(out, s.view.notifications())
	return nil
}
