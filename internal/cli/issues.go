package cli

import (
	"github.com/spf13/cobra"
)

var issuesCmd = &cobra.Command{
	Use:   "issues OWNER/REPO",
	Short: "List the issues of a repository",
	Long: `List the issues of one of your repositories.

Example:
  ghcomment issues alice/demo`,
	Args: cobra.ExactArgs(1),
	RunE: runIssues,
}

func init() {
	rootCmd.AddCommand(issuesCmd)
}

func runIssues(cmd *cobra.Command, args []string) error {
	s, err := openSessionForCommand(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.selectRepository(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printIssues(cmd.OutOrStdout(), snap)
	return nil
}
