package cli

import (
	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List your repositories",
	Long: `List the first page of repositories of the authenticated user.

Example:
  ghcomment repos`,
	Args: cobra.NoArgs,
	RunE: runRepos,
}

func init() {
	rootCmd.AddCommand(reposCmd)
}

func runRepos(cmd *cobra.Command, args []string) error {
	s, err := openSessionForCommand(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.loadRepositories(cmd.Context())
	if err != nil {
		return err
	}

	printRepositories(cmd.OutOrStdout(), snap)
	return nil
}
