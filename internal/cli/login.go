package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/andywolf/ghcomment/internal/cli/wizard"
	"github.com/andywolf/ghcomment/internal/credentials"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store GitHub credentials",
	Long: `Store the username and password (or personal access token) used to sign
API requests. Both values are kept in the local preference store and replace
whatever was stored before.

Without --username and --password an interactive form is shown.

Example:
  ghcomment login
  ghcomment login --username alice --password-stdin < token.txt`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().String("username", "", "GitHub username")
	loginCmd.Flags().String("password", "", "GitHub password or token")
	loginCmd.Flags().Bool("password-stdin", false, "read the password from stdin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logs, err := newLoggers(cmd.Context(), cfg, viper.GetBool("verbose"), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logs.close()

	store, err := openStore(cfg, logs)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
		password, err = readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	if username == "" || password == "" {
		if username == "" {
			username = store.Get().Username
		}
		username, password, err = wizard.PromptCredentials(username)
		if err != nil {
			return err
		}
	}

	if err := saveCredentials(store, username, password); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved credentials for %s in scope %s\n", username, cfg.Credentials.Scope)
	return nil
}

// saveCredentials replaces the stored pair. Both values are required.
func saveCredentials(store credentials.Store, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	store.Set(credentials.Credentials{Username: username, Secret: password})
	return nil
}

// readPassword reads the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
