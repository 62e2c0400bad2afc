package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andywolf/ghcomment/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a .ghcomment.yaml file with the default settings that you can
customize.

Example:
  ghcomment init
  ghcomment init --api-url https://ghe.example.com/api/v3/ --scope work`,
	Args: cobra.NoArgs,
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("api-url", config.DefaultAPIURL, "GitHub API base URL")
	initCmd.Flags().String("scope", config.DefaultScope, "credential preference scope")
	initCmd.Flags().String("auth-mode", config.AuthModeBasic, "authentication mode (basic or app)")
	initCmd.Flags().Int64("app-id", 0, "GitHub App ID")
	initCmd.Flags().Int64("installation-id", 0, "GitHub App Installation ID")
	initCmd.Flags().String("gcp-project", "", "GCP project for Secret Manager and Cloud Logging")
	initCmd.Flags().Bool("force", false, "Overwrite existing config")
}

type fileConfig struct {
	GitHub struct {
		APIURL           string `yaml:"api_url"`
		PerPage          int    `yaml:"per_page"`
		Timeout          string `yaml:"timeout"`
		AuthMode         string `yaml:"auth_mode"`
		AppID            int64  `yaml:"app_id,omitempty"`
		InstallationID   int64  `yaml:"installation_id,omitempty"`
		PrivateKeySecret string `yaml:"private_key_secret,omitempty"`
	} `yaml:"github"`
	Credentials struct {
		Scope string `yaml:"scope"`
	} `yaml:"credentials"`
	GCP struct {
		Project string `yaml:"project,omitempty"`
	} `yaml:"gcp,omitempty"`
	Logging struct {
		Format string `yaml:"format"`
		Cloud  bool   `yaml:"cloud"`
		LogID  string `yaml:"log_id"`
	} `yaml:"logging"`
}

func initProject(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(".", ".ghcomment.yaml")

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	cfg := fileConfig{}
	cfg.GitHub.APIURL, _ = cmd.Flags().GetString("api-url")
	cfg.GitHub.AuthMode, _ = cmd.Flags().GetString("auth-mode")
	cfg.GitHub.AppID, _ = cmd.Flags().GetInt64("app-id")
	cfg.GitHub.InstallationID, _ = cmd.Flags().GetInt64("installation-id")
	cfg.Credentials.Scope, _ = cmd.Flags().GetString("scope")
	cfg.GCP.Project, _ = cmd.Flags().GetString("gcp-project")

	data, err := renderConfig(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n\n", configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Run 'ghcomment login' to store your credentials")
	fmt.Fprintln(out, "  2. Run 'ghcomment repos' to check access")
	fmt.Fprintln(out, "  3. Run 'ghcomment browse' to comment on an issue")

	return nil
}

// renderConfig fills defaults and returns the YAML file contents.
func renderConfig(cfg fileConfig) ([]byte, error) {
	if cfg.GitHub.APIURL == "" {
		cfg.GitHub.APIURL = config.DefaultAPIURL
	}
	if cfg.GitHub.AuthMode == "" {
		cfg.GitHub.AuthMode = config.AuthModeBasic
	}
	if cfg.Credentials.Scope == "" {
		cfg.Credentials.Scope = config.DefaultScope
	}
	cfg.GitHub.PerPage = config.DefaultPerPage
	cfg.GitHub.Timeout = config.DefaultTimeout
	cfg.Logging.Format = config.LogFormatText
	cfg.Logging.LogID = config.DefaultLogID

	if cfg.GitHub.AuthMode == config.AuthModeApp && cfg.GitHub.PrivateKeySecret == "" {
		project := cfg.GCP.Project
		if project == "" {
			project = "YOUR_PROJECT"
		}
		cfg.GitHub.PrivateKeySecret = fmt.Sprintf("projects/%s/secrets/ghcomment-github-key", project)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# ghcomment configuration
# Every key can also be set through GHCOMMENT_<SECTION>_<KEY>, e.g. GHCOMMENT_GITHUB_API_URL.

`
	return append([]byte(header), data...), nil
}
