package cli

import (
	"strings"
	"testing"

	"github.com/andywolf/ghcomment/internal/config"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestRenderConfig_Defaults(t *testing.T) {
	data, err := renderConfig(fileConfig{})
	if err != nil {
		t.Fatalf("renderConfig() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# ghcomment configuration\n") {
		t.Errorf("missing header: %q", data)
	}

	var got fileConfig
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("rendered config is not YAML: %v", err)
	}
	if got.GitHub.APIURL != config.DefaultAPIURL {
		t.Errorf("api_url = %q", got.GitHub.APIURL)
	}
	if got.GitHub.AuthMode != config.AuthModeBasic {
		t.Errorf("auth_mode = %q", got.GitHub.AuthMode)
	}
	if got.GitHub.PerPage != config.DefaultPerPage || got.GitHub.Timeout != config.DefaultTimeout {
		t.Errorf("per_page = %d, timeout = %q", got.GitHub.PerPage, got.GitHub.Timeout)
	}
	if got.Credentials.Scope != config.DefaultScope {
		t.Errorf("scope = %q", got.Credentials.Scope)
	}
	if strings.Contains(string(data), "app_id") {
		t.Errorf("basic config carries App fields: %q", data)
	}
}

func TestRenderConfig_AppMode(t *testing.T) {
	in := fileConfig{}
	in.GitHub.AuthMode = config.AuthModeApp
	in.GitHub.AppID = 12
	in.GitHub.InstallationID = 34
	in.GCP.Project = "my-project"

	data, err := renderConfig(in)
	if err != nil {
		t.Fatalf("renderConfig() error = %v", err)
	}

	var got fileConfig
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("rendered config is not YAML: %v", err)
	}
	if got.GitHub.AppID != 12 || got.GitHub.InstallationID != 34 {
		t.Errorf("app ids = %d, %d", got.GitHub.AppID, got.GitHub.InstallationID)
	}
	if want := "projects/my-project/secrets/ghcomment-github-key"; got.GitHub.PrivateKeySecret != want {
		t.Errorf("private_key_secret = %q, want %q", got.GitHub.PrivateKeySecret, want)
	}
}

// TestRenderConfig_LoadsBack checks the written file is accepted by Load
// and Validate.
func TestRenderConfig_LoadsBack(t *testing.T) {
	in := fileConfig{}
	in.GitHub.APIURL = "https://ghe.example.com/api/v3/"
	in.Credentials.Scope = "work"

	data, err := renderConfig(in)
	if err != nil {
		t.Fatalf("renderConfig() error = %v", err)
	}

	viper.Reset()
	defer viper.Reset()
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(strings.NewReader(string(data))); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.GitHub.APIURL != in.GitHub.APIURL || cfg.Credentials.Scope != "work" {
		t.Errorf("loaded %+v", cfg)
	}
}
