package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/andywolf/ghcomment/internal/cloud/gcp"
	"github.com/andywolf/ghcomment/internal/config"
	"github.com/andywolf/ghcomment/internal/controller"
	"github.com/andywolf/ghcomment/internal/credentials"
	"github.com/andywolf/ghcomment/internal/github"
	"github.com/andywolf/ghcomment/internal/security"
	"github.com/andywolf/ghcomment/internal/version"
	"github.com/spf13/viper"
)

// newSecretFetcher opens Secret Manager. Tests replace it.
var newSecretFetcher = func(ctx context.Context, project string) (gcp.SecretFetcher, error) {
	return gcp.NewSecretManagerClient(ctx, project)
}

// session wires one command invocation: configuration, loggers, the
// credential store, the API client and the workflow controller.
type session struct {
	cfg     *config.Config
	logs    *loggers
	store   *credentials.BoltStore
	source  credentials.Source
	client  *github.Client
	view    *consoleView
	ctrl    *controller.Controller
	secrets gcp.SecretFetcher

	closeOnce sync.Once
}

// loggers holds the local sink (stderr when verbose) and the optional
// Cloud Logging destination.
type loggers struct {
	local     io.Writer
	cloud     *gcp.CloudLogger
	sanitizer *security.LogSanitizer
}

// loadConfig reads and validates the configuration from viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLoggers(ctx context.Context, cfg *config.Config, verbose bool, stderr io.Writer) (*loggers, error) {
	l := &loggers{
		local:     io.Discard,
		sanitizer: security.NewLogSanitizer(),
	}

	if verbose {
		switch cfg.Logging.Format {
		case config.LogFormatJSON:
			l.local = gcp.NewCloudLogger(gcp.WithWriter(stderr), gcp.WithSanitizer(l.sanitizer))
		default:
			l.local = &sanitizedWriter{w: stderr, sanitizer: l.sanitizer}
		}
	}

	if cfg.Logging.Cloud {
		remote, err := gcp.NewRemoteLogger(ctx, gcp.RemoteConfig{
			ProjectID: cfg.GCP.Project,
			LogID:     cfg.Logging.LogID,
		}, []gcp.CloudLoggerOption{gcp.WithSanitizer(l.sanitizer)})
		if err != nil {
			return nil, err
		}
		l.cloud = remote
	}

	return l, nil
}

// sanitizedWriter redacts credentials from plain text log lines.
type sanitizedWriter struct {
	w         io.Writer
	sanitizer *security.LogSanitizer
}

func (w *sanitizedWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(w.w, w.sanitizer.Sanitize(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// localLogger returns a logger that only writes to the local sink.
func (l *loggers) localLogger(component string) *log.Logger {
	return log.New(l.local, "["+component+"] ", 0)
}

// component returns a logger writing to the local sink and, when enabled,
// to Cloud Logging.
func (l *loggers) component(name string) *log.Logger {
	if l.cloud == nil {
		return l.localLogger(name)
	}
	return log.New(io.MultiWriter(l.local, l.cloud), "["+name+"] ", 0)
}

func (l *loggers) close() {
	if l.cloud != nil {
		_ = l.cloud.Close()
	}
}

// openStore opens the credential preference store.
func openStore(cfg *config.Config, logs *loggers) (*credentials.BoltStore, error) {
	store, err := credentials.OpenBoltStore(cfg.Credentials.Path, cfg.Credentials.Scope,
		credentials.WithLogger(logs.component("credentials")))
	if err != nil {
		return nil, err
	}
	logs.component("credentials").Printf("Opened scope %s in %s",
		cfg.Credentials.Scope, security.SanitizePath(cfg.Credentials.Path))
	return store, nil
}

// openSession builds everything a workflow command needs.
func openSession(ctx context.Context, cfg *config.Config, verbose bool, stderr io.Writer) (*session, error) {
	logs, err := newLoggers(ctx, cfg, verbose, stderr)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logs: logs}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	s.store, err = openStore(cfg, logs)
	if err != nil {
		return nil, err
	}

	if cfg.NeedsSecretManager() {
		s.secrets, err = newSecretFetcher(ctx, cfg.GCP.Project)
		if err != nil {
			return nil, err
		}
	}

	s.source, err = s.buildSource(ctx)
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	s.client, err = github.NewClient(s.source,
		github.WithBaseURL(cfg.GitHub.APIURL),
		github.WithPerPage(cfg.GitHub.PerPage),
		github.WithTimeout(timeout),
		github.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		return nil, err
	}

	s.view = newConsoleView()
	opts := []controller.Option{
		controller.WithView(s.view),
		controller.WithLogger(logs.localLogger("controller")),
	}
	// App tokens are minted on demand, so only stored credentials gate loading.
	if cfg.GitHub.AuthMode == config.AuthModeBasic {
		opts = append(opts, controller.WithCredentials(s.source))
	}
	if logs.cloud != nil {
		opts = append(opts, controller.WithCloudLogger(logs.cloud))
	}
	s.ctrl, err = controller.New(s.client, opts...)
	if err != nil {
		return nil, err
	}

	ok = true
	return s, nil
}

// buildSource returns the credential source for the configured auth mode.
func (s *session) buildSource(ctx context.Context) (credentials.Source, error) {
	cfg := s.cfg

	switch cfg.GitHub.AuthMode {
	case config.AuthModeApp:
		key, err := s.privateKey(ctx)
		if err != nil {
			return nil, err
		}
		return github.NewAppCredentials(cfg.GitHub.AppID, cfg.GitHub.InstallationID, key,
			github.WithTokenExchanger(github.NewTokenExchanger(cfg.GitHub.APIURL, nil)),
			github.WithAppLogger(s.logs.component("github-app")),
		)

	default:
		if cfg.Credentials.PasswordSecret == "" {
			return s.store, nil
		}
		secret, err := s.secrets.FetchSecret(ctx, cfg.Credentials.PasswordSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch password secret: %w", err)
		}
		s.logs.sanitizer.AddLiteral(secret)
		return &credentials.SecretOverride{Store: s.store, Secret: secret}, nil
	}
}

func (s *session) privateKey(ctx context.Context) ([]byte, error) {
	if path := s.cfg.GitHub.PrivateKeyPath; path != "" {
		key, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		return key, nil
	}
	key, err := s.secrets.FetchSecret(ctx, s.cfg.GitHub.PrivateKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch private key secret: %w", err)
	}
	return []byte(key), nil
}

// Close stops the controller and releases the store and loggers.
func (s *session) Close() {
	s.closeOnce.Do(func() {
		if s.ctrl != nil {
			s.ctrl.Close()
		}
		if s.store != nil {
			_ = s.store.Close()
		}
		if s.secrets != nil {
			_ = s.secrets.Close()
		}
		if s.logs != nil {
			s.logs.close()
		}
	})
}

// await runs trigger and waits until the controller settles. A failure
// notification raised on the way is returned as the error.
func (s *session) await(ctx context.Context, trigger func() error) (controller.Snapshot, error) {
	s.view.reset()

	if err := trigger(); err != nil {
		if n, ok := s.view.lastError(); ok {
			return controller.Snapshot{}, fmt.Errorf("%s: %w", n.Message, err)
		}
		return controller.Snapshot{}, err
	}

	select {
	case snap := <-s.view.settled:
		if n, ok := s.view.lastError(); ok {
			return snap, fmt.Errorf("%s: %w", n.Message, n.Err)
		}
		return snap, nil
	case <-ctx.Done():
		return controller.Snapshot{}, ctx.Err()
	}
}

func (s *session) loadRepositories(ctx context.Context) (controller.Snapshot, error) {
	return s.await(ctx, s.ctrl.LoadRepositories)
}

// selectRepository loads the repositories and then the issues of ref.
func (s *session) selectRepository(ctx context.Context, ref string) (controller.Snapshot, error) {
	owner, name, err := parseRepoRef(ref)
	if err != nil {
		return controller.Snapshot{}, err
	}

	snap, err := s.loadRepositories(ctx)
	if err != nil {
		return snap, err
	}

	index := findRepository(snap.Repositories, owner, name)
	if index < 0 {
		return snap, fmt.Errorf("repository %s/%s not found among your repositories", owner, name)
	}
	return s.selectRepositoryAt(ctx, index)
}

func (s *session) selectRepositoryAt(ctx context.Context, index int) (controller.Snapshot, error) {
	return s.await(ctx, func() error { return s.ctrl.SelectRepository(index) })
}

// selectIssue selects the issue with the given number from snap's list.
func (s *session) selectIssue(ctx context.Context, snap controller.Snapshot, number int) (controller.Snapshot, error) {
	index := findIssue(snap.Issues, number)
	if index < 0 {
		return snap, fmt.Errorf("issue #%d not found", number)
	}
	return s.selectIssueAt(ctx, index)
}

func (s *session) selectIssueAt(ctx context.Context, index int) (controller.Snapshot, error) {
	return s.await(ctx, func() error { return s.ctrl.SelectIssue(index) })
}

func (s *session) submitComment(ctx context.Context, text string) (controller.Snapshot, error) {
	return s.await(ctx, func() error { return s.ctrl.SubmitComment(text) })
}

// openSessionForCommand loads configuration and opens a session using the
// command's streams.
func openSessionForCommand(ctx context.Context, stderr io.Writer) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openSession(ctx, cfg, viper.GetBool("verbose"), stderr)
}

// parseRepoRef splits "owner/name".
func parseRepoRef(ref string) (string, string, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(ref), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q (expected OWNER/REPO)", ref)
	}
	return owner, name, nil
}

// parseIssueNumber parses "12" or "#12".
func parseIssueNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid issue number %q", s)
	}
	return n, nil
}

func findRepository(repos []github.Repository, owner, name string) int {
	for i, r := range repos {
		if strings.EqualFold(r.OwnerLogin, owner) && strings.EqualFold(r.Name, name) {
			return i
		}
	}
	return -1
}

func findIssue(issues []github.Issue, number int) int {
	for i, issue := range issues {
		if issue.Number == number {
			return i
		}
	}
	return -1
}
