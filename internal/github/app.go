package github

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/andywolf/ghcomment/internal/credentials"
)

// AppTokenUsername is the Basic-auth username GitHub accepts alongside an
// installation token.
const AppTokenUsername = "x-access-token"

// TokenRefreshBuffer is how long before expiry a token is replaced.
const TokenRefreshBuffer = 5 * time.Minute

// AppCredentials is a credential source backed by a GitHub App installation.
// The secret is an installation token refreshed shortly before it expires.
type AppCredentials struct {
	mu sync.Mutex

	installationID int64
	jwtGenerator   *JWTGenerator
	exchanger      *TokenExchanger
	logger         *log.Logger
	nowFunc        func() time.Time

	token     string
	expiresAt time.Time
}

// AppCredentialsOption configures AppCredentials.
type AppCredentialsOption func(*AppCredentials)

// WithTokenExchanger replaces the default exchanger.
func WithTokenExchanger(exchanger *TokenExchanger) AppCredentialsOption {
	return func(a *AppCredentials) {
		a.exchanger = exchanger
	}
}

// WithAppLogger sets the logger used for refresh failures.
func WithAppLogger(logger *log.Logger) AppCredentialsOption {
	return func(a *AppCredentials) {
		a.logger = logger
	}
}

// WithNowFunc overrides the clock.
func WithNowFunc(fn func() time.Time) AppCredentialsOption {
	return func(a *AppCredentials) {
		a.nowFunc = fn
	}
}

// NewAppCredentials creates a source for the given App installation.
func NewAppCredentials(appID, installationID int64, privateKey []byte, opts ...AppCredentialsOption) (*AppCredentials, error) {
	if installationID <= 0 {
		return nil, fmt.Errorf("installation ID must be positive")
	}
	if len(privateKey) == 0 {
		return nil, fmt.Errorf("private key cannot be empty")
	}

	gen, err := NewJWTGenerator(appID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT generator: %w", err)
	}

	a := &AppCredentials{
		installationID: installationID,
		jwtGenerator:   gen,
		exchanger:      NewTokenExchanger("", nil),
		logger:         log.New(io.Discard, "", 0),
		nowFunc:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	gen.nowFunc = a.nowFunc

	return a, nil
}

// Get returns the installation token as Basic-auth credentials, refreshing
// it when needed. A failed refresh yields the empty secret so the request is
// rejected by the server and surfaces as a request failure.
func (a *AppCredentials) Get() credentials.Credentials {
	token, err := a.Token(context.Background())
	if err != nil {
		a.logger.Printf("Warning: failed to refresh installation token: %v", err)
		return credentials.Credentials{Username: AppTokenUsername}
	}
	return credentials.Credentials{Username: AppTokenUsername, Secret: token}
}

// Token returns a valid installation token.
func (a *AppCredentials) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.expiresAt.After(a.nowFunc().Add(TokenRefreshBuffer)) {
		return a.token, nil
	}

	jwt, err := a.jwtGenerator.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT: %w", err)
	}

	tok, err := a.exchanger.ExchangeToken(ctx, jwt, a.installationID)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}

	a.token = tok.Token
	a.expiresAt = tok.ExpiresAt
	return a.token, nil
}

var _ credentials.Source = (*AppCredentials)(nil)
