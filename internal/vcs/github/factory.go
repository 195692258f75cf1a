package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/oauth2"

	"github.com/g30r93g/PRereq/internal/config"
	apperrors "github.com/g30r93g/PRereq/internal/errors"
)

const defaultClientCacheSize = 256

// ClientFactory hands out one GitHubClient per app installation. With a
// personal token every installation shares the same client.
type ClientFactory struct {
	baseURL string
	shared  *GitHubClient
	apps    AppsService

	mu      sync.Mutex
	clients *lru.Cache[int64, *GitHubClient]
}

func NewTokenClientFactory(token, baseURL string) (*ClientFactory, error) {
	client, err := NewTokenClient(token, baseURL)
	if err != nil {
		return nil, err
	}
	return &ClientFactory{baseURL: baseURL, shared: client}, nil
}

func NewAppClientFactory(appID int64, privateKeyPEM []byte, baseURL string, size int) (*ClientFactory, error) {
	gen, err := NewJWTGenerator(appID, privateKeyPEM)
	if err != nil {
		return nil, err
	}

	appHTTP := oauth2.NewClient(context.Background(), oauth2.ReuseTokenSource(nil, gen))
	appClient, err := newRESTClient(appHTTP, baseURL)
	if err != nil {
		return nil, err
	}

	return newAppClientFactory(appClient.Apps, baseURL, size)
}

func newAppClientFactory(apps AppsService, baseURL string, size int) (*ClientFactory, error) {
	if size <= 0 {
		size = defaultClientCacheSize
	}
	clients, err := lru.New[int64, *GitHubClient](size)
	if err != nil {
		return nil, fmt.Errorf("create client cache: %w", err)
	}
	return &ClientFactory{baseURL: baseURL, apps: apps, clients: clients}, nil
}

// NewClientFactoryFromConfig prefers app credentials over a personal token.
func NewClientFactoryFromConfig(cfg config.GitHubConfig) (*ClientFactory, error) {
	if cfg.AppID != 0 && cfg.PrivateKeyPath != "" {
		pemData, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, apperrors.ErrPrivateKeyInvalid.
				WithError(err).
				WithContext("path", cfg.PrivateKeyPath)
		}
		return NewAppClientFactory(cfg.AppID, pemData, cfg.BaseURL, defaultClientCacheSize)
	}

	if cfg.Token != "" {
		return NewTokenClientFactory(cfg.Token, cfg.BaseURL)
	}

	return nil, apperrors.ErrTokenMissing
}

// IsApp reports whether clients authenticate as app installations.
func (f *ClientFactory) IsApp() bool {
	return f.apps != nil
}

func (f *ClientFactory) ForInstallation(installationID int64) (*GitHubClient, error) {
	if f.shared != nil {
		return f.shared, nil
	}
	if installationID <= 0 {
		return nil, apperrors.ErrInstallationToken.
			WithError(errors.New("installation id is required")).
			WithContext("installation_id", installationID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients.Get(installationID); ok {
		return c, nil
	}

	src := oauth2.ReuseTokenSource(nil, &installationTokenSource{apps: f.apps, installationID: installationID})
	c, err := NewGitHubClient(oauth2.NewClient(context.Background(), src), f.baseURL)
	if err != nil {
		return nil, err
	}

	f.clients.Add(installationID, c)
	return c, nil
}
