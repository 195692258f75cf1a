package di

import (
	"context"
	"fmt"
	"sync"

	"github.com/g30r93g/PRereq/internal/cache"
	"github.com/g30r93g/PRereq/internal/config"
	apperrors "github.com/g30r93g/PRereq/internal/errors"
	"github.com/g30r93g/PRereq/internal/graph"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/services"
	"github.com/g30r93g/PRereq/internal/storage/sqlstore"
	"github.com/g30r93g/PRereq/internal/vcs"
	ghclient "github.com/g30r93g/PRereq/internal/vcs/github"
)

// Container wires the application dependencies. Everything is built
// lazily so commands that never touch GitHub do not need credentials.
type Container struct {
	config       *config.Config
	translations *i18n.Translations

	mu          sync.Mutex
	store       graph.Store
	sqlStore    *sqlstore.Store
	factory     *ghclient.ClientFactory
	statusCache *cache.Cache
}

func NewContainer(cfg *config.Config, trans *i18n.Translations) *Container {
	return &Container{
		config:       cfg,
		translations: trans,
		statusCache:  cache.New(cfg.Cache.Size, cfg.Cache.TTL.Std()),
	}
}

// GetStore opens the configured graph store on first use.
func (c *Container) GetStore(ctx context.Context) (graph.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		return c.store, nil
	}

	switch c.config.Storage.Driver {
	case config.DriverMemory:
		c.store = graph.NewMemoryStore()
	case config.DriverSQLite, config.DriverPostgres:
		s, err := sqlstore.Open(ctx, c.config.Storage.Driver, c.config.Storage.DSN)
		if err != nil {
			return nil, err
		}
		c.sqlStore = s
		c.store = s
	default:
		return nil, apperrors.ErrConfigInvalid.
			WithError(fmt.Errorf("unknown storage driver %q", c.config.Storage.Driver))
	}
	return c.store, nil
}

// SetStore replaces the graph store, mostly for tests.
func (c *Container) SetStore(store graph.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = store
}

func (c *Container) GetClientFactory() (*ghclient.ClientFactory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.factory != nil {
		return c.factory, nil
	}
	f, err := ghclient.NewClientFactoryFromConfig(c.config.GitHub)
	if err != nil {
		return nil, err
	}
	c.factory = f
	return f, nil
}

// ClientForInstallation satisfies webhook.ClientResolver.
func (c *Container) ClientForInstallation(installationID int64) (vcs.Client, error) {
	f, err := c.GetClientFactory()
	if err != nil {
		return nil, err
	}
	client, err := f.ForInstallation(installationID)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GetDependencyService builds a service with no VCS collaborators bound.
// Callers attach one with ForClient.
func (c *Container) GetDependencyService(ctx context.Context) (*services.DependencyService, error) {
	store, err := c.GetStore(ctx)
	if err != nil {
		return nil, err
	}

	return services.NewDependencyService(
		services.WithStore(store),
		services.WithStatusCache(c.statusCache),
		services.WithTranslations(c.translations),
		services.WithMaxCycleNodes(c.config.Graph.MaxCycleNodes),
		services.WithStatusConcurrency(c.config.Graph.StatusConcurrency),
		services.WithBypassLabels(c.config.Checks.BypassLabels),
		services.WithCheckName(c.config.Checks.Name),
	), nil
}

func (c *Container) GetConfig() *config.Config {
	return c.config
}

func (c *Container) GetTranslations() *i18n.Translations {
	return c.translations
}

// Close releases the SQL store if one was opened.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sqlStore == nil {
		return nil
	}
	err := c.sqlStore.Close()
	c.sqlStore = nil
	c.store = nil
	return err
}
