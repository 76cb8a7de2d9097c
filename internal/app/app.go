package app

import (
	"context"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/felixbhw/n17-dash/external/apifootball"
	"github.com/felixbhw/n17-dash/external/article"
	"github.com/felixbhw/n17-dash/external/openai"
	"github.com/felixbhw/n17-dash/internal/config"
	"github.com/felixbhw/n17-dash/internal/domain/extraction"
	"github.com/felixbhw/n17-dash/internal/domain/identity"
	"github.com/felixbhw/n17-dash/internal/domain/news"
	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/infrastructure/mapping"
	repocache "github.com/felixbhw/n17-dash/internal/infrastructure/repository/cache"
	"github.com/felixbhw/n17-dash/internal/infrastructure/repository/filestore"
	"github.com/felixbhw/n17-dash/internal/infrastructure/repository/memory"
	"github.com/felixbhw/n17-dash/internal/infrastructure/repository/postgres"
	"github.com/felixbhw/n17-dash/internal/interfaces/httpapi"
	"github.com/felixbhw/n17-dash/internal/platform/cache"
	"github.com/felixbhw/n17-dash/internal/platform/keylock"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

// Container holds the wired services shared by the API server and the CLI.
type Container struct {
	Config      config.Config
	Logger      *logging.Logger
	News        news.Repository
	Links       playerlink.Repository
	Mappings    *identity.ManualMappings
	Resolver    *usecase.IdentityResolver
	Linker      *usecase.NewsLinkService
	PlayerLinks *usecase.PlayerLinkService

	db *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Container{Config: cfg, Logger: logger}
	if err := c.openStores(ctx); err != nil {
		return nil, err
	}

	mappings, err := loadMappings(cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Mappings = mappings

	roster, search := playerSources(cfg, logger)
	c.Resolver = usecase.NewIdentityResolver(
		c.Links,
		mappings,
		roster,
		search,
		usecase.IdentityResolverConfig{RosterCacheTTL: cfg.RosterCacheTTL},
		logger.Named("resolver"),
	)

	deny := extraction.DefaultDenylist()
	oracle := openai.NewClient(openai.ClientConfig{
		BaseURL:        cfg.OpenAIBaseURL,
		APIKey:         cfg.OpenAIAPIKey,
		Model:          cfg.OpenAIModel,
		Temperature:    cfg.OpenAITemperature,
		Timeout:        cfg.OpenAITimeout,
		MaxRetries:     cfg.OpenAIMaxRetries,
		Logger:         logger.Named("openai"),
		CircuitBreaker: cfg.OpenAICircuit,
	})

	locks := keylock.New()
	c.Linker = usecase.NewNewsLinkService(
		c.News,
		c.Links,
		usecase.NewFactExtractor(oracle, deny, logger.Named("extractor")),
		c.Resolver,
		bodyFetcher(cfg, logger),
		mappings,
		deny,
		locks,
		usecase.NewsLinkConfig{HomeTeamID: cfg.HomeTeamID, MaxWorkers: cfg.LinkerMaxWorkers, MaxRejections: cfg.LinkerMaxRejections},
		logger.Named("linker"),
	)
	c.PlayerLinks = usecase.NewPlayerLinkService(c.Links, locks)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Container) openStores(ctx context.Context) error {
	switch c.Config.StoreDriver {
	case config.StoreMemory:
		c.News = memory.NewNewsRepository()
		c.Links = memory.NewPlayerLinkRepository()
	case config.StoreFile:
		store, err := filestore.Open(c.Config.DataDir)
		if err != nil {
			return errors.Wrapf(err, "open file store %s", c.Config.DataDir)
		}
		c.News = filestore.NewNewsRepository(store)
		c.Links = filestore.NewPlayerLinkRepository(store)
	case config.StorePostgres:
		db, err := openDB(ctx, c.Config)
		if err != nil {
			return err
		}
		c.db = db
		c.News = postgres.NewNewsRepository(db)
		c.Links = repocache.NewPlayerLinkRepository(
			postgres.NewPlayerLinkRepository(db),
			cache.NewStore[[]playerlink.PlayerLink](c.Config.LinkListCacheTTL),
		)
	default:
		return errors.Newf("unsupported store driver %q", c.Config.StoreDriver)
	}
	c.Logger.Info("store opened", "driver", c.Config.StoreDriver)
	return nil
}

func loadMappings(cfg config.Config, logger *logging.Logger) (*identity.ManualMappings, error) {
	if cfg.ManualMappingsOptional {
		if _, err := os.Stat(cfg.ManualMappingsPath); os.IsNotExist(err) {
			logger.Warn("manual mappings file not found, continuing without", "path", cfg.ManualMappingsPath)
			return identity.NewManualMappings(nil)
		}
	}
	mappings, err := mapping.NewLoader().LoadFile(cfg.ManualMappingsPath)
	if err != nil {
		return nil, errors.Wrap(err, "load manual mappings")
	}
	logger.Info("manual mappings loaded", "path", cfg.ManualMappingsPath, "count", mappings.Len())
	return mappings, nil
}

// playerSources returns nil interfaces when no API key is configured so the
// resolver skips the roster and search steps.
func playerSources(cfg config.Config, logger *logging.Logger) (usecase.RosterLookup, usecase.PlayerSearch) {
	if cfg.APIFootballKey == "" {
		logger.Warn("APIFOOTBALL_KEY is empty, roster and search lookups are disabled")
		return nil, nil
	}
	client := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL:        cfg.APIFootballBaseURL,
		APIKey:         cfg.APIFootballKey,
		Timeout:        cfg.APIFootballTimeout,
		MaxRetries:     cfg.APIFootballMaxRetries,
		Logger:         logger.Named("apifootball"),
		CircuitBreaker: cfg.APIFootballCircuit,
	})
	return client, client
}

func bodyFetcher(cfg config.Config, logger *logging.Logger) usecase.BodyFetcher {
	if !cfg.ArticleFetchEnabled {
		return nil
	}
	return article.NewFetcher(article.FetcherConfig{
		Timeout:  cfg.ArticleFetchTimeout,
		MaxChars: cfg.ArticleFetchMaxChars,
		Logger:   logger.Named("article"),
	})
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	cfg := c.Config
	if cfg.HTTPAddr == "" {
		return nil, errors.New("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(c.PlayerLinks, c.Linker, c.Resolver, c.Logger.Named("httpapi"))
	router := httpapi.NewRouter(handler, c.Logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
