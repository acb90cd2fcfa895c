package admin

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/config"
	"github.com/cloo-solutions/supportdesk/internal/database"
	"github.com/cloo-solutions/supportdesk/internal/repository"
	"github.com/cloo-solutions/supportdesk/internal/seed"
	"github.com/cloo-solutions/supportdesk/internal/service"
	"github.com/cloo-solutions/supportdesk/internal/storage"
)

const migrationsSource = "file://migrations"

// knowledgeLogStore is what the responder and the log miner read from.
type knowledgeLogStore interface {
	service.KnowledgeStore
	service.LogStore
}

// backend is the store selected by the configuration: Postgres when a
// database URL is set, the embedded seed corpus in memory otherwise.
type backend struct {
	store    knowledgeLogStore
	admin    service.AdminRepositories
	chatLogs service.ChatLogRepositoryInterface
	corpus   *seed.Corpus
	memory   bool
	close    func()
}

type backendOptions struct {
	migrate bool
	// requireDatabase fails instead of falling back to memory.
	requireDatabase bool
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts backendOptions) (*backend, error) {
	corpus, err := seed.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load seed corpus: %w", err)
	}

	if !cfg.HasDatabase() {
		if opts.requireDatabase {
			return nil, fmt.Errorf("SUPPORTDESK_DATABASE_URL is required")
		}
		logger.Warn("no database configured, serving the embedded corpus from memory")
		m := repository.NewMemoryStore(corpus.CoreDocs, corpus.KnowledgeItems(), &corpus.Landing)
		return &backend{
			store: m,
			admin: service.AdminRepositories{
				Knowledge:  m.Knowledge(),
				Snippets:   m.Snippets(),
				Landing:    m,
				Manual:     m,
				Candidates: m.Candidates(),
				Tx:         m,
			},
			chatLogs: m.ChatLogs(),
			corpus:   corpus,
			memory:   true,
			close:    func() {},
		}, nil
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to database")

	if opts.migrate {
		if err := database.Migrate(cfg.DatabaseURL, migrationsSource, database.Up, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var manual service.ManualStore
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		logger.Info("manual stored in S3", zap.String("bucket", cfg.S3Bucket), zap.String("key", cfg.S3ManualKey))
		manual = storage.NewManualSource(s3Client, cfg.S3ManualKey)
	}

	store := repository.NewStore(pool, corpus.CoreDocs, manual)
	return &backend{
		store: store,
		admin: service.AdminRepositories{
			Knowledge:  store.Knowledge,
			Snippets:   store.Snippets,
			Landing:    store.Settings,
			Manual:     store.Manual(),
			Candidates: store.Candidates,
			Tx:         repository.NewTxRunner(pool),
		},
		chatLogs: store.ChatLogs,
		corpus:   corpus,
		close:    pool.Close,
	}, nil
}

func personaFromConfig(cfg *config.Config) service.Persona {
	return service.Persona{Name: cfg.BotName, Company: cfg.CompanyName, Product: cfg.ProductName}
}
