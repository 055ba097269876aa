package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/haneulsoft/caseledger/internal/blob/s3"
	"github.com/haneulsoft/caseledger/internal/cache/redis"
	"github.com/haneulsoft/caseledger/internal/config"
	"github.com/haneulsoft/caseledger/internal/domain"
	"github.com/haneulsoft/caseledger/internal/notify"
	"github.com/haneulsoft/caseledger/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Stores
	CaseStore        domain.CaseStore
	PartyStore       domain.PartyStore
	BondStore        domain.BondStore
	EnforcementStore domain.EnforcementStore
	TaskStore        domain.TaskStore
	TimelineStore    domain.TimelineStore
	AttachmentStore  domain.AttachmentStore
	AuditStore       domain.AuditStore

	// Caches
	DashboardCache domain.DashboardCache
	RateLimiter    domain.RateLimiter
	LockManager    domain.LockManager
	SignalBus      domain.SignalBus

	// Blob storage
	BlobWriter  domain.BlobWriter
	BlobReader  domain.BlobReader
	BlobDeleter domain.BlobDeleter
	Archiver    domain.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Supabase.DSN,
		Host:     cfg.Supabase.Host,
		Port:     cfg.Supabase.Port,
		Database: cfg.Supabase.Database,
		User:     cfg.Supabase.User,
		Password: cfg.Supabase.Password,
		SSLMode:  cfg.Supabase.SSLMode,
		MaxConns: cfg.Supabase.PoolMaxConns,
		MinConns: cfg.Supabase.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	// Run migrations if enabled.
	if cfg.Supabase.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.CaseStore = postgres.NewCaseStore(pool)
	deps.PartyStore = postgres.NewPartyStore(pool)
	deps.BondStore = postgres.NewBondStore(pool)
	deps.EnforcementStore = postgres.NewEnforcementStore(pool)
	deps.TaskStore = postgres.NewTaskStore(pool)
	deps.TimelineStore = postgres.NewTimelineStore(pool)
	deps.AttachmentStore = postgres.NewAttachmentStore(pool)
	auditStore := postgres.NewAuditStore(pool)
	deps.AuditStore = auditStore

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.DashboardCache = redis.NewDashboardCache(redisClient, cfg.Dashboard.CacheTTL.Duration)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- S3 blob storage ---
	s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
		Endpoint:       cfg.S3.Endpoint,
		Region:         cfg.S3.Region,
		Bucket:         cfg.S3.Bucket,
		AccessKey:      cfg.S3.AccessKey,
		SecretKey:      cfg.S3.SecretKey,
		UseSSL:         cfg.S3.UseSSL,
		ForcePathStyle: cfg.S3.ForcePathStyle,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: s3: %w", err)
	}
	closers = append(closers, func() { _ = s3Client.Close() })

	deps.BlobWriter = s3blob.NewWriter(s3Client)
	reader := s3blob.NewReader(s3Client)
	deps.BlobReader = reader
	deps.BlobDeleter = reader // same type implements BlobDeleter
	deps.Archiver = s3blob.NewArchiver(deps.BlobWriter, auditStore)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
