package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/deadline"
	"github.com/wonny/rentix/backend/internal/feed"
	"github.com/wonny/rentix/backend/internal/indexation"
	"github.com/wonny/rentix/backend/internal/policyconfig"
	"github.com/wonny/rentix/backend/internal/recompute"
	"github.com/wonny/rentix/backend/internal/store"
	"github.com/wonny/rentix/backend/pkg/config"
	"github.com/wonny/rentix/backend/pkg/database"
	"github.com/wonny/rentix/backend/pkg/httputil"
	"github.com/wonny/rentix/backend/pkg/logger"
	"github.com/wonny/rentix/backend/pkg/redis"
)

// app holds every wired dependency of a command
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	policy     *policyconfig.Config
	policyHash string

	// index: raw repository for writers, cached store for readers
	index     contracts.IndexRepository
	indexRead contracts.IndexStore
	cache     *store.CachedIndexStore
	redis     *redis.Client

	contracts contracts.ContractRepository
	audit     contracts.AuditRepository

	resolver *indexation.Resolver
	calc     *indexation.Calculator
	planner  *deadline.Planner

	closers []func()
}

// storageMode picks the backing store:
// postgres (DATABASE_URL) > sqlite (SQLITE_PATH, index only) > memory
func storageMode(cfg *config.Config) string {
	switch {
	case cfg.Database.URL != "":
		return "postgres"
	case cfg.SQLitePath != "":
		return "sqlite"
	default:
		return "memory"
	}
}

// newApp loads config and policy and wires stores and engine services.
// requireDB makes PostgreSQL mandatory (api, scheduler).
func newApp(ctx context.Context, requireDB bool) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if policyFile != "" {
		cfg.Engine.PolicyFile = policyFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if requireDB {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, err
		}
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	// 3. Engine policy
	a.policy, err = policyconfig.FromEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	for _, w := range policyconfig.Warn(a.policy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	a.policyHash, err = policyconfig.Hash(a.policy)
	if err != nil {
		return nil, fmt.Errorf("hash policy: %w", err)
	}

	// 4. Stores
	if err := a.openStores(ctx); err != nil {
		a.close()
		return nil, err
	}

	// 5. Redis read-through cache (REDIS_ENABLED=false 이면 pass-through)
	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, index cache disabled")
		rc, _ = redis.New(&config.Config{})
	}
	a.redis = rc
	a.closers = append(a.closers, func() { rc.Close() })
	a.cache = store.NewCachedIndexStore(a.index, redis.NewCache(rc, "rentix"), log)
	a.indexRead = a.cache

	// 6. Engine
	a.resolver = indexation.NewResolver(a.indexRead, log)
	a.calc = indexation.NewCalculator(a.resolver, a.policyHash)
	a.planner, err = deadline.NewPlanner(a.policy.GlobalDefaults())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create planner: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"storage":     storageMode(cfg),
		"policy_id":   a.policy.Meta.PolicyID,
		"policy_hash": a.policyHash,
	}).Debug("Dependencies wired")

	return a, nil
}

func (a *app) openStores(ctx context.Context) error {
	switch storageMode(a.cfg) {
	case "postgres":
		db, err := database.New(a.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx, store.PostgresSchema); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		a.index = store.NewIndexRepository(db.Pool)
		a.contracts = store.NewContractRepository(db.Pool)
		a.audit = store.NewAuditRepository(db.Pool)

	case "sqlite":
		sqlDB, err := database.OpenSQLite(a.cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, func() { sqlDB.Close() })
		s, err := store.NewSQLiteStore(ctx, sqlDB)
		if err != nil {
			return err
		}
		a.index = s
		// contracts live in PostgreSQL only; offline runs keep them in memory
		mem := store.NewMemoryStore()
		a.contracts = mem
		a.audit = mem

	default:
		mem := store.NewMemoryStore()
		a.index = mem
		a.contracts = mem
		a.audit = mem
	}
	return nil
}

// ingester wires the CBS and BOI fetchers from the policy catalogue.
// Each source gets its own client so the Redis window is per provider.
func (a *app) ingester() *feed.Ingester {
	limiter := redis.NewRateLimiter(a.redis, "rentix")

	cbsClient := httputil.New(a.cfg, a.log).WithRateLimiter(limiter, redis.CBSRateLimit)
	boiClient := httputil.New(a.cfg, a.log).WithRateLimiter(limiter, redis.BOIRateLimit)

	cbs := feed.NewCBSFetcher(cbsClient, a.cfg.Feed.CBSBaseURL,
		a.policy.SourceCodes(contracts.SourceCBS), a.cfg.Feed.LastMonths, a.log)
	boi := feed.NewBOIFetcher(boiClient, a.cfg.Feed.BOIBaseURL,
		a.policy.SourceCodes(contracts.SourceBOI), a.cfg.Feed.LastMonths*31, a.log)

	return feed.NewIngester(feed.NewRouter(cbs, boi), a.index, a.cache, a.log)
}

func (a *app) recomputer() *recompute.Recomputer {
	return recompute.New(a.contracts, a.audit, a.calc, a.policy.Recompute.Workers, a.log)
}

func (a *app) location() *time.Location {
	loc, err := time.LoadLocation(a.policy.Meta.Timezone)
	if err != nil {
		a.log.WithError(err).Warn("Unknown policy timezone, using local time")
		return time.Local
	}
	return loc
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
