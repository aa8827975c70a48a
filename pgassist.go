package pgassist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/SheshuGit/MCP-Postgres/internal/timeout"
)

// Assistant is the core engine behind the RunSelect, RunSQL,
// ListTables, DescribeTable, and PreviewTable operations. All exported
// methods are safe for concurrent use from multiple goroutines.
//
// The connection pool is created lazily on first use behind a
// create-once gate; every operation ensures the pool before acquiring
// a connection. Callers that must fail fast on an unreachable database
// (the server does) call Ping during startup.
type Assistant struct {
	config     Config
	poolConfig *pgxpool.Config
	semaphore  chan struct{}
	timeoutMgr *timeout.Manager
	logger     zerolog.Logger

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// New creates a new Assistant. connString is the PostgreSQL connection
// string (must include credentials). The database is not contacted
// here — the pool is created on first use or by Ping.
// Panics on invalid config. Returns an error only if connString does
// not parse.
func New(connString string, config Config, logger zerolog.Logger) (*Assistant, error) {
	// --- Config validation (panics on invalid config) ---

	if connString == "" {
		panic("pgassist: connString must be non-empty")
	}
	if config.Pool.MaxConns <= 0 {
		panic("pgassist: pool.max_conns must be > 0")
	}
	if config.Query.DefaultTimeoutSeconds <= 0 {
		panic("pgassist: query.default_timeout_seconds must be > 0")
	}
	if config.Query.ListTablesTimeoutSeconds <= 0 {
		panic("pgassist: query.list_tables_timeout_seconds must be > 0")
	}
	if config.Query.DescribeTableTimeoutSeconds <= 0 {
		panic("pgassist: query.describe_table_timeout_seconds must be > 0")
	}

	// Apply defaults for zero values
	if config.Pool.AcquireTimeoutSeconds == 0 {
		config.Pool.AcquireTimeoutSeconds = 10
	}
	if config.Query.PreviewTimeoutSeconds == 0 {
		config.Query.PreviewTimeoutSeconds = config.Query.DefaultTimeoutSeconds
	}
	if config.Query.MaxSQLLength == 0 {
		config.Query.MaxSQLLength = 100000
	}
	if config.Query.MaxResultLength == 0 {
		config.Query.MaxResultLength = 100000
	}
	if config.Pool.AcquireTimeoutSeconds < 0 {
		panic("pgassist: pool.acquire_timeout_seconds must be > 0")
	}
	if config.Query.PreviewTimeoutSeconds < 0 {
		panic("pgassist: query.preview_timeout_seconds must be > 0")
	}
	if config.Query.MaxSQLLength < 0 {
		panic("pgassist: query.max_sql_length must be > 0")
	}
	if config.Query.MaxResultLength < 0 {
		panic("pgassist: query.max_result_length must be > 0")
	}

	// --- Configure pgxpool (built here so lazy creation cannot fail
	// on bad config later) ---

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(config.Pool.MaxConns)
	poolConfig.MinConns = int32(config.Pool.MinConns)
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	if config.Pool.MaxConnLifetime != "" {
		d, err := time.ParseDuration(config.Pool.MaxConnLifetime)
		if err != nil {
			panic(fmt.Sprintf("pgassist: invalid pool.max_conn_lifetime %q: %v", config.Pool.MaxConnLifetime, err))
		}
		poolConfig.MaxConnLifetime = d
	}
	if config.Pool.MaxConnIdleTime != "" {
		d, err := time.ParseDuration(config.Pool.MaxConnIdleTime)
		if err != nil {
			panic(fmt.Sprintf("pgassist: invalid pool.max_conn_idle_time %q: %v", config.Pool.MaxConnIdleTime, err))
		}
		poolConfig.MaxConnIdleTime = d
	}
	if config.Pool.HealthCheckPeriod != "" {
		d, err := time.ParseDuration(config.Pool.HealthCheckPeriod)
		if err != nil {
			panic(fmt.Sprintf("pgassist: invalid pool.health_check_period %q: %v", config.Pool.HealthCheckPeriod, err))
		}
		poolConfig.HealthCheckPeriod = d
	}

	timeoutRules := make([]timeout.Rule, len(config.Query.TimeoutRules))
	for i, r := range config.Query.TimeoutRules {
		if r.TimeoutSeconds <= 0 {
			panic(fmt.Sprintf("pgassist: timeout_rule with pattern %q has timeout_seconds <= 0", r.Pattern))
		}
		timeoutRules[i] = timeout.Rule{
			Pattern: r.Pattern,
			Timeout: time.Duration(r.TimeoutSeconds) * time.Second,
		}
	}
	tmgr, err := timeout.NewManager(timeout.Config{
		DefaultTimeout: time.Duration(config.Query.DefaultTimeoutSeconds) * time.Second,
		Rules:          timeoutRules,
	})
	if err != nil {
		panic(fmt.Sprintf("pgassist: %v", err))
	}

	return &Assistant{
		config:     config,
		poolConfig: poolConfig,
		semaphore:  make(chan struct{}, config.Pool.MaxConns),
		timeoutMgr: tmgr,
		logger:     logger,
	}, nil
}

// ensurePool returns the shared pool, creating it on first call.
// Concurrent first-callers serialize on the mutex so exactly one pool
// is ever created. A failed creation leaves the gate open for retry.
func (a *Assistant) ensurePool(ctx context.Context) (*pgxpool.Pool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pool != nil {
		return a.pool, nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, a.poolConfig)
	if err != nil {
		return nil, wrapError(KindConnection, "failed to create connection pool", err)
	}
	a.pool = pool
	a.logger.Info().
		Int("max_conns", a.config.Pool.MaxConns).
		Msg("connection pool initialized")
	return pool, nil
}

// EnsureReady makes sure the connection pool exists. Idempotent;
// returns immediately when the pool was already created.
func (a *Assistant) EnsureReady(ctx context.Context) error {
	_, err := a.ensurePool(ctx)
	return err
}

// Ping ensures the pool exists and verifies the database is reachable.
// Startup must treat a Ping failure as fatal and not begin serving.
func (a *Assistant) Ping(ctx context.Context) error {
	pool, err := a.ensurePool(ctx)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		return wrapError(KindConnection, "database is unreachable", err)
	}
	return nil
}

// Close closes the connection pool. Safe to call when the pool was
// never created. Accepts context for API forward-compatibility;
// pgxpool.Pool.Close() does not support context-based shutdown.
func (a *Assistant) Close(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

// acquireSlot takes a connection slot, waiting at most the configured
// acquire timeout. The semaphore is sized to pool.max_conns, so a slot
// guarantees a free pool connection.
func (a *Assistant) acquireSlot(ctx context.Context) error {
	wait := time.Duration(a.config.Pool.AcquireTimeoutSeconds) * time.Second
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case a.semaphore <- struct{}{}:
		return nil
	case <-timer.C:
		return newError(KindPoolExhausted,
			"all %d connection slots are in use, gave up after waiting %s", cap(a.semaphore), wait)
	case <-ctx.Done():
		return wrapError(KindPoolExhausted,
			fmt.Sprintf("all %d connection slots are in use, context cancelled while waiting", cap(a.semaphore)), ctx.Err())
	}
}

// releaseSlot returns a connection slot.
func (a *Assistant) releaseSlot() {
	<-a.semaphore
}
