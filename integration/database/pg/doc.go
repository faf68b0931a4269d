// Package pg connects to PostgreSQL, applies the schema and stores the
// client session in a table.
//
// Connect builds a pgx connection pool from Config and verifies it with a
// ping, retrying with exponential backoff. Migrate applies the embedded goose
// migrations through pgx's database/sql adapter. Healthcheck returns a probe
// suitable for readiness checks.
//
// # Configuration
//
//	type Config struct {
//		ConnectionString  string        `env:"PG_CONN_URL"`
//		MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//		MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
//		HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
//		MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
//		MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`
//		RetryAttempts     int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval     time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
//		MigrationsTable   string        `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
//		SessionKey        string        `env:"PG_SESSION_KEY" envDefault:"default"`
//	}
//
// # Session persistence
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	p, err := pg.NewSessionPersister(pool, cfg.SessionKey)
//	if err != nil {
//		return err
//	}
//	store := session.NewStore(session.WithPersister(p))
//
// # Transactions
//
// WithTx attaches a pgx.Tx to a context. SessionPersister runs its queries
// inside that transaction, so a session write can commit or roll back
// together with other rows:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	if err := store.Clear(pg.WithTx(ctx, tx)); err != nil {
//		return err
//	}
//	return tx.Commit(ctx)
//
// # Errors
//
// IsNotFoundError, IsDuplicateKeyError, IsForeignKeyViolationError and
// IsTxClosedError classify driver errors.
package pg
