package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/garagehub/rc-intake/internal/common"
)

func init() {
	// modernc's driver name is unknown to sqlx; sqlite natively accepts $N
	// placeholders, so both drivers share the dollar bind type.
	sqlx.BindDriver("sqlite", sqlx.DOLLAR)
}

// Config holds connection settings for the intake store.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
}

// Open connects to the intake store. An embedded sqlite file is the default;
// a postgres:// DSN switches to the pgx driver.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := "sqlite"
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		driver = "pgx"
	}
	logger.Info("connecting to database", "driver", driver)

	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, common.WrapError(err, "open database")
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		_ = db.Close()
		return nil, common.WrapError(err, "ping database")
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database")
	return db, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS intake_document (
	id             TEXT PRIMARY KEY,
	client_id      TEXT NOT NULL,
	source         TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	ocr_text       TEXT NOT NULL DEFAULT '',
	ocr_confidence REAL NOT NULL DEFAULT 0,
	record_json    TEXT,
	needs_review   BOOLEAN NOT NULL DEFAULT FALSE,
	error_message  TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_intake_document_client ON intake_document (client_id, created_at);
CREATE INDEX IF NOT EXISTS idx_intake_document_status ON intake_document (status);
`

// Migrate applies the store schema. Idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return common.WrapError(err, "apply schema")
	}
	return nil
}

// HealthCheck pings the store; catches DSN issues early on startup.
func HealthCheck(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
