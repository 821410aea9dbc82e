package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

func ConnectPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// EnsureSchema cria a tabela de transferências caso não exista
// A unique constraint em transfer_id é o mecanismo de deduplicação do serviço
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS transfers (
		id BIGSERIAL PRIMARY KEY,
		transfer_id VARCHAR(255) UNIQUE NOT NULL,
		from_account_id BIGINT NOT NULL,
		to_account_id BIGINT NOT NULL,
		amount NUMERIC(19,4) NOT NULL,
		status VARCHAR(64) NOT NULL,
		version BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_transfers_created_at ON transfers (created_at);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure transfers schema: %w", err)
	}
	return nil
}
