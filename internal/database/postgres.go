package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type PgRepository struct {
	conn *sqlx.DB
	log  *zap.Logger
}

func NewPgRepository(dsn string, logger *zap.Logger) (*PgRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	logger.Info("connected to database")
	return &PgRepository{conn: db, log: logger}, nil
}

// NewPgRepositoryFromDB wraps an existing connection pool.
func NewPgRepositoryFromDB(db *sqlx.DB, logger *zap.Logger) *PgRepository {
	return &PgRepository{conn: db, log: logger}
}

func (db *PgRepository) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *PgRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
