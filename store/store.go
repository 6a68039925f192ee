package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/safwentrabelsi/spl-approval-revoker/config"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
)

// Storer records revocation transactions submitted by this tool.
type Storer interface {
	SaveReceipt(ctx context.Context, receipt types.Receipt) error
	GetReceipts(ctx context.Context, owner string) ([]types.Receipt, error)
	Close() error
}

// New returns the receipt store selected by the configuration.
func New(cfg *config.StoreConfig) (Storer, error) {
	switch cfg.GetDriver() {
	case "none":
		return NopStore{}, nil
	case "bolt":
		return NewBoltStore(cfg.GetPath())
	case "postgres":
		return NewPostgresStore(cfg.GetDB())
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.GetDriver())
	}
}

// NopStore discards receipts.
type NopStore struct{}

func (NopStore) SaveReceipt(ctx context.Context, receipt types.Receipt) error {
	return nil
}

func (NopStore) GetReceipts(ctx context.Context, owner string) ([]types.Receipt, error) {
	return []types.Receipt{}, nil
}

func (NopStore) Close() error {
	return nil
}

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new instance of PostgresStore
func NewPostgresStore(cfg *config.DBConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.GetPostgresqlDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	return newPostgresStore(db)
}

// newPostgresStore checks the connection and creates the tables. db is closed on failure.
func newPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	store := &PostgresStore{
		db: db,
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// init is called to initialize necessary tables in the database
func (s *PostgresStore) init() error {
	query := `
		CREATE TABLE IF NOT EXISTS revocation_receipts (
			id TEXT PRIMARY KEY,
			signature TEXT NOT NULL UNIQUE,
			owner TEXT NOT NULL,
			mints TEXT[] NOT NULL,
			count INT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL
		);
	`

	_, err := s.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create revocation_receipts table: %v", err)
	}

	return nil
}

func (s *PostgresStore) SaveReceipt(ctx context.Context, r types.Receipt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revocation_receipts (id, signature, owner, mints, count, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.ID, r.Signature, r.Owner, pq.Array(r.Mints), r.Count, r.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReceipts(ctx context.Context, owner string) ([]types.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, signature, owner, mints, count, submitted_at
		FROM revocation_receipts
		WHERE owner = $1
		ORDER BY submitted_at DESC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []types.Receipt{}
	for rows.Next() {
		var r types.Receipt
		if err := rows.Scan(&r.ID, &r.Signature, &r.Owner, pq.Array(&r.Mints), &r.Count, &r.SubmittedAt); err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}

	return receipts, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
