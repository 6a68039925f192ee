package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/safwentrabelsi/spl-approval-revoker/types"
	bolt "go.etcd.io/bbolt"
)

var receiptsBucket = []byte("receipts")

// BoltStore keeps receipts in a local bbolt file, keyed by submission time then id.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(receiptsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create receipts bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func receiptKey(r types.Receipt) []byte {
	return []byte(r.SubmittedAt.UTC().Format(time.RFC3339Nano) + "/" + r.ID)
}

func (s *BoltStore) SaveReceipt(ctx context.Context, r types.Receipt) error {
	value, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(receiptsBucket).Put(receiptKey(r), value)
	})
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

// GetReceipts returns the receipts of owner, newest first.
func (s *BoltStore) GetReceipts(ctx context.Context, owner string) ([]types.Receipt, error) {
	receipts := []types.Receipt{}
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(receiptsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var r types.Receipt
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode receipt %s: %w", k, err)
			}
			if r.Owner == owner {
				receipts = append(receipts, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
