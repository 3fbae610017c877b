package receipt

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const uploadsBucket = "uploads"

// DB records metadata about stored uploads
type DB interface {
	// SaveUpload saves an upload record
	SaveUpload(upload *Upload) error

	// GetUpload retrieves an upload record by ID
	GetUpload(id string) (*Upload, error)

	// ListUploads returns all upload records, oldest first
	ListUploads() ([]*Upload, error)

	// Close closes the database
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the upload ledger at path
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(uploadsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveUpload saves an upload record
func (b *BoltDB) SaveUpload(upload *Upload) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(uploadsBucket))
		data, err := json.Marshal(upload)
		if err != nil {
			return fmt.Errorf("marshaling upload: %w", err)
		}
		return bucket.Put([]byte(upload.ID), data)
	})
}

// GetUpload retrieves an upload record by ID
func (b *BoltDB) GetUpload(id string) (*Upload, error) {
	var upload *Upload
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(uploadsBucket))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("upload not found: %s", id)
		}
		return json.Unmarshal(data, &upload)
	})
	if err != nil {
		return nil, err
	}
	return upload, nil
}

// ListUploads returns all upload records, oldest first
func (b *BoltDB) ListUploads() ([]*Upload, error) {
	uploads := make([]*Upload, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(uploadsBucket))
		return bucket.ForEach(func(k, v []byte) error {
			var upload Upload
			if err := json.Unmarshal(v, &upload); err != nil {
				return fmt.Errorf("unmarshaling upload: %w", err)
			}
			uploads = append(uploads, &upload)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Keys are UUIDs, so bucket order says nothing about age
	sort.SliceStable(uploads, func(i, j int) bool {
		return uploads[i].CreatedAt.Before(uploads[j].CreatedAt)
	})
	return uploads, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
