package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	storeFileName      = "snapcal.db"
	storeBucketResults = "results" // key: result ID -> Result JSON
)

// ResultStore persists analysis results next to the screenshots
type ResultStore struct {
	db *bbolt.DB
}

func storePath(dir string) string {
	return filepath.Join(dir, storeFileName)
}

func OpenResultStore(path string) (*ResultStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening result store: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(storeBucketResults))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing result store: %w", err)
	}

	return &ResultStore{db: db}, nil
}

func (s *ResultStore) Save(results ...*Result) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(storeBucketResults))
		for _, r := range results {
			if r.ID == "" {
				return errors.New("result has no id")
			}
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(r.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// all stored results, oldest first
func (s *ResultStore) List() ([]*Result, error) {
	var results []*Result
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(storeBucketResults)).ForEach(func(k, v []byte) error {
			var r Result
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding result %s: %w", k, err)
			}
			results = append(results, &r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AnalyzedAt.Before(results[j].AnalyzedAt)
	})
	return results, nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}
