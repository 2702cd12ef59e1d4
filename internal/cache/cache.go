// Package cache provides the Badger-backed search result cache. It is a
// pure optimization layer: every failure degrades to a cache miss and the
// caller recomputes from the bookmark store.
package cache

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrMiss reports that no live entry exists for the key.
var ErrMiss = errors.New("cache miss")

const searchPrefix = "search:"

// ResultCache stores serialized search results keyed by owner and request
// signature, with a bounded TTL. Entries are scoped to one owner so that
// invalidation can drop everything that owner might see.
type ResultCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Open creates a result cache at the given path.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*ResultCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return &ResultCache{db: db, ttl: ttl, logger: logger}, nil
}

// Close closes the underlying database.
func (c *ResultCache) Close() error {
	return c.db.Close()
}

func cacheKey(ownerID, signature string) []byte {
	return []byte(searchPrefix + ownerID + ":" + signature)
}

// Get loads a cached result into dest. Returns ErrMiss when absent or
// expired; Badger handles TTL expiry natively.
func (c *ResultCache) Get(ownerID, signature string, dest any) error {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(ownerID, signature))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrMiss
	}
	return err
}

// Set stores a result under the owner's key space. Last write wins.
func (c *ResultCache) Set(ownerID, signature string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(ownerID, signature), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

// InvalidateOwner drops every cached search for the owner. Coarse on
// purpose: after any bookmark mutation the owner's next search must hit
// the store, and correctness outweighs hit rate here.
func (c *ResultCache) InvalidateOwner(ownerID string) error {
	prefix := []byte(searchPrefix + ownerID + ":")

	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan owner keys: %w", err)
	}

	for _, key := range keys {
		err := c.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err != nil {
			return fmt.Errorf("delete cache key: %w", err)
		}
	}
	return nil
}
