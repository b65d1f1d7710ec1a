// Package cache implements a flat JSON on-disk transaction cache, mirroring
// the original TxFetcher.load_cache/dump_cache pair (original_source's
// tx.py) rather than a database: spec.md §5/§6 call for no persistence
// beyond the fetcher's own memoization.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bitcoinecho/node/pkg/bitcoin"
)

// DiskCache is a single-writer, JSON-backed cache of serialized
// transactions keyed by txid, loaded and dumped to a single file.
type DiskCache struct {
	mu   sync.Mutex
	path string
	txs  map[string]*bitcoin.Transaction
}

// NewDiskCache returns an empty cache bound to path; call Load to populate
// it from an existing file.
func NewDiskCache(path string) *DiskCache {
	return &DiskCache{path: path, txs: make(map[string]*bitcoin.Transaction)}
}

// Load reads the cache file at c.path, parsing each hex-encoded raw
// transaction the same way HTTPFetcher does (handling the SegWit-marker
// quirk is the caller's job if it re-parses raw bytes directly; entries
// written by Dump are always legacy-serialized, so a plain deserialize
// suffices here).
func (c *DiskCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading cache file: %v", bitcoin.ErrFetch, err)
	}

	var onDisk map[string]string
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return fmt.Errorf("%w: parsing cache file: %v", bitcoin.ErrFormat, err)
	}

	logger := log.With().Str("module", "cache").Str("path", c.path).Logger()
	for txID, rawHex := range onDisk {
		raw, err := hex.DecodeString(rawHex)
		if err != nil {
			logger.Warn().Str("txid", txID).Msg("skipping cache entry with invalid hex")
			continue
		}
		tx, err := bitcoin.DeserializeTransaction(raw)
		if err != nil {
			logger.Warn().Str("txid", txID).Err(err).Msg("skipping unparseable cache entry")
			continue
		}
		c.txs[txID] = tx
	}
	logger.Debug().Int("count", len(c.txs)).Msg("cache loaded")
	return nil
}

// Get returns the cached transaction for txID, if present.
func (c *DiskCache) Get(txID string) (*bitcoin.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.txs[txID]
	return tx, ok
}

// Put stores tx under txID in memory; call Dump to persist.
func (c *DiskCache) Put(txID string, tx *bitcoin.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[txID] = tx
}

// Dump serializes every cached transaction to hex and writes them to
// c.path as sorted-key, indented JSON, matching dump_cache's output shape.
func (c *DiskCache) Dump() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	onDisk := make(map[string]string, len(c.txs))
	for txID, tx := range c.txs {
		raw, err := tx.Serialize()
		if err != nil {
			return fmt.Errorf("serializing %s for cache dump: %w", txID, err)
		}
		onDisk[txID] = hex.EncodeToString(raw)
	}

	data, err := json.MarshalIndent(onDisk, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing cache file: %v", bitcoin.ErrFetch, err)
	}
	return nil
}

// Fetcher wraps a bitcoin.TxFetcher with this disk cache: a hit returns the
// cached transaction directly, a miss delegates and caches the result.
type Fetcher struct {
	Next  bitcoin.TxFetcher
	Cache *DiskCache
}

// NewFetcher builds a Fetcher backed by a disk cache at path, loading any
// existing entries immediately.
func NewFetcher(next bitcoin.TxFetcher, path string) (*Fetcher, error) {
	c := NewDiskCache(path)
	if err := c.Load(); err != nil {
		return nil, err
	}
	return &Fetcher{Next: next, Cache: c}, nil
}

// Fetch implements bitcoin.TxFetcher.
func (f *Fetcher) Fetch(ctx context.Context, txID string, testnet bool) (*bitcoin.Transaction, error) {
	if tx, ok := f.Cache.Get(txID); ok {
		return tx, nil
	}
	tx, err := f.Next.Fetch(ctx, txID, testnet)
	if err != nil {
		return nil, err
	}
	f.Cache.Put(txID, tx)
	return tx, nil
}
