package bitcoin

import (
	"context"
	"fmt"
	"sync"
)

// TxCache holds previously-fetched transactions keyed by txid, so that a
// transaction with several inputs spending the same previous transaction
// only triggers one TxFetcher.Fetch call (spec.md §4.6/§6).
type TxCache struct {
	mu  sync.RWMutex
	txs map[string]*Transaction
}

// NewTxCache returns an empty in-memory transaction cache.
func NewTxCache() *TxCache {
	return &TxCache{txs: make(map[string]*Transaction)}
}

// Get returns the cached transaction for txID, if present.
func (c *TxCache) Get(txID string) (*Transaction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tx, ok := c.txs[txID]
	return tx, ok
}

// Put stores tx under txID, overwriting any existing entry.
func (c *TxCache) Put(txID string, tx *Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[txID] = tx
}

// Size returns the number of cached transactions.
func (c *TxCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.txs)
}

// Clear empties the cache.
func (c *TxCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs = make(map[string]*Transaction)
}

// CachingFetcher wraps a TxFetcher with a TxCache, so repeated lookups of
// the same previous transaction (common across a transaction's inputs, or
// across a batch of fee computations) only hit Next once per txid.
type CachingFetcher struct {
	Next  TxFetcher
	Cache *TxCache
}

// NewCachingFetcher wraps next with a fresh TxCache.
func NewCachingFetcher(next TxFetcher) *CachingFetcher {
	return &CachingFetcher{Next: next, Cache: NewTxCache()}
}

// Fetch implements TxFetcher, consulting the cache before delegating.
func (f *CachingFetcher) Fetch(ctx context.Context, txID string, testnet bool) (*Transaction, error) {
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

// PrevOut is a previous output's value and locking script, the pair a
// script-validating caller needs for each spent input.
type PrevOut struct {
	Amount       uint64
	ScriptPubKey Script
}

// ResolvePrevOut fetches the transaction referenced by in.PrevTx and
// extracts the specific output it spends, for callers that need to validate
// a ScriptSig/ScriptPubKey pair rather than just read the output's amount.
func ResolvePrevOut(ctx context.Context, fetcher TxFetcher, in TxInput, testnet bool) (*PrevOut, error) {
	prevTx, err := fetcher.Fetch(ctx, in.PrevTx.String(), testnet)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving previous output: %v", ErrFetch, err)
	}
	if int(in.PrevIndex) >= len(prevTx.Outputs) {
		return nil, fmt.Errorf("%w: prev_index %d out of range for tx %s", ErrFormat, in.PrevIndex, in.PrevTx)
	}
	out := prevTx.Outputs[in.PrevIndex]
	return &PrevOut{Amount: out.Amount, ScriptPubKey: out.ScriptPubKey}, nil
}
