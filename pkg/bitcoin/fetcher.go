package bitcoin

import "context"

// TxFetcher resolves a transaction id to its parsed Transaction. It is the
// sole external collaborator the core depends on (spec.md §6); Tx.Fee and
// TxInput.Value use it to resolve previous-output values. The concrete HTTP
// implementation lives in internal/fetch and the disk cache in
// internal/cache, outside the core.
type TxFetcher interface {
	Fetch(ctx context.Context, txID string, testnet bool) (*Transaction, error)
}
