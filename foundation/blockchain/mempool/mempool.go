// Package mempool maintains the pool of unconfirmed transactions waiting to
// be picked up by the next mined block.
package mempool

import (
	"errors"
	"sync"

	"github.com/ardanlabs/corechain/foundation/blockchain/database"
)

// MaxSize caps the number of transactions the pool will hold at once. A
// full pool rejects new submissions rather than evicting older ones so a
// sender can't push out someone else's pending transaction.
const MaxSize = 5000

// ErrDuplicate is returned when a transaction with the same id is already
// in the pool.
var ErrDuplicate = errors.New("transaction already in mempool")

// ErrFull is returned when the pool has reached MaxSize.
var ErrFull = errors.New("mempool is full")

// Mempool represents a cache of uncommitted transactions, released to a
// miner in the order they were accepted.
type Mempool struct {
	mu    sync.RWMutex
	order []string
	pool  map[string]database.BlockTx
}

// New constructs an empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.BlockTx),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.order)
}

// Submit validates tx and, if accepted, appends it to the pool. It returns
// the resulting pool size.
func (mp *Mempool) Submit(tx database.BlockTx) (int, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[tx.ID]; exists {
		return len(mp.order), ErrDuplicate
	}

	if len(mp.order) >= MaxSize {
		return len(mp.order), ErrFull
	}

	mp.pool[tx.ID] = tx
	mp.order = append(mp.order, tx.ID)

	return len(mp.order), nil
}

// DrainForBlock returns up to howMany transactions in submission order
// without removing them from the pool. Pass -1 for every transaction
// currently held. The caller removes them, via RemoveIncluded, only once
// the block that carries them is accepted onto the chain.
func (mp *Mempool) DrainForBlock(howMany int) []database.BlockTx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if howMany < 0 || howMany > len(mp.order) {
		howMany = len(mp.order)
	}

	txs := make([]database.BlockTx, 0, howMany)
	for _, id := range mp.order[:howMany] {
		txs = append(txs, mp.pool[id])
	}

	return txs
}

// RemoveIncluded removes every transaction in block from the pool.
func (mp *Mempool) RemoveIncluded(block database.Block) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	included := make(map[string]struct{}, len(block.Transactions))
	for _, tx := range block.Transactions {
		included[tx.ID] = struct{}{}
	}

	order := mp.order[:0]
	for _, id := range mp.order {
		if _, found := included[id]; found {
			delete(mp.pool, id)
			continue
		}
		order = append(order, id)
	}
	mp.order = order
}

// Copy returns every transaction currently held, in submission order.
func (mp *Mempool) Copy() []database.BlockTx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.BlockTx, 0, len(mp.order))
	for _, id := range mp.order {
		txs = append(txs, mp.pool[id])
	}

	return txs
}

// Truncate clears every transaction from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.order = nil
	mp.pool = make(map[string]database.BlockTx)
}
