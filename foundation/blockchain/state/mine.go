package state

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/corechain/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be mined but
// the mempool has nothing to include.
var ErrNoTransactions = errors.New("no transactions in mempool")

// MineNewBlock drains the mempool, prepends the miner's coinbase reward,
// and searches for a proof-of-work solution on top of the current chain
// head. The search can be cancelled through ctx by a concurrent chain
// replacement; a cancelled search returns database.ErrMiningPreempted.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.mu.RLock()
	latest := s.chain[len(s.chain)-1]
	s.mu.RUnlock()

	txs := s.mempool.DrainForBlock(-1)
	if len(txs) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	reward := database.NewBlockTx(database.NewSystemTx(s.minerAccount, s.miningReward, uint64(time.Now().UnixMilli())))
	txs = append([]database.BlockTx{reward}, txs...)

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]", latest.Index+1)

	block, err := database.MineBlock(ctx, latest, txs, s.difficulty, uint64(time.Now().UnixMilli()), s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	if err := s.ApplyBlock(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}
