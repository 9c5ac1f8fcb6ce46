package state

import (
	"errors"

	"github.com/ardanlabs/corechain/foundation/blockchain/contract"
	"github.com/ardanlabs/corechain/foundation/blockchain/database"
)

// ErrNotFound is returned when a queried block does not exist on the
// current chain.
var ErrNotFound = errors.New("block not found")

// LatestBlock returns the block currently at the head of the chain.
func (s *State) LatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain[len(s.chain)-1]
}

// CopyChain returns a copy of the full chain, from genesis to head.
func (s *State) CopyChain() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cpy := make([]database.Block, len(s.chain))
	copy(cpy, s.chain)
	return cpy
}

// QueryBlock returns the block at index, if the chain has grown that far.
func (s *State) QueryBlock(index uint64) (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index >= uint64(len(s.chain)) {
		return database.Block{}, ErrNotFound
	}

	return s.chain[index], nil
}

// QueryBalance returns the current balance of account.
func (s *State) QueryBalance(account database.AccountID) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances[account]
}

// CopyBalances returns a copy of every known account balance.
func (s *State) CopyBalances() map[database.AccountID]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cpy := make(map[database.AccountID]uint64, len(s.balances))
	for account, balance := range s.balances {
		cpy[account] = balance
	}
	return cpy
}

// Contracts returns the state's contract registry.
func (s *State) Contracts() *contract.Registry {
	return s.contracts
}

// ValidateOwnChain reports whether the node's own chain, as it currently
// stands, still satisfies every structural and balance invariant.
func (s *State) ValidateOwnChain() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ValidateChain(s.chain, s.difficulty, s.evHandler)
}
