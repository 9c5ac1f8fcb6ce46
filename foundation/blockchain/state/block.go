package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/corechain/foundation/blockchain/contract"
	"github.com/ardanlabs/corechain/foundation/blockchain/database"
)

// ErrChainMismatch is returned when a candidate chain's genesis block does
// not match this node's genesis block.
var ErrChainMismatch = errors.New("chain does not share our genesis block")

// ErrChainNotLonger is returned when a candidate chain is not strictly
// longer than the current chain, and so loses the replacement contest.
var ErrChainNotLonger = errors.New("candidate chain is not longer than current chain")

// =============================================================================

// applyTransactions replays txs against a copy of balances, moving funds
// and then running any attached contract payload against contracts. A
// transfer that would drive its sender negative is skipped, not fatal: it
// is dropped from the balance sheet but the rest of the block still
// applies, the same treatment a failed deploy or call already gets in
// applyContractPayload. Every transaction is validated before any is
// applied, and the resulting balances are returned without mutating the
// input map, so a rejected block leaves the caller's state untouched.
func applyTransactions(balances map[database.AccountID]uint64, contracts *contract.Registry, txs []database.BlockTx, evHandler EventHandler) (map[database.AccountID]uint64, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("tx[%s]: %w", tx.ID, err)
		}
	}

	next := make(map[database.AccountID]uint64, len(balances))
	for account, balance := range balances {
		next[account] = balance
	}

	for _, tx := range txs {
		if tx.Sender.IsSystem() {
			next[tx.Recipient] += tx.Amount
			continue
		}

		if next[tx.Sender] < tx.Amount {
			if evHandler != nil {
				evHandler("state: applyTransactions: tx[%s]: skipping: %s has %d, needs %d", tx.ID, tx.Sender, next[tx.Sender], tx.Amount)
			}
			continue
		}

		next[tx.Sender] -= tx.Amount
		next[tx.Recipient] += tx.Amount

		applyContractPayload(contracts, tx, evHandler)
	}

	return next, nil
}

// applyContractPayload deploys or invokes a contract on behalf of tx, if it
// carries one. Any failure is confined to the transaction: the block that
// contains it is still accepted, but is reported through evHandler so a
// malformed deploy or a failing call leaves a trace.
func applyContractPayload(contracts *contract.Registry, tx database.BlockTx, evHandler EventHandler) {
	if tx.ContractPayload == nil {
		return
	}

	switch {
	case tx.ContractPayload.Deploy != nil:
		address := contract.DeriveAddress(tx.Sender, tx.Timestamp)
		if err := contracts.Deploy(address, tx.ContractPayload.Deploy.Source); err != nil {
			if evHandler != nil {
				evHandler("state: applyContractPayload: tx[%s]: deploy at %s failed: %s", tx.ID, address, err)
			}
		}

	case tx.ContractPayload.Call != nil:
		result, err := contracts.Call(tx.ContractPayload.Call.Address, tx.ContractPayload.Call.Args)
		if err != nil {
			if evHandler != nil {
				evHandler("state: applyContractPayload: tx[%s]: call to %s failed: %s", tx.ID, tx.ContractPayload.Call.Address, err)
			}
			return
		}
		if result.Err != nil && evHandler != nil {
			evHandler("state: applyContractPayload: tx[%s]: call to %s reverted: %s", tx.ID, tx.ContractPayload.Call.Address, result.Err)
		}
	}
}

// =============================================================================

// ApplyBlock validates block against the current head of the chain and, if
// it passes, appends it, replays its transactions into the balance sheet
// and contract registry, and drops its transactions from the mempool.
func (s *State) ApplyBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.chain[len(s.chain)-1]

	if err := block.Validate(latest, s.difficulty); err != nil {
		return err
	}

	balances, err := applyTransactions(s.balances, s.contracts, block.Transactions, s.evHandler)
	if err != nil {
		return err
	}

	s.chain = append(s.chain, block)
	s.balances = balances
	s.mempool.RemoveIncluded(block)

	s.evHandler("state: ApplyBlock: accepted blk[%d]: %s", block.Index, block.Hash)

	return nil
}

// ValidateChain walks chain from its genesis block, checking every block's
// structural invariants against its parent and replaying every
// transaction against a scratch balance sheet and contract registry.
// A transaction that fails signature validation still rejects the whole
// chain; one that merely overdraws its sender is skipped in place.
func ValidateChain(chain []database.Block, difficulty uint16, evHandler EventHandler) error {
	if len(chain) == 0 || chain[0].Hash != database.NewGenesisBlock().Hash {
		return ErrChainMismatch
	}

	balances := make(map[database.AccountID]uint64)
	contracts := contract.New()
	for i := 1; i < len(chain); i++ {
		if err := chain[i].Validate(chain[i-1], difficulty); err != nil {
			return fmt.Errorf("blk[%d]: %w", chain[i].Index, err)
		}

		next, err := applyTransactions(balances, contracts, chain[i].Transactions, evHandler)
		if err != nil {
			return fmt.Errorf("blk[%d]: %w", chain[i].Index, err)
		}
		balances = next
	}

	return nil
}

// ReplaceChain implements the longest-valid-chain rule: candidate replaces
// the current chain only if it is both strictly longer and fully valid
// from genesis. On success, balances and the contract registry are rebuilt
// from the new chain by full replay and the mempool is pruned of any
// transaction the new chain already carries.
func (s *State) ReplaceChain(candidate []database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candidate) <= len(s.chain) {
		return ErrChainNotLonger
	}

	if err := ValidateChain(candidate, s.difficulty, s.evHandler); err != nil {
		return err
	}

	balances := make(map[database.AccountID]uint64, len(s.genesis.Balances))
	for account, balance := range s.genesis.Balances {
		balances[database.AccountID(account)] = balance
	}

	contracts := contract.New()
	for i := 1; i < len(candidate); i++ {
		next, err := applyTransactions(balances, contracts, candidate[i].Transactions, s.evHandler)
		if err != nil {
			return fmt.Errorf("blk[%d]: %w", candidate[i].Index, err)
		}
		balances = next
	}

	s.chain = candidate
	s.balances = balances
	s.contracts = contracts

	for _, block := range candidate {
		s.mempool.RemoveIncluded(block)
	}

	s.evHandler("state: ReplaceChain: adopted chain of length %d", len(candidate))

	return nil
}
