// Package state is the core API for the blockchain and implements the
// chain and account balance rules: applying blocks, validating and
// replacing chains, and mining new blocks against the mempool.
package state

import (
	"sync"

	"github.com/ardanlabs/corechain/foundation/blockchain/contract"
	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/genesis"
	"github.com/ardanlabs/corechain/foundation/blockchain/mempool"
	"github.com/ardanlabs/corechain/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events occur in the
// processing of persisting blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the blockchain
// node's state.
type Config struct {
	MinerAccount database.AccountID
	Host         string
	GenesisPath  string
	KnownPeers   *peer.PeerSet
	Difficulty   uint16
	MiningReward uint64
	EvHandler    EventHandler
}

// State manages the blockchain: the chain itself, the balances derived
// from replaying it, and the mempool of transactions waiting to be mined.
type State struct {
	minerAccount database.AccountID
	host         string
	difficulty   uint16
	miningReward uint64
	evHandler    EventHandler

	mu       sync.RWMutex
	chain    []database.Block
	balances map[database.AccountID]uint64

	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	contracts  *contract.Registry
}

// New constructs a State seeded with the genesis block and the genesis
// file's founder balances.
func New(cfg Config) (*State, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	gen, err := genesis.Load(cfg.GenesisPath)
	if err != nil {
		return nil, err
	}

	balances := make(map[database.AccountID]uint64, len(gen.Balances))
	for account, balance := range gen.Balances {
		balances[database.AccountID(account)] = balance
	}

	s := State{
		minerAccount: cfg.MinerAccount,
		host:         cfg.Host,
		difficulty:   cfg.Difficulty,
		miningReward: cfg.MiningReward,
		evHandler:    ev,

		chain:    []database.Block{database.NewGenesisBlock()},
		balances: balances,

		knownPeers: cfg.KnownPeers,
		genesis:    gen,
		mempool:    mempool.New(),
		contracts:  contract.New(),
	}

	return &s, nil
}

// Shutdown releases the state's resources. Mining and gossip are driven by
// the coordinator, which owns its own shutdown sequence; this exists so
// callers have one place to release whatever State itself comes to own.
func (s *State) Shutdown() error {
	return nil
}

// MinerAccount returns the account credited with mining rewards by this
// node.
func (s *State) MinerAccount() database.AccountID {
	return s.minerAccount
}

// Difficulty returns the number of leading hex zeros a block hash must
// carry to be accepted.
func (s *State) Difficulty() uint16 {
	return s.difficulty
}

// MiningReward returns the amount credited to a miner for each block it
// successfully mines.
func (s *State) MiningReward() uint64 {
	return s.miningReward
}

// KnownPeers returns the set of peers this node is aware of.
func (s *State) KnownPeers() *peer.PeerSet {
	return s.knownPeers
}

// Mempool returns the state's transaction pool.
func (s *State) Mempool() *mempool.Mempool {
	return s.mempool
}
