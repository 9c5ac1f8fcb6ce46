package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ardanlabs/corechain/foundation/blockchain/merkle"
)

// ErrMiningPreempted is returned by MineBlock when the context is cancelled before
// a solution is found, meaning a better chain arrived while mining.
var ErrMiningPreempted = errors.New("mining preempted")

// ErrDifficultyNotMet is returned when a block's hash does not carry the
// required number of leading hex zeros.
var ErrDifficultyNotMet = errors.New("difficulty not met")

// ErrBadIndex is returned when a block's index does not follow its parent.
var ErrBadIndex = errors.New("bad index")

// ErrBadPrevHash is returned when a block's previous hash does not match its
// parent's hash.
var ErrBadPrevHash = errors.New("bad previous hash")

// ErrBadMerkle is returned when a block's stated merkle root does not match
// the root recomputed from its transactions.
var ErrBadMerkle = errors.New("bad merkle root")

// ErrBadHash is returned when a block's stated hash does not match the hash
// recomputed from its header fields.
var ErrBadHash = errors.New("bad hash")

// =============================================================================

// Block represents a group of transactions batched together, linked to its
// parent by hash, and stamped with a proof-of-work nonce.
type Block struct {
	Index        uint64    `json:"index"`
	Timestamp    uint64    `json:"timestamp"`
	Transactions []BlockTx `json:"transactions"`
	PreviousHash string    `json:"previous_hash"`
	Nonce        uint64    `json:"nonce"`
	MerkleRoot   string    `json:"merkle_root"`
	Hash         string    `json:"hash"`
}

// NewGenesisBlock constructs the deterministic block every node must agree
// on as block zero: fixed timestamp, no transactions, previous hash "0".
func NewGenesisBlock() Block {
	b := Block{
		Index:        0,
		Timestamp:    0,
		Transactions: []BlockTx{},
		PreviousHash: "0",
		Nonce:        0,
	}

	b.MerkleRoot = merkleRootHex(b.Transactions)
	b.Hash = b.computeHash()

	return b
}

// merkleRootHex computes the hex-encoded merkle root of a transaction list.
func merkleRootHex(txs []BlockTx) string {
	tree, err := merkle.NewTree(txs)
	if err != nil {
		// NewTree only errors on a value's own Hash() failing, which never
		// happens for BlockTx.
		panic(err)
	}

	return hex.EncodeToString(tree.MerkleRoot)
}

// computeHash returns the SHA-256 hex digest over
// index|timestamp|previous_hash|nonce|merkle_root.
func (b Block) computeHash() string {
	s := strconv.FormatUint(b.Index, 10) + "|" +
		strconv.FormatUint(b.Timestamp, 10) + "|" +
		b.PreviousHash + "|" +
		strconv.FormatUint(b.Nonce, 10) + "|" +
		b.MerkleRoot

	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// meetsDifficulty reports whether hash carries at least difficulty leading
// hex zero characters.
func meetsDifficulty(hash string, difficulty uint16) bool {
	if uint16(len(hash)) < difficulty {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}

// =============================================================================

// MineBlock builds a candidate block on top of prev containing txs, then
// searches for a nonce whose block hash carries difficulty leading hex
// zeros. The search checks ctx for cancellation between every attempt and
// returns ErrMiningPreempted the moment it is cancelled, so a superseding
// chain replacement can abort a stale search promptly.
func MineBlock(ctx context.Context, prev Block, txs []BlockTx, difficulty uint16, timestamp uint64, evHandler func(v string, args ...any)) (Block, error) {
	b := Block{
		Index:        prev.Index + 1,
		Timestamp:    timestamp,
		Transactions: txs,
		PreviousHash: prev.Hash,
		Nonce:        0,
	}

	b.MerkleRoot = merkleRootHex(b.Transactions)

	var attempts uint64
	for {
		attempts++

		select {
		case <-ctx.Done():
			if evHandler != nil {
				evHandler("mining: preempted after %d attempts", attempts)
			}
			return Block{}, ErrMiningPreempted
		default:
		}

		hash := b.computeHash()
		if meetsDifficulty(hash, difficulty) {
			b.Hash = hash
			if evHandler != nil {
				evHandler("mining: solved blk[%d] after %d attempts: %s", b.Index, attempts, hash)
			}
			return b, nil
		}

		b.Nonce++
	}
}

// Validate checks a block's structural invariants against its stated parent:
// index succession, previous-hash linkage, difficulty, and that both the
// stored hash and merkle root match what is recomputed from the block's own
// fields.
func (b Block) Validate(prev Block, difficulty uint16) error {
	if b.Index != prev.Index+1 {
		return fmt.Errorf("%w: got %d, want %d", ErrBadIndex, b.Index, prev.Index+1)
	}

	if b.PreviousHash != prev.Hash {
		return fmt.Errorf("%w: got %s, want %s", ErrBadPrevHash, b.PreviousHash, prev.Hash)
	}

	wantMerkle := merkleRootHex(b.Transactions)
	if b.MerkleRoot != wantMerkle {
		return fmt.Errorf("%w: got %s, want %s", ErrBadMerkle, b.MerkleRoot, wantMerkle)
	}

	wantHash := b.computeHash()
	if b.Hash != wantHash {
		return fmt.Errorf("%w: got %s, want %s", ErrBadHash, b.Hash, wantHash)
	}

	if !meetsDifficulty(b.Hash, difficulty) {
		return fmt.Errorf("%w: hash %s", ErrDifficultyNotMet, b.Hash)
	}

	return nil
}
