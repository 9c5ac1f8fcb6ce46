package database

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// ErrInvalidSignature is returned when a non-system transaction's signature
// does not verify against its attached public key.
var ErrInvalidSignature = errors.New("invalid signature")

// ErrAddressMismatch is returned when a transaction's public key does not
// hash to its claimed sender address.
var ErrAddressMismatch = errors.New("address mismatch")

// ErrMalformed is returned for structurally invalid transactions, such as a
// missing signature on a non-system transaction.
var ErrMalformed = errors.New("malformed transaction")

// =============================================================================

// DeployPayload asks the containing block to compile source and register a
// new contract at the address derived from this transaction.
type DeployPayload struct {
	Source string `json:"source"`
}

// CallPayload asks the containing block to invoke a deployed contract.
type CallPayload struct {
	Address AccountID `json:"address"`
	Args    []int64   `json:"args"`
}

// ContractPayload is the tagged union of contract-affecting transaction
// intents. At most one of Deploy or Call is set.
type ContractPayload struct {
	Deploy *DeployPayload `json:"deploy,omitempty"`
	Call   *CallPayload   `json:"call,omitempty"`
}

// Tx is the transactional information between two parties: a plain transfer,
// optionally carrying a contract deploy or call intent.
type Tx struct {
	ID              string           `json:"id"`
	Sender          AccountID        `json:"sender"`
	Recipient       AccountID        `json:"recipient"`
	Amount          uint64           `json:"amount"`
	Timestamp       uint64           `json:"timestamp"`
	Signature       []byte           `json:"signature,omitempty"`
	PublicKey       []byte           `json:"public_key,omitempty"`
	ContractPayload *ContractPayload `json:"contract_payload,omitempty"`
}

// NewTx constructs an unsigned transaction with a fresh random id.
func NewTx(sender, recipient AccountID, amount uint64, timestamp uint64) Tx {
	return Tx{
		ID:        uuid.New().String(),
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

// NewSystemTx constructs the coinbase-style reward transaction a miner
// prepends to every block it assembles.
func NewSystemTx(recipient AccountID, amount uint64, timestamp uint64) Tx {
	return NewTx(SystemAccountID, recipient, amount, timestamp)
}

// CanonicalHash returns the SHA-256 digest over the UTF-8 concatenation
// id|sender|recipient|amount|timestamp. This, and not the full JSON
// encoding, is what gets signed and what the merkle tree hashes.
func (tx Tx) CanonicalHash() [32]byte {
	s := tx.ID + "|" + string(tx.Sender) + "|" + string(tx.Recipient) + "|" +
		strconv.FormatUint(tx.Amount, 10) + "|" + strconv.FormatUint(tx.Timestamp, 10)

	return sha256.Sum256([]byte(s))
}

// CanonicalHashHex returns the canonical hash as lowercase hex.
func (tx Tx) CanonicalHashHex() string {
	h := tx.CanonicalHash()
	return hex.EncodeToString(h[:])
}

// Sign signs the transaction's canonical hash with privateKey and attaches
// the resulting signature and public key.
func (tx Tx) Sign(privateKey ed25519.PrivateKey) Tx {
	digest := tx.CanonicalHash()
	tx.Signature = signature.Sign(digest[:], privateKey)
	tx.PublicKey = append([]byte(nil), privateKey.Public().(ed25519.PublicKey)...)
	return tx
}

// Validate checks, for non-system transactions, that the signature verifies
// and the public key hashes to the claimed sender. System transactions skip
// both checks.
func (tx Tx) Validate() error {
	if tx.Sender.IsSystem() {
		return nil
	}

	if len(tx.Signature) == 0 || len(tx.PublicKey) != ed25519.PublicKeySize {
		return ErrMalformed
	}

	digest := tx.CanonicalHash()
	if err := signature.VerifySignature(digest[:], tx.Signature, tx.PublicKey); err != nil {
		return ErrInvalidSignature
	}

	if err := signature.MatchesAddress(tx.PublicKey, string(tx.Sender)); err != nil {
		return ErrAddressMismatch
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s: %s -> %s (%d)", tx.ID, tx.Sender, tx.Recipient, tx.Amount)
}

// =============================================================================

// BlockTx is the transaction as recorded inside a block. It is a distinct
// type from Tx so the merkle package's Hashable constraint can be satisfied
// without leaking hashing concerns into the wire representation of Tx.
type BlockTx struct {
	Tx
}

// NewBlockTx wraps a transaction for inclusion in a block.
func NewBlockTx(tx Tx) BlockTx {
	return BlockTx{Tx: tx}
}

// Hash implements the merkle Hashable interface, returning the raw canonical
// hash bytes of the wrapped transaction.
func (tx BlockTx) Hash() ([]byte, error) {
	h := tx.CanonicalHash()
	return h[:], nil
}

// Equals implements the merkle Hashable interface. Two block transactions
// with the same id are the same transaction.
func (tx BlockTx) Equals(other BlockTx) bool {
	return tx.ID == other.ID
}
