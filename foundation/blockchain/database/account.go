package database

import (
	"strings"

	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
)

// AccountID identifies a party on the chain: either the hex-encoded address
// of a wallet or contract (as produced by the signature package), or the
// literal SystemAccountID used for coinbase-style rewards.
type AccountID string

// SystemAccountID is the sender recorded on system (coinbase) transactions.
// Such transactions carry no signature and are only ever emitted internally
// by a miner assembling a block.
const SystemAccountID AccountID = "system"

// IsSystem reports whether this account id is the reserved system sender.
func (a AccountID) IsSystem() bool {
	return a == SystemAccountID
}

// IsWalletAddress reports whether the account id has the "0x" + hex shape
// produced by wallet and contract address derivation.
func (a AccountID) IsWalletAddress() bool {
	s := string(a)
	if !strings.HasPrefix(s, "0x") {
		return false
	}

	hexPart := s[2:]
	if len(hexPart) != signature.AddressHexLen {
		return false
	}

	for _, c := range []byte(hexPart) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
