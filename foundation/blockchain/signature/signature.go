// Package signature provides helper functions for handling the blockchain's
// wallet keypairs and transaction signatures.
package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// AddressHexLen is the number of hex characters kept from the SHA-256 digest
// of a public key when deriving an address.
const AddressHexLen = 40

// ErrInvalidSignature indicates a signature did not verify against the
// public key it was presented with.
var ErrInvalidSignature = errors.New("invalid signature")

// ErrAddressMismatch indicates the public key attached to a transaction does
// not hash to the claimed sender address.
var ErrAddressMismatch = errors.New("address mismatch")

// =============================================================================

// GenerateKey samples a fresh Ed25519 keypair for a new wallet.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// AddressFromPublicKey derives the "0x"-prefixed account address from a raw
// Ed25519 public key: the first AddressHexLen hex characters of its SHA-256.
func AddressFromPublicKey(publicKey ed25519.PublicKey) string {
	sum := sha256.Sum256(publicKey)
	full := hexutil.Encode(sum[:])[2:]
	return "0x" + full[:AddressHexLen]
}

// Hash returns a unique hex string for the value, used as a fallback digest
// for values that don't define their own canonical hash.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// Sign signs the given digest with the specified private key, returning the
// raw 64-byte Ed25519 signature.
func Sign(digest []byte, privateKey ed25519.PrivateKey) []byte {
	return ed25519.Sign(privateKey, digest)
}

// VerifySignature reports whether sig is a valid Ed25519 signature over
// digest by publicKey.
func VerifySignature(digest, sig []byte, publicKey ed25519.PublicKey) error {
	if len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}

	if !ed25519.Verify(publicKey, digest, sig) {
		return ErrInvalidSignature
	}

	return nil
}

// MatchesAddress reports whether the public key hashes to the given address.
func MatchesAddress(publicKey ed25519.PublicKey, address string) error {
	if AddressFromPublicKey(publicKey) != address {
		return ErrAddressMismatch
	}

	return nil
}
