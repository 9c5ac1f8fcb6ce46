package cmd

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
)

// loadPrivateKey reads a raw hex-encoded Ed25519 private key from path.
func loadPrivateKey(path string) (ed25519.PrivateKey, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(content)))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%s: want %d bytes, got %d", path, ed25519.PrivateKeySize, len(raw))
	}

	return ed25519.PrivateKey(raw), nil
}

// addressOf derives the wallet address for a private key.
func addressOf(privateKey ed25519.PrivateKey) string {
	pub := privateKey.Public().(ed25519.PublicKey)
	return signature.AddressFromPublicKey(pub)
}
