// This program generates a single Ed25519 keypair for the blockchain and
// writes it to the current directory as a .priv/.pub file pair.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		return fmt.Errorf("generating keypair: %w", err)
	}

	if err := os.WriteFile("private.priv", []byte(hex.EncodeToString(priv)), 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	if err := os.WriteFile("private.pub", []byte(hex.EncodeToString(pub)), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	fmt.Printf("New account created: %s\n", signature.AddressFromPublicKey(pub))
	return nil
}
