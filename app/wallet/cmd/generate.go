package cmd

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new Ed25519 keypair and wallet address",
	Run: func(cmd *cobra.Command, args []string) {
		pub, priv, err := signature.GenerateKey()
		if err != nil {
			log.Fatal(err)
		}

		if err := os.MkdirAll(walletPath, 0o755); err != nil {
			log.Fatal(err)
		}

		privPath := getPrivateKeyPath()
		pubPath := getPublicKeyPath()

		if err := os.WriteFile(privPath, []byte(hex.EncodeToString(priv)), 0o600); err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(pubPath, []byte(hex.EncodeToString(pub)), 0o644); err != nil {
			log.Fatal(err)
		}

		fmt.Println("private key:", filepath.Clean(privPath))
		fmt.Println("public key: ", filepath.Clean(pubPath))
		fmt.Println("address:    ", signature.AddressFromPublicKey(pub))
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
