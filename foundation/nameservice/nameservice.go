// Package nameservice reads a folder of wallet public key files and creates
// a name lookup for the addresses derived from them.
package nameservice

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[database.AccountID]string
}

// New constructs a name service from the .pub key files found under root.
// Each file holds the hex-encoded Ed25519 public key of a wallet; the file's
// base name (minus extension) becomes that wallet's display name. A missing
// root is not an error, it just produces an empty lookup.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[database.AccountID]string),
	}

	if root == "" {
		return &ns, nil
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return &ns, nil
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if info.IsDir() || path.Ext(fileName) != ".pub" {
			return nil
		}

		raw, err := readHexFile(fileName)
		if err != nil {
			return fmt.Errorf("reading %s: %w", fileName, err)
		}

		address := signature.AddressFromPublicKey(raw)
		ns.accounts[database.AccountID(address)] = strings.TrimSuffix(path.Base(fileName), ".pub")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// readHexFile reads a file holding a single hex-encoded public key, ignoring
// surrounding whitespace.
func readHexFile(fileName string) ([]byte, error) {
	content, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	return hex.DecodeString(strings.TrimSpace(string(content)))
}

// Lookup returns the name for the specified account, or the account id
// itself when no name is registered for it.
func (ns *NameService) Lookup(account database.AccountID) string {
	name, exists := ns.accounts[account]
	if !exists {
		return string(account)
	}
	return name
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[database.AccountID]string {
	cpy := make(map[database.AccountID]string, len(ns.accounts))
	for account, name := range ns.accounts {
		cpy[account] = name
	}
	return cpy
}
