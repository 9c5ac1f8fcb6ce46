// Package genesis maintains access to the genesis file and the deterministic
// genesis block every node in the network must agree on.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the genesis file. Difficulty and mining reward are
// operational parameters passed into the core by config (see foundation
// config), not read from this file; genesis only seeds the founder balances
// every node must start from so chains built by different nodes are
// comparable from block zero.
type Genesis struct {
	Date     time.Time         `json:"date"`
	ChainID  uint16            `json:"chain_id"`
	Balances map[string]uint64 `json:"balances"`
}

// =============================================================================

// Load opens and consumes the genesis file. A missing file is not an error:
// an empty genesis with no founder balances is returned instead so a fresh
// node can still start.
func Load(path string) (Genesis, error) {
	if path == "" {
		path = "zblock/genesis.json"
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Genesis{Balances: make(map[string]uint64)}, nil
		}
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if genesis.Balances == nil {
		genesis.Balances = make(map[string]uint64)
	}

	return genesis, nil
}
