// Package contract maintains the registry of deployed contracts and the
// address derivation rule that names them, grounded on the mutex-guarded
// map shape of foundation/blockchain/database's account bookkeeping.
package contract

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"sync"

	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/vm"
)

// ErrNotFound is returned when a call targets an address with no deployed
// contract.
var ErrNotFound = errors.New("contract not found")

// ErrAlreadyDeployed is returned when a deploy transaction's derived
// address collides with an existing contract.
var ErrAlreadyDeployed = errors.New("contract already deployed at address")

// Contract is the code and persistent storage registered at an address.
type Contract struct {
	Code    []vm.Instruction
	Storage vm.Storage
}

// DeriveAddress computes the deterministic address a deploy transaction
// from deployer at timestamp registers its contract under: SHA-256 of
// deployer|timestamp, truncated to the same 20-byte shape wallet
// addresses use.
func DeriveAddress(deployer database.AccountID, timestamp uint64) database.AccountID {
	s := string(deployer) + "|" + strconv.FormatUint(timestamp, 10)
	h := sha256.Sum256([]byte(s))
	return database.AccountID("0x" + hex.EncodeToString(h[:20]))
}

// Registry maps addresses to the contracts deployed at them.
type Registry struct {
	mu        sync.RWMutex
	contracts map[database.AccountID]*Contract
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		contracts: make(map[database.AccountID]*Contract),
	}
}

// Deploy compiles source and registers it at address, failing if a
// contract is already registered there.
func (r *Registry) Deploy(address database.AccountID, source string) error {
	code, err := vm.Compile(source)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contracts[address]; exists {
		return ErrAlreadyDeployed
	}

	r.contracts[address] = &Contract{
		Code:    code,
		Storage: vm.Storage{},
	}

	return nil
}

// Call pushes args onto a fresh stack (in order) and runs the contract's
// code at address. Storage mutations from a failed call are rolled back
// by the machine itself; the call's overall failure never invalidates the
// containing block.
func (r *Registry) Call(address database.AccountID, args []int64) (vm.Result, error) {
	r.mu.RLock()
	c, exists := r.contracts[address]
	r.mu.RUnlock()

	if !exists {
		return vm.Result{}, ErrNotFound
	}

	code := make([]vm.Instruction, 0, len(args)+len(c.Code))
	for _, arg := range args {
		code = append(code, vm.Instruction{Op: vm.PUSH, Arg: arg})
	}
	code = append(code, c.Code...)

	return vm.New(c.Storage).Run(code), nil
}

// Snapshot returns a deep copy of every contract's storage, keyed by
// address. Later changes to the registry do not affect the copy.
func (r *Registry) Snapshot() map[database.AccountID]vm.Storage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[database.AccountID]vm.Storage, len(r.contracts))
	for addr, c := range r.contracts {
		snap[addr] = c.Storage.Snapshot()
	}
	return snap
}

// Get returns the contract registered at address, if any.
func (r *Registry) Get(address database.AccountID) (*Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.contracts[address]
	return c, exists
}
