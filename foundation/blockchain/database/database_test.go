package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_SignedTransactionValidates(t *testing.T) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("%s\tshould be able to generate a keypair: %s", failed, err)
	}

	sender := signature.AddressFromPublicKey(pub)
	tx := database.NewTx(database.AccountID(sender), "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 100, 1)
	tx = tx.Sign(priv)

	if err := tx.Validate(); err != nil {
		t.Fatalf("%s\tshould validate a properly signed transaction: %s", failed, err)
	}
	t.Logf("%s\tshould validate a properly signed transaction", success)
}

func Test_TamperedTransactionFailsValidation(t *testing.T) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("%s\tshould be able to generate a keypair: %s", failed, err)
	}

	sender := signature.AddressFromPublicKey(pub)
	tx := database.NewTx(database.AccountID(sender), "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 100, 1)
	tx = tx.Sign(priv)

	tx.Amount = 999

	if err := tx.Validate(); !errors.Is(err, database.ErrInvalidSignature) {
		t.Fatalf("%s\ttampering with a signed field should invalidate the signature, got %v", failed, err)
	}
	t.Logf("%s\ttampering with a signed field should invalidate the signature", success)
}

func Test_UnsignedTransactionIsMalformed(t *testing.T) {
	tx := database.NewTx("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 100, 1)

	if err := tx.Validate(); !errors.Is(err, database.ErrMalformed) {
		t.Fatalf("%s\tan unsigned transaction should be malformed, got %v", failed, err)
	}
	t.Logf("%s\tan unsigned transaction should be malformed", success)
}

func Test_SystemTransactionSkipsSignatureCheck(t *testing.T) {
	tx := database.NewSystemTx("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 50, 1)

	if err := tx.Validate(); err != nil {
		t.Fatalf("%s\ta system transaction should require no signature: %s", failed, err)
	}
	t.Logf("%s\ta system transaction should require no signature", success)
}

// =============================================================================

func Test_GenesisBlockIsDeterministic(t *testing.T) {
	b1 := database.NewGenesisBlock()
	b2 := database.NewGenesisBlock()

	if b1.Hash != b2.Hash {
		t.Fatalf("%s\ttwo genesis blocks should hash identically, got %s and %s", failed, b1.Hash, b2.Hash)
	}
	t.Logf("%s\ttwo genesis blocks should hash identically", success)

	if b1.Index != 0 || b1.PreviousHash != "0" {
		t.Fatalf("%s\tgenesis block should have index 0 and previous hash \"0\"", failed)
	}
	t.Logf("%s\tgenesis block should have index 0 and previous hash \"0\"", success)
}

func Test_MineBlockMeetsDifficulty(t *testing.T) {
	genesis := database.NewGenesisBlock()

	tx := database.NewSystemTx("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 50, 1)
	txs := []database.BlockTx{database.NewBlockTx(tx)}

	blk, err := database.MineBlock(context.Background(), genesis, txs, 2, 1, nil)
	if err != nil {
		t.Fatalf("%s\tshould be able to mine a block: %s", failed, err)
	}
	t.Logf("%s\tshould be able to mine a block", success)

	if err := blk.Validate(genesis, 2); err != nil {
		t.Fatalf("%s\ta mined block should validate against its parent: %s", failed, err)
	}
	t.Logf("%s\ta mined block should validate against its parent", success)
}

func Test_MiningIsPreemptedByCancellation(t *testing.T) {
	genesis := database.NewGenesisBlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := database.MineBlock(ctx, genesis, nil, 64, 1, nil)
	if !errors.Is(err, database.ErrMiningPreempted) {
		t.Fatalf("%s\ta cancelled context should preempt mining, got %v", failed, err)
	}
	t.Logf("%s\ta cancelled context should preempt mining", success)
}

func Test_ValidateRejectsBadIndex(t *testing.T) {
	genesis := database.NewGenesisBlock()

	blk, err := database.MineBlock(context.Background(), genesis, nil, 1, uint64(time.Now().UnixMilli()), nil)
	if err != nil {
		t.Fatalf("%s\tshould be able to mine a block: %s", failed, err)
	}

	blk.Index = 5
	if err := blk.Validate(genesis, 1); !errors.Is(err, database.ErrBadIndex) {
		t.Fatalf("%s\ta block with a bad index should fail validation, got %v", failed, err)
	}
	t.Logf("%s\ta block with a bad index should fail validation", success)
}

func Test_ValidateRejectsTamperedMerkleRoot(t *testing.T) {
	genesis := database.NewGenesisBlock()

	tx := database.NewSystemTx("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 50, 1)
	txs := []database.BlockTx{database.NewBlockTx(tx)}

	blk, err := database.MineBlock(context.Background(), genesis, txs, 1, 1, nil)
	if err != nil {
		t.Fatalf("%s\tshould be able to mine a block: %s", failed, err)
	}

	blk.Transactions = append(blk.Transactions, database.NewBlockTx(database.NewSystemTx("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", 1, 1)))

	if err := blk.Validate(genesis, 1); !errors.Is(err, database.ErrBadMerkle) {
		t.Fatalf("%s\tappending a transaction after mining should invalidate the merkle root, got %v", failed, err)
	}
	t.Logf("%s\tappending a transaction after mining should invalidate the merkle root", success)
}
