package state_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/corechain/foundation/blockchain/contract"
	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
	"github.com/ardanlabs/corechain/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newTestState(t *testing.T, miner database.AccountID) *state.State {
	t.Helper()

	s, err := state.New(state.Config{
		MinerAccount: miner,
		Difficulty:   1,
		MiningReward: 50,
	})
	if err != nil {
		t.Fatalf("%s\tshould be able to construct a state: %s", failed, err)
	}

	return s
}

func Test_MineNewBlockCreditsMinerAndClearsMempool(t *testing.T) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("%s\tshould be able to generate a keypair: %s", failed, err)
	}
	sender := database.AccountID(signature.AddressFromPublicKey(pub))
	miner := database.AccountID("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")

	s := newTestState(t, miner)

	tx := database.NewTx(sender, "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 10, 1).Sign(priv)
	if _, err := s.Mempool().Submit(database.NewBlockTx(tx)); err != nil {
		t.Fatalf("%s\tshould be able to submit a transaction: %s", failed, err)
	}

	block, err := s.MineNewBlock(context.Background())
	if err != nil {
		t.Fatalf("%s\tshould be able to mine a block: %s", failed, err)
	}
	t.Logf("%s\tshould be able to mine a block", success)

	if s.QueryBalance(miner) != 50 {
		t.Fatalf("%s\tminer should be credited the mining reward, got %d", failed, s.QueryBalance(miner))
	}
	t.Logf("%s\tminer should be credited the mining reward", success)

	if s.Mempool().Count() != 0 {
		t.Fatalf("%s\tmined transactions should be removed from the mempool", failed)
	}
	t.Logf("%s\tmined transactions should be removed from the mempool", success)

	if got := s.LatestBlock(); got.Hash != block.Hash {
		t.Fatalf("%s\tthe mined block should become the chain head", failed)
	}
	t.Logf("%s\tthe mined block should become the chain head", success)
}

func Test_MineNewBlockFailsWithEmptyMempool(t *testing.T) {
	s := newTestState(t, "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")

	if _, err := s.MineNewBlock(context.Background()); !errors.Is(err, state.ErrNoTransactions) {
		t.Fatalf("%s\tmining with an empty mempool should fail, got %v", failed, err)
	}
	t.Logf("%s\tmining with an empty mempool should fail", success)
}

func Test_ApplyBlockSkipsInsufficientFundsTransactionButKeepsBlock(t *testing.T) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("%s\tshould be able to generate a keypair: %s", failed, err)
	}
	sender := database.AccountID(signature.AddressFromPublicKey(pub))
	recipientOK := database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	recipientStarved := database.AccountID("0x8Fbf35eB2FA57e8cAeD3f6c2E7fF6ce87eD8B4E1")
	miner := database.AccountID("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")

	s := newTestState(t, miner)

	fund := database.NewBlockTx(database.NewSystemTx(sender, 100, 1))
	spend := database.NewBlockTx(database.NewTx(sender, recipientOK, 30, 2).Sign(priv))
	overdraft := database.NewBlockTx(database.NewTx(sender, recipientStarved, 10_000, 3).Sign(priv))
	reward := database.NewBlockTx(database.NewSystemTx(miner, 50, 4))

	latest := s.LatestBlock()
	block, err := database.MineBlock(context.Background(), latest, []database.BlockTx{fund, spend, overdraft, reward}, 1, 1, nil)
	if err != nil {
		t.Fatalf("%s\tshould be able to mine a block: %s", failed, err)
	}

	if err := s.ApplyBlock(block); err != nil {
		t.Fatalf("%s\ta block with one overdrawn transaction should still be accepted: %s", failed, err)
	}
	t.Logf("%s\ta block with one overdrawn transaction should still be accepted", success)

	if got := s.QueryBalance(sender); got != 70 {
		t.Fatalf("%s\tthe overdrawn transaction should not move funds, got sender balance %d", failed, got)
	}
	t.Logf("%s\tthe overdrawn transaction should not move funds", success)

	if got := s.QueryBalance(recipientOK); got != 30 {
		t.Fatalf("%s\tthe earlier valid transfer should still commit, got %d", failed, got)
	}
	t.Logf("%s\tthe earlier valid transfer should still commit", success)

	if got := s.QueryBalance(recipientStarved); got != 0 {
		t.Fatalf("%s\tthe overdrawn recipient should receive nothing, got %d", failed, got)
	}
	t.Logf("%s\tthe overdrawn recipient should receive nothing", success)

	if got := s.QueryBalance(miner); got != 50 {
		t.Fatalf("%s\tthe miner's reward in the same block should still commit, got %d", failed, got)
	}
	t.Logf("%s\tthe miner's reward in the same block should still commit", success)
}

func Test_ApplyBlockDeploysAndCallsContract(t *testing.T) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("%s\tshould be able to generate a keypair: %s", failed, err)
	}
	deployer := database.AccountID(signature.AddressFromPublicKey(pub))
	miner := database.AccountID("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")

	s, err := state.New(state.Config{MinerAccount: miner, Difficulty: 1, MiningReward: 50})
	if err != nil {
		t.Fatalf("%s\tshould be able to construct a state: %s", failed, err)
	}

	address := contract.DeriveAddress(deployer, 1)

	deploy := database.NewTx(deployer, deployer, 0, 1)
	deploy.ContractPayload = &database.ContractPayload{Deploy: &database.DeployPayload{Source: "PUSH 1\nPUSH 42\nSTORE\nPUSH 1\nLOAD\nLOG\nHALT"}}
	deploy = deploy.Sign(priv)

	call := database.NewTx(deployer, address, 0, 2)
	call.ContractPayload = &database.ContractPayload{Call: &database.CallPayload{Address: address}}
	call = call.Sign(priv)

	latest := s.LatestBlock()
	block, err := database.MineBlock(context.Background(), latest, []database.BlockTx{database.NewBlockTx(deploy), database.NewBlockTx(call)}, 1, 1, nil)
	if err != nil {
		t.Fatalf("%s\tshould be able to mine a block: %s", failed, err)
	}

	if err := s.ApplyBlock(block); err != nil {
		t.Fatalf("%s\tapplying a block with a deploy and a call should succeed: %s", failed, err)
	}
	t.Logf("%s\tapplying a block with a deploy and a call should succeed", success)

	if _, exists := s.Contracts().Get(address); !exists {
		t.Fatalf("%s\tthe deploy should have registered a contract at its derived address", failed)
	}
	t.Logf("%s\tthe deploy should have registered a contract at its derived address", success)

	result, err := s.Contracts().Call(address, nil)
	if err != nil || !result.Success || len(result.Logs) != 1 || result.Logs[0] != 42 {
		t.Fatalf("%s\tthe deployed contract should run and log its stored value, got %+v err %v", failed, result, err)
	}
	t.Logf("%s\tthe deployed contract should run and log its stored value", success)
}

func Test_ApplyBlockLogsFailingContractPayloadButKeepsBlock(t *testing.T) {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("%s\tshould be able to generate a keypair: %s", failed, err)
	}
	deployer := database.AccountID(signature.AddressFromPublicKey(pub))
	miner := database.AccountID("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")

	var logs []string
	evHandler := func(v string, args ...any) {
		logs = append(logs, v)
	}

	s, err := state.New(state.Config{MinerAccount: miner, Difficulty: 1, MiningReward: 50, EvHandler: evHandler})
	if err != nil {
		t.Fatalf("%s\tshould be able to construct a state: %s", failed, err)
	}

	address := contract.DeriveAddress(deployer, 1)

	firstDeploy := database.NewTx(deployer, deployer, 0, 1)
	firstDeploy.ContractPayload = &database.ContractPayload{Deploy: &database.DeployPayload{Source: "HALT"}}
	firstDeploy = firstDeploy.Sign(priv)

	collidingDeploy := database.NewTx(deployer, deployer, 0, 1)
	collidingDeploy.ID = "colliding-deploy"
	collidingDeploy.ContractPayload = &database.ContractPayload{Deploy: &database.DeployPayload{Source: "HALT"}}
	collidingDeploy = collidingDeploy.Sign(priv)

	callUnknown := database.NewTx(deployer, "0xUnknownContract", 0, 3)
	callUnknown.ContractPayload = &database.ContractPayload{Call: &database.CallPayload{Address: "0xUnknownContract"}}
	callUnknown = callUnknown.Sign(priv)

	latest := s.LatestBlock()
	txs := []database.BlockTx{database.NewBlockTx(firstDeploy), database.NewBlockTx(collidingDeploy), database.NewBlockTx(callUnknown)}
	block, err := database.MineBlock(context.Background(), latest, txs, 1, 1, nil)
	if err != nil {
		t.Fatalf("%s\tshould be able to mine a block: %s", failed, err)
	}

	if err := s.ApplyBlock(block); err != nil {
		t.Fatalf("%s\ta block with failing contract payloads should still be accepted: %s", failed, err)
	}
	t.Logf("%s\ta block with failing contract payloads should still be accepted", success)

	var deployFailures, callFailures int
	for _, v := range logs {
		if strings.Contains(v, "applyContractPayload") && strings.Contains(v, "deploy") {
			deployFailures++
		}
		if strings.Contains(v, "applyContractPayload") && strings.Contains(v, "call") {
			callFailures++
		}
	}
	if deployFailures != 1 || callFailures != 1 {
		t.Fatalf("%s\tthe colliding deploy and the call to an unknown address should each be logged, got %d deploy and %d call failures in %v", failed, deployFailures, callFailures, logs)
	}
	t.Logf("%s\tthe colliding deploy and the call to an unknown address should each be logged", success)

	if _, exists := s.Contracts().Get(address); !exists {
		t.Fatalf("%s\tthe first, non-colliding deploy should still have registered a contract", failed)
	}
	t.Logf("%s\tthe first, non-colliding deploy should still have registered a contract", success)
}

func Test_ReplaceChainAdoptsLongerValidChain(t *testing.T) {
	miner := database.AccountID("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")
	s := newTestState(t, miner)

	genesis := s.LatestBlock()

	tx := database.NewBlockTx(database.NewSystemTx(miner, 50, 1))
	blk1, err := database.MineBlock(context.Background(), genesis, []database.BlockTx{tx}, 1, 1, nil)
	if err != nil {
		t.Fatalf("%s\tshould be able to mine a block: %s", failed, err)
	}

	blk2, err := database.MineBlock(context.Background(), blk1, []database.BlockTx{database.NewBlockTx(database.NewSystemTx(miner, 50, 2))}, 1, 2, nil)
	if err != nil {
		t.Fatalf("%s\tshould be able to mine a second block: %s", failed, err)
	}

	if err := s.ReplaceChain([]database.Block{genesis, blk1, blk2}); err != nil {
		t.Fatalf("%s\ta longer valid chain should be adopted: %s", failed, err)
	}
	t.Logf("%s\ta longer valid chain should be adopted", success)

	if s.QueryBalance(miner) != 100 {
		t.Fatalf("%s\tbalances should be rebuilt from the adopted chain, got %d", failed, s.QueryBalance(miner))
	}
	t.Logf("%s\tbalances should be rebuilt from the adopted chain", success)
}

func Test_ReplaceChainRejectsShorterChain(t *testing.T) {
	s := newTestState(t, "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")

	if err := s.ReplaceChain([]database.Block{s.LatestBlock()}); !errors.Is(err, state.ErrChainNotLonger) {
		t.Fatalf("%s\ta chain no longer than ours should be rejected, got %v", failed, err)
	}
	t.Logf("%s\ta chain no longer than ours should be rejected", success)
}
