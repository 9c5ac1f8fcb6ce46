package p2p_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardanlabs/corechain/business/p2p"
	"github.com/ardanlabs/corechain/foundation/blockchain/coordinator"
	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/peer"
	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
	"github.com/ardanlabs/corechain/foundation/blockchain/state"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()

	s, err := state.New(state.Config{
		MinerAccount: "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8",
		Difficulty:   1,
		MiningReward: 50,
	})
	if err != nil {
		t.Fatalf("%s\tshould be able to construct a state: %s", failed, err)
	}
	return s
}

func Test_BroadcastTransactionReachesKnownPeer(t *testing.T) {
	var gotPath string
	received := make(chan struct{}, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
		received <- struct{}{}
	}))
	defer srv.Close()

	s := newTestState(t)
	c := coordinator.New(s)

	knownPeers := peer.NewPeerSet()
	knownPeers.Add(peer.New(srv.Listener.Addr().String()))

	log := zap.NewNop().Sugar()
	g := p2p.New("self-host", c, knownPeers, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	pub, priv, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("%s\tshould be able to generate a keypair: %s", failed, err)
	}
	sender := database.AccountID(signature.AddressFromPublicKey(pub))
	tx := database.NewBlockTx(database.NewTx(sender, "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 10, 1).Sign(priv))

	c.BroadcastTransaction(tx)

	select {
	case <-received:
		if gotPath != "/v1/node/tx/submit" {
			t.Fatalf("%s\tshould relay to the transaction submit path, got %s", failed, gotPath)
		}
		t.Logf("%s\tshould relay a broadcast transaction to a known peer", success)
	case <-time.After(time.Second):
		t.Fatalf("%s\tshould relay a broadcast transaction to a known peer", failed)
	}
}
