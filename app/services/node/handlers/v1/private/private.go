// Package private maintains the group of handlers a peer's Gossip
// transport calls into: submitting a transaction or block it received, and
// serving this node's chain to a peer that is behind.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/corechain/foundation/blockchain/coordinator"
	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/peer"
	"github.com/ardanlabs/corechain/foundation/blockchain/state"
	"github.com/ardanlabs/corechain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node-to-node endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	State       *state.State
	Coordinator *coordinator.Coordinator
}

// ReceiveTransaction hands a transaction gossiped by a peer to the
// coordinator for mempool submission.
func (h Handlers) ReceiveTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx database.BlockTx
	if err := web.Decode(r, &tx); err != nil {
		return err
	}

	h.Coordinator.Events() <- coordinator.Event{TransactionReceived: &tx}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// ReceiveBlock hands a block proposed by a peer to the coordinator, which
// applies it if it extends the local tip or requests a full chain sync if
// the peer has run ahead.
func (h Handlers) ReceiveBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var block database.Block
	if err := web.Decode(r, &block); err != nil {
		return err
	}

	h.Coordinator.Events() <- coordinator.Event{BlockReceived: &block}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Chain serves this node's full chain to a peer that requested a sync.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.CopyChain(), http.StatusOK)
}

// Status reports this node's tip and known peers, used during peer
// handshake.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tip := h.State.LatestBlock()

	var knownPeers []peer.Peer
	if peers := h.State.KnownPeers(); peers != nil {
		knownPeers = peers.Copy("")
	}

	status := peer.PeerStatus{
		LatestBlockHash:   tip.Hash,
		LatestBlockNumber: tip.Index,
		KnownPeers:        knownPeers,
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}
