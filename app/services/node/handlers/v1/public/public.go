// Package public maintains the group of handlers exposed to wallet clients:
// node status, chain and mempool queries, wallet generation, and
// transaction and contract submission.
package public

import (
	"context"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/ardanlabs/corechain/business/web/errs"
	"github.com/ardanlabs/corechain/foundation/blockchain/contract"
	"github.com/ardanlabs/corechain/foundation/blockchain/coordinator"
	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/mempool"
	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
	"github.com/ardanlabs/corechain/foundation/blockchain/state"
	"github.com/ardanlabs/corechain/foundation/blockchain/vm"
	"github.com/ardanlabs/corechain/foundation/events"
	"github.com/ardanlabs/corechain/foundation/nameservice"
	"github.com/ardanlabs/corechain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of client-facing endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	State       *state.State
	NS          *nameservice.NameService
	WS          websocket.Upgrader
	Evts        *events.Events
	Coordinator *coordinator.Coordinator
}

// Events streams the node's activity log to a client over a web socket.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// NodeInfo reports a snapshot of this node's view of the network.
func (h Handlers) NodeInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tip := h.State.LatestBlock()

	var peerCount int
	if peers := h.State.KnownPeers(); peers != nil {
		peerCount = len(peers.Copy(""))
	}

	info := nodeInfo{
		TipIndex:   tip.Index,
		TipHash:    tip.Hash,
		PeerCount:  peerCount,
		Difficulty: h.State.Difficulty(),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Chain returns a clone of the full chain, from genesis to tip.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.CopyChain(), http.StatusOK)
}

// ChainValid reports whether the node's own chain still satisfies every
// structural and balance invariant.
func (h Handlers) ChainValid(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := chainValid{Valid: true}
	if err := h.State.ValidateOwnChain(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MineBlock triggers one mining attempt against the current mempool and
// broadcasts the result to peers.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.Coordinator.MineAndBroadcast(ctx)
	if err != nil {
		return errs.NewTrusted(err, http.StatusConflict)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// BlockByIndex looks up a block by its index, 404ing if it does not exist.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := parseIndex(web.Param(r, "index"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	block, err := h.State.QueryBlock(index)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SubmitTransaction validates and enqueues a signed transaction, then
// broadcasts it to peers.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nt newTransaction
	if err := web.Decode(r, &nt); err != nil {
		return err
	}

	tx := database.NewBlockTx(database.Tx{
		ID:              nt.ID,
		Sender:          nt.Sender,
		Recipient:       nt.Recipient,
		Amount:          nt.Amount,
		Timestamp:       nt.Timestamp,
		Signature:       nt.Signature,
		PublicKey:       nt.PublicKey,
		ContractPayload: nt.ContractPayload,
	})

	count, err := h.State.Mempool().Submit(tx)
	if err != nil {
		return errs.NewTrusted(err, statusForMempoolError(err))
	}

	h.Coordinator.BroadcastTransaction(tx)

	return web.Respond(ctx, w, submitResult{ID: tx.ID, MempoolCount: count}, http.StatusOK)
}

// PendingTransactions returns the current mempool contents.
func (h Handlers) PendingTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Mempool().Copy(), http.StatusOK)
}

// NewWallet generates a fresh Ed25519 keypair and its derived address. The
// node never retains a copy of the private key.
func (h Handlers) NewWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pub, priv, err := signature.GenerateKey()
	if err != nil {
		return err
	}

	resp := newWalletResponse{
		Address:    signature.AddressFromPublicKey(pub),
		PublicKey:  hex.EncodeToString(pub),
		PrivateKey: hex.EncodeToString(priv),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Balance returns the current balance of an account, or zero if unknown.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := database.AccountID(web.Param(r, "address"))

	resp := balanceResponse{
		Address: address,
		Balance: h.State.QueryBalance(address),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// DeployContract compiles the submitted source, rejecting it at the door
// with a 4xx if it does not assemble, then submits a deploy transaction and
// returns the deterministic address its contract will register at once
// mined.
func (h Handlers) DeployContract(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var dr deployRequest
	if err := web.Decode(r, &dr); err != nil {
		return err
	}

	if _, err := vm.Compile(dr.Source); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx := database.NewBlockTx(database.Tx{
		ID:        dr.ID,
		Sender:    dr.Sender,
		Recipient: dr.Sender,
		Timestamp: dr.Timestamp,
		Signature: dr.Signature,
		PublicKey: dr.PublicKey,
		ContractPayload: &database.ContractPayload{
			Deploy: &database.DeployPayload{Source: dr.Source},
		},
	})

	count, err := h.State.Mempool().Submit(tx)
	if err != nil {
		return errs.NewTrusted(err, statusForMempoolError(err))
	}

	h.Coordinator.BroadcastTransaction(tx)

	resp := deployResponse{
		SubmitResult: submitResult{ID: tx.ID, MempoolCount: count},
		Address:      contract.DeriveAddress(dr.Sender, dr.Timestamp),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// CallContract submits a call transaction and returns the VM's result for
// the current, unmined chain state. VM failure is reported with success
// false but never rejected at the HTTP layer; the transaction still enters
// the mempool.
func (h Handlers) CallContract(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var cr callRequest
	if err := web.Decode(r, &cr); err != nil {
		return err
	}

	result, callErr := h.State.Contracts().Call(cr.Address, cr.Args)

	tx := database.NewBlockTx(database.Tx{
		ID:        cr.ID,
		Sender:    cr.Sender,
		Recipient: cr.Address,
		Timestamp: cr.Timestamp,
		Signature: cr.Signature,
		PublicKey: cr.PublicKey,
		ContractPayload: &database.ContractPayload{
			Call: &database.CallPayload{Address: cr.Address, Args: cr.Args},
		},
	})

	count, err := h.State.Mempool().Submit(tx)
	if err != nil {
		return errs.NewTrusted(err, statusForMempoolError(err))
	}

	h.Coordinator.BroadcastTransaction(tx)

	resp := struct {
		SubmitResult submitResult `json:"submit_result"`
		Success      bool         `json:"success"`
		Logs         []int64      `json:"logs,omitempty"`
		Error        string       `json:"error,omitempty"`
	}{
		SubmitResult: submitResult{ID: tx.ID, MempoolCount: count},
		Success:      result.Success,
		Logs:         result.Logs,
	}
	if callErr != nil {
		resp.Error = callErr.Error()
	} else if result.Err != nil {
		resp.Error = result.Err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Peers returns the current known peer list.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	peers := h.State.KnownPeers()
	if peers == nil {
		return web.Respond(ctx, w, []peerInfo{}, http.StatusOK)
	}

	list := peers.Copy("")
	resp := make([]peerInfo, len(list))
	for i, p := range list {
		resp[i] = peerInfo{Host: p.Host}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

func statusForMempoolError(err error) int {
	switch err {
	case mempool.ErrDuplicate, mempool.ErrFull:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
