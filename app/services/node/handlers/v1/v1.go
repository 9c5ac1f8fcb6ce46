// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/corechain/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/corechain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/corechain/foundation/blockchain/coordinator"
	"github.com/ardanlabs/corechain/foundation/blockchain/state"
	"github.com/ardanlabs/corechain/foundation/events"
	"github.com/ardanlabs/corechain/foundation/nameservice"
	"github.com/ardanlabs/corechain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "api"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log         *zap.SugaredLogger
	State       *state.State
	NS          *nameservice.NameService
	Evts        *events.Events
	Coordinator *coordinator.Coordinator
}

// PublicRoutes binds all the client-facing routes: node status, chain and
// mempool queries, wallet creation, and transaction and contract submission.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:         cfg.Log,
		State:       cfg.State,
		NS:          cfg.NS,
		Evts:        cfg.Evts,
		Coordinator: cfg.Coordinator,
		WS:          websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}

	app.Handle(http.MethodGet, version, "/node/info", pbl.NodeInfo)
	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/chain/valid", pbl.ChainValid)
	app.Handle(http.MethodPost, version, "/blocks/mine", pbl.MineBlock)
	app.Handle(http.MethodGet, version, "/blocks/:index", pbl.BlockByIndex)
	app.Handle(http.MethodPost, version, "/transactions", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/transactions/pending", pbl.PendingTransactions)
	app.Handle(http.MethodPost, version, "/wallet/new", pbl.NewWallet)
	app.Handle(http.MethodGet, version, "/balance/:address", pbl.Balance)
	app.Handle(http.MethodPost, version, "/contracts/deploy", pbl.DeployContract)
	app.Handle(http.MethodPost, version, "/contracts/call", pbl.CallContract)
	app.Handle(http.MethodGet, version, "/peers", pbl.Peers)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
}

// PrivateRoutes binds the node-to-node gossip routes another node's Gossip
// transport calls into.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:         cfg.Log,
		State:       cfg.State,
		Coordinator: cfg.Coordinator,
	}

	app.Handle(http.MethodGet, "v1", "/node/status", prv.Status)
	app.Handle(http.MethodGet, "v1", "/node/chain/list", prv.Chain)
	app.Handle(http.MethodPost, "v1", "/node/block/propose", prv.ReceiveBlock)
	app.Handle(http.MethodPost, "v1", "/node/tx/submit", prv.ReceiveTransaction)
}
