// Package p2p implements the HTTP transport that drains a coordinator's
// outbound commands and gossips them to known peers, grounded on the
// teacher's state/network.go peer-broadcast helpers.
package p2p

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/corechain/foundation/blockchain/coordinator"
	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/peer"
	"go.uber.org/zap"
)

const baseURLFormat = "http://%s/v1/node"

// Gossip drains a Coordinator's outbound Commands and relays them to every
// known peer over HTTP. Inbound peer requests reach the Coordinator as
// Events through the private handlers, not through Gossip.
type Gossip struct {
	Host        string
	Coordinator *coordinator.Coordinator
	KnownPeers  *peer.PeerSet
	Log         *zap.SugaredLogger
}

// New constructs a Gossip transport bound to host and c.
func New(host string, c *coordinator.Coordinator, knownPeers *peer.PeerSet, log *zap.SugaredLogger) *Gossip {
	return &Gossip{
		Host:        host,
		Coordinator: c,
		KnownPeers:  knownPeers,
		Log:         log,
	}
}

// Run drains the coordinator's command queue until ctx is cancelled,
// relaying each command to every known peer.
func (g *Gossip) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-g.Coordinator.Commands():
			g.relay(cmd)
		}
	}
}

func (g *Gossip) relay(cmd coordinator.Command) {
	switch {
	case cmd.BroadcastTransaction != nil:
		g.broadcast("/tx/submit", http.MethodPost, cmd.BroadcastTransaction)

	case cmd.BroadcastBlock != nil:
		g.broadcast("/block/propose", http.MethodPost, cmd.BroadcastBlock)

	case cmd.RequestChain:
		g.requestChain()
	}
}

func (g *Gossip) broadcast(path, method string, body any) {
	for _, pr := range g.KnownPeers.Copy(g.Host) {
		url := fmt.Sprintf(baseURLFormat, pr.Host) + path
		if err := send(method, url, body, nil); err != nil {
			g.Log.Infow("p2p: broadcast failed", "peer", pr.Host, "path", path, "ERROR", err)
		}
	}
}

// requestChain asks every known peer for their chain and feeds each one it
// receives back to the coordinator as a ChainReceived event; whether a
// chain is longer is decided later, by ReplaceChain.
func (g *Gossip) requestChain() {
	for _, pr := range g.KnownPeers.Copy(g.Host) {
		url := fmt.Sprintf(baseURLFormat, pr.Host) + "/chain/list"

		var chain []database.Block
		if err := send(http.MethodGet, url, nil, &chain); err != nil {
			g.Log.Infow("p2p: chain request failed", "peer", pr.Host, "ERROR", err)
			continue
		}

		g.Coordinator.Events() <- coordinator.Event{ChainReceived: chain}
	}
}

// send performs one HTTP round trip, marshaling dataSend as the request
// body if present and decoding the response into dataRecv if present.
func send(method string, url string, dataSend any, dataRecv any) error {
	var req *http.Request

	switch {
	case dataSend != nil:
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		req, err = http.NewRequest(method, url, bytes.NewReader(data))
		if err != nil {
			return err
		}

	default:
		var err error
		req, err = http.NewRequest(method, url, nil)
		if err != nil {
			return err
		}
	}

	var client http.Client
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
