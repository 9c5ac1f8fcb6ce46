// Package coordinator connects a State to its transport layer through two
// asynchronous, bounded channels: Commands flow from the node out to
// whatever gossips to peers, and Events flow the other way. It is the
// generalization of the teacher's worker goroutine set and its buffered
// signal channels into an explicit channel contract a real transport can
// be swapped behind.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/state"
)

// commandQueueSize and eventQueueSize bound the channels so a burst of
// gossip can never grow node memory without limit. Per the concurrency
// model, a full command queue evicts the oldest pending transaction
// broadcast first, never a block broadcast or chain request.
const (
	commandQueueSize = 256
	eventQueueSize   = 256
)

// Command is a tagged union of the requests the node makes of its
// transport. Exactly one field is set.
type Command struct {
	BroadcastTransaction *database.BlockTx
	BroadcastBlock       *database.Block
	RequestChain         bool
}

// Event is a tagged union of what the transport reports back to the node.
// Exactly one field is set.
type Event struct {
	TransactionReceived *database.BlockTx
	BlockReceived       *database.Block
	ChainReceived       []database.Block
	PeerConnected       string
	PeerDisconnected    string
}

// Coordinator drives a State from the Events its transport delivers, and
// emits Commands the transport should gossip out.
type Coordinator struct {
	state *state.State

	commands chan Command
	events   chan Event

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	wg   sync.WaitGroup
	done chan struct{}
}

// New constructs a Coordinator bound to state. Call Run to start
// processing events.
func New(s *state.State) *Coordinator {
	return &Coordinator{
		state:    s,
		commands: make(chan Command, commandQueueSize),
		events:   make(chan Event, eventQueueSize),
		done:     make(chan struct{}),
	}
}

// Commands returns the channel the transport should drain and gossip out.
func (c *Coordinator) Commands() <-chan Command {
	return c.commands
}

// Events returns the channel the transport should feed with inbound
// gossip.
func (c *Coordinator) Events() chan<- Event {
	return c.events
}

// send enqueues a command, dropping the oldest pending transaction
// broadcast to make room if the queue is full. Block broadcasts and chain
// requests are never evicted to make room for a transaction.
func (c *Coordinator) send(cmd Command) {
	select {
	case c.commands <- cmd:
		return
	default:
	}

	if cmd.BroadcastTransaction != nil {
		select {
		case <-c.commands:
		default:
		}
		select {
		case c.commands <- cmd:
		default:
		}
		return
	}

	// Block broadcasts and chain requests are worth blocking briefly for;
	// a transport that can't keep up will simply see this arrive late.
	select {
	case c.commands <- cmd:
	case <-time.After(time.Second):
	}
}

// Run processes events until ctx is cancelled or Shutdown is called.
func (c *Coordinator) Run(ctx context.Context) {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

// Shutdown stops Run and releases the coordinator's resources.
func (c *Coordinator) Shutdown() {
	close(c.done)
	c.wg.Wait()
}

// handle applies the orchestration rules named for each event kind.
func (c *Coordinator) handle(ev Event) {
	switch {
	case ev.TransactionReceived != nil:
		// Drop silently on any validation error; do not re-gossip, the
		// transport's own deduplication handles fan-out.
		c.state.Mempool().Submit(*ev.TransactionReceived)

	case ev.BlockReceived != nil:
		block := *ev.BlockReceived
		tip := c.state.LatestBlock()

		switch {
		case block.Index == tip.Index+1:
			if err := c.state.ApplyBlock(block); err == nil {
				c.PreemptMining()
			}
		case block.Index > tip.Index+1:
			c.send(Command{RequestChain: true})
		}
		// block.Index <= tip.Index: already have it, ignore.

	case ev.ChainReceived != nil:
		if err := c.state.ReplaceChain(ev.ChainReceived); err == nil {
			c.PreemptMining()
		}
	}
}

// MineAndBroadcast mines one block against the current mempool, applies it
// locally, and issues a BroadcastBlock command. The mining search is
// bound to ctx so a concurrent chain replacement can cancel it early via
// PreemptMining.
func (c *Coordinator) MineAndBroadcast(ctx context.Context) (database.Block, error) {
	miningCtx, cancel := context.WithCancel(ctx)

	c.cancelMu.Lock()
	c.cancel = cancel
	c.cancelMu.Unlock()

	defer func() {
		c.cancelMu.Lock()
		c.cancel = nil
		c.cancelMu.Unlock()
		cancel()
	}()

	block, err := c.state.MineNewBlock(miningCtx)
	if err != nil {
		return database.Block{}, err
	}

	c.send(Command{BroadcastBlock: &block})

	return block, nil
}

// PreemptMining cancels any mining search currently in flight, so a chain
// update discovered concurrently can take effect without waiting on a
// stale search to finish.
func (c *Coordinator) PreemptMining() {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
}

// BroadcastTransaction issues a Command to gossip tx to peers.
func (c *Coordinator) BroadcastTransaction(tx database.BlockTx) {
	c.send(Command{BroadcastTransaction: &tx})
}
