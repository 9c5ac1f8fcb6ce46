package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/corechain/app/services/node/handlers"
	"github.com/ardanlabs/corechain/business/p2p"
	"github.com/ardanlabs/corechain/foundation/blockchain/coordinator"
	"github.com/ardanlabs/corechain/foundation/blockchain/database"
	"github.com/ardanlabs/corechain/foundation/blockchain/peer"
	"github.com/ardanlabs/corechain/foundation/blockchain/signature"
	"github.com/ardanlabs/corechain/foundation/blockchain/state"
	"github.com/ardanlabs/corechain/foundation/events"
	"github.com/ardanlabs/corechain/foundation/logger"
	"github.com/ardanlabs/corechain/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// The five operational values named by the deployment contract sit at
	// the top level so they bind directly to API_PORT, P2P_PORT, DIFFICULTY,
	// MINING_REWARD, and LOG_LEVEL with no prefix; everything else this
	// service also needs lives under Node and picks up a NODE_ prefix.
	cfg := struct {
		conf.Version
		APIPort      int    `conf:"default:8080"`
		P2PPort      int    `conf:"default:0"`
		Difficulty   int    `conf:"default:2"`
		MiningReward int    `conf:"default:50"`
		LogLevel     string `conf:"default:info"`
		Node         struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			MinerName       string        `conf:"default:miner1"`
			KeyFolder       string        `conf:"default:zblock/accounts/"`
			GenesisPath     string        `conf:"default:zblock/genesis.json"`
			KnownPeers      []string      `conf:"default:"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "permissionless blockchain node",
		},
	}

	help, err := conf.Parse("", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	ns, err := nameservice.New(cfg.Node.KeyFolder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Blockchain Support

	privateKey, err := loadMinerKey(cfg.Node.KeyFolder, cfg.Node.MinerName)
	if err != nil {
		return fmt.Errorf("unable to load private key for node: %w", err)
	}
	minerAccount := database.AccountID(minerAddress(privateKey))

	peerSet := peer.NewPeerSet()
	for _, host := range cfg.Node.KnownPeers {
		if host == "" {
			continue
		}
		peerSet.Add(peer.New(host))
	}

	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	privateHost := fmt.Sprintf("0.0.0.0:%d", cfg.P2PPort)

	blockchain, err := state.New(state.Config{
		MinerAccount: minerAccount,
		Host:         privateHost,
		GenesisPath:  cfg.Node.GenesisPath,
		KnownPeers:   peerSet,
		Difficulty:   uint16(cfg.Difficulty),
		MiningReward: uint64(cfg.MiningReward),
		EvHandler:    ev,
	})
	if err != nil {
		return err
	}
	defer blockchain.Shutdown()

	// The coordinator drives state from gossip events and issues commands
	// the p2p transport relays to known peers.
	coord := coordinator.New(blockchain)

	coordCtx, cancelCoord := context.WithCancel(context.Background())
	defer cancelCoord()
	go coord.Run(coordCtx)

	gossip := p2p.New(privateHost, coord, peerSet, log)
	go gossip.Run(coordCtx)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Node.DebugHost)

	debugMux := handlers.DebugMux(build, log)

	go func() {
		if err := http.ListenAndServe(cfg.Node.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Node.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public API Service

	log.Infow("startup", "status", "initializing public api support")

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:    shutdown,
		Log:         log,
		State:       blockchain,
		NS:          ns,
		Evts:        evts,
		Coordinator: coord,
	})

	public := http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.APIPort),
		Handler:      publicMux,
		ReadTimeout:  cfg.Node.ReadTimeout,
		WriteTimeout: cfg.Node.WriteTimeout,
		IdleTimeout:  cfg.Node.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private P2P Service

	log.Infow("startup", "status", "initializing p2p gossip support")

	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown:    shutdown,
		Log:         log,
		State:       blockchain,
		NS:          ns,
		Coordinator: coord,
	})

	private := http.Server{
		Addr:         privateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Node.ReadTimeout,
		WriteTimeout: cfg.Node.WriteTimeout,
		IdleTimeout:  cfg.Node.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "p2p router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		cancelCoord()
		coord.Shutdown()

		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Node.ShutdownTimeout)
		defer cancelPri()

		log.Infow("shutdown", "status", "shutdown p2p service started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop p2p service gracefully: %w", err)
		}

		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Node.ShutdownTimeout)
		defer cancelPub()

		log.Infow("shutdown", "status", "shutdown public api service started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public api service gracefully: %w", err)
		}
	}

	return nil
}

// loadMinerKey reads the miner's raw hex-encoded Ed25519 private key from
// <folder>/<name>.priv, the counterpart to the .pub files nameservice reads.
func loadMinerKey(folder, name string) (ed25519.PrivateKey, error) {
	path := folder + name + ".priv"

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(content)))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%s: want %d bytes, got %d", path, ed25519.PrivateKeySize, len(raw))
	}

	return ed25519.PrivateKey(raw), nil
}

func minerAddress(privateKey ed25519.PrivateKey) string {
	pub := privateKey.Public().(ed25519.PublicKey)
	return signature.AddressFromPublicKey(pub)
}
