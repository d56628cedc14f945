package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/inspect"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/metrics"
	rpcclient2 "github.com/goodnatureofminers/blockinsight7000-ledger/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/wallet"
	"github.com/goodnatureofminers/blockinsight7000-ledger/pkg/batcher"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	Network       string        `long:"network" env:"TXINSPECT_NETWORK" description:"network name (main, testnet, regtest, signet)" default:"main"`
	Height        uint64        `long:"height" env:"TXINSPECT_HEIGHT" description:"block height finality is evaluated at"`
	Time          uint32        `long:"time" env:"TXINSPECT_TIME" description:"block time (unix seconds) finality is evaluated at"`
	Format        string        `long:"format" env:"TXINSPECT_FORMAT" description:"report encoding (json, cbor)" default:"json"`
	TxID          bool          `long:"txid" description:"treat arguments as transaction ids and fetch them over RPC"`
	Follow        bool          `long:"follow" description:"inspect every block from --start-height and follow the tip"`
	StartHeight   int64         `long:"start-height" env:"TXINSPECT_START_HEIGHT" description:"first block in follow mode; negative starts after the current tip" default:"-1"`
	Workers       int           `long:"workers" env:"TXINSPECT_WORKERS" description:"transactions inspected in parallel per block" default:"8"`
	PollInterval  time.Duration `long:"poll-interval" env:"TXINSPECT_POLL_INTERVAL" description:"tip polling interval in follow mode" default:"5s"`
	MaxBackoff    time.Duration `long:"max-backoff" env:"TXINSPECT_MAX_BACKOFF" description:"longest wait between retries in follow mode" default:"1m"`
	RPCURL        string        `long:"rpc-url" env:"TXINSPECT_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser       string        `long:"rpc-user" env:"TXINSPECT_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword   string        `long:"rpc-password" env:"TXINSPECT_RPC_PASSWORD" description:"Bitcoin RPC password"`
	ZMQBlock      string        `long:"zmq-block" env:"TXINSPECT_ZMQ_BLOCK" description:"node zmqpubhashblock address; wakes the follower on new blocks (build with -tags zmq)"`
	MetricsAddr   string        `long:"metrics-addr" env:"TXINSPECT_METRICS_ADDR" description:"address for metrics server in follow mode" default:":2112"`
	FlushSize     int           `long:"flush-size" env:"TXINSPECT_FLUSH_SIZE" description:"reports buffered before a write" default:"100"`
	FlushInterval time.Duration `long:"flush-interval" env:"TXINSPECT_FLUSH_INTERVAL" description:"longest a report stays buffered" default:"1s"`
	RPS           int           `long:"rps" env:"TXINSPECT_RPS" description:"report writes per second, 0 for no limit" default:"0"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	args, err := flags.Parse(&cfg)
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, args, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Fatal("txinspect failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, args []string, logger *zap.Logger) error {
	versions, err := wallet.VersionsForNetwork(cfg.Network)
	if err != nil {
		return err
	}
	format, err := inspect.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	inspector, err := inspect.NewInspector(versions, metrics.NewInspector(cfg.Network))
	if err != nil {
		return err
	}
	writer, err := inspect.NewStreamWriter(os.Stdout, format, logger, batcher.Config{
		FlushSize:     cfg.FlushSize,
		FlushInterval: cfg.FlushInterval,
		RPS:           cfg.RPS,
	})
	if err != nil {
		return err
	}

	if !cfg.Follow && !cfg.TxID {
		return inspectRaw(ctx, inspector, writer, args, os.Stdin, cfg.Height, cfg.Time, logger)
	}

	rpcClient, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return fmt.Errorf("init rpc client: %w", err)
	}
	defer func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	}()
	rpc := rpcclient2.NewObservedClient(rpcClient, metrics.NewRPCClient(cfg.Network))
	source := inspect.NewBlockSource(rpc)

	if cfg.TxID {
		return inspectByID(ctx, inspector, writer, source, args, cfg.Height, cfg.Time, logger)
	}

	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	start, err := startHeight(ctx, source, cfg.StartHeight)
	if err != nil {
		return err
	}
	blockSignal, err := startBlockSignal(ctx, cfg.ZMQBlock, logger)
	if err != nil {
		return err
	}
	svc, err := inspect.NewFollowerService(
		source,
		inspector,
		writer,
		metrics.NewFollower(cfg.Network),
		cfg.Network,
		inspect.FollowerConfig{
			Workers:      cfg.Workers,
			PollInterval: cfg.PollInterval,
			MaxBackoff:   cfg.MaxBackoff,
			BlockSignal:  blockSignal,
		},
		logger.Named("follower"),
	)
	if err != nil {
		return err
	}

	logger.Info("following chain", zap.String("network", cfg.Network), zap.Uint64("start_height", start))
	// Run reports a failed writer as inspect.ErrReportsLost, even on cancel.
	return svc.Run(ctx, start)
}

func startHeight(ctx context.Context, source *inspect.BlockSource, requested int64) (uint64, error) {
	if requested >= 0 {
		return uint64(requested), nil
	}
	tip, err := source.LatestHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("latest height: %w", err)
	}
	return tip + 1, nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

func newRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	cfg := &rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}

	return rpcclient.New(cfg, nil)
}
