package inspect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/clock"
	"github.com/goodnatureofminers/blockinsight7000-ledger/pkg/workerpool"
	"go.uber.org/zap"
)

// ErrReportsLost means the report writer failed, so reports for blocks already
// passed may be missing from the output. The follower stops rather than retry.
var ErrReportsLost = errors.New("reports lost")

// FollowerConfig tunes a FollowerService. Zero fields take defaults.
type FollowerConfig struct {
	Workers      int
	PollInterval time.Duration
	MaxBackoff   time.Duration
	// BlockSignal, when set, ends the poll wait early on each receive.
	BlockSignal <-chan struct{}
}

// FollowerService inspects every block from a start height onward, following
// the chain tip as it grows.
type FollowerService struct {
	logger       *zap.Logger
	source       Source
	inspector    TransactionInspector
	writer       ReportWriter
	metrics      FollowerMetrics
	workers      int
	pollInterval time.Duration
	blockSignal  <-chan struct{}
	sleep        func(context.Context, time.Duration) error
	backoff      backoff.BackOff
}

// NewFollowerService builds a FollowerService with dependencies.
func NewFollowerService(
	source Source,
	inspector TransactionInspector,
	writer ReportWriter,
	metrics FollowerMetrics,
	network string,
	cfg FollowerConfig,
	logger *zap.Logger,
) (*FollowerService, error) {
	if metrics == nil {
		return nil, errors.New("follower metrics is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}

	return &FollowerService{
		logger:       logger.With(zap.String("network", network)),
		source:       source,
		inspector:    inspector,
		writer:       writer,
		metrics:      metrics,
		workers:      cfg.Workers,
		pollInterval: cfg.PollInterval,
		blockSignal:  cfg.BlockSignal,
		sleep:        clock.SleepWithContext,
		backoff:      clock.NewBackoff(cfg.PollInterval, cfg.MaxBackoff),
	}, nil
}

// Run inspects blocks from start until the context is canceled or the writer
// fails. It owns the writer: reports still buffered when Run returns have been
// flushed, and a failed flush turns the result into ErrReportsLost.
func (s *FollowerService) Run(ctx context.Context, start uint64) (err error) {
	s.writer.Start(ctx)
	defer func() {
		s.writer.Stop()
		if werr := s.writer.Err(); werr != nil && !errors.Is(err, ErrReportsLost) {
			err = fmt.Errorf("%w: %w", ErrReportsLost, werr)
		}
	}()

	next := start
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if werr := s.writer.Err(); werr != nil {
			return fmt.Errorf("%w before block %d: %w", ErrReportsLost, next, werr)
		}

		var runErr error
		next, runErr = s.run(ctx, next)
		if runErr == nil {
			s.backoff.Reset()
			continue
		}
		if errors.Is(runErr, ErrReportsLost) {
			return runErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		d := s.backoff.NextBackOff()
		s.logger.Warn("follow iteration failed, backing off",
			zap.Error(runErr), zap.Uint64("height", next), zap.Duration("sleep", d))
		if sleepErr := s.sleep(ctx, d); sleepErr != nil {
			return sleepErr
		}
	}
}

// run processes every block up to the current tip and returns the next
// height to process.
func (s *FollowerService) run(ctx context.Context, next uint64) (uint64, error) {
	tip, err := s.source.LatestHeight(ctx)
	s.metrics.ObserveFetchTip(err)
	if err != nil {
		return next, fmt.Errorf("latest height: %w", err)
	}

	if next > tip {
		s.logger.Debug("no new blocks; sleeping", zap.Uint64("tip", tip), zap.Duration("sleep", s.pollInterval))
		return next, s.wait(ctx, s.pollInterval)
	}

	for height := next; height <= tip; height++ {
		if err := s.processBlock(ctx, height); err != nil {
			return height, err
		}
	}
	return tip + 1, nil
}

func (s *FollowerService) wait(ctx context.Context, d time.Duration) error {
	if s.blockSignal == nil {
		return s.sleep(ctx, d)
	}
	return clock.SleepOrSignal(ctx, d, s.blockSignal)
}

func (s *FollowerService) processBlock(ctx context.Context, height uint64) (err error) {
	started := time.Now()
	txs := 0
	defer func() {
		s.metrics.ObserveBlock(err, height, txs, started)
	}()

	block, err := s.source.FetchBlock(ctx, height)
	if err != nil {
		return fmt.Errorf("fetch block %d: %w", height, err)
	}
	txs = len(block.Transactions)

	reports, err := workerpool.Map(ctx, s.workers, block.Transactions, func(_ context.Context, raw []byte) (Report, error) {
		return s.inspector.Inspect(raw, block.Height, block.Time)
	})
	if err != nil {
		return fmt.Errorf("inspect block %d: %w", height, err)
	}

	for _, report := range reports {
		if err := s.writer.Write(ctx, report); err != nil {
			return fmt.Errorf("write report %s: %w", report.TxID, err)
		}
	}
	if werr := s.writer.Err(); werr != nil {
		return fmt.Errorf("%w at block %d: %w", ErrReportsLost, height, werr)
	}

	s.logger.Info("block inspected",
		zap.Uint64("height", height),
		zap.String("hash", block.Hash.String()),
		zap.Int("txs", txs))
	return nil
}
