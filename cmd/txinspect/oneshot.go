package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/blockinsight7000-ledger/internal/inspect"
	"go.uber.org/zap"
)

var errNotInspected = errors.New("transactions not inspected")

type transactionFetcher interface {
	FetchTransaction(ctx context.Context, txid string) ([]byte, error)
}

// inspectRaw inspects hex transactions from args, or one per line of stdin
// when there are no args.
func inspectRaw(
	ctx context.Context,
	inspector inspect.TransactionInspector,
	writer *inspect.StreamWriter,
	args []string,
	stdin io.Reader,
	height uint64,
	blockTime uint32,
	logger *zap.Logger,
) error {
	inputs := args
	if len(inputs) == 0 {
		var err error
		if inputs, err = readLines(stdin); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	decode := func(_ context.Context, in string) ([]byte, error) {
		return hex.DecodeString(in)
	}
	return inspectEach(ctx, inspector, writer, inputs, decode, height, blockTime, logger)
}

// inspectByID fetches and inspects transactions by id.
func inspectByID(
	ctx context.Context,
	inspector inspect.TransactionInspector,
	writer *inspect.StreamWriter,
	fetcher transactionFetcher,
	txids []string,
	height uint64,
	blockTime uint32,
	logger *zap.Logger,
) error {
	return inspectEach(ctx, inspector, writer, txids, fetcher.FetchTransaction, height, blockTime, logger)
}

func inspectEach(
	ctx context.Context,
	inspector inspect.TransactionInspector,
	writer *inspect.StreamWriter,
	inputs []string,
	load func(context.Context, string) ([]byte, error),
	height uint64,
	blockTime uint32,
	logger *zap.Logger,
) error {
	writer.Start(ctx)

	failed := 0
	for _, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		if err := inspectOne(ctx, inspector, writer, in, load, height, blockTime); err != nil {
			failed++
			logger.Error("transaction not inspected", zap.String("input", abbreviate(in)), zap.Error(err))
		}
	}

	writer.Stop()
	if err := writer.Err(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errNotInspected, failed, len(inputs))
	}
	return nil
}

func inspectOne(
	ctx context.Context,
	inspector inspect.TransactionInspector,
	writer *inspect.StreamWriter,
	in string,
	load func(context.Context, string) ([]byte, error),
	height uint64,
	blockTime uint32,
) error {
	raw, err := load(ctx, in)
	if err != nil {
		return err
	}
	report, err := inspector.Inspect(raw, height, blockTime)
	if err != nil {
		return err
	}
	return writer.Write(ctx, report)
}

// readLines returns the non-empty lines of r, skipping # comments.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	// a hex transaction may be as large as two message payloads
	scanner.Buffer(make([]byte, 0, 64*1024), 2*wire.MaxMessagePayload+2)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func abbreviate(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
