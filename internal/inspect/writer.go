package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/goodnatureofminers/blockinsight7000-ledger/pkg/batcher"
	"go.uber.org/zap"
)

// Format selects the report stream encoding.
type Format string

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
	// FormatCBOR writes a CBOR sequence, one data item per report.
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatJSON, FormatCBOR:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", name)
	}
}

type encoder interface {
	Encode(v interface{}) error
}

// StreamWriter batches reports and writes them to out. Each batch is one
// Write call, so a line or item is never split between batches.
type StreamWriter struct {
	out       io.Writer
	batcher   *batcher.Batcher[Report]
	newEncode func(w io.Writer) encoder
}

// NewStreamWriter creates a StreamWriter. Call Start before Write and Stop to
// flush.
func NewStreamWriter(out io.Writer, format Format, logger *zap.Logger, cfg batcher.Config) (*StreamWriter, error) {
	w := &StreamWriter{out: out}

	switch format {
	case FormatJSON, "":
		w.newEncode = func(buf io.Writer) encoder { return json.NewEncoder(buf) }
	case FormatCBOR:
		em, err := cbor.EncOptions{Sort: cbor.SortCoreDeterministic}.EncMode()
		if err != nil {
			return nil, fmt.Errorf("cbor enc mode: %w", err)
		}
		w.newEncode = func(buf io.Writer) encoder { return em.NewEncoder(buf) }
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}

	w.batcher = batcher.New(logger.Named("reportWriter"), w.flush, cfg)
	return w, nil
}

func (w *StreamWriter) Start(ctx context.Context) { w.batcher.Start(ctx) }

// Stop flushes pending reports.
func (w *StreamWriter) Stop() { w.batcher.Stop() }

// Err returns the first write failure.
func (w *StreamWriter) Err() error { return w.batcher.Err() }

func (w *StreamWriter) Write(ctx context.Context, report Report) error {
	return w.batcher.Add(ctx, report)
}

func (w *StreamWriter) flush(_ context.Context, reports []Report) error {
	var buf bytes.Buffer
	enc := w.newEncode(&buf)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode report %s: %w", r.TxID, err)
		}
	}
	if _, err := w.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	return nil
}
