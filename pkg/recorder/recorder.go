// Package recorder persists every record arriving on a subscriber: to the
// dated files, to the record store when one is configured and to the live
// websocket feed.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wmjtyd/libstock/pkg/data"
	"github.com/wmjtyd/libstock/pkg/file"
	"github.com/wmjtyd/libstock/pkg/market"
	"github.com/wmjtyd/libstock/pkg/message"
	"github.com/wmjtyd/libstock/pkg/metrics"
	"github.com/wmjtyd/libstock/pkg/storage"
)

var ErrUnknownRecord = errors.New("recorder: record kind not recognised")

// Broadcaster receives each decoded record, e.g. the API websocket hub.
type Broadcaster interface {
	BroadcastRecord(kind data.Kind, pair string, msg any)
}

type Config struct {
	Subscriber message.Subscriber
	Writer     *file.DataWriter
	// Store and Broadcaster are optional.
	Store       *storage.RecordStore
	Broadcaster Broadcaster
	Transport   string
	Metrics     *metrics.Metrics
	Logger      *zap.SugaredLogger
}

type Recorder struct {
	sub       message.Subscriber
	writer    *file.DataWriter
	store     *storage.RecordStore
	bc        Broadcaster
	transport string
	metrics   *metrics.Metrics
	log       *zap.SugaredLogger
}

func New(cfg Config) *Recorder {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Recorder{
		sub:       cfg.Subscriber,
		writer:    cfg.Writer,
		store:     cfg.Store,
		bc:        cfg.Broadcaster,
		transport: cfg.Transport,
		metrics:   cfg.Metrics,
		log:       log,
	}
}

// Run handles payloads until ctx is done or the subscriber closes. A payload
// that fails is logged and skipped.
func (r *Recorder) Run(ctx context.Context) error {
	r.log.Infow("recorder_started", "transport", r.transport)
	for {
		raw, err := r.sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, message.ErrClosed) {
				r.log.Infow("recorder_stopped", "reason", err)
				return nil
			}
			return fmt.Errorf("recorder: receive: %w", err)
		}
		r.metrics.Received(r.transport)

		if err := r.Handle(ctx, raw); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.log.Warnw("record_skipped", "size", len(raw), "err", err)
		}
	}
}

// Handle validates raw by decoding it and then fans it out.
func (r *Recorder) Handle(ctx context.Context, raw []byte) error {
	kind := data.KindOf(raw)
	if kind == data.KindUnknown {
		r.metrics.CodecError(kind.String(), "decode")
		return ErrUnknownRecord
	}

	msg, err := data.DecodeAny(kind, raw)
	if err != nil {
		r.metrics.CodecError(kind.String(), "decode")
		return err
	}
	r.metrics.Decoded(kind.String())

	h, err := data.PeekHeader(raw)
	if err != nil {
		return err
	}
	r.metrics.Lag(int64(h.ReceivedTimestamp) - int64(h.ExchangeTimestamp))

	if err := r.writer.Add(ctx, file.DataEntry{Filename: FileName(kind, h), Data: raw}); err != nil {
		return fmt.Errorf("queue record: %w", err)
	}

	if r.store != nil {
		if _, err := r.store.Put(raw); err != nil {
			// the file copy is already queued
			r.log.Warnw("store_put_failed", "kind", kind.String(), "err", err)
		}
	}

	if r.bc != nil {
		r.bc.BroadcastRecord(kind, h.Symbol.Pair, msg)
	}
	return nil
}

// FileName names the dated file a record belongs to, e.g.
// "binance_spot_bbo_BTCUSDT".
func FileName(kind data.Kind, h data.Header) string {
	return strings.Join([]string{
		h.Exchange.String(),
		string(market.MarketType(h.MarketType)),
		kind.String(),
		strings.ReplaceAll(h.Symbol.Pair, "/", ""),
	}, "_")
}
