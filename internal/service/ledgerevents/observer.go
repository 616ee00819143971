// Package ledgerevents watches the insurance contract for events and applies
// them to local state. The observer checkpoints a durable per-observer block
// watermark, giving at-least-once delivery across restarts; sinks must be
// idempotent.
package ledgerevents

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coverledger/coverledger-backend/internal/infrastructure/ledger"
)

// DefaultPollInterval matches the contract event cadence
const DefaultPollInterval = 10 * time.Second

// EventSource reads events and chain height from the ledger
type EventSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	Events(ctx context.Context, fromBlock, toBlock uint64) ([]ledger.Event, error)
}

// WatermarkStore persists the last processed block per observer
type WatermarkStore interface {
	Get(ctx context.Context, observer string) (uint64, error)
	Set(ctx context.Context, observer string, lastBlock uint64) error
}

// Sink applies one ledger event to local state
type Sink interface {
	Handle(ctx context.Context, event ledger.Event) error
}

// Observer polls the ledger for contract events on a fixed interval
type Observer struct {
	name       string
	source     EventSource
	watermarks WatermarkStore
	sink       Sink
	interval   time.Duration
	logger     *zap.Logger
}

// NewObserver creates a ledger event observer. The name keys the durable
// watermark; changing it replays the chain from the beginning.
func NewObserver(name string, source EventSource, watermarks WatermarkStore, sink Sink, interval time.Duration, logger *zap.Logger) *Observer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Observer{
		name:       name,
		source:     source,
		watermarks: watermarks,
		sink:       sink,
		interval:   interval,
		logger:     logger,
	}
}

// Run polls until the context is cancelled. Poll failures are logged and
// retried on the next tick; they never stop the loop.
func (o *Observer) Run(ctx context.Context) error {
	o.logger.Info("ledger event observer started",
		zap.String("observer", o.name),
		zap.Duration("interval", o.interval))

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("ledger event observer stopped", zap.String("observer", o.name))
			return ctx.Err()
		case <-ticker.C:
			if err := o.Poll(ctx); err != nil {
				o.logger.Warn("ledger event poll failed",
					zap.String("observer", o.name),
					zap.Error(err))
			}
		}
	}
}

// Poll processes all events between the stored watermark and the current
// chain height. The watermark only advances after every event in the range
// was handled, so a failure mid-batch redelivers the whole range.
func (o *Observer) Poll(ctx context.Context) error {
	height, err := o.source.BlockNumber(ctx)
	if err != nil {
		return err
	}

	last, err := o.watermarks.Get(ctx, o.name)
	if err != nil {
		return err
	}
	if height <= last {
		return nil
	}

	events, err := o.source.Events(ctx, last+1, height)
	if err != nil {
		return err
	}

	for _, event := range events {
		if err := o.sink.Handle(ctx, event); err != nil {
			return err
		}
	}

	if err := o.watermarks.Set(ctx, o.name, height); err != nil {
		return err
	}

	if len(events) > 0 {
		o.logger.Info("ledger events processed",
			zap.String("observer", o.name),
			zap.Int("events", len(events)),
			zap.Uint64("from_block", last+1),
			zap.Uint64("to_block", height))
	}
	return nil
}
