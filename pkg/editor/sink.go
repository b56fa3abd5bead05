package editor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/notefold/notefold/pkg/models"
	"github.com/notefold/notefold/pkg/store"
)

// AsyncSink adapts a store.Store to the Sink interface as a fire-and-forget
// write-back worker.
//
// A single goroutine drains a buffered channel, so operations reach the
// backend in the order they were issued. Failures are logged at error level
// and otherwise swallowed; the in-memory sequence stays the source of truth
// for the session regardless of persistence success. When the buffer fills,
// enqueueing blocks until the worker catches up rather than dropping work.
type AsyncSink struct {
	store store.Store
	owner models.UserID
	log   zerolog.Logger
	ops   chan func()
	done  chan struct{}
}

// NewAsyncSink starts the worker goroutine. Close must be called to drain
// outstanding writes before shutdown.
func NewAsyncSink(s store.Store, owner models.UserID, log zerolog.Logger) *AsyncSink {
	a := &AsyncSink{
		store: s,
		owner: owner,
		log:   log,
		ops:   make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncSink) run() {
	defer close(a.done)
	for op := range a.ops {
		op()
	}
}

// SaveBlock enqueues an upsert of the block's snapshot.
func (a *AsyncSink) SaveBlock(block *models.Block) {
	a.ops <- func() {
		if err := a.store.UpsertBlock(context.Background(), a.owner, block); err != nil {
			a.log.Error().
				Err(err).
				Stringer("block_id", block.ID).
				Stringer("page_id", block.PageID).
				Msg("failed to save block")
		}
	}
}

// DeleteBlock enqueues a delete of the block id.
func (a *AsyncSink) DeleteBlock(id models.BlockID) {
	a.ops <- func() {
		if err := a.store.DeleteBlock(context.Background(), a.owner, id); err != nil {
			a.log.Error().
				Err(err).
				Stringer("block_id", id).
				Msg("failed to delete block")
		}
	}
}

// Close stops accepting work and waits for queued operations to finish.
// In-flight saves are never cancelled.
func (a *AsyncSink) Close() {
	close(a.ops)
	<-a.done
}
