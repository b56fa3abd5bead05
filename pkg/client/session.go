package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/notefold/notefold/pkg/editor"
	"github.com/notefold/notefold/pkg/models"
	"github.com/notefold/notefold/pkg/store"
)

// EditSession is the client-side editing session for one open page. It
// wires the block engine and the title debouncer to the HTTP API: block
// mutations flow through a fire-and-forget worker, title keystrokes
// coalesce into one debounced save, and persistence failures are logged
// and swallowed so editing never blocks on the network.
type EditSession struct {
	Editor *editor.Editor
	Title  *editor.TitleDebouncer

	client *Client
	pageID models.PageID
	ops    chan func()
	done   chan struct{}
	log    zerolog.Logger
}

// httpSink adapts the session's worker queue to the editor.Sink interface.
type httpSink struct {
	s *EditSession
}

func (h httpSink) SaveBlock(block *models.Block) {
	h.s.ops <- func() {
		if _, err := h.s.client.UpsertBlock(context.Background(), block); err != nil {
			h.s.log.Error().
				Err(err).
				Stringer("block_id", block.ID).
				Msg("failed to save block")
		}
	}
}

func (h httpSink) DeleteBlock(id models.BlockID) {
	h.s.ops <- func() {
		if err := h.s.client.DeleteBlock(context.Background(), id); err != nil {
			h.s.log.Error().
				Err(err).
				Stringer("block_id", id).
				Msg("failed to delete block")
		}
	}
}

// OpenSession fetches the page and its blocks and builds an editing
// session over them. titleDelay controls the debounce window; zero selects
// the default.
func OpenSession(ctx context.Context, c *Client, pageID models.PageID, titleDelay time.Duration, log zerolog.Logger) (*EditSession, error) {
	page, err := c.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	blocks, err := c.ListBlocks(ctx, pageID)
	if err != nil {
		return nil, err
	}

	s := &EditSession{
		client: c,
		pageID: pageID,
		ops:    make(chan func(), 64),
		done:   make(chan struct{}),
		log:    log,
	}
	go s.run()

	s.Editor = editor.NewEditor(pageID, blocks, httpSink{s})
	s.Editor.EnsureNonEmpty()

	s.Title = editor.NewTitleDebouncer(page.Title, page.Icon, titleDelay, func(title, icon string) {
		s.ops <- func() {
			if _, err := s.client.UpdatePage(context.Background(), s.pageID, store.PageUpdate{
				Title: &title,
				Icon:  &icon,
			}); err != nil {
				s.log.Error().
					Err(err).
					Stringer("page_id", s.pageID).
					Msg("failed to save title")
			}
		}
	})

	return s, nil
}

func (s *EditSession) run() {
	defer close(s.done)
	for op := range s.ops {
		op()
	}
}

// Close cancels any pending title save, drains queued writes, and stops
// the worker.
func (s *EditSession) Close() {
	s.Title.Stop()
	close(s.ops)
	<-s.done
}
