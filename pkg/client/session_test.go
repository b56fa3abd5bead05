package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/notefold/notefold/pkg/client"
	"github.com/notefold/notefold/pkg/models"
	"github.com/notefold/notefold/pkg/store"
)

const sessionTitleDelay = 20 * time.Millisecond

func TestOpenSessionLoadsBlocks(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	page, err := c.CreatePage(ctx, store.CreatePage{Title: "Meeting notes"})
	require.NoError(t, err)

	s, err := client.OpenSession(ctx, c, page.ID, sessionTitleDelay, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	// The seed paragraph comes back from the server; nothing to synthesize.
	require.Len(t, s.Editor.Blocks(), 1)
	require.Equal(t, "Meeting notes", s.Title.Title())
}

func TestSessionEditsPersistOnClose(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	page, err := c.CreatePage(ctx, store.CreatePage{Title: "Draft"})
	require.NoError(t, err)

	s, err := client.OpenSession(ctx, c, page.ID, sessionTitleDelay, zerolog.Nop())
	require.NoError(t, err)

	seed := s.Editor.Blocks()[0]
	s.Editor.UpdateText(seed.ID, "first line")
	s.Editor.Blur(seed.ID)

	b := s.Editor.InsertBelow(0)
	s.Editor.UpdateText(b.ID, "second line")
	s.Editor.ChangeType(b.ID, models.BlockTypeBulletedList)
	s.Editor.Blur(b.ID)

	// Close drains the write queue before returning.
	s.Close()

	blocks, err := c.ListBlocks(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, "first line", blocks[0].Content.Text)
	require.Equal(t, "second line", blocks[1].Content.Text)
	require.Equal(t, models.BlockTypeBulletedList, blocks[1].Type)
	require.Equal(t, 0, blocks[0].Position)
	require.Equal(t, 1, blocks[1].Position)
}

func TestSessionDebouncedTitleSave(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	page, err := c.CreatePage(ctx, store.CreatePage{Title: "Untitled"})
	require.NoError(t, err)

	s, err := client.OpenSession(ctx, c, page.ID, sessionTitleDelay, zerolog.Nop())
	require.NoError(t, err)

	s.Title.Type("P")
	s.Title.Type("Pl")
	s.Title.Type("Plan")

	// Wait out the debounce window, then drain the queue.
	time.Sleep(4 * sessionTitleDelay)
	s.Close()

	got, err := c.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, "Plan", got.Title)
}

func TestSessionIconSave(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	page, err := c.CreatePage(ctx, store.CreatePage{Title: "Trips"})
	require.NoError(t, err)

	s, err := client.OpenSession(ctx, c, page.ID, sessionTitleDelay, zerolog.Nop())
	require.NoError(t, err)

	s.Title.SetIcon("✈️")
	s.Close()

	got, err := c.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, "✈️", got.Icon)
	require.Equal(t, "Trips", got.Title)
}

func TestSessionRemoveRenumbers(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	page, err := c.CreatePage(ctx, store.CreatePage{Title: "List"})
	require.NoError(t, err)

	s, err := client.OpenSession(ctx, c, page.ID, sessionTitleDelay, zerolog.Nop())
	require.NoError(t, err)

	first := s.Editor.Blocks()[0]
	second := s.Editor.InsertBelow(0)
	third := s.Editor.InsertBelow(1)
	s.Editor.UpdateText(first.ID, "a")
	s.Editor.UpdateText(second.ID, "b")
	s.Editor.UpdateText(third.ID, "c")
	for _, b := range s.Editor.Blocks() {
		s.Editor.Blur(b.ID)
	}

	s.Editor.Remove(second.ID)
	s.Close()

	blocks, err := c.ListBlocks(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, "a", blocks[0].Content.Text)
	require.Equal(t, "c", blocks[1].Content.Text)
	require.Equal(t, 0, blocks[0].Position)
	require.Equal(t, 1, blocks[1].Position)
}

func TestOpenSessionMissingPage(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := client.OpenSession(ctx, c, models.NewPageID(), sessionTitleDelay, zerolog.Nop())
	require.Error(t, err)
}
