// Package memory provides a map-backed Store for tests and local
// development. It holds everything under one RWMutex; there is no
// durability and no connection to close.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/notefold/notefold/pkg/models"
	"github.com/notefold/notefold/pkg/store"
)

// Store is the in-memory implementation of store.Store.
type Store struct {
	mu     sync.RWMutex
	pages  map[models.PageID]*models.Page
	blocks map[models.BlockID]*models.Block
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		pages:  make(map[models.PageID]*models.Page),
		blocks: make(map[models.BlockID]*models.Block),
	}
}

func (s *Store) ListPages(ctx context.Context, owner models.UserID) ([]*models.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pages := []*models.Page{}
	for _, p := range s.pages {
		if p.OwnerID == owner {
			cp := *p
			pages = append(pages, &cp)
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Position < pages[j].Position
	})
	return pages, nil
}

func (s *Store) GetPage(ctx context.Context, owner models.UserID, id models.PageID) (*models.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pages[id]
	if !ok || p.OwnerID != owner {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) CreatePage(ctx context.Context, owner models.UserID, in store.CreatePage) (*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	siblings := 0
	for _, p := range s.pages {
		if p.OwnerID == owner && sameParent(p.ParentID, in.ParentID) {
			siblings++
		}
	}

	now := time.Now()
	page := &models.Page{
		ID:        models.NewPageID(),
		OwnerID:   owner,
		ParentID:  in.ParentID,
		Title:     in.Title,
		Icon:      in.Icon,
		Position:  siblings + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.pages[page.ID] = page

	seed := &models.Block{
		ID:        models.NewBlockID(),
		PageID:    page.ID,
		Type:      models.BlockTypeParagraph,
		Content:   models.BlockContent{Text: ""},
		Position:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.blocks[seed.ID] = seed

	cp := *page
	return &cp, nil
}

func (s *Store) UpdatePage(ctx context.Context, owner models.UserID, id models.PageID, upd store.PageUpdate) (*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pages[id]
	if !ok || p.OwnerID != owner {
		return nil, store.ErrNotFound
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Icon != nil {
		p.Icon = *upd.Icon
	}
	if upd.SetParent {
		p.ParentID = upd.ParentID
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (s *Store) DeletePage(ctx context.Context, owner models.UserID, id models.PageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pages[id]
	if !ok || p.OwnerID != owner {
		return store.ErrNotFound
	}
	for bid, b := range s.blocks {
		if b.PageID == id {
			delete(s.blocks, bid)
		}
	}
	delete(s.pages, id)
	return nil
}

func (s *Store) ListBlocks(ctx context.Context, owner models.UserID, pageID models.PageID) ([]*models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pages[pageID]
	if !ok || p.OwnerID != owner {
		return nil, store.ErrNotFound
	}

	blocks := []*models.Block{}
	for _, b := range s.blocks {
		if b.PageID == pageID {
			cp := *b
			blocks = append(blocks, &cp)
		}
	}
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Position < blocks[j].Position
	})
	return blocks, nil
}

func (s *Store) UpsertBlock(ctx context.Context, owner models.UserID, block *models.Block) error {
	if block.PageID.IsZero() {
		return store.ErrValidation
	}
	if !block.Type.Valid() {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pages[block.PageID]
	if !ok || p.OwnerID != owner {
		return store.ErrNotFound
	}

	now := time.Now()
	cp := *block
	if cp.ID.IsZero() {
		cp.ID = models.NewBlockID()
		block.ID = cp.ID
	}
	if existing, ok := s.blocks[cp.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.blocks[cp.ID] = &cp
	return nil
}

func (s *Store) DeleteBlock(ctx context.Context, owner models.UserID, id models.BlockID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blocks[id]
	if !ok {
		return store.ErrNotFound
	}
	p, ok := s.pages[b.PageID]
	if !ok || p.OwnerID != owner {
		return store.ErrNotFound
	}
	delete(s.blocks, id)
	return nil
}

func (s *Store) Migrate(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func sameParent(a, b *models.PageID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
