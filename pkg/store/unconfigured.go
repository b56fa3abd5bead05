package store

import (
	"context"

	"github.com/notefold/notefold/pkg/models"
)

// Unconfigured is the placeholder store used when no backend has been
// selected. List reads degrade to empty results so the UI can render an
// empty workspace; point reads and every write report ErrNotConfigured,
// which the HTTP layer maps to 503.
type Unconfigured struct{}

// NewUnconfigured returns the placeholder store.
func NewUnconfigured() Store {
	return Unconfigured{}
}

func (Unconfigured) ListPages(ctx context.Context, owner models.UserID) ([]*models.Page, error) {
	return []*models.Page{}, nil
}

func (Unconfigured) GetPage(ctx context.Context, owner models.UserID, id models.PageID) (*models.Page, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) CreatePage(ctx context.Context, owner models.UserID, in CreatePage) (*models.Page, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) UpdatePage(ctx context.Context, owner models.UserID, id models.PageID, upd PageUpdate) (*models.Page, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) DeletePage(ctx context.Context, owner models.UserID, id models.PageID) error {
	return ErrNotConfigured
}

func (Unconfigured) ListBlocks(ctx context.Context, owner models.UserID, pageID models.PageID) ([]*models.Block, error) {
	return []*models.Block{}, nil
}

func (Unconfigured) UpsertBlock(ctx context.Context, owner models.UserID, block *models.Block) error {
	return ErrNotConfigured
}

func (Unconfigured) DeleteBlock(ctx context.Context, owner models.UserID, id models.BlockID) error {
	return ErrNotConfigured
}

func (Unconfigured) Migrate(ctx context.Context) error {
	return ErrNotConfigured
}

func (Unconfigured) Close() error { return nil }
