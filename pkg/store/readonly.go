package store

import (
	"context"
	"fmt"

	"github.com/notefold/notefold/pkg/models"
)

// ReadOnlyStore wraps a Store and prevents write operations when in
// read-only mode.
//
// The read-only state is determined dynamically by the isReadOnly function,
// allowing the application to toggle between read-write and read-only modes
// without recreating the store instance. Read operations always pass
// through.
type ReadOnlyStore struct {
	Store
	isReadOnly func() bool
}

// NewReadOnlyStore creates a new read-only wrapper for a store
func NewReadOnlyStore(store Store, isReadOnly func() bool) Store {
	return &ReadOnlyStore{
		Store:      store,
		isReadOnly: isReadOnly,
	}
}

// Unwrap returns the underlying store
func (r *ReadOnlyStore) Unwrap() Store {
	return r.Store
}

// checkReadOnly returns an error if the store is in read-only mode
func (r *ReadOnlyStore) checkReadOnly() error {
	if r.isReadOnly() {
		return fmt.Errorf("operation denied: application is in read-only mode")
	}
	return nil
}

// Write operations - check read-only mode first

func (r *ReadOnlyStore) CreatePage(ctx context.Context, owner models.UserID, in CreatePage) (*models.Page, error) {
	if err := r.checkReadOnly(); err != nil {
		return nil, err
	}
	return r.Store.CreatePage(ctx, owner, in)
}

func (r *ReadOnlyStore) UpdatePage(ctx context.Context, owner models.UserID, id models.PageID, upd PageUpdate) (*models.Page, error) {
	if err := r.checkReadOnly(); err != nil {
		return nil, err
	}
	return r.Store.UpdatePage(ctx, owner, id, upd)
}

func (r *ReadOnlyStore) DeletePage(ctx context.Context, owner models.UserID, id models.PageID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeletePage(ctx, owner, id)
}

func (r *ReadOnlyStore) UpsertBlock(ctx context.Context, owner models.UserID, block *models.Block) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.UpsertBlock(ctx, owner, block)
}

func (r *ReadOnlyStore) DeleteBlock(ctx context.Context, owner models.UserID, id models.BlockID) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteBlock(ctx, owner, id)
}

func (r *ReadOnlyStore) Migrate(ctx context.Context) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.Migrate(ctx)
}

// Read operations pass through via the embedded Store interface.
