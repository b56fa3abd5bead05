// Package store provides the data persistence layer abstraction for the
// notefold application.
//
// The [Store] interface implements the Repository pattern over the page and
// block domain. Every operation is scoped by the owning [models.UserID]: a
// caller can only see and mutate its own pages, and a lookup of a page that
// exists but belongs to another owner reports [ErrNotFound] rather than
// revealing its existence.
//
// Three implementations are provided:
//
//   - postgres: GORM over PostgreSQL with ACID transactions
//   - surrealdb: native SurrealQL over the CBOR websocket protocol
//   - memory: map-backed store for tests and local development
//
// The [Unconfigured] store stands in when no backend is selected: list reads
// degrade to empty results and everything else reports [ErrNotConfigured],
// so the HTTP layer can surface a 503 instead of crashing.
package store

import (
	"context"

	"github.com/notefold/notefold/pkg/models"
)

// CreatePage carries the caller-controlled fields of a new page. The store
// assigns the ID, the sibling position, and the initial seed block.
type CreatePage struct {
	Title    string         `json:"title"`
	Icon     string         `json:"icon,omitempty"`
	ParentID *models.PageID `json:"parent_id,omitempty"`
}

// PageUpdate is a partial update: nil fields are left untouched. Moving a
// page to the root is expressed as SetParent=true with ParentID=nil, which
// keeps "omit the parent field" distinct from "clear the parent".
type PageUpdate struct {
	Title     *string
	Icon      *string
	ParentID  *models.PageID
	SetParent bool
}

// Store defines the persistence interface for pages and their blocks.
//
// List methods return empty slices for no results, never nil, and order
// blocks ascending by position. UpsertBlock is insert-or-replace keyed on
// the block ID, matching the editor's save semantics where a block may be
// written before or after it first exists. DeletePage removes the page's
// blocks before the page itself; child pages are never cascaded and surface
// as roots on the next tree assembly.
type Store interface {
	ListPages(ctx context.Context, owner models.UserID) ([]*models.Page, error)
	GetPage(ctx context.Context, owner models.UserID, id models.PageID) (*models.Page, error)
	CreatePage(ctx context.Context, owner models.UserID, in CreatePage) (*models.Page, error)
	UpdatePage(ctx context.Context, owner models.UserID, id models.PageID, upd PageUpdate) (*models.Page, error)
	DeletePage(ctx context.Context, owner models.UserID, id models.PageID) error

	ListBlocks(ctx context.Context, owner models.UserID, pageID models.PageID) ([]*models.Block, error)
	UpsertBlock(ctx context.Context, owner models.UserID, block *models.Block) error
	DeleteBlock(ctx context.Context, owner models.UserID, id models.BlockID) error

	// Migrate creates or updates the backend schema.
	Migrate(ctx context.Context) error
	// Close releases the backend connection.
	Close() error
}
