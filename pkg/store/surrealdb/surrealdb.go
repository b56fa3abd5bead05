// Package surrealdb provides the SurrealDB implementation of the
// [github.com/notefold/notefold/pkg/store.Store] interface using native
// SurrealQL over the CBOR websocket protocol.
//
// The connection is configured with the surrealcbor codec so that typed IDs
// marshal to RecordIDs and time.Time values use SurrealDB's native datetime
// format. Every query is parameterized ($param syntax); user-provided values
// never reach the query text through string interpolation.
package surrealdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/notefold/notefold/pkg/models"
	"github.com/notefold/notefold/pkg/store"
)

// SurrealStore implements the Store interface using SurrealDB.
type SurrealStore struct {
	db *surrealdb.DB
}

// NewSurrealStore connects to SurrealDB at wsURL, authenticates when
// credentials are given, and selects the namespace and database.
//
// The connection is built manually rather than through the endpoint helper
// so the surrealcbor codec can be installed as marshaler and unmarshaler.
// Without it, time.Time values and RecordIDs are serialized in formats
// SurrealDB rejects.
func NewSurrealStore(wsURL, namespace, database, username, password string) (*SurrealStore, error) {
	ctx := context.Background()

	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &SurrealStore{db: db}, nil
}

// Migrate is a no-op: SurrealDB creates tables implicitly when the first
// record is inserted, so there is no schema to set up.
func (s *SurrealStore) Migrate(ctx context.Context) error {
	return nil
}

// Close closes the database connection
func (s *SurrealStore) Close() error {
	return s.db.Close(context.Background())
}

// isNotFound reports whether err is SurrealDB's way of saying a select
// resolved to zero records.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}

func firstResult[T any](result *[]surrealdb.QueryResult[T]) (T, bool) {
	var zero T
	if result == nil || len(*result) == 0 {
		return zero, false
	}
	return (*result)[0].Result, true
}

func (s *SurrealStore) ListPages(ctx context.Context, owner models.UserID) ([]*models.Page, error) {
	query := "SELECT * FROM pages WHERE owner_id = $owner ORDER BY position ASC"
	params := map[string]any{
		"owner": owner.RecordID(),
	}
	result, err := surrealdb.Query[[]*models.Page](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	pages, ok := firstResult(result)
	if !ok || pages == nil {
		return []*models.Page{}, nil
	}
	return pages, nil
}

func (s *SurrealStore) GetPage(ctx context.Context, owner models.UserID, id models.PageID) (*models.Page, error) {
	page, err := surrealdb.Select[models.Page](ctx, s.db, id.RecordID())
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	if page == nil || page.OwnerID != owner {
		return nil, store.ErrNotFound
	}
	return page, nil
}

func (s *SurrealStore) CreatePage(ctx context.Context, owner models.UserID, in store.CreatePage) (*models.Page, error) {
	countQuery := "SELECT count() FROM pages WHERE owner_id = $owner AND parent_id = $parent GROUP ALL"
	params := map[string]any{
		"owner": owner.RecordID(),
	}
	if in.ParentID != nil {
		params["parent"] = in.ParentID.RecordID()
	} else {
		params["parent"] = nil
	}

	type countRow struct {
		Count int `json:"count"`
	}
	countResult, err := surrealdb.Query[[]countRow](ctx, s.db, countQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to count sibling pages: %w", err)
	}
	siblings := 0
	if rows, ok := firstResult(countResult); ok && len(rows) > 0 {
		siblings = rows[0].Count
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
	if _, err := surrealdb.Create[models.Page](ctx, s.db, "pages", page); err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	seed := &models.Block{
		ID:        models.NewBlockID(),
		PageID:    page.ID,
		Type:      models.BlockTypeParagraph,
		Content:   models.BlockContent{Text: ""},
		Position:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := surrealdb.Create[models.Block](ctx, s.db, "blocks", seed); err != nil {
		return nil, fmt.Errorf("failed to create seed block: %w", err)
	}

	return page, nil
}

func (s *SurrealStore) UpdatePage(ctx context.Context, owner models.UserID, id models.PageID, upd store.PageUpdate) (*models.Page, error) {
	page, err := s.GetPage(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		page.Title = *upd.Title
	}
	if upd.Icon != nil {
		page.Icon = *upd.Icon
	}
	if upd.SetParent {
		page.ParentID = upd.ParentID
	}
	page.UpdatedAt = time.Now()

	if _, err := surrealdb.Update[models.Page](ctx, s.db, id.RecordID(), page); err != nil {
		return nil, fmt.Errorf("failed to update page: %w", err)
	}
	return page, nil
}

func (s *SurrealStore) DeletePage(ctx context.Context, owner models.UserID, id models.PageID) error {
	if _, err := s.GetPage(ctx, owner, id); err != nil {
		return err
	}
	// Blocks go first so a failure cannot strand them behind a deleted page.
	deleteBlocks := "DELETE blocks WHERE page_id = $page"
	params := map[string]any{
		"page": id.RecordID(),
	}
	if _, err := surrealdb.Query[any](ctx, s.db, deleteBlocks, params); err != nil {
		return fmt.Errorf("failed to delete page blocks: %w", err)
	}
	if _, err := surrealdb.Delete[models.Page](ctx, s.db, id.RecordID()); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return nil
}

func (s *SurrealStore) ListBlocks(ctx context.Context, owner models.UserID, pageID models.PageID) ([]*models.Block, error) {
	if _, err := s.GetPage(ctx, owner, pageID); err != nil {
		return nil, err
	}
	query := "SELECT * FROM blocks WHERE page_id = $page ORDER BY position ASC"
	params := map[string]any{
		"page": pageID.RecordID(),
	}
	result, err := surrealdb.Query[[]*models.Block](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	blocks, ok := firstResult(result)
	if !ok || blocks == nil {
		return []*models.Block{}, nil
	}
	return blocks, nil
}

func (s *SurrealStore) UpsertBlock(ctx context.Context, owner models.UserID, block *models.Block) error {
	if block.PageID.IsZero() {
		return store.ErrValidation
	}
	if !block.Type.Valid() {
		return store.ErrValidation
	}
	if _, err := s.GetPage(ctx, owner, block.PageID); err != nil {
		return err
	}

	if block.ID.IsZero() {
		block.ID = models.NewBlockID()
	}
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now()
	}
	block.UpdatedAt = time.Now()

	// Upsert replaces the record when it exists and creates it otherwise,
	// which matches the editor's save-before-or-after-create semantics.
	if _, err := surrealdb.Upsert[models.Block](ctx, s.db, block.ID.RecordID(), block); err != nil {
		return fmt.Errorf("failed to upsert block: %w", err)
	}
	return nil
}

func (s *SurrealStore) DeleteBlock(ctx context.Context, owner models.UserID, id models.BlockID) error {
	block, err := surrealdb.Select[models.Block](ctx, s.db, id.RecordID())
	if err != nil {
		if isNotFound(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to get block: %w", err)
	}
	if block == nil {
		return store.ErrNotFound
	}
	if _, err := s.GetPage(ctx, owner, block.PageID); err != nil {
		return err
	}
	if _, err := surrealdb.Delete[models.Block](ctx, s.db, id.RecordID()); err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	return nil
}
