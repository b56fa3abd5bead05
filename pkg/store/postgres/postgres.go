// Package postgres provides the PostgreSQL implementation of the
// [github.com/notefold/notefold/pkg/store.Store] interface using GORM.
//
// GORM handles SQL generation, connection pooling, and schema migration
// through AutoMigrate. Multi-record writes (page creation with its seed
// block, cascade deletion of a page's blocks) run inside a single
// transaction so the invariants hold even if the process dies mid-write.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/notefold/notefold/pkg/models"
	"github.com/notefold/notefold/pkg/store"
)

// PostgresStore implements the Store interface using PostgreSQL with GORM.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Migrate creates the pages and blocks tables, indexes, and constraints if
// they don't already exist. Safe to run repeatedly; AutoMigrate only adds
// schema elements and never drops data.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&models.Page{},
		&models.Block{},
	)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) ListPages(ctx context.Context, owner models.UserID) ([]*models.Page, error) {
	pages := []*models.Page{}
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("position asc").
		Find(&pages).Error
	return pages, err
}

func (s *PostgresStore) GetPage(ctx context.Context, owner models.UserID, id models.PageID) (*models.Page, error) {
	var page models.Page
	err := s.db.WithContext(ctx).
		First(&page, "id = ? AND owner_id = ?", id, owner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &page, nil
}

func (s *PostgresStore) CreatePage(ctx context.Context, owner models.UserID, in store.CreatePage) (*models.Page, error) {
	page := &models.Page{
		OwnerID:  owner,
		ParentID: in.ParentID,
		Title:    in.Title,
		Icon:     in.Icon,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var siblings int64
		q := tx.Model(&models.Page{}).Where("owner_id = ?", owner)
		if in.ParentID != nil {
			q = q.Where("parent_id = ?", *in.ParentID)
		} else {
			q = q.Where("parent_id IS NULL")
		}
		if err := q.Count(&siblings).Error; err != nil {
			return err
		}
		page.Position = int(siblings) + 1

		if err := tx.Create(page).Error; err != nil {
			return err
		}

		seed := &models.Block{
			PageID:   page.ID,
			Type:     models.BlockTypeParagraph,
			Content:  models.BlockContent{Text: ""},
			Position: 0,
		}
		return tx.Create(seed).Error
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *PostgresStore) UpdatePage(ctx context.Context, owner models.UserID, id models.PageID, upd store.PageUpdate) (*models.Page, error) {
	var page models.Page
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&page, "id = ? AND owner_id = ?", id, owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
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
		// Save writes every column, which is what carries an explicit
		// NULL parent back to the database on a move-to-root.
		return tx.Save(&page).Error
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *PostgresStore) DeletePage(ctx context.Context, owner models.UserID, id models.PageID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var page models.Page
		if err := tx.First(&page, "id = ? AND owner_id = ?", id, owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		// Blocks go first so a failure cannot leave orphaned blocks
		// behind a deleted page.
		if err := tx.Delete(&models.Block{}, "page_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Page{}, "id = ?", id).Error
	})
}

func (s *PostgresStore) ListBlocks(ctx context.Context, owner models.UserID, pageID models.PageID) ([]*models.Block, error) {
	if _, err := s.GetPage(ctx, owner, pageID); err != nil {
		return nil, err
	}
	blocks := []*models.Block{}
	err := s.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("position asc").
		Find(&blocks).Error
	return blocks, err
}

func (s *PostgresStore) UpsertBlock(ctx context.Context, owner models.UserID, block *models.Block) error {
	if block.PageID.IsZero() {
		return store.ErrValidation
	}
	if !block.Type.Valid() {
		return store.ErrValidation
	}
	if _, err := s.GetPage(ctx, owner, block.PageID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"page_id", "type", "content", "position", "updated_at"}),
		}).
		Create(block).Error
}

func (s *PostgresStore) DeleteBlock(ctx context.Context, owner models.UserID, id models.BlockID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var block models.Block
		if err := tx.First(&block, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		var page models.Page
		if err := tx.First(&page, "id = ? AND owner_id = ?", block.PageID, owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		return tx.Delete(&models.Block{}, "id = ?", id).Error
	})
}
