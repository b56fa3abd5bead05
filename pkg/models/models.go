package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BlockType represents the type of a content block. The set is closed:
// stores and handlers reject anything outside it.
type BlockType string

const (
	BlockTypeParagraph    BlockType = "paragraph"
	BlockTypeHeading1     BlockType = "heading_1"
	BlockTypeHeading2     BlockType = "heading_2"
	BlockTypeHeading3     BlockType = "heading_3"
	BlockTypeTodo         BlockType = "todo"
	BlockTypeBulletedList BlockType = "bulleted_list"
)

// Valid reports whether t is one of the recognized block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeParagraph, BlockTypeHeading1, BlockTypeHeading2,
		BlockTypeHeading3, BlockTypeTodo, BlockTypeBulletedList:
		return true
	}
	return false
}

// BlockContent is the payload of a block. Text is the plain-text body for
// every block type. Checked carries completion state and is only meaningful
// for todo blocks, but it is preserved untouched across type changes so a
// todo converted to a paragraph and back keeps its checkbox state.
//
// It is stored as a JSON column in PostgreSQL (jsonb) and as a nested object
// in SurrealDB, which keeps the content queryable in both backends.
type BlockContent struct {
	Text    string `json:"text"`
	Checked *bool  `json:"checked,omitempty"`
}

// Value implements the driver.Valuer interface for database storage
func (c BlockContent) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface for database retrieval
func (c *BlockContent) Scan(value any) error {
	if value == nil {
		*c = BlockContent{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot scan type %T into BlockContent", value)
		}
		bytes = []byte(s)
	}
	return json.Unmarshal(bytes, c)
}

// Page represents a node in a user's page hierarchy using typed IDs.
// ParentID is nil for root pages; a ParentID pointing at a page that no
// longer exists is tolerated and such pages surface as roots when the tree
// is assembled.
type Page struct {
	ID        PageID    `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID   UserID    `gorm:"type:uuid;not null;index" json:"owner_id"`
	ParentID  *PageID   `gorm:"type:uuid" json:"parent_id,omitempty"`
	Title     string    `json:"title"` // empty allowed; consumers render DisplayTitle
	Icon      string    `json:"icon,omitempty"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate ID if not set
func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.ID.IsZero() {
		p.ID = NewPageID()
	}
	return nil
}

// DisplayTitle returns the title to render, substituting "Untitled" for
// pages whose stored title is empty or whitespace-only.
func (p *Page) DisplayTitle() string {
	if strings.TrimSpace(p.Title) == "" {
		return "Untitled"
	}
	return p.Title
}

// Block represents one line of content within a page using typed IDs.
// Position is the dense 0-based index of the block within its page.
type Block struct {
	ID        BlockID      `gorm:"type:uuid;primary_key" json:"id"`
	PageID    PageID       `gorm:"type:uuid;not null;index" json:"page_id"`
	Type      BlockType    `gorm:"not null" json:"type"`
	Content   BlockContent `gorm:"type:jsonb" json:"content"`
	Position  int          `gorm:"not null" json:"position"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// BeforeCreate hook to generate ID if not set
func (b *Block) BeforeCreate(tx *gorm.DB) error {
	if b.ID.IsZero() {
		b.ID = NewBlockID()
	}
	return nil
}
