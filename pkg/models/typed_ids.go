package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// PageID is a typed ID for pages
type PageID struct {
	uuid uuid.UUID
}

func NewPageID() PageID {
	return PageID{uuid: uuid.New()}
}

func NewPageIDFromUUID(id uuid.UUID) PageID {
	return PageID{uuid: id}
}

func ParsePageID(s string) (PageID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PageID{}, fmt.Errorf("invalid page ID: %w", err)
	}
	return PageID{uuid: id}, nil
}

func (p PageID) UUID() uuid.UUID { return p.uuid }
func (p PageID) String() string  { return p.uuid.String() }
func (p PageID) IsZero() bool    { return p.uuid == uuid.Nil }

func (p PageID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "pages",
		ID:    p.uuid.String(),
	}
}

func (p PageID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.uuid.String())
}

func (p *PageID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	p.uuid = id
	return nil
}

func (p PageID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"pages", p.uuid.String()},
	})
}

func (p *PageID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "pages", &p.uuid)
}

func (p PageID) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.uuid.String(), nil
}

func (p *PageID) Scan(value any) error {
	return scanUUID(value, &p.uuid)
}

func (PageID) GormDataType() string { return "uuid" }

// BlockID is a typed ID for blocks
type BlockID struct {
	uuid uuid.UUID
}

func NewBlockID() BlockID {
	return BlockID{uuid: uuid.New()}
}

func NewBlockIDFromUUID(id uuid.UUID) BlockID {
	return BlockID{uuid: id}
}

func ParseBlockID(s string) (BlockID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return BlockID{}, fmt.Errorf("invalid block ID: %w", err)
	}
	return BlockID{uuid: id}, nil
}

func (b BlockID) UUID() uuid.UUID { return b.uuid }
func (b BlockID) String() string  { return b.uuid.String() }
func (b BlockID) IsZero() bool    { return b.uuid == uuid.Nil }

func (b BlockID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "blocks",
		ID:    b.uuid.String(),
	}
}

func (b BlockID) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.uuid.String())
}

func (b *BlockID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	b.uuid = id
	return nil
}

func (b BlockID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"blocks", b.uuid.String()},
	})
}

func (b *BlockID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "blocks", &b.uuid)
}

func (b BlockID) Value() (driver.Value, error) {
	if b.IsZero() {
		return nil, nil
	}
	return b.uuid.String(), nil
}

func (b *BlockID) Scan(value any) error {
	return scanUUID(value, &b.uuid)
}

func (BlockID) GormDataType() string { return "uuid" }

// UserID is a typed ID for the owning user. The application never stores
// user records itself; the ID scopes pages and blocks to their owner and is
// supplied by the authentication collaborator.
type UserID struct {
	uuid uuid.UUID
}

func NewUserID() UserID {
	return UserID{uuid: uuid.New()}
}

func NewUserIDFromUUID(id uuid.UUID) UserID {
	return UserID{uuid: id}
}

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user ID: %w", err)
	}
	return UserID{uuid: id}, nil
}

func (u UserID) UUID() uuid.UUID { return u.uuid }
func (u UserID) String() string  { return u.uuid.String() }
func (u UserID) IsZero() bool    { return u.uuid == uuid.Nil }

func (u UserID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "users",
		ID:    u.uuid.String(),
	}
}

func (u UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.uuid.String())
}

func (u *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	u.uuid = id
	return nil
}

func (u UserID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"users", u.uuid.String()},
	})
}

func (u *UserID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "users", &u.uuid)
}

func (u UserID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.uuid.String(), nil
}

func (u *UserID) Scan(value any) error {
	return scanUUID(value, &u.uuid)
}

func (UserID) GormDataType() string { return "uuid" }

// Helper functions

// scanUUID is a helper for implementing sql.Scanner interface for PostgreSQL/GORM
func scanUUID(value any, target *uuid.UUID) error {
	if value == nil {
		*target = uuid.Nil
		return nil
	}

	switch v := value.(type) {
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		*target = id
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return err
		}
		*target = id
	default:
		return fmt.Errorf("cannot scan type %T into UUID", value)
	}
	return nil
}

// unmarshalCBORID is a helper for unmarshaling SurrealDB RecordID from CBOR.
// SurrealDB uses CBOR tag 8 to identify RecordID types in its binary protocol.
// The RecordID is encoded as [table_name, id_string] within the tag.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	// Check if this is a CBOR tag (major type 6)
	majorType := data[0] >> 5
	if majorType != 6 {
		return fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}

	// SurrealDB uses tag 8 for RecordID
	if tag.Number != 8 {
		return fmt.Errorf("expected RecordID tag (8), got %d", tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}

	table, ok := arr[0].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: table name must be string")
	}

	if table != expectedTable {
		return fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	idStr, ok := arr[1].(string)
	if !ok {
		return fmt.Errorf("invalid RecordID format: ID must be string")
	}

	parsedUUID, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid UUID in RecordID: %w", err)
	}

	*target = parsedUUID
	return nil
}
