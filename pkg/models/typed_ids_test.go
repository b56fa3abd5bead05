package models

import (
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

func TestPageIDJSONRoundTrip(t *testing.T) {
	id := NewPageID()

	data, err := json.Marshal(id)
	require.NoError(t, err)
	require.Equal(t, `"`+id.String()+`"`, string(data))

	var got PageID
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, id, got)
}

func TestPageIDCBORRecordID(t *testing.T) {
	id := NewPageID()

	data, err := cbor.Marshal(id)
	require.NoError(t, err)

	var got PageID
	require.NoError(t, cbor.Unmarshal(data, &got))
	require.Equal(t, id, got)

	// A block tag must not unmarshal into a page id.
	blockData, err := cbor.Marshal(NewBlockID())
	require.NoError(t, err)
	require.Error(t, cbor.Unmarshal(blockData, &got))
}

func TestParseIDs(t *testing.T) {
	id := NewUserID()

	parsed, err := ParseUserID(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = ParseUserID("not-a-uuid")
	require.Error(t, err)
	_, err = ParsePageID("")
	require.Error(t, err)
}

func TestIDValueAndScan(t *testing.T) {
	id := NewBlockID()

	v, err := id.Value()
	require.NoError(t, err)
	require.Equal(t, id.String(), v)

	var got BlockID
	require.NoError(t, got.Scan(id.String()))
	require.Equal(t, id, got)

	require.NoError(t, got.Scan([]byte(id.String())))
	require.Equal(t, id, got)

	// Zero ids store as NULL and scan back as zero.
	v, err = BlockID{}.Value()
	require.NoError(t, err)
	require.Nil(t, v)
	require.NoError(t, got.Scan(nil))
	require.True(t, got.IsZero())
}

func TestRecordIDTables(t *testing.T) {
	require.Equal(t, "pages", NewPageID().RecordID().Table)
	require.Equal(t, "blocks", NewBlockID().RecordID().Table)
	require.Equal(t, "users", NewUserID().RecordID().Table)
}

func TestBlockTypeValid(t *testing.T) {
	for _, bt := range []BlockType{
		BlockTypeParagraph, BlockTypeHeading1, BlockTypeHeading2,
		BlockTypeHeading3, BlockTypeTodo, BlockTypeBulletedList,
	} {
		require.True(t, bt.Valid(), string(bt))
	}
	require.False(t, BlockType("gallery").Valid())
	require.False(t, BlockType("").Valid())
}

func TestBlockContentScan(t *testing.T) {
	var c BlockContent
	require.NoError(t, c.Scan([]byte(`{"text":"task","checked":true}`)))
	require.Equal(t, "task", c.Text)
	require.NotNil(t, c.Checked)
	require.True(t, *c.Checked)

	require.NoError(t, c.Scan(nil))
	require.Equal(t, BlockContent{}, c)
}

func TestDisplayTitle(t *testing.T) {
	p := &Page{Title: "Journal"}
	require.Equal(t, "Journal", p.DisplayTitle())

	p.Title = "   "
	require.Equal(t, "Untitled", p.DisplayTitle())

	p.Title = ""
	require.Equal(t, "Untitled", p.DisplayTitle())
}
