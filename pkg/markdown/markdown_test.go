package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notefold/notefold/pkg/models"
)

func TestParseHeadingsAndParagraphs(t *testing.T) {
	src := []byte(`# Title

Some intro text.

## Section

### Detail

#### Too deep
`)
	pageID := models.NewPageID()
	blocks := Parse(src, pageID)

	require.Len(t, blocks, 5)
	require.Equal(t, models.BlockTypeHeading1, blocks[0].Type)
	require.Equal(t, "Title", blocks[0].Content.Text)
	require.Equal(t, models.BlockTypeParagraph, blocks[1].Type)
	require.Equal(t, "Some intro text.", blocks[1].Content.Text)
	require.Equal(t, models.BlockTypeHeading2, blocks[2].Type)
	require.Equal(t, models.BlockTypeHeading3, blocks[3].Type)
	// Deeper headings clamp to heading_3.
	require.Equal(t, models.BlockTypeHeading3, blocks[4].Type)
	require.Equal(t, "Too deep", blocks[4].Content.Text)

	for i, b := range blocks {
		require.Equal(t, i, b.Position)
		require.Equal(t, pageID, b.PageID)
	}
}

func TestParseBulletedList(t *testing.T) {
	src := []byte(`- first
- second
- third
`)
	blocks := Parse(src, models.NewPageID())

	require.Len(t, blocks, 3)
	for i, want := range []string{"first", "second", "third"} {
		require.Equal(t, models.BlockTypeBulletedList, blocks[i].Type)
		require.Equal(t, want, blocks[i].Content.Text)
	}
}

func TestParseTodoItems(t *testing.T) {
	src := []byte(`- [ ] open task
- [x] done task
- plain item
`)
	blocks := Parse(src, models.NewPageID())

	require.Len(t, blocks, 3)

	require.Equal(t, models.BlockTypeTodo, blocks[0].Type)
	require.Equal(t, "open task", blocks[0].Content.Text)
	require.NotNil(t, blocks[0].Content.Checked)
	require.False(t, *blocks[0].Content.Checked)

	require.Equal(t, models.BlockTypeTodo, blocks[1].Type)
	require.Equal(t, "done task", blocks[1].Content.Text)
	require.NotNil(t, blocks[1].Content.Checked)
	require.True(t, *blocks[1].Content.Checked)

	require.Equal(t, models.BlockTypeBulletedList, blocks[2].Type)
	require.Nil(t, blocks[2].Content.Checked)
}

func TestParseEmptySource(t *testing.T) {
	require.Empty(t, Parse(nil, models.NewPageID()))
	require.Empty(t, Parse([]byte("   \n\n  "), models.NewPageID()))
}

func TestParseMixedDocumentDensePositions(t *testing.T) {
	src := []byte(`# Notes

Intro paragraph.

- [ ] buy milk
- walk dog

Closing thoughts.
`)
	blocks := Parse(src, models.NewPageID())

	require.Len(t, blocks, 5)
	types := []models.BlockType{}
	for i, b := range blocks {
		require.Equal(t, i, b.Position)
		types = append(types, b.Type)
	}
	require.Equal(t, []models.BlockType{
		models.BlockTypeHeading1,
		models.BlockTypeParagraph,
		models.BlockTypeTodo,
		models.BlockTypeBulletedList,
		models.BlockTypeParagraph,
	}, types)
}
