// Package editor implements the in-memory block editing engine for one open
// page, the debounced title/icon saver, and the fire-and-forget persistence
// sink those two write through.
//
// The engine treats its in-memory sequence as the source of truth for the
// session. Persistence is asynchronous and failures are swallowed after
// logging, so the user keeps editing even when saves are silently failing.
// That availability-over-durability tradeoff is deliberate; do not add
// retries or user-facing error blocking here.
package editor

import (
	"strings"

	"github.com/notefold/notefold/pkg/models"
)

// Sink receives the persistence side effects of editing operations. Calls
// are fire-and-forget: implementations must not block the editing path and
// must swallow failures after recording them.
type Sink interface {
	SaveBlock(block *models.Block)
	DeleteBlock(id models.BlockID)
}

// Editor owns the ordered block sequence of exactly one page.
//
// Stored positions are not trusted at load time: the authoritative position
// of every block is its index in the sequence, recomputed after every
// structural change. There is no merge with concurrent edits from another
// session; the last local renumbering wins.
type Editor struct {
	pageID   models.PageID
	blocks   []*models.Block
	selected models.BlockID
	sink     Sink
}

// NewEditor initializes the engine from a fetched block sequence. The input
// order is kept; positions are immediately renumbered from slice index so
// gaps or duplicates in stored positions never survive the load.
func NewEditor(pageID models.PageID, blocks []*models.Block, sink Sink) *Editor {
	e := &Editor{
		pageID: pageID,
		blocks: append([]*models.Block{}, blocks...),
		sink:   sink,
	}
	e.renumber()
	return e
}

// Blocks returns the current in-memory sequence.
func (e *Editor) Blocks() []*models.Block {
	return e.blocks
}

// Selected returns the id of the active block, if any.
func (e *Editor) Selected() models.BlockID {
	return e.selected
}

// renumber makes every block's position equal its index.
func (e *Editor) renumber() {
	for i, b := range e.blocks {
		b.Position = i
	}
}

func (e *Editor) find(id models.BlockID) (int, *models.Block) {
	for i, b := range e.blocks {
		if b.ID == id {
			return i, b
		}
	}
	return -1, nil
}

func (e *Editor) newParagraph() *models.Block {
	return &models.Block{
		ID:      models.NewBlockID(),
		PageID:  e.pageID,
		Type:    models.BlockTypeParagraph,
		Content: models.BlockContent{Text: ""},
	}
}

// EnsureNonEmpty synthesizes one empty paragraph block at position 0 when
// the sequence is empty and persists it. Called once on session start so a
// page is never shown with zero blocks.
func (e *Editor) EnsureNonEmpty() {
	if len(e.blocks) > 0 {
		return
	}
	b := e.newParagraph()
	e.blocks = append(e.blocks, b)
	e.renumber()
	e.selected = b.ID
	e.sink.SaveBlock(cloneBlock(b))
}

// InsertBelow creates a new empty paragraph immediately after afterIndex,
// or at the end when afterIndex is out of range, renumbers every block, and
// persists only the new block. Displaced siblings become durable on their
// next blur. The new block becomes the active selection.
func (e *Editor) InsertBelow(afterIndex int) *models.Block {
	b := e.newParagraph()
	at := afterIndex + 1
	if afterIndex < 0 || at > len(e.blocks) {
		at = len(e.blocks)
	}
	e.blocks = append(e.blocks, nil)
	copy(e.blocks[at+1:], e.blocks[at:])
	e.blocks[at] = b
	e.renumber()
	e.selected = b.ID
	e.sink.SaveBlock(cloneBlock(b))
	return b
}

// UpdateText replaces the block's text in place. Purely local; the edit
// becomes durable on the block's next blur, so rapid typing does not
// generate one write per keystroke.
func (e *Editor) UpdateText(id models.BlockID, text string) {
	if _, b := e.find(id); b != nil {
		b.Content.Text = text
	}
}

// ToggleChecked sets the checkbox state and persists the block immediately.
// Checkbox flips must not be lost on navigation, so they skip the blur
// deferral.
func (e *Editor) ToggleChecked(id models.BlockID, checked bool) {
	_, b := e.find(id)
	if b == nil {
		return
	}
	c := checked
	b.Content.Checked = &c
	e.sink.SaveBlock(cloneBlock(b))
}

// ChangeType replaces the block's type and persists it immediately. The
// content payload is carried untouched, so a todo converted away and back
// keeps its checked state.
func (e *Editor) ChangeType(id models.BlockID, newType models.BlockType) {
	_, b := e.find(id)
	if b == nil || !newType.Valid() {
		return
	}
	b.Type = newType
	e.sink.SaveBlock(cloneBlock(b))
}

// Remove deletes the block, renumbers the remainder, issues a delete for
// the removed id, and persists every renumbered survivor so position
// integrity survives a reload even if the delete and the renumber writes
// interleave.
func (e *Editor) Remove(id models.BlockID) {
	i, _ := e.find(id)
	if i < 0 {
		return
	}
	e.blocks = append(e.blocks[:i], e.blocks[i+1:]...)
	e.renumber()
	if e.selected == id {
		e.selected = models.BlockID{}
	}
	e.sink.DeleteBlock(id)
	for _, b := range e.blocks {
		e.sink.SaveBlock(cloneBlock(b))
	}
}

// Blur persists the block's current full state. This is the point at which
// accumulated UpdateText edits become durable.
func (e *Editor) Blur(id models.BlockID) {
	_, b := e.find(id)
	if b == nil {
		return
	}
	e.sink.SaveBlock(cloneBlock(b))
}

// IsEmptyText reports whether the block's text is empty, the condition
// under which Backspace removes the block instead of editing it.
func (e *Editor) IsEmptyText(id models.BlockID) bool {
	_, b := e.find(id)
	return b != nil && strings.TrimSpace(b.Content.Text) == ""
}

// cloneBlock snapshots a block so later in-memory edits don't race with the
// async save of an earlier state.
func cloneBlock(b *models.Block) *models.Block {
	cp := *b
	if b.Content.Checked != nil {
		c := *b.Content.Checked
		cp.Content.Checked = &c
	}
	return &cp
}
