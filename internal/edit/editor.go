// Package edit is the editing facade over an anm2 document and its
// selection.
//
// The Editor observes the document and turns its change notifications into
// a stream of view events. Outside a transaction each change produces the
// precise differential event. Inside a transaction structural events are
// suppressed; when the transaction depth returns to zero a single
// EventTreeviewRebuild and EventDetailRefresh replace them. Undoing a
// transaction replays its end marker first, so the depth briefly goes
// negative and the rebuild fires on the way back up from -1.
//
// State events (undo/redo availability, modified, savable) are delivered
// immediately at any depth, one per flipped state.
package edit

import (
	"github.com/dshills/anm2edit/internal/anm2"
	"github.com/dshills/anm2edit/internal/logging"
	"github.com/dshills/anm2edit/internal/selection"
)

type docState struct {
	canUndo  bool
	canRedo  bool
	modified bool
	canSave  bool
}

// Editor wraps one document and one selection. It installs itself as the
// document's observer; the document must outlive it.
type Editor struct {
	doc *anm2.Document
	sel *selection.Selection

	listener Listener
	namer    Namer
	logger   *logging.Logger

	depth        int
	needsRebuild bool
	state        docState
}

// New creates an editor over doc and takes over its observer slot.
func New(doc *anm2.Document, opts ...Option) *Editor {
	e := &Editor{
		doc:    doc,
		namer:  identityNamer{},
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sel = selection.New(doc, selection.WithLogger(e.logger))
	e.logger = e.logger.WithComponent("edit")
	e.state = e.currentState()
	doc.SetObserver(e)
	return e
}

// Close detaches the editor from its document.
func (e *Editor) Close() {
	e.doc.SetObserver(nil)
}

// Document returns the wrapped document for reading. Mutations should go
// through the Editor so the view stays in sync.
func (e *Editor) Document() *anm2.Document {
	return e.doc
}

// Selection returns the selection for reading.
func (e *Editor) Selection() *selection.Selection {
	return e.sel
}

// SetListener replaces the view event listener.
func (e *Editor) SetListener(l Listener) {
	e.listener = l
}

func (e *Editor) emit(ev Event) {
	if e.depth != 0 && !ev.Type.IsState() {
		e.needsRebuild = true
		return
	}
	if e.listener != nil {
		e.listener.HandleEvent(ev)
	}
}

func (e *Editor) flush() {
	if e.depth != 0 || !e.needsRebuild {
		return
	}
	e.needsRebuild = false
	e.logger.Debug("coalesced rebuild")
	e.emit(Event{Type: EventTreeviewRebuild})
	e.emit(Event{Type: EventDetailRefresh})
}

// DocumentChanged implements anm2.Observer.
func (e *Editor) DocumentChanged(c anm2.Change) {
	switch c.Op {
	case anm2.OpTransactionBegin:
		e.depth++
		e.flush()
	case anm2.OpTransactionEnd:
		e.depth--
		e.flush()

	case anm2.OpReset:
		// A reset abandons any open transaction.
		e.depth = 0
		e.needsRebuild = false
		e.sel.Clear()
		e.emit(Event{Type: EventTreeviewRebuild})
		e.emit(Event{Type: EventDetailRefresh})

	case anm2.OpSetLabel, anm2.OpSetPSDPath, anm2.OpSetExclusiveSupportDefault,
		anm2.OpSetInformation, anm2.OpSetDefaultCharacterID:
		e.emit(Event{Type: EventDetailRefresh})

	case anm2.OpSelectorInsert:
		e.selectorInserted(c)
	case anm2.OpSelectorRemove:
		before := e.snapshot()
		e.sel.Refresh()
		e.emit(Event{Type: EventTreeviewRemoveSelector, ID: c.ID, IsSelector: true})
		e.emitSelectionDiff(before)
	case anm2.OpSelectorSetName:
		e.emit(Event{Type: EventTreeviewUpdateSelector, ID: c.ID, IsSelector: true})
	case anm2.OpSelectorMove:
		e.emit(Event{Type: EventTreeviewMoveSelector, ID: c.ID, BeforeID: c.BeforeID, IsSelector: true})

	case anm2.OpItemInsert:
		e.emit(Event{Type: EventTreeviewInsertItem, ID: c.ID, ParentID: c.ParentID, BeforeID: c.BeforeID,
			Selected: e.sel.IsSelected(c.ID)})
	case anm2.OpItemRemove:
		before := e.snapshot()
		e.sel.Refresh()
		e.emit(Event{Type: EventTreeviewRemoveItem, ID: c.ID, ParentID: c.ParentID})
		e.emitSelectionDiff(before)
	case anm2.OpItemSetName, anm2.OpItemSetValue, anm2.OpItemSetScriptName:
		e.emit(Event{Type: EventTreeviewUpdateItem, ID: c.ID, ParentID: c.ParentID, Selected: e.sel.IsSelected(c.ID)})
		if e.isFocusedItem(c.ID) {
			e.emit(Event{Type: EventDetailUpdateItem, ID: c.ID, ParentID: c.ParentID})
		}
	case anm2.OpItemMove:
		e.emit(Event{Type: EventTreeviewMoveItem, ID: c.ID, ParentID: c.ParentID, BeforeID: c.BeforeID,
			Selected: e.sel.IsSelected(c.ID)})

	case anm2.OpParamInsert:
		e.paramChanged(EventDetailInsertParam, c)
	case anm2.OpParamRemove:
		e.paramChanged(EventDetailRemoveParam, c)
	case anm2.OpParamSetKey, anm2.OpParamSetValue:
		e.paramChanged(EventDetailUpdateParam, c)
	}
}

// selectorInserted reports a selector insert. A selector restored by undo
// comes back with its items, which are reported as one group.
func (e *Editor) selectorInserted(c anm2.Change) {
	items := e.doc.ItemIDs(c.ID)
	if len(items) == 0 {
		e.emit(Event{Type: EventTreeviewInsertSelector, ID: c.ID, BeforeID: c.BeforeID, IsSelector: true})
		return
	}
	e.emit(Event{Type: EventTreeviewGroupBegin})
	e.emit(Event{Type: EventTreeviewInsertSelector, ID: c.ID, BeforeID: c.BeforeID, IsSelector: true})
	for _, id := range items {
		e.emit(Event{Type: EventTreeviewInsertItem, ID: id, ParentID: c.ID, Selected: e.sel.IsSelected(id)})
	}
	e.emit(Event{Type: EventTreeviewGroupEnd})
}

func (e *Editor) paramChanged(t EventType, c anm2.Change) {
	if e.isFocusedItem(c.ParentID) {
		e.emit(Event{Type: t, ID: c.ID, ParentID: c.ParentID, BeforeID: c.BeforeID})
	}
}

func (e *Editor) isFocusedItem(id anm2.ID) bool {
	f := e.sel.Focus()
	return f.Kind == anm2.KindItem && f.ID == id
}

// StateChanged implements anm2.Observer.
func (e *Editor) StateChanged() {
	cur := e.currentState()
	prev := e.state
	e.state = cur

	if cur.canUndo != prev.canUndo || cur.canRedo != prev.canRedo {
		e.emit(Event{Type: EventUndoRedoStateChanged})
	}
	if cur.modified != prev.modified {
		e.emit(Event{Type: EventModifiedStateChanged})
	}
	if cur.canSave != prev.canSave {
		e.emit(Event{Type: EventSaveStateChanged})
	}
}

func (e *Editor) currentState() docState {
	return docState{
		canUndo:  e.doc.CanUndo(),
		canRedo:  e.doc.CanRedo(),
		modified: e.doc.IsModified(),
		canSave:  e.doc.CanSave(),
	}
}

type selectionSnapshot struct {
	ids   []anm2.ID
	focus anm2.Ref
}

func (e *Editor) snapshot() selectionSnapshot {
	return selectionSnapshot{ids: e.sel.SelectedIDs(), focus: e.sel.Focus()}
}

// emitSelectionDiff reports how the selection differs from before.
// Deselection of an entity that no longer exists is reported to the detail
// panel only.
func (e *Editor) emitSelectionDiff(before selectionSnapshot) {
	for _, id := range before.ids {
		if e.sel.IsSelected(id) {
			continue
		}
		if e.doc.Kind(id) == anm2.KindItem {
			e.emit(Event{Type: EventTreeviewSelect, ID: id, ParentID: e.doc.ItemSelector(id), Selected: false})
		}
		e.emit(Event{Type: EventDetailItemDeselected, ID: id})
	}

	was := make(map[anm2.ID]bool, len(before.ids))
	for _, id := range before.ids {
		was[id] = true
	}
	for _, id := range e.sel.SelectedIDs() {
		if was[id] {
			continue
		}
		e.emit(Event{Type: EventTreeviewSelect, ID: id, ParentID: e.doc.ItemSelector(id), Selected: true})
		e.emit(Event{Type: EventDetailItemSelected, ID: id})
	}

	if f := e.sel.Focus(); f != before.focus {
		e.emit(Event{Type: EventTreeviewSetFocus, ID: f.ID, IsSelector: f.Kind == anm2.KindSelector})
		e.emit(Event{Type: EventDetailRefresh})
	}
}
