package edit

import (
	"fmt"

	"github.com/dshills/anm2edit/internal/anm2"
)

// EventType identifies a view event.
type EventType int

// Tree view events.
const (
	EventTreeviewRebuild EventType = iota
	EventTreeviewInsertSelector
	EventTreeviewRemoveSelector
	EventTreeviewUpdateSelector
	EventTreeviewMoveSelector
	EventTreeviewInsertItem
	EventTreeviewRemoveItem
	EventTreeviewUpdateItem
	EventTreeviewMoveItem
	EventTreeviewSelect
	EventTreeviewSetFocus
	EventTreeviewGroupBegin
	EventTreeviewGroupEnd
)

// Detail panel events.
const (
	EventDetailRefresh EventType = iota + 100
	EventDetailInsertParam
	EventDetailRemoveParam
	EventDetailUpdateParam
	EventDetailUpdateItem
	EventDetailItemSelected
	EventDetailItemDeselected
)

// State events. These are delivered even inside a transaction.
const (
	// EventUndoRedoStateChanged reports that undo or redo availability
	// changed. When both flip in the same callback a single event is sent;
	// the listener re-reads CanUndo and CanRedo.
	EventUndoRedoStateChanged EventType = iota + 200
	EventModifiedStateChanged
	EventSaveStateChanged
	EventBeforeUndoRedo
)

var eventNames = map[EventType]string{
	EventTreeviewRebuild:        "treeview.rebuild",
	EventTreeviewInsertSelector: "treeview.insert_selector",
	EventTreeviewRemoveSelector: "treeview.remove_selector",
	EventTreeviewUpdateSelector: "treeview.update_selector",
	EventTreeviewMoveSelector:   "treeview.move_selector",
	EventTreeviewInsertItem:     "treeview.insert_item",
	EventTreeviewRemoveItem:     "treeview.remove_item",
	EventTreeviewUpdateItem:     "treeview.update_item",
	EventTreeviewMoveItem:       "treeview.move_item",
	EventTreeviewSelect:         "treeview.select",
	EventTreeviewSetFocus:       "treeview.set_focus",
	EventTreeviewGroupBegin:     "treeview.group_begin",
	EventTreeviewGroupEnd:       "treeview.group_end",
	EventDetailRefresh:          "detail.refresh",
	EventDetailInsertParam:      "detail.insert_param",
	EventDetailRemoveParam:      "detail.remove_param",
	EventDetailUpdateParam:      "detail.update_param",
	EventDetailUpdateItem:       "detail.update_item",
	EventDetailItemSelected:     "detail.item_selected",
	EventDetailItemDeselected:   "detail.item_deselected",
	EventUndoRedoStateChanged:   "state.undo_redo",
	EventModifiedStateChanged:   "state.modified",
	EventSaveStateChanged:       "state.save",
	EventBeforeUndoRedo:         "before_undo_redo",
}

// String returns the event name.
func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// IsState reports whether t is delivered regardless of transaction depth.
func (t EventType) IsState() bool {
	return t >= EventUndoRedoStateChanged
}

// Event is one incremental view update. BeforeID 0 means the end of the
// list for inserts and moves.
type Event struct {
	Type       EventType
	ID         anm2.ID
	ParentID   anm2.ID
	BeforeID   anm2.ID
	IsSelector bool
	Selected   bool
}

func (e Event) String() string {
	return fmt.Sprintf("%s id=%d parent=%d before=%d selector=%t selected=%t",
		e.Type, e.ID, e.ParentID, e.BeforeID, e.IsSelector, e.Selected)
}

// Listener receives view events synchronously, in order.
type Listener interface {
	HandleEvent(ev Event)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(ev Event)

// HandleEvent calls f(ev).
func (f ListenerFunc) HandleEvent(ev Event) {
	f(ev)
}
