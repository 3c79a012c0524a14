package history

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrNotGrouping   = errors.New("no group is open")
	ErrGroupOpen     = errors.New("a group is still open")
)

// DefaultMaxUnits is used when New is given a non-positive limit.
const DefaultMaxUnits = 1000

// History manages the undo/redo tapes for a target of type T.
type History[T any] struct {
	// undoStack holds entries in forward (recording) order.
	undoStack []*entry[T]
	// redoStack holds entries in the order they were undone.
	redoStack []*entry[T]

	// Grouping state
	depth     int
	groupName string
	// savedRedo is the redo tape as it was when the outermost group began.
	// CancelGroup restores it.
	savedRedo []*entry[T]

	onBoundary BoundaryFunc[T]

	// Configuration
	maxUnits int
}

// New creates a new history manager keeping at most maxUnits undo units.
// onBoundary may be nil.
func New[T any](maxUnits int, onBoundary BoundaryFunc[T]) *History[T] {
	if maxUnits <= 0 {
		maxUnits = DefaultMaxUnits
	}
	return &History[T]{
		maxUnits:   maxUnits,
		onBoundary: onBoundary,
	}
}

// Execute runs a command and records it.
func (h *History[T]) Execute(cmd Command[T], target T) error {
	if err := cmd.Execute(target); err != nil {
		return err
	}

	h.Push(cmd)
	return nil
}

// Push records an already executed command.
// Clears the redo tape.
func (h *History[T]) Push(cmd Command[T]) {
	h.push(cmd, BoundaryNone)
	h.trim()
}

// push appends an entry. Only commands clear the redo tape; a group that
// records nothing, or is cancelled, leaves it intact.
func (h *History[T]) push(cmd Command[T], b Boundary) {
	h.undoStack = append(h.undoStack, &entry[T]{
		command:   cmd,
		boundary:  b,
		timestamp: time.Now(),
	})
	if b == BoundaryNone {
		h.redoStack = nil
	}
}

// BeginGroup opens a group. Nested calls only increase the depth; the
// outermost call records a begin marker and reports it.
func (h *History[T]) BeginGroup(name string, target T) {
	h.depth++
	if h.depth > 1 {
		return
	}

	h.groupName = name
	h.savedRedo = h.redoStack
	m := h.newMarker(BoundaryBegin)
	_ = m.Execute(target)
	h.push(m, BoundaryBegin)
}

// EndGroup closes a group. The outermost call records an end marker and
// reports it. A group that recorded no commands leaves nothing on the tape,
// but its end is still reported so observers stay balanced.
func (h *History[T]) EndGroup(target T) error {
	if h.depth == 0 {
		return ErrNotGrouping
	}
	h.depth--
	if h.depth > 0 {
		return nil
	}

	m := h.newMarker(BoundaryEnd)
	if n := len(h.undoStack); n > 0 && h.undoStack[n-1].boundary == BoundaryBegin {
		h.undoStack = h.undoStack[:n-1]
	} else {
		h.push(m, BoundaryEnd)
	}
	_ = m.Execute(target)
	h.groupName = ""
	h.savedRedo = nil
	h.trim()
	return nil
}

// CancelGroup closes a group and, at the outermost level, reverts every
// command recorded since the group began. The reverted commands are dropped
// and do not become redoable; the redo tape is restored to what it was
// before the group. Inner levels only decrease the depth; the outermost
// caller is expected to cancel as well.
func (h *History[T]) CancelGroup(target T) error {
	if h.depth == 0 {
		return ErrNotGrouping
	}
	h.depth--
	if h.depth > 0 {
		return nil
	}

	var firstErr error
	for n := len(h.undoStack); n > 0; n = len(h.undoStack) {
		e := h.undoStack[n-1]
		h.undoStack = h.undoStack[:n-1]
		if e.boundary == BoundaryBegin {
			break
		}
		if err := e.command.Undo(target); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("rollback %q: %w", e.command.Description(), err)
		}
	}

	h.redoStack = h.savedRedo
	h.savedRedo = nil
	_ = h.newMarker(BoundaryEnd).Execute(target)
	h.groupName = ""
	return firstErr
}

func (h *History[T]) newMarker(b Boundary) *marker[T] {
	return &marker[T]{boundary: b, name: h.groupName, notify: h.onBoundary}
}

// Undo reverts the most recent unit.
func (h *History[T]) Undo(target T) error {
	if h.depth != 0 {
		return ErrGroupOpen
	}
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}

	start := unitStart(h.undoStack, BoundaryBegin, BoundaryEnd)
	for i := len(h.undoStack) - 1; i >= start; i-- {
		e := h.undoStack[i]
		if err := e.command.Undo(target); err != nil {
			return fmt.Errorf("undo %q: %w", e.command.Description(), err)
		}
		h.undoStack = h.undoStack[:i]
		h.redoStack = append(h.redoStack, e)
	}
	return nil
}

// Redo re-applies the most recently undone unit.
func (h *History[T]) Redo(target T) error {
	if h.depth != 0 {
		return ErrGroupOpen
	}
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}

	start := unitStart(h.redoStack, BoundaryEnd, BoundaryBegin)
	for i := len(h.redoStack) - 1; i >= start; i-- {
		e := h.redoStack[i]
		if err := e.command.Execute(target); err != nil {
			return fmt.Errorf("redo %q: %w", e.command.Description(), err)
		}
		h.redoStack = h.redoStack[:i]
		h.undoStack = append(h.undoStack, e)
	}
	return nil
}

// CanUndo returns true if undo is available.
func (h *History[T]) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History[T]) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo units available.
func (h *History[T]) UndoCount() int {
	return len(units(h.undoStack))
}

// RedoCount returns the number of redo units available.
func (h *History[T]) RedoCount() int {
	return len(units(forward(h.redoStack)))
}

// Depth returns the current group nesting depth.
func (h *History[T]) Depth() int {
	return h.depth
}

// IsGrouping returns true if a group is open.
func (h *History[T]) IsGrouping() bool {
	return h.depth > 0
}

// Clear removes all undo/redo history and abandons any open group.
func (h *History[T]) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.savedRedo = nil
	h.depth = 0
	h.groupName = ""
}

// UndoInfo returns info about available undo units, oldest first.
func (h *History[T]) UndoInfo() []OperationInfo {
	us := units(h.undoStack)
	result := make([]OperationInfo, len(us))
	for i, u := range us {
		result[i] = describe(u)
	}
	return result
}

// RedoInfo returns info about available redo units, next redo first.
func (h *History[T]) RedoInfo() []OperationInfo {
	us := units(forward(h.redoStack))
	result := make([]OperationInfo, len(us))
	for i, u := range us {
		result[i] = describe(u)
	}
	return result
}

// SetMaxUnits changes the maximum number of undo units.
// If the current tape holds more, the oldest units are removed.
func (h *History[T]) SetMaxUnits(max int) {
	if max <= 0 {
		max = DefaultMaxUnits
	}
	h.maxUnits = max
	h.trim()
}

func (h *History[T]) trim() {
	if h.depth != 0 {
		return
	}
	excess := h.UndoCount() - h.maxUnits
	for ; excess > 0; excess-- {
		n := firstUnitEnd(h.undoStack)
		h.undoStack = h.undoStack[n:]
	}
}

// forward returns the redo tape reordered so the next redo unit comes first
// and boundaries read in recording order.
func forward[T any](tape []*entry[T]) []*entry[T] {
	result := make([]*entry[T], len(tape))
	for i, e := range tape {
		result[len(tape)-1-i] = e
	}
	return result
}
