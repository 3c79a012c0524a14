package edit

import (
	"fmt"
	"slices"

	"github.com/dshills/anm2edit/internal/anm2"
)

func invalidf(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, anm2.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ApplyTreeviewSelection applies a tree click and reports the selection
// change to the view.
func (e *Editor) ApplyTreeviewSelection(id anm2.ID, isSelector, ctrl, shift bool) error {
	before := e.snapshot()
	if err := e.sel.ApplyTreeviewSelection(id, isSelector, ctrl, shift); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	e.emitSelectionDiff(before)
	return nil
}

// ClearSelection drops the selection, focus and anchor.
func (e *Editor) ClearSelection() {
	before := e.snapshot()
	e.sel.Clear()
	e.emitSelectionDiff(before)
}

func (e *Editor) replaceSelection(ids []anm2.ID, focus, anchor anm2.ID) error {
	before := e.snapshot()
	if err := e.sel.ReplaceSelectedItems(ids, focus, anchor); err != nil {
		return err
	}
	e.emitSelectionDiff(before)
	return nil
}

// DeleteSelected removes the focused selector when a selector is focused
// and at most one item is selected. Otherwise it removes every selected
// item in one transaction and clears the selection.
func (e *Editor) DeleteSelected() error {
	focus := e.sel.Focus()
	if focus.Kind == anm2.KindSelector && e.sel.Count() <= 1 {
		if err := e.doc.SelectorRemove(focus.ID); err != nil {
			return fmt.Errorf("delete selected: %w", err)
		}
		return nil
	}

	ids := e.sel.SelectedIDs()
	if len(ids) == 0 {
		return nil
	}
	err := e.doc.Transaction("Delete items", func() error {
		for _, id := range ids {
			if err := e.doc.ItemRemove(id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete selected: %w", err)
	}
	e.ClearSelection()
	return nil
}

type itemMovePlan struct {
	ids      []anm2.ID // document order
	selID    anm2.ID
	beforeID anm2.ID // 0 appends to selID
	noop     bool
}

// planItemMove resolves a drop of ids onto droppedOn. Dropping on a
// selector targets its start, or its end with insertAfter. Dropping on an
// item targets the position before it, or after it with insertAfter.
func (e *Editor) planItemMove(ids []anm2.ID, droppedOn anm2.ID, droppedOnIsSelector, insertAfter bool) (itemMovePlan, error) {
	const op = "move items"
	if len(ids) == 0 {
		return itemMovePlan{}, invalidf(op, "no items")
	}
	moving := make(map[anm2.ID]bool, len(ids))
	for _, id := range ids {
		if e.doc.Kind(id) != anm2.KindItem {
			return itemMovePlan{}, invalidf(op, "%d is not an item", id)
		}
		moving[id] = true
	}

	var plan itemMovePlan
	var target int
	if droppedOnIsSelector {
		if e.doc.Kind(droppedOn) != anm2.KindSelector {
			return itemMovePlan{}, invalidf(op, "drop target %d is not a selector", droppedOn)
		}
		plan.selID = droppedOn
		items := e.doc.ItemIDs(droppedOn)
		if insertAfter || len(items) == 0 {
			target = len(items)
		} else {
			plan.beforeID = items[0]
		}
	} else {
		if e.doc.Kind(droppedOn) != anm2.KindItem {
			return itemMovePlan{}, invalidf(op, "drop target %d is not an item", droppedOn)
		}
		plan.selID = e.doc.ItemSelector(droppedOn)
		items := e.doc.ItemIDs(plan.selID)
		target = slices.Index(items, droppedOn)
		if insertAfter {
			target++
		}
		if target < len(items) {
			plan.beforeID = items[target]
		}
	}

	// A drop from the first moved index through one past the last, all
	// within the target selector, leaves the order as it is.
	lo, hi, inside := -1, -1, true
	for id := range moving {
		if e.doc.ItemSelector(id) != plan.selID {
			inside = false
			break
		}
		_, idx, _ := e.doc.FindItem(id)
		if lo < 0 || idx < lo {
			lo = idx
		}
		if idx > hi {
			hi = idx
		}
	}
	if inside && target >= lo && target <= hi+1 {
		plan.noop = true
		return plan, nil
	}

	// Never insert before an item that is itself moving.
	if plan.beforeID != 0 && moving[plan.beforeID] {
		items := e.doc.ItemIDs(plan.selID)
		i := slices.Index(items, plan.beforeID)
		for i < len(items) && moving[items[i]] {
			i++
		}
		plan.beforeID = 0
		if i < len(items) {
			plan.beforeID = items[i]
		}
	}

	plan.ids = make([]anm2.ID, 0, len(moving))
	for id := range moving {
		plan.ids = append(plan.ids, id)
	}
	slices.SortFunc(plan.ids, func(a, b anm2.ID) int {
		as, ai, _ := e.doc.FindItem(a)
		bs, bi, _ := e.doc.FindItem(b)
		if as != bs {
			return as - bs
		}
		return ai - bi
	})
	return plan, nil
}

// WouldMoveItems reports whether MoveItems with the same arguments would
// change the document.
func (e *Editor) WouldMoveItems(ids []anm2.ID, droppedOn anm2.ID, droppedOnIsSelector, insertAfter bool) bool {
	plan, err := e.planItemMove(ids, droppedOn, droppedOnIsSelector, insertAfter)
	return err == nil && !plan.noop
}

// MoveItems moves ids to the drop position in one transaction, keeping
// their document order, then selects exactly the moved items with the
// first given ID focused. A drop onto the moved block itself or its
// immediate neighbor does nothing.
func (e *Editor) MoveItems(ids []anm2.ID, droppedOn anm2.ID, droppedOnIsSelector, insertAfter bool) error {
	plan, err := e.planItemMove(ids, droppedOn, droppedOnIsSelector, insertAfter)
	if err != nil {
		return err
	}
	if plan.noop {
		return nil
	}

	target := plan.beforeID
	if target == 0 {
		target = plan.selID
	}
	err = e.doc.Transaction("Move items", func() error {
		for _, id := range plan.ids {
			if err := e.doc.ItemMove(id, target); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("move items: %w", err)
	}
	if err := e.replaceSelection(ids, ids[0], ids[0]); err != nil {
		return fmt.Errorf("move items: %w", err)
	}
	return nil
}

// focusSelector returns the focused selector, or the selector holding the
// focused item, or 0.
func (e *Editor) focusSelector() anm2.ID {
	f := e.sel.Focus()
	switch f.Kind {
	case anm2.KindSelector:
		return f.ID
	case anm2.KindItem:
		return e.doc.ItemSelector(f.ID)
	}
	return 0
}

// ReverseFocusSelector reverses the item order of the focused selector in
// one transaction.
func (e *Editor) ReverseFocusSelector() error {
	const op = "reverse selector"
	selID := e.focusSelector()
	if selID == 0 {
		return invalidf(op, "nothing focused")
	}
	items := e.doc.ItemIDs(selID)
	if len(items) < 2 {
		return invalidf(op, "selector %d has fewer than 2 items", selID)
	}
	err := e.doc.Transaction("Reverse items", func() error {
		for i := len(items) - 2; i >= 0; i-- {
			if err := e.doc.ItemMove(items[i], selID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (e *Editor) resolveSelectorDrop(dragged, droppedOn anm2.ID, insertAfter bool) (anm2.ID, error) {
	const op = "move selector"
	if e.doc.Kind(dragged) != anm2.KindSelector {
		return 0, invalidf(op, "%d is not a selector", dragged)
	}
	if e.doc.Kind(droppedOn) != anm2.KindSelector {
		return 0, invalidf(op, "drop target %d is not a selector", droppedOn)
	}
	if !insertAfter {
		return droppedOn, nil
	}
	i, _ := e.doc.FindSelector(droppedOn)
	return e.doc.SelectorID(i + 1), nil
}

// WouldMoveSelector reports whether MoveSelector with the same arguments
// would change the document.
func (e *Editor) WouldMoveSelector(dragged, droppedOn anm2.ID, insertAfter bool) bool {
	if dragged == droppedOn {
		return false
	}
	before, err := e.resolveSelectorDrop(dragged, droppedOn, insertAfter)
	return err == nil && e.doc.SelectorWouldMove(dragged, before)
}

// MoveSelector moves dragged before droppedOn, or after it with
// insertAfter. Dropping a selector onto itself does nothing.
func (e *Editor) MoveSelector(dragged, droppedOn anm2.ID, insertAfter bool) error {
	if dragged == droppedOn {
		return nil
	}
	before, err := e.resolveSelectorDrop(dragged, droppedOn, insertAfter)
	if err != nil {
		return err
	}
	if err := e.doc.SelectorMove(dragged, before); err != nil {
		return fmt.Errorf("move selector: %w", err)
	}
	return nil
}

// ImportEntry is one value item of an import.
type ImportEntry struct {
	Name  string
	Value string
}

// Import appends a selector holding value items for entries as one undo
// step and returns the new selector's ID.
func (e *Editor) Import(selectorName string, entries []ImportEntry) (anm2.ID, error) {
	var selID anm2.ID
	err := e.doc.Transaction("Import "+selectorName, func() error {
		id, err := e.doc.SelectorInsert(0, selectorName)
		if err != nil {
			return err
		}
		for _, en := range entries {
			if _, err := e.doc.ItemInsertValue(id, en.Name, en.Value); err != nil {
				return err
			}
		}
		selID = id
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	e.logger.Debug("imported %d items into %q", len(entries), selectorName)
	return selID, nil
}

// Undo reverts the last step. Listeners get EventBeforeUndoRedo first.
func (e *Editor) Undo() error {
	e.emit(Event{Type: EventBeforeUndoRedo})
	if err := e.doc.Undo(); err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	before := e.snapshot()
	if e.sel.Refresh() {
		e.emitSelectionDiff(before)
	}
	return nil
}

// Redo re-applies the last undone step. Listeners get EventBeforeUndoRedo
// first.
func (e *Editor) Redo() error {
	e.emit(Event{Type: EventBeforeUndoRedo})
	if err := e.doc.Redo(); err != nil {
		return fmt.Errorf("redo: %w", err)
	}
	before := e.snapshot()
	if e.sel.Refresh() {
		e.emitSelectionDiff(before)
	}
	return nil
}
