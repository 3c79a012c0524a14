// Package selection tracks the selected items, the focus and the range
// anchor of a document view.
//
// Selection model:
//
//   - Selected: a set of item IDs, kept in the order they were selected.
//   - Focus: the last interacted element, a selector or an item.
//   - Anchor: the item a shift-click range starts from.
//
// A Selection holds IDs only. After any structural change of the document
// the owner calls Refresh to drop IDs that no longer resolve.
package selection

import (
	"fmt"
	"slices"

	"github.com/dshills/anm2edit/internal/anm2"
	"github.com/dshills/anm2edit/internal/logging"
)

// Document is the read-only view of a document a Selection needs.
// *anm2.Document implements it.
type Document interface {
	Kind(id anm2.ID) anm2.Kind
	SelectorCount() int
	ItemCount(selIndex int) int
	ItemID(selIndex, itemIndex int) anm2.ID
	FindItem(id anm2.ID) (selIndex, itemIndex int, ok bool)
}

// State is the focus and anchor of a Selection.
type State struct {
	Anchor anm2.ID
	Focus  anm2.Ref
}

// Selection tracks selected items, focus and anchor.
// It is not safe for concurrent use.
type Selection struct {
	doc      Document
	selected []anm2.ID
	set      map[anm2.ID]struct{}
	focus    anm2.Ref
	anchor   anm2.ID
	logger   *logging.Logger
}

// Option configures a Selection.
type Option func(*Selection)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Selection) {
		if l != nil {
			s.logger = l.WithComponent("selection")
		}
	}
}

// New creates an empty selection over doc.
func New(doc Document, opts ...Option) *Selection {
	s := &Selection{
		doc:    doc,
		set:    make(map[anm2.ID]struct{}),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func invalid(op string, id anm2.ID, what string) error {
	return fmt.Errorf("%s: %w: %d is not %s", op, anm2.ErrInvalidArgument, id, what)
}

// State returns the focus and anchor.
func (s *Selection) State() State {
	return State{Anchor: s.anchor, Focus: s.focus}
}

// Focus returns the focused element.
func (s *Selection) Focus() anm2.Ref {
	return s.focus
}

// Anchor returns the range anchor, or 0.
func (s *Selection) Anchor() anm2.ID {
	return s.anchor
}

// SelectedIDs returns a copy of the selected item IDs.
func (s *Selection) SelectedIDs() []anm2.ID {
	return slices.Clone(s.selected)
}

// Count returns the number of selected items.
func (s *Selection) Count() int {
	return len(s.selected)
}

// IsSelected reports whether the item id is selected.
func (s *Selection) IsSelected(id anm2.ID) bool {
	_, ok := s.set[id]
	return ok
}

// Clear drops the selection, focus and anchor.
func (s *Selection) Clear() {
	s.setSelected(nil)
	s.focus = anm2.Ref{}
	s.anchor = 0
}

func (s *Selection) setSelected(ids []anm2.ID) {
	s.selected = make([]anm2.ID, 0, len(ids))
	clear(s.set)
	for _, id := range ids {
		s.add(id)
	}
}

func (s *Selection) add(id anm2.ID) {
	if _, ok := s.set[id]; ok {
		return
	}
	s.set[id] = struct{}{}
	s.selected = append(s.selected, id)
}

func (s *Selection) remove(id anm2.ID) {
	if _, ok := s.set[id]; !ok {
		return
	}
	delete(s.set, id)
	s.selected = slices.DeleteFunc(s.selected, func(v anm2.ID) bool { return v == id })
}

// SetFocusSelector focuses a selector, clearing the selection and anchor.
func (s *Selection) SetFocusSelector(id anm2.ID) error {
	if s.doc.Kind(id) != anm2.KindSelector {
		return invalid("set_focus_selector", id, "a selector")
	}
	s.setSelected(nil)
	s.anchor = 0
	s.focus = anm2.Ref{Kind: anm2.KindSelector, ID: id}
	return nil
}

// SetFocusItem focuses an item. Without extend, or without an anchor, the
// item becomes the only selected item and the anchor. With extend the
// selection becomes the range from the anchor to the item.
func (s *Selection) SetFocusItem(id anm2.ID, extend bool) error {
	if s.doc.Kind(id) != anm2.KindItem {
		return invalid("set_focus_item", id, "an item")
	}
	if extend && s.anchor != 0 {
		s.setSelected(s.rangeIDs(s.anchor, id))
	} else {
		s.setSelected([]anm2.ID{id})
		s.anchor = id
	}
	s.focus = anm2.Ref{Kind: anm2.KindItem, ID: id}
	return nil
}

// ApplyTreeviewSelection applies a tree click with modifier keys.
//
//   - id 0 clears everything.
//   - A selector click focuses the selector and clears the selection. With
//     ctrl the selection is kept; a second ctrl-click on the focused
//     selector clears the selection and anchor.
//   - An item ctrl-click toggles the item; it becomes anchor and focus.
//   - An item shift-click selects the range from the anchor.
//   - A plain item click selects only the item.
//
// ctrl takes precedence over shift.
func (s *Selection) ApplyTreeviewSelection(id anm2.ID, isSelector, ctrl, shift bool) error {
	if id == 0 {
		s.Clear()
		return nil
	}

	if isSelector {
		if s.doc.Kind(id) != anm2.KindSelector {
			return invalid("apply_treeview_selection", id, "a selector")
		}
		if !ctrl {
			return s.SetFocusSelector(id)
		}
		ref := anm2.Ref{Kind: anm2.KindSelector, ID: id}
		if s.focus == ref {
			s.setSelected(nil)
			s.anchor = 0
		}
		s.focus = ref
		return nil
	}

	if s.doc.Kind(id) != anm2.KindItem {
		return invalid("apply_treeview_selection", id, "an item")
	}
	switch {
	case ctrl:
		if s.IsSelected(id) {
			s.remove(id)
		} else {
			s.add(id)
		}
		s.anchor = id
		s.focus = anm2.Ref{Kind: anm2.KindItem, ID: id}
	case shift:
		if s.anchor == 0 {
			s.anchor = id
		}
		s.setSelected(s.rangeIDs(s.anchor, id))
		s.focus = anm2.Ref{Kind: anm2.KindItem, ID: id}
	default:
		return s.SetFocusItem(id, false)
	}
	s.logger.Debug("selected %d items, focus %s", len(s.selected), s.focus)
	return nil
}

// ReplaceSelectedItems replaces the selection with ids. focusID and anchorID
// may be 0; otherwise focusID must resolve to an item or selector and
// anchorID to an item. Nothing changes on failure.
func (s *Selection) ReplaceSelectedItems(ids []anm2.ID, focusID, anchorID anm2.ID) error {
	for _, id := range ids {
		if s.doc.Kind(id) != anm2.KindItem {
			return invalid("replace_selected_items", id, "an item")
		}
	}
	focus := anm2.Ref{}
	if focusID != 0 {
		k := s.doc.Kind(focusID)
		if k != anm2.KindItem && k != anm2.KindSelector {
			return invalid("replace_selected_items", focusID, "an item or selector")
		}
		focus = anm2.Ref{Kind: k, ID: focusID}
	}
	if anchorID != 0 && s.doc.Kind(anchorID) != anm2.KindItem {
		return invalid("replace_selected_items", anchorID, "an item")
	}

	s.setSelected(ids)
	s.focus = focus
	s.anchor = anchorID
	return nil
}

// Refresh drops references that no longer resolve. A stale focus also
// clears the anchor; a stale anchor alone clears only the anchor. It
// reports whether anything changed.
func (s *Selection) Refresh() bool {
	changed := false
	for _, id := range slices.Clone(s.selected) {
		if s.doc.Kind(id) != anm2.KindItem {
			s.remove(id)
			changed = true
		}
	}
	if !s.focus.IsZero() && s.doc.Kind(s.focus.ID) != s.focus.Kind {
		s.focus = anm2.Ref{}
		s.anchor = 0
		changed = true
	}
	if s.anchor != 0 && s.doc.Kind(s.anchor) != anm2.KindItem {
		s.anchor = 0
		changed = true
	}
	return changed
}

// position returns the item's index in document order, counting items of
// all preceding selectors.
func (s *Selection) position(id anm2.ID) (int, bool) {
	si, ii, ok := s.doc.FindItem(id)
	if !ok {
		return 0, false
	}
	pos := ii
	for i := 0; i < si; i++ {
		pos += s.doc.ItemCount(i)
	}
	return pos, true
}

// rangeIDs returns the items from a to b inclusive in document order,
// crossing selector boundaries.
func (s *Selection) rangeIDs(a, b anm2.ID) []anm2.ID {
	pa, okA := s.position(a)
	pb, okB := s.position(b)
	if !okA || !okB {
		return []anm2.ID{b}
	}
	lo, hi := min(pa, pb), max(pa, pb)

	var ids []anm2.ID
	pos := 0
	for si, sn := 0, s.doc.SelectorCount(); si < sn; si++ {
		n := s.doc.ItemCount(si)
		if pos+n <= lo {
			pos += n
			continue
		}
		for ii := 0; ii < n; ii++ {
			if pos >= lo && pos <= hi {
				ids = append(ids, s.doc.ItemID(si, ii))
			}
			pos++
		}
		if pos > hi {
			break
		}
	}
	return ids
}
