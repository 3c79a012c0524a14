package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/anm2edit/internal/anm2"
)

type tree struct {
	doc    *anm2.Document
	a, b   anm2.ID
	a1, a2 anm2.ID
	b1, b2 anm2.ID
}

// newTree builds selectors A (A1, A2) and B (B1, B2).
func newTree(t *testing.T) *tree {
	t.Helper()
	tr := &tree{doc: anm2.New()}
	var err error
	tr.a, err = tr.doc.SelectorInsert(0, "A")
	require.NoError(t, err)
	tr.b, err = tr.doc.SelectorInsert(0, "B")
	require.NoError(t, err)
	tr.a1, err = tr.doc.ItemInsertValue(tr.a, "A1", "")
	require.NoError(t, err)
	tr.a2, err = tr.doc.ItemInsertValue(tr.a, "A2", "")
	require.NoError(t, err)
	tr.b1, err = tr.doc.ItemInsertValue(tr.b, "B1", "")
	require.NoError(t, err)
	tr.b2, err = tr.doc.ItemInsertValue(tr.b, "B2", "")
	require.NoError(t, err)
	return tr
}

func itemRef(id anm2.ID) anm2.Ref     { return anm2.Ref{Kind: anm2.KindItem, ID: id} }
func selectorRef(id anm2.ID) anm2.Ref { return anm2.Ref{Kind: anm2.KindSelector, ID: id} }

func TestSetFocusSelector(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)

	require.NoError(t, s.SetFocusItem(tr.a1, false))
	require.NoError(t, s.SetFocusSelector(tr.b))

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, State{Focus: selectorRef(tr.b)}, s.State())

	err := s.SetFocusSelector(tr.a1)
	assert.ErrorIs(t, err, anm2.ErrInvalidArgument)
	assert.Equal(t, selectorRef(tr.b), s.Focus(), "failure leaves state alone")
}

func TestSetFocusItem(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)

	// Extending without an anchor behaves like a plain focus.
	require.NoError(t, s.SetFocusItem(tr.a2, true))
	assert.Equal(t, []anm2.ID{tr.a2}, s.SelectedIDs())
	assert.Equal(t, tr.a2, s.Anchor())

	require.NoError(t, s.SetFocusItem(tr.b1, true))
	assert.Equal(t, []anm2.ID{tr.a2, tr.b1}, s.SelectedIDs())
	assert.Equal(t, tr.a2, s.Anchor())
	assert.Equal(t, itemRef(tr.b1), s.Focus())

	assert.ErrorIs(t, s.SetFocusItem(tr.a, false), anm2.ErrInvalidArgument)
	assert.ErrorIs(t, s.SetFocusItem(999, false), anm2.ErrInvalidArgument)
}

func TestApplyTreeviewSelection_RangeAcrossSelectors(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)

	require.NoError(t, s.ApplyTreeviewSelection(tr.a1, false, false, false))
	require.NoError(t, s.ApplyTreeviewSelection(tr.b2, false, false, true))

	assert.Equal(t, 4, s.Count())
	assert.Equal(t, []anm2.ID{tr.a1, tr.a2, tr.b1, tr.b2}, s.SelectedIDs())
	assert.Equal(t, tr.a1, s.Anchor())
	assert.Equal(t, itemRef(tr.b2), s.Focus())

	// Backwards from the same anchor.
	require.NoError(t, s.ApplyTreeviewSelection(tr.b1, false, false, false))
	require.NoError(t, s.ApplyTreeviewSelection(tr.a2, false, false, true))
	assert.Equal(t, []anm2.ID{tr.a2, tr.b1}, s.SelectedIDs())
}

func TestApplyTreeviewSelection_RangeSpansMiddleSelector(t *testing.T) {
	tr := newTree(t)
	mid, err := tr.doc.SelectorInsert(tr.b, "M")
	require.NoError(t, err)
	m1, err := tr.doc.ItemInsertValue(mid, "M1", "")
	require.NoError(t, err)
	s := New(tr.doc)

	require.NoError(t, s.ApplyTreeviewSelection(tr.a2, false, false, false))
	require.NoError(t, s.ApplyTreeviewSelection(tr.b1, false, false, true))
	assert.Equal(t, []anm2.ID{tr.a2, m1, tr.b1}, s.SelectedIDs())
}

func TestApplyTreeviewSelection_ShiftWithoutAnchor(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)

	require.NoError(t, s.ApplyTreeviewSelection(tr.b1, false, false, true))
	assert.Equal(t, []anm2.ID{tr.b1}, s.SelectedIDs())
	assert.Equal(t, tr.b1, s.Anchor())
}

func TestApplyTreeviewSelection_CtrlToggle(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)

	require.NoError(t, s.ApplyTreeviewSelection(tr.a1, false, true, false))
	require.NoError(t, s.ApplyTreeviewSelection(tr.b2, false, true, false))
	assert.Equal(t, []anm2.ID{tr.a1, tr.b2}, s.SelectedIDs())
	assert.Equal(t, tr.b2, s.Anchor())

	require.NoError(t, s.ApplyTreeviewSelection(tr.a1, false, true, false))
	assert.Equal(t, []anm2.ID{tr.b2}, s.SelectedIDs())
	assert.False(t, s.IsSelected(tr.a1))
	assert.Equal(t, tr.a1, s.Anchor())
	assert.Equal(t, itemRef(tr.a1), s.Focus())
}

func TestApplyTreeviewSelection_CtrlClickSelector(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)

	require.NoError(t, s.ApplyTreeviewSelection(tr.a1, false, true, false))
	require.NoError(t, s.ApplyTreeviewSelection(tr.a2, false, true, false))

	require.NoError(t, s.ApplyTreeviewSelection(tr.a, true, true, false))
	assert.Equal(t, []anm2.ID{tr.a1, tr.a2}, s.SelectedIDs())
	assert.Equal(t, selectorRef(tr.a), s.Focus())

	require.NoError(t, s.ApplyTreeviewSelection(tr.a, true, true, false))
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, anm2.ID(0), s.Anchor())
	assert.Equal(t, selectorRef(tr.a), s.Focus())
}

func TestApplyTreeviewSelection_PlainSelectorAndClear(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)

	require.NoError(t, s.ApplyTreeviewSelection(tr.a1, false, false, false))
	require.NoError(t, s.ApplyTreeviewSelection(tr.b, true, false, false))
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, State{Focus: selectorRef(tr.b)}, s.State())

	require.NoError(t, s.ApplyTreeviewSelection(tr.a1, false, false, false))
	require.NoError(t, s.ApplyTreeviewSelection(0, false, false, false))
	assert.Equal(t, State{}, s.State())
	assert.Equal(t, 0, s.Count())

	assert.ErrorIs(t, s.ApplyTreeviewSelection(tr.a1, true, false, false), anm2.ErrInvalidArgument)
	assert.ErrorIs(t, s.ApplyTreeviewSelection(tr.a, false, false, false), anm2.ErrInvalidArgument)
}

func TestReplaceSelectedItems(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)

	require.NoError(t, s.ReplaceSelectedItems([]anm2.ID{tr.b2, tr.a1, tr.b2}, tr.b2, tr.a1))
	assert.Equal(t, []anm2.ID{tr.b2, tr.a1}, s.SelectedIDs())
	assert.Equal(t, State{Anchor: tr.a1, Focus: itemRef(tr.b2)}, s.State())

	require.NoError(t, s.ReplaceSelectedItems(nil, 0, 0))
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, State{}, s.State())

	require.NoError(t, s.ReplaceSelectedItems([]anm2.ID{tr.a1}, tr.a, 0))
	assert.Equal(t, selectorRef(tr.a), s.Focus())

	for _, tc := range []struct {
		ids           []anm2.ID
		focus, anchor anm2.ID
	}{
		{[]anm2.ID{tr.a1, 999}, 0, 0},
		{[]anm2.ID{tr.a}, 0, 0},
		{[]anm2.ID{tr.a1}, 999, 0},
		{[]anm2.ID{tr.a1}, 0, tr.b},
	} {
		err := s.ReplaceSelectedItems(tc.ids, tc.focus, tc.anchor)
		assert.ErrorIs(t, err, anm2.ErrInvalidArgument)
	}
	assert.Equal(t, []anm2.ID{tr.a1}, s.SelectedIDs(), "failures leave state alone")
}

func TestRefresh_PrunesRemovedItem(t *testing.T) {
	tests := []struct {
		name      string
		focus     func(tr *tree) anm2.ID
		wantFocus func(tr *tree) anm2.Ref
	}{
		{"focus survives", func(tr *tree) anm2.ID { return tr.a1 }, func(tr *tree) anm2.Ref { return itemRef(tr.a1) }},
		{"focus removed", func(tr *tree) anm2.ID { return tr.a2 }, func(tr *tree) anm2.Ref { return anm2.Ref{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTree(t)
			s := New(tr.doc)
			focus := tt.focus(tr)
			require.NoError(t, s.ReplaceSelectedItems([]anm2.ID{tr.a1, tr.a2, tr.b1}, focus, focus))

			require.NoError(t, tr.doc.ItemRemove(tr.a2))
			assert.True(t, s.Refresh())

			assert.Equal(t, []anm2.ID{tr.a1, tr.b1}, s.SelectedIDs())
			assert.Equal(t, tt.wantFocus(tr), s.Focus())
			assert.False(t, s.Refresh(), "second refresh is a no-op")
		})
	}
}

func TestRefresh_StaleAnchorOnly(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)
	require.NoError(t, s.ReplaceSelectedItems([]anm2.ID{tr.a1, tr.b1}, tr.b1, tr.a1))

	require.NoError(t, tr.doc.ItemRemove(tr.a1))
	s.Refresh()

	assert.Equal(t, State{Focus: itemRef(tr.b1)}, s.State())
	assert.Equal(t, []anm2.ID{tr.b1}, s.SelectedIDs())
}

func TestRefresh_RemovedSelector(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)
	require.NoError(t, s.ReplaceSelectedItems([]anm2.ID{tr.a1, tr.b1}, tr.a, 0))

	require.NoError(t, tr.doc.SelectorRemove(tr.a))
	s.Refresh()

	assert.Equal(t, []anm2.ID{tr.b1}, s.SelectedIDs())
	assert.True(t, s.Focus().IsZero())
}

func TestSelectedIDs_ReturnsCopy(t *testing.T) {
	tr := newTree(t)
	s := New(tr.doc)
	require.NoError(t, s.SetFocusItem(tr.a1, false))

	ids := s.SelectedIDs()
	ids[0] = tr.b2
	assert.True(t, s.IsSelected(tr.a1))
	assert.False(t, s.IsSelected(tr.b2))
}
