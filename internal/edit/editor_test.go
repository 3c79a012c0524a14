package edit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/anm2edit/internal/anm2"
)

type recorder struct {
	events []Event
}

func (r *recorder) HandleEvent(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) reset() { r.events = nil }

func (r *recorder) types() []EventType {
	types := make([]EventType, len(r.events))
	for i, ev := range r.events {
		types[i] = ev.Type
	}
	return types
}

// view returns the non-state events.
func (r *recorder) view() []Event {
	var evs []Event
	for _, ev := range r.events {
		if !ev.Type.IsState() {
			evs = append(evs, ev)
		}
	}
	return evs
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func newEditor(t *testing.T, opts ...Option) (*Editor, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(anm2.New(), append([]Option{WithListener(rec)}, opts...)...)
	t.Cleanup(e.Close)
	return e, rec
}

// importValues creates a selector of value items named after names and
// returns the selector and item IDs.
func importValues(t *testing.T, e *Editor, selector string, names ...string) (anm2.ID, []anm2.ID) {
	t.Helper()
	entries := make([]ImportEntry, len(names))
	for i, n := range names {
		entries[i] = ImportEntry{Name: n, Value: "layer/" + n}
	}
	id, err := e.Import(selector, entries)
	require.NoError(t, err)
	return id, e.Document().ItemIDs(id)
}

func TestTransaction_Coalesces(t *testing.T) {
	e, rec := newEditor(t)

	_, err := e.Import("A", []ImportEntry{{Name: "a1"}, {Name: "a2"}})
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventUndoRedoStateChanged,
		EventModifiedStateChanged,
		EventTreeviewRebuild,
		EventDetailRefresh,
	}, rec.types())
}

func TestTransaction_ManualNesting(t *testing.T) {
	e, rec := newEditor(t)
	doc := e.Document()

	doc.BeginTransaction("outer")
	s, err := e.InsertSelector(0, "S")
	require.NoError(t, err)
	doc.BeginTransaction("inner")
	_, err = e.InsertValueItem(s, "x", "")
	require.NoError(t, err)
	require.NoError(t, doc.EndTransaction())
	_, err = e.InsertValueItem(s, "y", "")
	require.NoError(t, err)
	assert.Empty(t, rec.view(), "nothing structural while open")

	require.NoError(t, doc.EndTransaction())
	assert.Equal(t, []Event{{Type: EventTreeviewRebuild}, {Type: EventDetailRefresh}}, rec.view())
}

func TestUndoTransaction_RebuildsOnce(t *testing.T) {
	e, rec := newEditor(t)
	importValues(t, e, "A", "a1", "a2", "a3")

	rec.reset()
	require.NoError(t, e.Undo())
	assert.Equal(t, []EventType{
		EventBeforeUndoRedo,
		EventTreeviewRebuild,
		EventDetailRefresh,
		EventUndoRedoStateChanged,
	}, rec.types())
	assert.Equal(t, 0, e.Document().SelectorCount())

	rec.reset()
	require.NoError(t, e.Redo())
	assert.Equal(t, []EventType{
		EventBeforeUndoRedo,
		EventTreeviewRebuild,
		EventDetailRefresh,
		EventUndoRedoStateChanged,
	}, rec.types())
	assert.Equal(t, 1, e.Document().SelectorCount())
}

func TestSingleOperation_DifferentialEvent(t *testing.T) {
	e, rec := newEditor(t)
	s, items := importValues(t, e, "A", "a1")

	rec.reset()
	id, err := e.InsertValueItem(items[0], "x", "v")
	require.NoError(t, err)
	assert.Equal(t, []Event{{Type: EventTreeviewInsertItem, ID: id, ParentID: s, BeforeID: items[0]}}, rec.events)

	rec.reset()
	require.NoError(t, e.SetSelectorName(s, "renamed"))
	assert.Equal(t, []Event{{Type: EventTreeviewUpdateSelector, ID: s, IsSelector: true}}, rec.events)
}

func TestStateEvents_Dedup(t *testing.T) {
	e, rec := newEditor(t)

	_, err := e.InsertSelector(0, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count(EventUndoRedoStateChanged))
	assert.Equal(t, 1, rec.count(EventModifiedStateChanged))
	assert.Equal(t, 0, rec.count(EventSaveStateChanged))

	rec.reset()
	_, err = e.InsertSelector(0, "B")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.count(EventUndoRedoStateChanged))
	assert.Equal(t, 0, rec.count(EventModifiedStateChanged))
}

func TestStateEvents_SaveState(t *testing.T) {
	e, rec := newEditor(t)
	importValues(t, e, "A", "a1")

	rec.reset()
	require.NoError(t, e.SetPSDPath("a.psd"))
	assert.Equal(t, 1, rec.count(EventSaveStateChanged))
	assert.Equal(t, []Event{{Type: EventDetailRefresh}}, rec.view())
}

func TestStateEvents_DeliveredInsideTransaction(t *testing.T) {
	e, rec := newEditor(t)
	doc := e.Document()

	doc.BeginTransaction("t")
	_, err := e.InsertSelector(0, "A")
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventUndoRedoStateChanged, EventModifiedStateChanged}, rec.types())
	require.NoError(t, doc.EndTransaction())
}

func TestSetters_SkipUnchanged(t *testing.T) {
	e, rec := newEditor(t)
	s, items := importValues(t, e, "A", "a1")
	p, err := e.InsertAnimationItem(s, "Blink", "")
	require.NoError(t, err)
	k, err := e.InsertParam(p, 0, "interval", "5")
	require.NoError(t, err)
	require.NoError(t, e.SetLabel("l"))
	require.NoError(t, e.SetInformation("i"))

	doc := e.Document()
	n := doc.UndoCount()
	rec.reset()

	require.NoError(t, e.SetLabel("l"))
	require.NoError(t, e.SetPSDPath(""))
	require.NoError(t, e.SetExclusiveSupportDefault(true))
	require.NoError(t, e.SetInformation("i"))
	require.NoError(t, e.SetDefaultCharacterID(""))
	require.NoError(t, e.SetSelectorName(s, "A"))
	require.NoError(t, e.SetItemName(items[0], "a1"))
	require.NoError(t, e.SetItemValue(items[0], "layer/a1"))
	require.NoError(t, e.SetItemScriptName(p, "Blink"))
	require.NoError(t, e.SetParamKey(k, "interval"))
	require.NoError(t, e.SetParamValue(k, "5"))

	assert.Equal(t, n, doc.UndoCount())
	assert.Empty(t, rec.events)

	require.NoError(t, e.SetParamValue(k, "6"))
	assert.Equal(t, n+1, doc.UndoCount())

	assert.ErrorIs(t, e.SetItemName(999, "x"), anm2.ErrInvalidArgument)
	assert.ErrorIs(t, e.SetItemValue(p, "x"), anm2.ErrInvalidArgument)
}

func TestSelectionEvents(t *testing.T) {
	e, rec := newEditor(t)
	s, items := importValues(t, e, "A", "a1", "a2")

	rec.reset()
	require.NoError(t, e.ApplyTreeviewSelection(items[0], false, false, false))
	assert.Equal(t, []Event{
		{Type: EventTreeviewSelect, ID: items[0], ParentID: s, Selected: true},
		{Type: EventDetailItemSelected, ID: items[0]},
		{Type: EventTreeviewSetFocus, ID: items[0]},
		{Type: EventDetailRefresh},
	}, rec.events)

	rec.reset()
	require.NoError(t, e.ApplyTreeviewSelection(s, true, false, false))
	assert.Equal(t, []Event{
		{Type: EventTreeviewSelect, ID: items[0], ParentID: s, Selected: false},
		{Type: EventDetailItemDeselected, ID: items[0]},
		{Type: EventTreeviewSetFocus, ID: s, IsSelector: true},
		{Type: EventDetailRefresh},
	}, rec.events)

	assert.ErrorIs(t, e.ApplyTreeviewSelection(999, false, false, false), anm2.ErrInvalidArgument)
}

func TestRemoveSelectedItem_PrunesSelection(t *testing.T) {
	e, rec := newEditor(t)
	s, items := importValues(t, e, "A", "a1", "a2")
	require.NoError(t, e.ApplyTreeviewSelection(items[0], false, false, false))

	rec.reset()
	require.NoError(t, e.Document().ItemRemove(items[0]))
	assert.Equal(t, []Event{
		{Type: EventTreeviewRemoveItem, ID: items[0], ParentID: s},
		{Type: EventDetailItemDeselected, ID: items[0]},
		{Type: EventTreeviewSetFocus},
		{Type: EventDetailRefresh},
	}, rec.events)
	assert.Equal(t, 0, e.Selection().Count())
}

func TestUndoSelectorRemove_GroupsItems(t *testing.T) {
	e, rec := newEditor(t)
	a, items := importValues(t, e, "A", "a1", "a2")
	b, _ := importValues(t, e, "B", "b1")

	require.NoError(t, e.ApplyTreeviewSelection(a, true, false, false))
	require.NoError(t, e.DeleteSelected())
	assert.Equal(t, anm2.KindNone, e.Document().Kind(a))

	rec.reset()
	require.NoError(t, e.Undo())
	assert.Equal(t, []Event{
		{Type: EventTreeviewGroupBegin},
		{Type: EventTreeviewInsertSelector, ID: a, BeforeID: b, IsSelector: true},
		{Type: EventTreeviewInsertItem, ID: items[0], ParentID: a},
		{Type: EventTreeviewInsertItem, ID: items[1], ParentID: a},
		{Type: EventTreeviewGroupEnd},
	}, rec.view())
	assert.Equal(t, EventBeforeUndoRedo, rec.events[0].Type)
}

func TestParamEvents_OnlyForFocusedItem(t *testing.T) {
	e, rec := newEditor(t)
	s, _ := importValues(t, e, "A", "a1")
	p, err := e.InsertAnimationItem(s, "Blink", "")
	require.NoError(t, err)

	rec.reset()
	_, err = e.InsertParam(p, 0, "k", "v")
	require.NoError(t, err)
	assert.Empty(t, rec.view())

	require.NoError(t, e.ApplyTreeviewSelection(p, false, false, false))
	rec.reset()
	k, err := e.InsertParam(p, 0, "k2", "v")
	require.NoError(t, err)
	assert.Equal(t, []Event{{Type: EventDetailInsertParam, ID: k, ParentID: p}}, rec.view())

	rec.reset()
	require.NoError(t, e.SetParamValue(k, "w"))
	require.NoError(t, e.RemoveParam(k))
	assert.Equal(t, []Event{
		{Type: EventDetailUpdateParam, ID: k, ParentID: p},
		{Type: EventDetailRemoveParam, ID: k, ParentID: p},
	}, rec.view())

	rec.reset()
	require.NoError(t, e.SetItemName(p, "named"))
	assert.Equal(t, []Event{
		{Type: EventTreeviewUpdateItem, ID: p, ParentID: s, Selected: true},
		{Type: EventDetailUpdateItem, ID: p, ParentID: s},
	}, rec.view())
}

func TestReset_Rebuilds(t *testing.T) {
	e, rec := newEditor(t)
	_, items := importValues(t, e, "A", "a1")
	require.NoError(t, e.ApplyTreeviewSelection(items[0], false, false, false))

	rec.reset()
	e.Document().Reset()
	assert.Equal(t, []Event{{Type: EventTreeviewRebuild}, {Type: EventDetailRefresh}}, rec.view())
	assert.Equal(t, 0, e.Selection().Count())
	assert.True(t, e.Selection().Focus().IsZero())
}

func TestReset_InsideTransactionResumesEvents(t *testing.T) {
	e, rec := newEditor(t)
	doc := e.Document()

	doc.BeginTransaction("abandoned")
	_, err := doc.SelectorInsert(0, "A")
	require.NoError(t, err)
	doc.Reset()
	assert.Equal(t, 0, doc.TransactionDepth())

	rec.reset()
	id, err := e.InsertSelector(0, "B")
	require.NoError(t, err)
	assert.Equal(t, []Event{{Type: EventTreeviewInsertSelector, ID: id, IsSelector: true}}, rec.view())
}

func TestTransaction_FailedRollsBackWithOneRebuild(t *testing.T) {
	e, rec := newEditor(t)
	doc := e.Document()
	importValues(t, e, "A", "a1", "a2")
	require.NoError(t, e.Undo())
	require.False(t, doc.CanUndo())
	require.True(t, doc.CanRedo())
	before := doc.Content()

	rec.reset()
	err := doc.Transaction("fail", func() error {
		if _, err := doc.SelectorInsert(0, "tmp"); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	assert.Equal(t, []Event{{Type: EventTreeviewRebuild}, {Type: EventDetailRefresh}}, rec.view())
	assert.False(t, doc.CanUndo())
	assert.True(t, doc.CanRedo())
	assert.Equal(t, before, doc.Content())
	assert.Equal(t, e.currentState(), e.state)

	require.NoError(t, e.Redo())
	assert.Equal(t, 1, doc.SelectorCount())
}

func TestTransaction_EmptyEmitsNothing(t *testing.T) {
	e, rec := newEditor(t)
	doc := e.Document()
	importValues(t, e, "A", "a1")
	require.NoError(t, e.Undo())

	rec.reset()
	require.NoError(t, doc.Transaction("empty", func() error { return nil }))
	assert.Empty(t, rec.events)
	assert.True(t, doc.CanRedo())
}

func TestStateEvents_UndoRedoFlipTogether(t *testing.T) {
	e, rec := newEditor(t)
	importValues(t, e, "A", "a1")

	rec.reset()
	require.NoError(t, e.Undo())
	assert.Equal(t, 1, rec.count(EventUndoRedoStateChanged))
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "treeview.insert_item", EventTreeviewInsertItem.String())
	assert.Equal(t, "state.save", EventSaveStateChanged.String())
	assert.Equal(t, "event(999)", EventType(999).String())
	assert.True(t, EventBeforeUndoRedo.IsState())
	assert.False(t, EventDetailRefresh.IsState())
}
