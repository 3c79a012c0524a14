package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// list is a minimal target: an ordered list of strings plus a log of the
// boundaries reported by the history.
type list struct {
	items      []string
	boundaries []Boundary
}

type appendCommand struct {
	value string
}

func (c *appendCommand) Execute(l *list) error {
	l.items = append(l.items, c.value)
	return nil
}

func (c *appendCommand) Undo(l *list) error {
	if len(l.items) == 0 || l.items[len(l.items)-1] != c.value {
		return fmt.Errorf("top is not %q", c.value)
	}
	l.items = l.items[:len(l.items)-1]
	return nil
}

func (c *appendCommand) Description() string {
	return "Append " + c.value
}

type failingCommand struct{}

func (failingCommand) Execute(*list) error  { return errors.New("boom") }
func (failingCommand) Undo(*list) error     { return nil }
func (failingCommand) Description() string { return "Fail" }

func newTestHistory(max int) (*History[*list], *list) {
	h := New[*list](max, func(l *list, b Boundary) {
		l.boundaries = append(l.boundaries, b)
	})
	return h, &list{}
}

func TestExecuteUndoRedo(t *testing.T) {
	h, l := newTestHistory(0)

	require.NoError(t, h.Execute(&appendCommand{"a"}, l))
	require.NoError(t, h.Execute(&appendCommand{"b"}, l))
	assert.Equal(t, []string{"a", "b"}, l.items)
	assert.Equal(t, 2, h.UndoCount())

	require.NoError(t, h.Undo(l))
	assert.Equal(t, []string{"a"}, l.items)
	assert.True(t, h.CanRedo())

	require.NoError(t, h.Redo(l))
	assert.Equal(t, []string{"a", "b"}, l.items)
	assert.False(t, h.CanRedo())
}

func TestUndoEmpty(t *testing.T) {
	h, l := newTestHistory(0)
	assert.ErrorIs(t, h.Undo(l), ErrNothingToUndo)
	assert.ErrorIs(t, h.Redo(l), ErrNothingToRedo)
}

func TestExecuteFailureNotRecorded(t *testing.T) {
	h, l := newTestHistory(0)
	assert.Error(t, h.Execute(failingCommand{}, l))
	assert.False(t, h.CanUndo())
}

func TestPushClearsRedo(t *testing.T) {
	h, l := newTestHistory(0)
	require.NoError(t, h.Execute(&appendCommand{"a"}, l))
	require.NoError(t, h.Undo(l))
	require.True(t, h.CanRedo())

	require.NoError(t, h.Execute(&appendCommand{"b"}, l))
	assert.False(t, h.CanRedo())
}

func TestGroupIsOneUnit(t *testing.T) {
	h, l := newTestHistory(0)

	h.BeginGroup("batch", l)
	require.NoError(t, h.Execute(&appendCommand{"a"}, l))
	h.BeginGroup("inner", l)
	require.NoError(t, h.Execute(&appendCommand{"b"}, l))
	require.NoError(t, h.EndGroup(l))
	require.NoError(t, h.Execute(&appendCommand{"c"}, l))
	require.NoError(t, h.EndGroup(l))

	assert.Equal(t, 1, h.UndoCount())
	assert.Equal(t, []Boundary{BoundaryBegin, BoundaryEnd}, l.boundaries)

	require.NoError(t, h.Undo(l))
	assert.Empty(t, l.items)
	assert.Equal(t, 0, h.UndoCount())
	assert.Equal(t, 1, h.RedoCount())

	require.NoError(t, h.Redo(l))
	assert.Equal(t, []string{"a", "b", "c"}, l.items)
}

func TestGroupBoundaryReplayOrder(t *testing.T) {
	h, l := newTestHistory(0)

	h.BeginGroup("batch", l)
	require.NoError(t, h.Execute(&appendCommand{"a"}, l))
	require.NoError(t, h.EndGroup(l))
	l.boundaries = nil

	// Undo walks the tape backwards: end marker first, begin marker last.
	require.NoError(t, h.Undo(l))
	assert.Equal(t, []Boundary{BoundaryEnd, BoundaryBegin}, l.boundaries)

	l.boundaries = nil
	require.NoError(t, h.Redo(l))
	assert.Equal(t, []Boundary{BoundaryBegin, BoundaryEnd}, l.boundaries)
}

func TestEmptyGroupLeavesNoUnit(t *testing.T) {
	h, l := newTestHistory(0)

	h.BeginGroup("nothing", l)
	require.NoError(t, h.EndGroup(l))

	assert.False(t, h.CanUndo())
	assert.Equal(t, []Boundary{BoundaryBegin, BoundaryEnd}, l.boundaries)
}

func TestEndGroupWithoutBegin(t *testing.T) {
	h, l := newTestHistory(0)
	assert.ErrorIs(t, h.EndGroup(l), ErrNotGrouping)
	assert.ErrorIs(t, h.CancelGroup(l), ErrNotGrouping)
}

func TestUndoWhileGrouping(t *testing.T) {
	h, l := newTestHistory(0)
	require.NoError(t, h.Execute(&appendCommand{"a"}, l))
	h.BeginGroup("open", l)
	assert.ErrorIs(t, h.Undo(l), ErrGroupOpen)
	require.NoError(t, h.EndGroup(l))
}

func TestCancelGroupRollsBack(t *testing.T) {
	h, l := newTestHistory(0)
	require.NoError(t, h.Execute(&appendCommand{"keep"}, l))

	h.BeginGroup("doomed", l)
	require.NoError(t, h.Execute(&appendCommand{"a"}, l))
	require.NoError(t, h.Execute(&appendCommand{"b"}, l))
	require.NoError(t, h.CancelGroup(l))

	assert.Equal(t, []string{"keep"}, l.items)
	assert.Equal(t, 1, h.UndoCount())
	assert.False(t, h.CanRedo())
	assert.Equal(t, []Boundary{BoundaryBegin, BoundaryEnd}, l.boundaries)
}

func TestGroupPreservesRedoUnlessCommitted(t *testing.T) {
	setup := func(t *testing.T) (*History[*list], *list) {
		h, l := newTestHistory(0)
		require.NoError(t, h.Execute(&appendCommand{"a"}, l))
		require.NoError(t, h.Undo(l))
		require.True(t, h.CanRedo())
		return h, l
	}

	t.Run("empty group", func(t *testing.T) {
		h, l := setup(t)
		h.BeginGroup("nothing", l)
		require.NoError(t, h.EndGroup(l))
		assert.True(t, h.CanRedo())
		assert.False(t, h.CanUndo())
	})

	t.Run("cancelled group", func(t *testing.T) {
		h, l := setup(t)
		h.BeginGroup("doomed", l)
		require.NoError(t, h.Execute(&appendCommand{"b"}, l))
		require.NoError(t, h.CancelGroup(l))
		assert.True(t, h.CanRedo())
		assert.False(t, h.CanUndo())

		require.NoError(t, h.Redo(l))
		assert.Equal(t, []string{"a"}, l.items)
	})

	t.Run("failed transaction", func(t *testing.T) {
		h, l := setup(t)
		err := h.Transaction("fail", l, func() error { return errors.New("boom") })
		assert.Error(t, err)
		assert.True(t, h.CanRedo())
	})

	t.Run("recorded group", func(t *testing.T) {
		h, l := setup(t)
		require.NoError(t, h.Transaction("ok", l, func() error {
			return h.Execute(&appendCommand{"b"}, l)
		}))
		assert.False(t, h.CanRedo())
		assert.Equal(t, 1, h.UndoCount())
	})
}

func TestTransaction(t *testing.T) {
	h, l := newTestHistory(0)

	err := h.Transaction("ok", l, func() error {
		return h.Execute(&appendCommand{"a"}, l)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.UndoCount())

	boom := errors.New("boom")
	err = h.Transaction("fail", l, func() error {
		require.NoError(t, h.Execute(&appendCommand{"b"}, l))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, l.items)
	assert.Equal(t, 1, h.UndoCount())
}

func TestMaxUnitsTrimsWholeUnits(t *testing.T) {
	h, l := newTestHistory(2)

	h.BeginGroup("g", l)
	require.NoError(t, h.Execute(&appendCommand{"a"}, l))
	require.NoError(t, h.Execute(&appendCommand{"b"}, l))
	require.NoError(t, h.EndGroup(l))
	require.NoError(t, h.Execute(&appendCommand{"c"}, l))
	require.NoError(t, h.Execute(&appendCommand{"d"}, l))

	assert.Equal(t, 2, h.UndoCount())
	require.NoError(t, h.Undo(l))
	require.NoError(t, h.Undo(l))
	assert.ErrorIs(t, h.Undo(l), ErrNothingToUndo)
	assert.Equal(t, []string{"a", "b"}, l.items)
}

func TestSetMaxUnits(t *testing.T) {
	h, l := newTestHistory(10)
	for i := 0; i < 5; i++ {
		require.NoError(t, h.Execute(&appendCommand{fmt.Sprint(i)}, l))
	}
	h.SetMaxUnits(3)
	assert.Equal(t, 3, h.UndoCount())
}

func TestInfo(t *testing.T) {
	h, l := newTestHistory(0)
	require.NoError(t, h.Execute(&appendCommand{"a"}, l))
	require.NoError(t, h.Transaction("Import", l, func() error {
		if err := h.Execute(&appendCommand{"b"}, l); err != nil {
			return err
		}
		return h.Execute(&appendCommand{"c"}, l)
	}))

	info := h.UndoInfo()
	require.Len(t, info, 2)
	assert.Equal(t, "Append a", info[0].Description)
	assert.Equal(t, "Import", info[1].Description)
	assert.Equal(t, 2, info[1].Commands)

	require.NoError(t, h.Undo(l))
	redo := h.RedoInfo()
	require.Len(t, redo, 1)
	assert.Equal(t, "Import", redo[0].Description)
}

func TestClear(t *testing.T) {
	h, l := newTestHistory(0)
	require.NoError(t, h.Execute(&appendCommand{"a"}, l))
	h.BeginGroup("open", l)
	h.Clear()

	assert.False(t, h.CanUndo())
	assert.Equal(t, 0, h.Depth())
}
