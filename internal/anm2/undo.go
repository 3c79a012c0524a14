package anm2

import (
	"errors"
	"fmt"

	"github.com/dshills/anm2edit/internal/anm2/history"
)

// BeginTransaction opens a transaction. Transactions nest; only the
// outermost pair is recorded, so the whole outer transaction undoes as one
// step. Observers see OpTransactionBegin and OpTransactionEnd for the
// outermost pair only.
func (d *Document) BeginTransaction(name string) {
	if d.history.Depth() == 0 {
		d.txBegin(name)
	}
	d.history.BeginGroup(name, d)
}

func (d *Document) txBegin(name string) {
	d.txModified = d.modified
	d.logger.Debug("transaction %q begin", name)
}

// EndTransaction closes the innermost open transaction.
func (d *Document) EndTransaction() error {
	if err := d.history.EndGroup(d); err != nil {
		return opError("end_transaction", 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err))
	}
	if d.history.Depth() == 0 {
		d.txEnd()
	}
	return nil
}

func (d *Document) txEnd() {
	d.logger.Debug("transaction end")
	d.stateChanged()
}

// CancelTransaction closes the innermost open transaction. At the outermost
// level every change recorded since BeginTransaction is reverted, and the
// undo, redo and modified state are as they were before it began.
func (d *Document) CancelTransaction() error {
	if err := d.history.CancelGroup(d); err != nil {
		if errors.Is(err, history.ErrNotGrouping) {
			err = fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		return opError("cancel_transaction", 0, err)
	}
	if d.history.Depth() == 0 {
		d.txCancelled()
	}
	return nil
}

func (d *Document) txCancelled() {
	d.modified = d.txModified
	d.logger.Debug("transaction cancelled")
	d.stateChanged()
}

// Transaction runs fn inside a transaction. When fn fails the transaction
// is cancelled and the document is left as it was.
func (d *Document) Transaction(name string, fn func() error) error {
	outer := d.history.Depth() == 0
	if outer {
		d.txBegin(name)
	}

	failed := false
	err := d.history.Transaction(name, d, func() error {
		if err := fn(); err != nil {
			failed = true
			return err
		}
		return nil
	})
	if err != nil && !failed {
		return opError("end_transaction", 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err))
	}
	if outer {
		if failed {
			d.txCancelled()
		} else {
			d.txEnd()
		}
	}
	return err
}

// TransactionDepth returns the nesting depth of open transactions.
func (d *Document) TransactionDepth() int {
	return d.history.Depth()
}

// CanUndo reports whether an undo step is available.
func (d *Document) CanUndo() bool {
	return d.history.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (d *Document) CanRedo() bool {
	return d.history.CanRedo()
}

// UndoCount returns the number of undo steps.
func (d *Document) UndoCount() int {
	return d.history.UndoCount()
}

// RedoCount returns the number of redo steps.
func (d *Document) RedoCount() int {
	return d.history.RedoCount()
}

// UndoInfo describes the undo steps, oldest first.
func (d *Document) UndoInfo() []history.OperationInfo {
	return d.history.UndoInfo()
}

// RedoInfo describes the redo steps, next redo first.
func (d *Document) RedoInfo() []history.OperationInfo {
	return d.history.RedoInfo()
}

// Undo reverts the most recent step. A transaction is reverted as a whole;
// its end marker is reported before the reverted changes and its begin
// marker after them.
func (d *Document) Undo() error {
	if err := d.history.Undo(d); err != nil {
		return opError("undo", 0, historyError(err))
	}
	d.modified = true
	d.logger.Debug("undo")
	d.stateChanged()
	return nil
}

// Redo re-applies the most recently undone step.
func (d *Document) Redo() error {
	if err := d.history.Redo(d); err != nil {
		return opError("redo", 0, historyError(err))
	}
	d.modified = true
	d.logger.Debug("redo")
	d.stateChanged()
	return nil
}

// ClearUndoHistory drops all undo and redo steps. It fails while a
// transaction is open.
func (d *Document) ClearUndoHistory() error {
	if d.history.IsGrouping() {
		return opError("clear_undo_history", 0, fmt.Errorf("%w: %w", ErrInvalidArgument, history.ErrGroupOpen))
	}
	d.history.Clear()
	d.stateChanged()
	return nil
}

func historyError(err error) error {
	switch {
	case errors.Is(err, history.ErrNothingToUndo),
		errors.Is(err, history.ErrNothingToRedo),
		errors.Is(err, history.ErrGroupOpen):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}
