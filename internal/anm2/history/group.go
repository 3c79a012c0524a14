package history

import "errors"

// Transaction runs fn inside a group.
// If fn returns an error the group is cancelled, which reverts everything
// fn recorded; otherwise the group is ended normally.
func (h *History[T]) Transaction(name string, target T, fn func() error) error {
	h.BeginGroup(name, target)

	if err := fn(); err != nil {
		if cerr := h.CancelGroup(target); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}

	return h.EndGroup(target)
}
