package anm2

// SelectorCount returns the number of selectors.
func (d *Document) SelectorCount() int {
	return len(d.store.selectors)
}

// SelectorID returns the ID of the selector at index, or 0.
func (d *Document) SelectorID(index int) ID {
	if index < 0 || index >= len(d.store.selectors) {
		return 0
	}
	return d.store.selectors[index].id
}

// FindSelector returns the index of the selector id.
func (d *Document) FindSelector(id ID) (int, bool) {
	i := d.store.selectorIndex(id)
	return i, i >= 0
}

// SelectorIDs returns the IDs of all selectors in order.
func (d *Document) SelectorIDs() []ID {
	ids := make([]ID, len(d.store.selectors))
	for i := range d.store.selectors {
		ids[i] = d.store.selectors[i].id
	}
	return ids
}

// SelectorInsert inserts a selector before the selector beforeID, or at the
// end when beforeID is 0, and returns its ID.
func (d *Document) SelectorInsert(beforeID ID, name string) (ID, error) {
	if beforeID != 0 && d.store.kind(beforeID) != KindSelector {
		return 0, opError("selector_insert", beforeID, invalidf("selector not found"))
	}
	sel := selector{id: d.store.newID(), name: name}
	if err := d.exec("selector_insert", sel.id, &selectorInsertCommand{sel: sel, beforeID: beforeID}); err != nil {
		return 0, err
	}
	return sel.id, nil
}

// SelectorRemove removes a selector with all its items and params.
func (d *Document) SelectorRemove(id ID) error {
	if d.store.kind(id) != KindSelector {
		return opError("selector_remove", id, invalidf("selector not found"))
	}
	return d.exec("selector_remove", id, &selectorRemoveCommand{id: id})
}

// SelectorName returns the selector's name.
func (d *Document) SelectorName(id ID) (string, error) {
	sel := d.store.selectorAt(id)
	if sel == nil {
		return "", opError("selector_name", id, invalidf("selector not found"))
	}
	return sel.name, nil
}

// SetSelectorName renames a selector.
func (d *Document) SetSelectorName(id ID, name string) error {
	sel := d.store.selectorAt(id)
	if sel == nil {
		return opError("selector_set_name", id, invalidf("selector not found"))
	}
	return d.exec("selector_set_name", id, &selectorRenameCommand{id: id, old: sel.name, new: name})
}

// SelectorWouldMove reports whether SelectorMove(id, beforeID) would change
// the order. Invalid arguments report false.
func (d *Document) SelectorWouldMove(id, beforeID ID) bool {
	if d.store.kind(id) != KindSelector {
		return false
	}
	if beforeID != 0 && d.store.kind(beforeID) != KindSelector {
		return false
	}
	return beforeID != id && beforeID != d.store.nextSelectorID(id)
}

// SelectorMove moves a selector before the selector beforeID, or to the end
// when beforeID is 0. Moving before itself or before its successor succeeds
// without recording anything.
func (d *Document) SelectorMove(id, beforeID ID) error {
	if d.store.kind(id) != KindSelector {
		return opError("selector_move", id, invalidf("selector not found"))
	}
	if beforeID != 0 && d.store.kind(beforeID) != KindSelector {
		return opError("selector_move", id, invalidf("target selector %d not found", beforeID))
	}
	if !d.SelectorWouldMove(id, beforeID) {
		return nil
	}
	return d.exec("selector_move", id, &selectorMoveCommand{
		id:          id,
		beforeID:    beforeID,
		oldBeforeID: d.store.nextSelectorID(id),
	})
}
