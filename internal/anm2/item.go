package anm2

// ItemCount returns the number of items in the selector at selIndex.
func (d *Document) ItemCount(selIndex int) int {
	if selIndex < 0 || selIndex >= len(d.store.selectors) {
		return 0
	}
	return len(d.store.selectors[selIndex].items)
}

// ItemID returns the ID of an item by position, or 0.
func (d *Document) ItemID(selIndex, itemIndex int) ID {
	if selIndex < 0 || selIndex >= len(d.store.selectors) {
		return 0
	}
	items := d.store.selectors[selIndex].items
	if itemIndex < 0 || itemIndex >= len(items) {
		return 0
	}
	return items[itemIndex].id
}

// FindItem returns the position of the item id.
func (d *Document) FindItem(id ID) (selIndex, itemIndex int, ok bool) {
	return d.store.itemIndex(id)
}

// ItemIDs returns the IDs of the items of a selector in order.
func (d *Document) ItemIDs(selectorID ID) []ID {
	sel := d.store.selectorAt(selectorID)
	if sel == nil {
		return nil
	}
	ids := make([]ID, len(sel.items))
	for i := range sel.items {
		ids[i] = sel.items[i].id
	}
	return ids
}

// ItemSelector returns the ID of the selector holding the item, or 0.
func (d *Document) ItemSelector(id ID) ID {
	if d.store.kind(id) != KindItem {
		return 0
	}
	return d.store.parents[id]
}

// resolveItemTarget maps an insert/move target to a selector and the item
// to insert before. A selector target means the end of that selector.
func (d *Document) resolveItemTarget(targetID ID) (selID, beforeID ID, err error) {
	switch d.store.kind(targetID) {
	case KindSelector:
		return targetID, 0, nil
	case KindItem:
		return d.store.parents[targetID], targetID, nil
	}
	return 0, 0, invalidf("target %d is neither a selector nor an item", targetID)
}

// ItemInsertValue inserts a value item. beforeID is either an item, to insert
// before it, or a selector, to append to it.
func (d *Document) ItemInsertValue(beforeID ID, name, value string) (ID, error) {
	return d.insertItem(beforeID, item{name: name, value: value})
}

// ItemInsertAnimation inserts an animation item. beforeID is interpreted as
// in ItemInsertValue.
func (d *Document) ItemInsertAnimation(beforeID ID, scriptName, name string) (ID, error) {
	return d.insertItem(beforeID, item{animation: true, scriptName: scriptName, name: name})
}

func (d *Document) insertItem(targetID ID, it item) (ID, error) {
	selID, beforeID, err := d.resolveItemTarget(targetID)
	if err != nil {
		return 0, opError("item_insert", targetID, err)
	}
	it.id = d.store.newID()
	cmd := &itemInsertCommand{selID: selID, it: it, beforeID: beforeID}
	if err := d.exec("item_insert", it.id, cmd); err != nil {
		return 0, err
	}
	return it.id, nil
}

// ItemRemove removes an item and its params.
func (d *Document) ItemRemove(id ID) error {
	if d.store.kind(id) != KindItem {
		return opError("item_remove", id, invalidf("item not found"))
	}
	return d.exec("item_remove", id, &itemRemoveCommand{id: id})
}

// ItemIsAnimation reports whether id is an animation item.
func (d *Document) ItemIsAnimation(id ID) bool {
	it := d.store.itemAt(id)
	return it != nil && it.animation
}

// ItemName returns the item's name.
func (d *Document) ItemName(id ID) (string, error) {
	it := d.store.itemAt(id)
	if it == nil {
		return "", opError("item_name", id, invalidf("item not found"))
	}
	return it.name, nil
}

// ItemValue returns the value of a value item. It fails on animation items.
func (d *Document) ItemValue(id ID) (string, error) {
	it := d.store.itemAt(id)
	if it == nil || it.animation {
		return "", opError("item_value", id, invalidf("value item not found"))
	}
	return it.value, nil
}

// ItemScriptName returns the script of an animation item. It fails on
// value items.
func (d *Document) ItemScriptName(id ID) (string, error) {
	it := d.store.itemAt(id)
	if it == nil || !it.animation {
		return "", opError("item_script_name", id, invalidf("animation item not found"))
	}
	return it.scriptName, nil
}

// SetItemName renames an item.
func (d *Document) SetItemName(id ID, name string) error {
	it := d.store.itemAt(id)
	if it == nil {
		return opError("item_set_name", id, invalidf("item not found"))
	}
	return d.exec("item_set_name", id, &itemSetCommand{id: id, op: OpItemSetName, old: it.name, new: name})
}

// SetItemValue sets the value of a value item.
func (d *Document) SetItemValue(id ID, value string) error {
	it := d.store.itemAt(id)
	if it == nil || it.animation {
		return opError("item_set_value", id, invalidf("value item not found"))
	}
	return d.exec("item_set_value", id, &itemSetCommand{id: id, op: OpItemSetValue, old: it.value, new: value})
}

// SetItemScriptName sets the script of an animation item.
func (d *Document) SetItemScriptName(id ID, scriptName string) error {
	it := d.store.itemAt(id)
	if it == nil || !it.animation {
		return opError("item_set_script_name", id, invalidf("animation item not found"))
	}
	return d.exec("item_set_script_name", id, &itemSetCommand{id: id, op: OpItemSetScriptName, old: it.scriptName, new: scriptName})
}

// ItemWouldMove reports whether ItemMove(id, beforeID) would change the
// order. Invalid arguments report false.
func (d *Document) ItemWouldMove(id, beforeID ID) bool {
	if d.store.kind(id) != KindItem {
		return false
	}
	selID, before, err := d.resolveItemTarget(beforeID)
	if err != nil {
		return false
	}
	return d.itemWouldMove(id, selID, before)
}

func (d *Document) itemWouldMove(id, selID, before ID) bool {
	if selID != d.store.parents[id] {
		return true
	}
	return before != id && before != d.store.nextItemID(id)
}

// ItemMove moves an item. beforeID is either an item, to move before it, or
// a selector, to move to its end. Items may move between selectors. A move
// that leaves the order unchanged succeeds without recording anything.
func (d *Document) ItemMove(id, beforeID ID) error {
	if d.store.kind(id) != KindItem {
		return opError("item_move", id, invalidf("item not found"))
	}
	selID, before, err := d.resolveItemTarget(beforeID)
	if err != nil {
		return opError("item_move", id, err)
	}
	if !d.itemWouldMove(id, selID, before) {
		return nil
	}
	return d.exec("item_move", id, &itemMoveCommand{
		id:         id,
		fromSel:    d.store.parents[id],
		fromBefore: d.store.nextItemID(id),
		toSel:      selID,
		toBefore:   before,
	})
}
