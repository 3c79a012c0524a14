package anm2

// ParamCount returns the number of params of an item by position.
func (d *Document) ParamCount(selIndex, itemIndex int) int {
	id := d.ItemID(selIndex, itemIndex)
	if id == 0 {
		return 0
	}
	return len(d.store.itemAt(id).params)
}

// ParamID returns the ID of a param by position, or 0.
func (d *Document) ParamID(selIndex, itemIndex, paramIndex int) ID {
	id := d.ItemID(selIndex, itemIndex)
	if id == 0 {
		return 0
	}
	params := d.store.itemAt(id).params
	if paramIndex < 0 || paramIndex >= len(params) {
		return 0
	}
	return params[paramIndex].id
}

// FindParam returns the position of the param id.
func (d *Document) FindParam(id ID) (selIndex, itemIndex, paramIndex int, ok bool) {
	return d.store.paramIndex(id)
}

// ParamIDs returns the IDs of an item's params in order.
func (d *Document) ParamIDs(itemID ID) []ID {
	it := d.store.itemAt(itemID)
	if it == nil {
		return nil
	}
	ids := make([]ID, len(it.params))
	for i := range it.params {
		ids[i] = it.params[i].id
	}
	return ids
}

// ParamItem returns the ID of the item holding the param, or 0.
func (d *Document) ParamItem(id ID) ID {
	if d.store.kind(id) != KindParam {
		return 0
	}
	return d.store.parents[id]
}

// ParamInsert adds a param to an animation item before the param beforeID.
// A beforeID of 0, or one that is not a param of the item, appends.
func (d *Document) ParamInsert(itemID, beforeID ID, key, value string) (ID, error) {
	it := d.store.itemAt(itemID)
	if it == nil || !it.animation {
		return 0, opError("param_insert", itemID, invalidf("animation item not found"))
	}
	if d.store.kind(beforeID) != KindParam || d.store.parents[beforeID] != itemID {
		beforeID = 0
	}
	p := param{id: d.store.newID(), key: key, value: value}
	if err := d.exec("param_insert", p.id, &paramInsertCommand{itemID: itemID, p: p, beforeID: beforeID}); err != nil {
		return 0, err
	}
	return p.id, nil
}

// ParamRemove removes a param.
func (d *Document) ParamRemove(id ID) error {
	if d.store.kind(id) != KindParam {
		return opError("param_remove", id, invalidf("param not found"))
	}
	return d.exec("param_remove", id, &paramRemoveCommand{id: id})
}

// ParamKey returns the param's key.
func (d *Document) ParamKey(id ID) (string, error) {
	p := d.store.paramAt(id)
	if p == nil {
		return "", opError("param_key", id, invalidf("param not found"))
	}
	return p.key, nil
}

// ParamValue returns the param's value.
func (d *Document) ParamValue(id ID) (string, error) {
	p := d.store.paramAt(id)
	if p == nil {
		return "", opError("param_value", id, invalidf("param not found"))
	}
	return p.value, nil
}

// SetParamKey sets the param's key.
func (d *Document) SetParamKey(id ID, key string) error {
	p := d.store.paramAt(id)
	if p == nil {
		return opError("param_set_key", id, invalidf("param not found"))
	}
	return d.exec("param_set_key", id, &paramSetCommand{id: id, op: OpParamSetKey, old: p.key, new: key})
}

// SetParamValue sets the param's value.
func (d *Document) SetParamValue(id ID, value string) error {
	p := d.store.paramAt(id)
	if p == nil {
		return opError("param_set_value", id, invalidf("param not found"))
	}
	return d.exec("param_set_value", id, &paramSetCommand{id: id, op: OpParamSetValue, old: p.value, new: value})
}
