package anm2

import "fmt"

// Every document mutation is a command recorded on the history tape. A
// command's Execute is also its redo; both directions report the structural
// change they perform to the document's observer.

type metaValue struct {
	str  string
	opt  *string
	flag bool
}

type metaCommand struct {
	op       Op
	old, new metaValue
}

func (c *metaCommand) Execute(d *Document) error {
	d.applyMeta(c.op, c.new)
	return nil
}

func (c *metaCommand) Undo(d *Document) error {
	d.applyMeta(c.op, c.old)
	return nil
}

func (c *metaCommand) Description() string {
	switch c.op {
	case OpSetLabel:
		return "Set label"
	case OpSetPSDPath:
		return "Set PSD path"
	case OpSetExclusiveSupportDefault:
		return "Set exclusive support default"
	case OpSetInformation:
		return "Set information"
	case OpSetDefaultCharacterID:
		return "Set default character ID"
	}
	return c.op.String()
}

// attachSelector and detachSelector are shared by insert and remove, which
// are each other's inverse.

func (d *Document) attachSelector(sel selector, beforeID ID) error {
	if err := d.store.insertSelector(cloneSelector(sel), beforeID); err != nil {
		return err
	}
	d.notify(Change{Op: OpSelectorInsert, ID: sel.id, BeforeID: beforeID})
	return nil
}

func (d *Document) detachSelector(id ID) (selector, ID, error) {
	sel, next, err := d.store.removeSelector(id)
	if err != nil {
		return selector{}, 0, err
	}
	d.notify(Change{Op: OpSelectorRemove, ID: id})
	return cloneSelector(sel), next, nil
}

type selectorInsertCommand struct {
	sel      selector
	beforeID ID
}

func (c *selectorInsertCommand) Execute(d *Document) error {
	return d.attachSelector(c.sel, c.beforeID)
}

func (c *selectorInsertCommand) Undo(d *Document) error {
	_, _, err := d.detachSelector(c.sel.id)
	return err
}

func (c *selectorInsertCommand) Description() string {
	return fmt.Sprintf("Insert selector %q", c.sel.name)
}

type selectorRemoveCommand struct {
	id       ID
	sel      selector
	beforeID ID
}

func (c *selectorRemoveCommand) Execute(d *Document) error {
	sel, next, err := d.detachSelector(c.id)
	if err != nil {
		return err
	}
	c.sel, c.beforeID = sel, next
	return nil
}

func (c *selectorRemoveCommand) Undo(d *Document) error {
	return d.attachSelector(c.sel, c.beforeID)
}

func (c *selectorRemoveCommand) Description() string {
	return fmt.Sprintf("Remove selector %q", c.sel.name)
}

type selectorRenameCommand struct {
	id       ID
	old, new string
}

func (c *selectorRenameCommand) apply(d *Document, name string) error {
	sel := d.store.selectorAt(c.id)
	if sel == nil {
		return invalidf("selector %d not found", c.id)
	}
	sel.name = name
	d.notify(Change{Op: OpSelectorSetName, ID: c.id})
	return nil
}

func (c *selectorRenameCommand) Execute(d *Document) error { return c.apply(d, c.new) }
func (c *selectorRenameCommand) Undo(d *Document) error    { return c.apply(d, c.old) }
func (c *selectorRenameCommand) Description() string {
	return fmt.Sprintf("Rename selector to %q", c.new)
}

type selectorMoveCommand struct {
	id          ID
	beforeID    ID
	oldBeforeID ID
}

func (c *selectorMoveCommand) apply(d *Document, beforeID ID) error {
	if err := d.store.moveSelector(c.id, beforeID); err != nil {
		return err
	}
	d.notify(Change{Op: OpSelectorMove, ID: c.id, BeforeID: beforeID})
	return nil
}

func (c *selectorMoveCommand) Execute(d *Document) error { return c.apply(d, c.beforeID) }
func (c *selectorMoveCommand) Undo(d *Document) error    { return c.apply(d, c.oldBeforeID) }
func (c *selectorMoveCommand) Description() string      { return "Move selector" }

func (d *Document) attachItem(selID ID, it item, beforeID ID) error {
	if err := d.store.insertItem(selID, cloneItem(it), beforeID); err != nil {
		return err
	}
	d.notify(Change{Op: OpItemInsert, ID: it.id, ParentID: selID, BeforeID: beforeID})
	return nil
}

func (d *Document) detachItem(id ID) (item, ID, ID, error) {
	it, selID, next, err := d.store.removeItem(id)
	if err != nil {
		return item{}, 0, 0, err
	}
	d.notify(Change{Op: OpItemRemove, ID: id, ParentID: selID})
	return cloneItem(it), selID, next, nil
}

type itemInsertCommand struct {
	selID    ID
	it       item
	beforeID ID
}

func (c *itemInsertCommand) Execute(d *Document) error {
	return d.attachItem(c.selID, c.it, c.beforeID)
}

func (c *itemInsertCommand) Undo(d *Document) error {
	_, _, _, err := d.detachItem(c.it.id)
	return err
}

func (c *itemInsertCommand) Description() string {
	if c.it.animation {
		return fmt.Sprintf("Insert animation item %q", c.it.scriptName)
	}
	return fmt.Sprintf("Insert item %q", c.it.name)
}

type itemRemoveCommand struct {
	id       ID
	selID    ID
	it       item
	beforeID ID
}

func (c *itemRemoveCommand) Execute(d *Document) error {
	it, selID, next, err := d.detachItem(c.id)
	if err != nil {
		return err
	}
	c.it, c.selID, c.beforeID = it, selID, next
	return nil
}

func (c *itemRemoveCommand) Undo(d *Document) error {
	return d.attachItem(c.selID, c.it, c.beforeID)
}

func (c *itemRemoveCommand) Description() string {
	return fmt.Sprintf("Remove item %q", c.it.name)
}

type itemSetCommand struct {
	id       ID
	op       Op
	old, new string
}

func (c *itemSetCommand) apply(d *Document, v string) error {
	it := d.store.itemAt(c.id)
	if it == nil {
		return invalidf("item %d not found", c.id)
	}
	switch c.op {
	case OpItemSetName:
		it.name = v
	case OpItemSetValue:
		it.value = v
	case OpItemSetScriptName:
		it.scriptName = v
	default:
		return fmt.Errorf("%w: item field op %s", ErrUnexpected, c.op)
	}
	d.notify(Change{Op: c.op, ID: c.id, ParentID: d.store.parents[c.id]})
	return nil
}

func (c *itemSetCommand) Execute(d *Document) error { return c.apply(d, c.new) }
func (c *itemSetCommand) Undo(d *Document) error    { return c.apply(d, c.old) }
func (c *itemSetCommand) Description() string {
	switch c.op {
	case OpItemSetValue:
		return "Set item value"
	case OpItemSetScriptName:
		return "Set script name"
	}
	return fmt.Sprintf("Rename item to %q", c.new)
}

type itemMoveCommand struct {
	id                  ID
	fromSel, fromBefore ID
	toSel, toBefore     ID
}

func (c *itemMoveCommand) apply(d *Document, selID, beforeID ID) error {
	if err := d.store.moveItem(c.id, selID, beforeID); err != nil {
		return err
	}
	d.notify(Change{Op: OpItemMove, ID: c.id, ParentID: selID, BeforeID: beforeID})
	return nil
}

func (c *itemMoveCommand) Execute(d *Document) error { return c.apply(d, c.toSel, c.toBefore) }
func (c *itemMoveCommand) Undo(d *Document) error    { return c.apply(d, c.fromSel, c.fromBefore) }
func (c *itemMoveCommand) Description() string      { return "Move item" }

func (d *Document) attachParam(itemID ID, p param, beforeID ID) error {
	p.userData = 0
	if err := d.store.insertParam(itemID, p, beforeID); err != nil {
		return err
	}
	d.notify(Change{Op: OpParamInsert, ID: p.id, ParentID: itemID, BeforeID: beforeID})
	return nil
}

func (d *Document) detachParam(id ID) (param, ID, ID, error) {
	p, itemID, next, err := d.store.removeParam(id)
	if err != nil {
		return param{}, 0, 0, err
	}
	d.notify(Change{Op: OpParamRemove, ID: id, ParentID: itemID})
	p.userData = 0
	return p, itemID, next, nil
}

type paramInsertCommand struct {
	itemID   ID
	p        param
	beforeID ID
}

func (c *paramInsertCommand) Execute(d *Document) error {
	return d.attachParam(c.itemID, c.p, c.beforeID)
}

func (c *paramInsertCommand) Undo(d *Document) error {
	_, _, _, err := d.detachParam(c.p.id)
	return err
}

func (c *paramInsertCommand) Description() string {
	return fmt.Sprintf("Insert param %q", c.p.key)
}

type paramRemoveCommand struct {
	id       ID
	itemID   ID
	p        param
	beforeID ID
}

func (c *paramRemoveCommand) Execute(d *Document) error {
	p, itemID, next, err := d.detachParam(c.id)
	if err != nil {
		return err
	}
	c.p, c.itemID, c.beforeID = p, itemID, next
	return nil
}

func (c *paramRemoveCommand) Undo(d *Document) error {
	return d.attachParam(c.itemID, c.p, c.beforeID)
}

func (c *paramRemoveCommand) Description() string {
	return fmt.Sprintf("Remove param %q", c.p.key)
}

type paramSetCommand struct {
	id       ID
	op       Op
	old, new string
}

func (c *paramSetCommand) apply(d *Document, v string) error {
	p := d.store.paramAt(c.id)
	if p == nil {
		return invalidf("param %d not found", c.id)
	}
	switch c.op {
	case OpParamSetKey:
		p.key = v
	case OpParamSetValue:
		p.value = v
	default:
		return fmt.Errorf("%w: param field op %s", ErrUnexpected, c.op)
	}
	d.notify(Change{Op: c.op, ID: c.id, ParentID: d.store.parents[c.id]})
	return nil
}

func (c *paramSetCommand) Execute(d *Document) error { return c.apply(d, c.new) }
func (c *paramSetCommand) Undo(d *Document) error    { return c.apply(d, c.old) }
func (c *paramSetCommand) Description() string {
	if c.op == OpParamSetKey {
		return fmt.Sprintf("Rename param to %q", c.new)
	}
	return "Set param value"
}
