package edit

import (
	"fmt"

	"github.com/dshills/anm2edit/internal/anm2"
)

// The setters below compare against the current value and skip unchanged
// edits, so a no-op edit never records an undo step.

// SetLabel sets the document label.
func (e *Editor) SetLabel(label string) error {
	if e.doc.Label() == label {
		return nil
	}
	return wrap("set label", e.doc.SetLabel(label))
}

// SetPSDPath sets the PSD file path.
func (e *Editor) SetPSDPath(path string) error {
	if e.doc.PSDPath() == path {
		return nil
	}
	return wrap("set psd path", e.doc.SetPSDPath(path))
}

// SetExclusiveSupportDefault sets the exclusive support default flag.
func (e *Editor) SetExclusiveSupportDefault(v bool) error {
	if e.doc.ExclusiveSupportDefault() == v {
		return nil
	}
	return wrap("set exclusive support default", e.doc.SetExclusiveSupportDefault(v))
}

// SetInformation sets the information text; "" unsets it.
func (e *Editor) SetInformation(text string) error {
	if cur, _ := e.doc.Information(); cur == text {
		return nil
	}
	return wrap("set information", e.doc.SetInformation(text))
}

// SetDefaultCharacterID sets the default character ID; "" unsets it.
func (e *Editor) SetDefaultCharacterID(id string) error {
	if cur, _ := e.doc.DefaultCharacterID(); cur == id {
		return nil
	}
	return wrap("set default character id", e.doc.SetDefaultCharacterID(id))
}

// SetSelectorName renames a selector.
func (e *Editor) SetSelectorName(id anm2.ID, name string) error {
	cur, err := e.doc.SelectorName(id)
	if err != nil || cur == name {
		return wrap("rename selector", err)
	}
	return wrap("rename selector", e.doc.SetSelectorName(id, name))
}

// SetItemName renames an item.
func (e *Editor) SetItemName(id anm2.ID, name string) error {
	cur, err := e.doc.ItemName(id)
	if err != nil || cur == name {
		return wrap("rename item", err)
	}
	return wrap("rename item", e.doc.SetItemName(id, name))
}

// SetItemValue sets the value of a value item.
func (e *Editor) SetItemValue(id anm2.ID, value string) error {
	cur, err := e.doc.ItemValue(id)
	if err != nil || cur == value {
		return wrap("set item value", err)
	}
	return wrap("set item value", e.doc.SetItemValue(id, value))
}

// SetItemScriptName sets the script of an animation item.
func (e *Editor) SetItemScriptName(id anm2.ID, script string) error {
	cur, err := e.doc.ItemScriptName(id)
	if err != nil || cur == script {
		return wrap("set script name", err)
	}
	return wrap("set script name", e.doc.SetItemScriptName(id, script))
}

// SetParamKey sets a param's key.
func (e *Editor) SetParamKey(id anm2.ID, key string) error {
	cur, err := e.doc.ParamKey(id)
	if err != nil || cur == key {
		return wrap("set param key", err)
	}
	return wrap("set param key", e.doc.SetParamKey(id, key))
}

// SetParamValue sets a param's value.
func (e *Editor) SetParamValue(id anm2.ID, value string) error {
	cur, err := e.doc.ParamValue(id)
	if err != nil || cur == value {
		return wrap("set param value", err)
	}
	return wrap("set param value", e.doc.SetParamValue(id, value))
}

// InsertSelector inserts a selector before beforeID, 0 meaning the end.
func (e *Editor) InsertSelector(beforeID anm2.ID, name string) (anm2.ID, error) {
	id, err := e.doc.SelectorInsert(beforeID, name)
	return id, wrap("insert selector", err)
}

// InsertValueItem inserts a value item; beforeID is an item or a selector.
func (e *Editor) InsertValueItem(beforeID anm2.ID, name, value string) (anm2.ID, error) {
	id, err := e.doc.ItemInsertValue(beforeID, name, value)
	return id, wrap("insert item", err)
}

// InsertAnimationItem inserts an animation item; beforeID is an item or a
// selector.
func (e *Editor) InsertAnimationItem(beforeID anm2.ID, script, name string) (anm2.ID, error) {
	id, err := e.doc.ItemInsertAnimation(beforeID, script, name)
	return id, wrap("insert animation item", err)
}

// InsertParam adds a param to an animation item.
func (e *Editor) InsertParam(itemID, beforeID anm2.ID, key, value string) (anm2.ID, error) {
	id, err := e.doc.ParamInsert(itemID, beforeID, key, value)
	return id, wrap("insert param", err)
}

// RemoveParam removes a param.
func (e *Editor) RemoveParam(id anm2.ID) error {
	return wrap("remove param", e.doc.ParamRemove(id))
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
