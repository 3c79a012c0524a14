package anm2

import "fmt"

// ID identifies a selector, item or param. 0 is never issued.
type ID uint32

// Kind is the kind of entity an ID resolves to.
type Kind int

const (
	// KindNone means the ID does not resolve.
	KindNone Kind = iota
	// KindSelector is a selector.
	KindSelector
	// KindItem is an item.
	KindItem
	// KindParam is a param of an animation item.
	KindParam
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSelector:
		return "selector"
	case KindItem:
		return "item"
	case KindParam:
		return "param"
	default:
		return "none"
	}
}

// Ref is a tagged entity reference.
type Ref struct {
	Kind Kind
	ID   ID
}

// IsZero reports whether the reference is empty.
func (r Ref) IsZero() bool {
	return r.ID == 0
}

func (r Ref) String() string {
	if r.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Op identifies a structural change reported to an Observer.
type Op int

// Structural change operations.
const (
	OpReset Op = iota
	OpTransactionBegin
	OpTransactionEnd
	OpSetLabel
	OpSetPSDPath
	OpSetExclusiveSupportDefault
	OpSetInformation
	OpSetDefaultCharacterID
	OpSelectorInsert
	OpSelectorRemove
	OpSelectorSetName
	OpSelectorMove
	OpItemInsert
	OpItemRemove
	OpItemSetName
	OpItemSetValue
	OpItemSetScriptName
	OpItemMove
	OpParamInsert
	OpParamRemove
	OpParamSetKey
	OpParamSetValue
)

var opNames = [...]string{
	OpReset:                      "reset",
	OpTransactionBegin:           "transaction_begin",
	OpTransactionEnd:             "transaction_end",
	OpSetLabel:                   "set_label",
	OpSetPSDPath:                 "set_psd_path",
	OpSetExclusiveSupportDefault: "set_exclusive_support_default",
	OpSetInformation:             "set_information",
	OpSetDefaultCharacterID:      "set_default_character_id",
	OpSelectorInsert:             "selector_insert",
	OpSelectorRemove:             "selector_remove",
	OpSelectorSetName:            "selector_set_name",
	OpSelectorMove:               "selector_move",
	OpItemInsert:                 "item_insert",
	OpItemRemove:                 "item_remove",
	OpItemSetName:                "item_set_name",
	OpItemSetValue:               "item_set_value",
	OpItemSetScriptName:          "item_set_script_name",
	OpItemMove:                   "item_move",
	OpParamInsert:                "param_insert",
	OpParamRemove:                "param_remove",
	OpParamSetKey:                "param_set_key",
	OpParamSetValue:              "param_set_value",
}

// String returns the operation name.
func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Change describes one structural change.
//
// For inserts and moves BeforeID is the sibling the entity now precedes,
// 0 meaning the end of the list. ParentID is the selector of an item or the
// item of a param, 0 for selectors and metadata.
type Change struct {
	Op       Op
	ID       ID
	ParentID ID
	BeforeID ID
}

// Observer receives document notifications synchronously from inside the
// mutating call. An observer must not mutate the document it observes.
type Observer interface {
	// DocumentChanged is called once per structural change.
	DocumentChanged(c Change)

	// StateChanged is called after a public operation settles. The observer
	// queries CanUndo, CanRedo, IsModified and CanSave to see what changed.
	StateChanged()
}
