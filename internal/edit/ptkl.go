package edit

import (
	"strings"

	"github.com/dshills/anm2edit/internal/anm2"
)

// PtklSuffix marks a param as a target of an external layer export.
const PtklSuffix = "~ptkl"

// PtklTarget is one param of the focused selector that accepts a layer
// export.
type PtklTarget struct {
	SelectorIndex int
	ItemIndex     int
	ParamIndex    int

	SelectorID anm2.ID
	ItemID     anm2.ID
	ParamID    anm2.ID

	SelectorName string
	ItemName     string // display name of the item
	EffectName   string // translated script name
	Key          string
}

// CollectPtklTargets lists the params of the focused selector, or of the
// selector holding the focused item, whose key ends in PtklSuffix. The
// result is empty when nothing is focused.
func (e *Editor) CollectPtklTargets() []PtklTarget {
	selID := e.focusSelector()
	if selID == 0 {
		return nil
	}
	si, ok := e.doc.FindSelector(selID)
	if !ok {
		return nil
	}
	selName, _ := e.doc.SelectorName(selID)

	var targets []PtklTarget
	for ii, itemID := range e.doc.ItemIDs(selID) {
		for pi, paramID := range e.doc.ParamIDs(itemID) {
			key, _ := e.doc.ParamKey(paramID)
			if !strings.HasSuffix(key, PtklSuffix) {
				continue
			}
			script, _ := e.doc.ItemScriptName(itemID)
			targets = append(targets, PtklTarget{
				SelectorIndex: si,
				ItemIndex:     ii,
				ParamIndex:    pi,
				SelectorID:    selID,
				ItemID:        itemID,
				ParamID:       paramID,
				SelectorName:  selName,
				ItemName:      e.ItemDisplayName(itemID),
				EffectName:    e.namer.DisplayName(script),
				Key:           key,
			})
		}
	}
	return targets
}

// ItemDisplayName returns the text shown for an item: its name, or for an
// unnamed animation item the translated script name.
func (e *Editor) ItemDisplayName(id anm2.ID) string {
	name, err := e.doc.ItemName(id)
	if err != nil {
		return ""
	}
	if name != "" || !e.doc.ItemIsAnimation(id) {
		return name
	}
	script, _ := e.doc.ItemScriptName(id)
	return e.namer.DisplayName(script)
}
