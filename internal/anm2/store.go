package anm2

import "slices"

type param struct {
	id       ID
	key      string
	value    string
	userData uintptr
}

type item struct {
	id         ID
	animation  bool
	name       string
	value      string
	scriptName string
	params     []param
	userData   uintptr
}

type selector struct {
	id       ID
	name     string
	items    []item
	userData uintptr
}

// store owns every entity. Position is implicit in slice order; kinds and
// parents resolve an ID without scanning, indices are always derived.
type store struct {
	selectors []selector
	kinds     map[ID]Kind
	parents   map[ID]ID
	lastID    ID
}

func newStore() *store {
	return &store{
		kinds:   make(map[ID]Kind),
		parents: make(map[ID]ID),
	}
}

// clear drops all entities. Issued IDs are not reused afterwards.
func (s *store) clear() {
	s.selectors = nil
	s.kinds = make(map[ID]Kind)
	s.parents = make(map[ID]ID)
}

func (s *store) newID() ID {
	s.lastID++
	return s.lastID
}

func (s *store) kind(id ID) Kind {
	if id == 0 {
		return KindNone
	}
	return s.kinds[id]
}

func (s *store) selectorIndex(id ID) int {
	if s.kind(id) != KindSelector {
		return -1
	}
	for i := range s.selectors {
		if s.selectors[i].id == id {
			return i
		}
	}
	return -1
}

func (s *store) itemIndex(id ID) (si, ii int, ok bool) {
	if s.kind(id) != KindItem {
		return -1, -1, false
	}
	si = s.selectorIndex(s.parents[id])
	if si < 0 {
		return -1, -1, false
	}
	for i := range s.selectors[si].items {
		if s.selectors[si].items[i].id == id {
			return si, i, true
		}
	}
	return -1, -1, false
}

func (s *store) paramIndex(id ID) (si, ii, pi int, ok bool) {
	if s.kind(id) != KindParam {
		return -1, -1, -1, false
	}
	si, ii, ok = s.itemIndex(s.parents[id])
	if !ok {
		return -1, -1, -1, false
	}
	for i, p := range s.selectors[si].items[ii].params {
		if p.id == id {
			return si, ii, i, true
		}
	}
	return -1, -1, -1, false
}

func (s *store) selectorAt(id ID) *selector {
	if i := s.selectorIndex(id); i >= 0 {
		return &s.selectors[i]
	}
	return nil
}

func (s *store) itemAt(id ID) *item {
	if si, ii, ok := s.itemIndex(id); ok {
		return &s.selectors[si].items[ii]
	}
	return nil
}

func (s *store) paramAt(id ID) *param {
	if si, ii, pi, ok := s.paramIndex(id); ok {
		return &s.selectors[si].items[ii].params[pi]
	}
	return nil
}

func (s *store) registerItem(selID ID, it *item) {
	s.kinds[it.id] = KindItem
	s.parents[it.id] = selID
	for _, p := range it.params {
		s.kinds[p.id] = KindParam
		s.parents[p.id] = it.id
	}
}

func (s *store) unregisterItem(it *item) {
	for _, p := range it.params {
		delete(s.kinds, p.id)
		delete(s.parents, p.id)
	}
	delete(s.kinds, it.id)
	delete(s.parents, it.id)
}

// insertSelector places sel before the selector beforeID, or at the end when
// beforeID is 0. The selector's items and params are registered with it.
func (s *store) insertSelector(sel selector, beforeID ID) error {
	at := len(s.selectors)
	if beforeID != 0 {
		if at = s.selectorIndex(beforeID); at < 0 {
			return invalidf("selector %d not found", beforeID)
		}
	}
	s.selectors = slices.Insert(s.selectors, at, sel)
	s.kinds[sel.id] = KindSelector
	for i := range sel.items {
		s.registerItem(sel.id, &sel.items[i])
	}
	return nil
}

// removeSelector detaches a selector with its items and returns it together
// with the ID of the selector that followed it.
func (s *store) removeSelector(id ID) (selector, ID, error) {
	i := s.selectorIndex(id)
	if i < 0 {
		return selector{}, 0, invalidf("selector %d not found", id)
	}
	sel := s.selectors[i]
	next := ID(0)
	if i+1 < len(s.selectors) {
		next = s.selectors[i+1].id
	}
	s.selectors = slices.Delete(s.selectors, i, i+1)
	for j := range sel.items {
		s.unregisterItem(&sel.items[j])
	}
	delete(s.kinds, id)
	return sel, next, nil
}

func (s *store) nextSelectorID(id ID) ID {
	i := s.selectorIndex(id)
	if i < 0 || i+1 >= len(s.selectors) {
		return 0
	}
	return s.selectors[i+1].id
}

func (s *store) moveSelector(id, beforeID ID) error {
	if id == beforeID {
		return nil
	}
	if beforeID != 0 && s.selectorIndex(beforeID) < 0 {
		return invalidf("selector %d not found", beforeID)
	}
	sel, _, err := s.removeSelector(id)
	if err != nil {
		return err
	}
	return s.insertSelector(sel, beforeID)
}

// insertItem places it into selector selID before the item beforeID, or at
// the end when beforeID is 0.
func (s *store) insertItem(selID ID, it item, beforeID ID) error {
	sel := s.selectorAt(selID)
	if sel == nil {
		return invalidf("selector %d not found", selID)
	}
	at := len(sel.items)
	if beforeID != 0 {
		at = -1
		for i := range sel.items {
			if sel.items[i].id == beforeID {
				at = i
				break
			}
		}
		if at < 0 {
			return invalidf("item %d is not in selector %d", beforeID, selID)
		}
	}
	sel.items = slices.Insert(sel.items, at, it)
	s.registerItem(selID, &it)
	return nil
}

// removeItem detaches an item and its params. It returns the item, its
// selector and the ID of the item that followed it.
func (s *store) removeItem(id ID) (item, ID, ID, error) {
	si, ii, ok := s.itemIndex(id)
	if !ok {
		return item{}, 0, 0, invalidf("item %d not found", id)
	}
	sel := &s.selectors[si]
	it := sel.items[ii]
	next := ID(0)
	if ii+1 < len(sel.items) {
		next = sel.items[ii+1].id
	}
	sel.items = slices.Delete(sel.items, ii, ii+1)
	s.unregisterItem(&it)
	return it, sel.id, next, nil
}

func (s *store) nextItemID(id ID) ID {
	si, ii, ok := s.itemIndex(id)
	if !ok || ii+1 >= len(s.selectors[si].items) {
		return 0
	}
	return s.selectors[si].items[ii+1].id
}

func (s *store) moveItem(id, selID, beforeID ID) error {
	if id == beforeID {
		return nil
	}
	if s.selectorIndex(selID) < 0 {
		return invalidf("selector %d not found", selID)
	}
	if beforeID != 0 && (s.kind(beforeID) != KindItem || s.parents[beforeID] != selID) {
		return invalidf("item %d is not in selector %d", beforeID, selID)
	}
	it, _, _, err := s.removeItem(id)
	if err != nil {
		return err
	}
	return s.insertItem(selID, it, beforeID)
}

// insertParam places p into item itemID before the param beforeID, or at the
// end when beforeID is 0.
func (s *store) insertParam(itemID ID, p param, beforeID ID) error {
	it := s.itemAt(itemID)
	if it == nil {
		return invalidf("item %d not found", itemID)
	}
	if !it.animation {
		return invalidf("item %d is not an animation item", itemID)
	}
	at := len(it.params)
	if beforeID != 0 {
		at = -1
		for i := range it.params {
			if it.params[i].id == beforeID {
				at = i
				break
			}
		}
		if at < 0 {
			return invalidf("param %d is not in item %d", beforeID, itemID)
		}
	}
	it.params = slices.Insert(it.params, at, p)
	s.kinds[p.id] = KindParam
	s.parents[p.id] = itemID
	return nil
}

// removeParam detaches a param and returns it with its item and the ID of
// the param that followed it.
func (s *store) removeParam(id ID) (param, ID, ID, error) {
	si, ii, pi, ok := s.paramIndex(id)
	if !ok {
		return param{}, 0, 0, invalidf("param %d not found", id)
	}
	it := &s.selectors[si].items[ii]
	p := it.params[pi]
	next := ID(0)
	if pi+1 < len(it.params) {
		next = it.params[pi+1].id
	}
	it.params = slices.Delete(it.params, pi, pi+1)
	delete(s.kinds, id)
	delete(s.parents, id)
	return p, it.id, next, nil
}

// cloneItem returns a deep copy of it with user data cleared, suitable for
// storing in an undo record.
func cloneItem(it item) item {
	c := it
	c.userData = 0
	c.params = make([]param, len(it.params))
	for i, p := range it.params {
		p.userData = 0
		c.params[i] = p
	}
	return c
}

func cloneSelector(sel selector) selector {
	c := sel
	c.userData = 0
	c.items = make([]item, len(sel.items))
	for i, it := range sel.items {
		c.items[i] = cloneItem(it)
	}
	return c
}
