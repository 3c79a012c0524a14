package anm2

// CurrentVersion is the document format version written by this package.
const CurrentVersion = 1

// Content is a plain value copy of a document's persistent state.
//
// IDs are filled in by Document.Content and ignored by Apply and Load,
// which always issue fresh IDs.
type Content struct {
	Version                 int
	Label                   string
	PSDPath                 string
	ExclusiveSupportDefault bool
	Information             *string
	DefaultCharacterID      *string
	Selectors               []SelectorContent
}

// SelectorContent is a selector and its items.
type SelectorContent struct {
	ID    ID
	Name  string
	Items []ItemContent
}

// ItemContent is a value or animation item.
type ItemContent struct {
	ID         ID
	Animation  bool
	Name       string
	Value      string // value items only
	ScriptName string // animation items only
	Params     []ParamContent
}

// ParamContent is a key/value param of an animation item.
type ParamContent struct {
	ID    ID
	Key   string
	Value string
}

// Persistence loads and saves document content.
//
// Load returns the checksum of the body found on disk so a later
// VerifyChecksum can tell whether the file matched what the document
// would generate. Save returns the checksum of the body it wrote.
type Persistence interface {
	Load(path string) (*Content, string, error)
	Save(path string, c *Content) (string, error)
	Checksum(c *Content) (string, error)
}

// Content returns a deep copy of the document's state.
func (d *Document) Content() *Content {
	c := &Content{
		Version:                 d.version,
		Label:                   d.label,
		PSDPath:                 d.psdPath,
		ExclusiveSupportDefault: d.exclusiveSupportDefault,
		Information:             copyOpt(d.information),
		DefaultCharacterID:      copyOpt(d.defaultCharacterID),
		Selectors:               make([]SelectorContent, len(d.store.selectors)),
	}
	for i, sel := range d.store.selectors {
		sc := SelectorContent{ID: sel.id, Name: sel.name, Items: make([]ItemContent, len(sel.items))}
		for j, it := range sel.items {
			ic := ItemContent{
				ID:         it.id,
				Animation:  it.animation,
				Name:       it.name,
				Value:      it.value,
				ScriptName: it.scriptName,
			}
			for _, p := range it.params {
				ic.Params = append(ic.Params, ParamContent{ID: p.id, Key: p.key, Value: p.value})
			}
			sc.Items[j] = ic
		}
		c.Selectors[i] = sc
	}
	return c
}

// validate checks that c can be materialized.
func (c *Content) validate() error {
	for i, sel := range c.Selectors {
		for j, it := range sel.Items {
			if !it.Animation && len(it.Params) > 0 {
				return invalidf("selector %d item %d: params on a value item", i, j)
			}
		}
	}
	return nil
}

// materialize fills the store from c, issuing fresh IDs.
func (d *Document) materialize(c *Content) {
	for _, sc := range c.Selectors {
		sel := selector{id: d.store.newID(), name: sc.Name}
		for _, ic := range sc.Items {
			it := item{
				id:        d.store.newID(),
				animation: ic.Animation,
				name:      ic.Name,
			}
			if ic.Animation {
				it.scriptName = ic.ScriptName
				for _, pc := range ic.Params {
					it.params = append(it.params, param{id: d.store.newID(), key: pc.Key, value: pc.Value})
				}
			} else {
				it.value = ic.Value
			}
			sel.items = append(sel.items, it)
		}
		// Appending never fails.
		_ = d.store.insertSelector(sel, 0)
	}
}

func copyOpt(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// optional maps "" to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
