package anm2

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/anm2edit/internal/anm2/history"
	"github.com/dshills/anm2edit/internal/logging"
)

// Document is an ID-addressed tree of selectors, items and params with
// metadata and an undo history.
//
// A Document is not safe for concurrent use. Observers are called
// synchronously from inside the mutating call.
type Document struct {
	instanceID string

	label                   string
	psdPath                 string
	exclusiveSupportDefault bool
	information             *string
	defaultCharacterID      *string
	version                 int

	modified       bool
	loadedChecksum string
	// txModified is the modified flag when the outermost transaction began.
	txModified bool

	store   *store
	history *history.History[*Document]

	observer    Observer
	persistence Persistence
	logger      *logging.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger. Documents log mutations at debug level.
func WithLogger(l *logging.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l.WithComponent("anm2")
		}
	}
}

// WithMaxUndo sets the maximum number of undo steps kept.
// A transaction counts as one step.
func WithMaxUndo(n int) Option {
	return func(d *Document) {
		d.history.SetMaxUnits(n)
	}
}

// WithPersistence sets the backend used by Load, Save and VerifyChecksum.
func WithPersistence(p Persistence) Option {
	return func(d *Document) {
		d.persistence = p
	}
}

// WithObserver sets the change observer.
func WithObserver(o Observer) Option {
	return func(d *Document) {
		d.observer = o
	}
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		instanceID:              uuid.NewString(),
		exclusiveSupportDefault: true,
		version:                 CurrentVersion,
		store:                   newStore(),
		logger:                  logging.Nop(),
	}
	d.history = history.New(history.DefaultMaxUnits, reportBoundary)

	for _, opt := range opts {
		opt(d)
	}
	return d
}

func reportBoundary(d *Document, b history.Boundary) {
	switch b {
	case history.BoundaryBegin:
		d.notify(Change{Op: OpTransactionBegin})
	case history.BoundaryEnd:
		d.notify(Change{Op: OpTransactionEnd})
	}
}

// InstanceID returns a random identifier unique to this document value.
func (d *Document) InstanceID() string {
	return d.instanceID
}

// SetObserver replaces the change observer. nil disables notifications.
func (d *Document) SetObserver(o Observer) {
	d.observer = o
}

func (d *Document) notify(c Change) {
	if d.observer != nil {
		d.observer.DocumentChanged(c)
	}
}

func (d *Document) stateChanged() {
	if d.observer != nil {
		d.observer.StateChanged()
	}
}

// exec runs cmd through the history and reports the new state.
func (d *Document) exec(op string, id ID, cmd history.Command[*Document]) error {
	if err := d.history.Execute(cmd, d); err != nil {
		return opError(op, id, err)
	}
	d.modified = true
	if d.logger.Enabled(logging.LevelDebug) {
		d.logger.WithField("id", uint32(id)).Debug("%s", cmd.Description())
	}
	d.stateChanged()
	return nil
}

// Kind returns the kind of entity id resolves to.
func (d *Document) Kind(id ID) Kind {
	return d.store.kind(id)
}

// Version returns the format version of the document.
func (d *Document) Version() int {
	return d.version
}

// IsModified reports whether the document changed since it was created,
// loaded or saved.
func (d *Document) IsModified() bool {
	return d.modified
}

// CanSave reports whether the document has a PSD path and at least one
// selector holding an item.
func (d *Document) CanSave() bool {
	if d.psdPath == "" {
		return false
	}
	for i := range d.store.selectors {
		if len(d.store.selectors[i].items) > 0 {
			return true
		}
	}
	return false
}

// Reset clears all content and history, as if the document were new. An
// open transaction is abandoned without being reverted; observers see
// OpReset in place of its end.
func (d *Document) Reset() {
	d.clear()
	d.logger.Debug("reset")
	d.notify(Change{Op: OpReset})
	d.stateChanged()
}

func (d *Document) clear() {
	d.store.clear()
	d.history.Clear()
	d.label = ""
	d.psdPath = ""
	d.exclusiveSupportDefault = true
	d.information = nil
	d.defaultCharacterID = nil
	d.version = CurrentVersion
	d.modified = false
	d.loadedChecksum = ""
}

// Apply replaces all content with c and clears the history.
// IDs in c are ignored.
func (d *Document) Apply(c *Content) error {
	if c == nil {
		return opError("apply", 0, invalidf("content is nil"))
	}
	if err := d.checkNoTransaction(); err != nil {
		return opError("apply", 0, err)
	}
	if err := d.replace(c); err != nil {
		return opError("apply", 0, err)
	}
	d.notify(Change{Op: OpReset})
	d.stateChanged()
	return nil
}

func (d *Document) replace(c *Content) error {
	if err := c.validate(); err != nil {
		return err
	}
	d.clear()
	d.label = c.Label
	d.psdPath = c.PSDPath
	d.exclusiveSupportDefault = c.ExclusiveSupportDefault
	d.information = optionalPtr(c.Information)
	d.defaultCharacterID = optionalPtr(c.DefaultCharacterID)
	if c.Version > 0 {
		d.version = c.Version
	}
	d.materialize(c)
	return nil
}

// checkNoTransaction fails while a transaction is open. Replacing the
// content would drop the open group without reporting its end.
func (d *Document) checkNoTransaction() error {
	if d.history.IsGrouping() {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, history.ErrGroupOpen)
	}
	return nil
}

func optionalPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(*s)
}

// Load replaces the document with the file at path and clears the history.
// A file without the embedded metadata header fails with ErrInvalidFormat.
func (d *Document) Load(path string) error {
	if d.persistence == nil {
		return opError("load", 0, ErrNoPersistence)
	}
	if err := d.checkNoTransaction(); err != nil {
		return opError("load", 0, err)
	}
	c, sum, err := d.persistence.Load(path)
	if err != nil {
		return opError("load", 0, err)
	}
	if err := d.replace(c); err != nil {
		return opError("load", 0, fmt.Errorf("%w: %w", ErrInvalidFormat, err))
	}
	d.loadedChecksum = sum
	d.logger.WithField("path", path).Debug("loaded %d selectors", len(d.store.selectors))
	d.notify(Change{Op: OpReset})
	d.stateChanged()
	return nil
}

// Save writes the document to path and clears the modified flag.
// Callers should check CanSave first; Save does not.
func (d *Document) Save(path string) error {
	if d.persistence == nil {
		return opError("save", 0, ErrNoPersistence)
	}
	sum, err := d.persistence.Save(path, d.Content())
	if err != nil {
		return opError("save", 0, err)
	}
	d.loadedChecksum = sum
	d.modified = false
	d.logger.WithField("path", path).Debug("saved")
	d.stateChanged()
	return nil
}

// LoadedChecksum returns the body checksum recorded by the last Load or
// Save, or "".
func (d *Document) LoadedChecksum() string {
	return d.loadedChecksum
}

// VerifyChecksum reports whether the body the document would generate now
// matches the checksum recorded by the last Load or Save. It returns false
// when nothing was loaded or saved.
func (d *Document) VerifyChecksum() bool {
	if d.persistence == nil || d.loadedChecksum == "" {
		return false
	}
	sum, err := d.persistence.Checksum(d.Content())
	if err != nil {
		d.logger.Warn("checksum: %v", err)
		return false
	}
	return sum == d.loadedChecksum
}

// Label returns the document label.
func (d *Document) Label() string { return d.label }

// PSDPath returns the PSD file path.
func (d *Document) PSDPath() string { return d.psdPath }

// ExclusiveSupportDefault returns the exclusive support default flag.
func (d *Document) ExclusiveSupportDefault() bool { return d.exclusiveSupportDefault }

// Information returns the information text. ok is false when it is unset
// and should be generated from the PSD file name.
func (d *Document) Information() (text string, ok bool) {
	if d.information == nil {
		return "", false
	}
	return *d.information, true
}

// DefaultCharacterID returns the default character ID, if set.
func (d *Document) DefaultCharacterID() (id string, ok bool) {
	if d.defaultCharacterID == nil {
		return "", false
	}
	return *d.defaultCharacterID, true
}

// SetLabel sets the label. An undo step is recorded even when the value is
// unchanged.
func (d *Document) SetLabel(label string) error {
	return d.setMeta("set_label", OpSetLabel, metaValue{str: label})
}

// SetPSDPath sets the PSD file path.
func (d *Document) SetPSDPath(path string) error {
	return d.setMeta("set_psd_path", OpSetPSDPath, metaValue{str: path})
}

// SetExclusiveSupportDefault sets the exclusive support default flag.
func (d *Document) SetExclusiveSupportDefault(v bool) error {
	return d.setMeta("set_exclusive_support_default", OpSetExclusiveSupportDefault, metaValue{flag: v})
}

// SetInformation sets the information text. "" unsets it.
func (d *Document) SetInformation(text string) error {
	return d.setMeta("set_information", OpSetInformation, metaValue{opt: optional(text)})
}

// SetDefaultCharacterID sets the default character ID. "" unsets it.
func (d *Document) SetDefaultCharacterID(id string) error {
	return d.setMeta("set_default_character_id", OpSetDefaultCharacterID, metaValue{opt: optional(id)})
}

func (d *Document) setMeta(name string, op Op, v metaValue) error {
	return d.exec(name, 0, &metaCommand{op: op, old: d.metaValue(op), new: v})
}

func (d *Document) metaValue(op Op) metaValue {
	switch op {
	case OpSetLabel:
		return metaValue{str: d.label}
	case OpSetPSDPath:
		return metaValue{str: d.psdPath}
	case OpSetExclusiveSupportDefault:
		return metaValue{flag: d.exclusiveSupportDefault}
	case OpSetInformation:
		return metaValue{opt: copyOpt(d.information)}
	case OpSetDefaultCharacterID:
		return metaValue{opt: copyOpt(d.defaultCharacterID)}
	}
	return metaValue{}
}

func (d *Document) applyMeta(op Op, v metaValue) {
	switch op {
	case OpSetLabel:
		d.label = v.str
	case OpSetPSDPath:
		d.psdPath = v.str
	case OpSetExclusiveSupportDefault:
		d.exclusiveSupportDefault = v.flag
	case OpSetInformation:
		d.information = copyOpt(v.opt)
	case OpSetDefaultCharacterID:
		d.defaultCharacterID = copyOpt(v.opt)
	}
	d.notify(Change{Op: op})
}

// UserData returns the UI data attached to any entity.
func (d *Document) UserData(id ID) (uintptr, error) {
	switch d.store.kind(id) {
	case KindSelector:
		return d.store.selectorAt(id).userData, nil
	case KindItem:
		return d.store.itemAt(id).userData, nil
	case KindParam:
		return d.store.paramAt(id).userData, nil
	}
	return 0, opError("user_data", id, invalidf("entity not found"))
}

// SetUserData attaches UI data to any entity. It records no undo step and
// notifies nobody.
func (d *Document) SetUserData(id ID, v uintptr) error {
	switch d.store.kind(id) {
	case KindSelector:
		d.store.selectorAt(id).userData = v
	case KindItem:
		d.store.itemAt(id).userData = v
	case KindParam:
		d.store.paramAt(id).userData = v
	default:
		return opError("set_user_data", id, invalidf("entity not found"))
	}
	return nil
}
