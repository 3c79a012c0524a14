package history

// Command represents a reversible mutation of a target.
type Command[T any] interface {
	// Execute applies the command. It is also used for redo.
	Execute(target T) error

	// Undo reverses the command.
	Undo(target T) error

	// Description returns a human-readable description of the command.
	Description() string
}

// Boundary marks the start or end of a command group on the tape.
type Boundary int

const (
	// BoundaryNone is a plain command entry.
	BoundaryNone Boundary = iota
	// BoundaryBegin opens a group.
	BoundaryBegin
	// BoundaryEnd closes a group.
	BoundaryEnd
)

// String returns the boundary name.
func (b Boundary) String() string {
	switch b {
	case BoundaryBegin:
		return "begin"
	case BoundaryEnd:
		return "end"
	default:
		return "none"
	}
}

// BoundaryFunc is called whenever a boundary marker is executed, undone or
// redone. Undo reports the marker's own boundary, not its inverse.
type BoundaryFunc[T any] func(target T, b Boundary)

// marker is the tape entry written for a group boundary.
type marker[T any] struct {
	boundary Boundary
	name     string
	notify   BoundaryFunc[T]
}

func (m *marker[T]) Execute(target T) error {
	if m.notify != nil {
		m.notify(target, m.boundary)
	}
	return nil
}

func (m *marker[T]) Undo(target T) error {
	if m.notify != nil {
		m.notify(target, m.boundary)
	}
	return nil
}

func (m *marker[T]) Description() string {
	return m.name
}
