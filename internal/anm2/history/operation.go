package history

import "time"

// OperationInfo provides read-only info about one undo unit.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the unit was recorded
	Commands    int       // Number of commands in the unit, markers excluded
}

// entry wraps a command with metadata.
type entry[T any] struct {
	command   Command[T]
	boundary  Boundary
	timestamp time.Time
}

// unitStart returns the index where the unit on top of tape begins.
// open is the boundary met last when walking down from the top and close the
// one met first; the undo tape uses (Begin, End) and the redo tape, which holds
// entries in replay order, uses (End, Begin).
func unitStart[T any](tape []*entry[T], open, close Boundary) int {
	depth := 0
	for i := len(tape) - 1; i >= 0; i-- {
		switch tape[i].boundary {
		case close:
			depth++
		case open:
			depth--
		}
		if depth <= 0 {
			return i
		}
	}
	return 0
}

// firstUnitEnd returns the exclusive end index of the oldest unit on tape.
func firstUnitEnd[T any](tape []*entry[T]) int {
	depth := 0
	for i, e := range tape {
		switch e.boundary {
		case BoundaryBegin:
			depth++
		case BoundaryEnd:
			depth--
		}
		if depth <= 0 {
			return i + 1
		}
	}
	return len(tape)
}

// units splits a forward-ordered tape into its undo units.
func units[T any](tape []*entry[T]) [][]*entry[T] {
	var result [][]*entry[T]
	for len(tape) > 0 {
		n := firstUnitEnd(tape)
		result = append(result, tape[:n])
		tape = tape[n:]
	}
	return result
}

func describe[T any](unit []*entry[T]) OperationInfo {
	info := OperationInfo{}
	if len(unit) == 0 {
		return info
	}
	info.Timestamp = unit[0].timestamp
	for _, e := range unit {
		if e.boundary == BoundaryNone {
			info.Commands++
		}
	}
	first := unit[0]
	switch {
	case first.boundary == BoundaryBegin && first.command.Description() != "":
		info.Description = first.command.Description()
	case info.Commands == 1 && first.boundary == BoundaryNone:
		info.Description = first.command.Description()
	case first.boundary == BoundaryBegin && info.Commands == 1:
		info.Description = unit[1].command.Description()
	default:
		info.Description = "Transaction"
	}
	return info
}
