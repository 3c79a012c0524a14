// Package history provides undo/redo for the anm2 document model.
//
// The history is a flat tape of reversible commands. Every mutation of the
// document is a Command that knows how to apply itself to a target and how
// to revert itself:
//
//	h := history.New[*Document](1000, onBoundary)
//
//	// Execute runs a command and records it
//	h.Execute(cmd, doc)
//
//	// Undo/redo
//	h.Undo(doc)
//	h.Redo(doc)
//
// # Groups
//
// Commands can be grouped so they undo and redo as one unit:
//
//	h.BeginGroup("Delete selection", doc)
//	// ... multiple commands ...
//	h.EndGroup(doc)
//
// Groups nest. Only the outermost BeginGroup/EndGroup pair writes boundary
// markers to the tape, so a nested call sequence is still one undo step.
//
// # Boundary replay
//
// Boundary markers are themselves entries on the tape. When a group is
// undone the tape is walked backwards, so the end marker is replayed before
// the grouped commands and the begin marker after them. Redo walks the other
// way. Each replayed marker is reported through the BoundaryFunc passed to
// New, which lets an observer track the group depth. That depth transiently
// goes negative while a group is being undone.
//
// # Limits
//
// The number of undo units is bounded. When the bound is exceeded the oldest
// complete units are dropped; a group is never split.
//
// History is not safe for concurrent use.
package history
