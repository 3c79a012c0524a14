// Package anm2 implements the document model of the animation script editor.
//
// A Document holds ordered selectors. Each selector holds ordered items,
// which are either value items (name and value) or animation items (script,
// name and ordered params). Every entity is addressed by an ID that is never
// reused for the lifetime of the Document; positions are always derived from
// order, never stored.
//
// # Undo
//
// Every mutation is recorded as a reversible command. Transactions group
// commands into one undo step and may nest; only the outermost pair is
// recorded. Undo replays a transaction backwards, so an observer sees
// OpTransactionEnd before the reverted changes and OpTransactionBegin after
// them.
//
// # Notifications
//
// An Observer receives one Change per structural change and a StateChanged
// call after each public operation. Setters do not compare old and new
// values: setting a property to its current value still records a step.
//
// User data attached with SetUserData is never recorded or reported.
package anm2
