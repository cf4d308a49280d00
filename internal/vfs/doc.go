// Package vfs implements the in-memory virtual filesystem behind the Terminal
// and File Explorer apps.
//
// The Store owns a tree of Items addressed by id-paths. All structural changes
// go through its mutation API (CreateItem, DeleteItem, RenameItem, MoveItem,
// CopyItem, UpdateFileContent), which:
//   - validates everything before touching the tree, so a failed call leaves it unchanged
//   - appends a Record to the operation log, enabling UndoLastOperation
//   - notifies subscribers synchronously once the change is committed
//
// Failures are returned as Result values carrying a human-readable message;
// nothing in this package panics or returns bare errors for validation problems.
//
// A Clipboard, bound to one Store, remembers a single copy/cut source and
// replays it as CopyItem or MoveItem on Paste.
//
// Example Usage:
//
//	store := vfs.NewStore(vfs.DefaultSeed("Durgas"))
//	res := store.CreateItem(vfs.KindFile, "a.txt", vfs.Home("Durgas"), "hello")
//	if !res.Success {
//	    return res.Err()
//	}
//	store.UndoLastOperation()
package vfs
