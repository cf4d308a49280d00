package vfs

import "sync"

// ClipboardOperation selects what Paste does with the remembered source
type ClipboardOperation string

const (
	ClipboardCopy ClipboardOperation = "copy"
	ClipboardCut  ClipboardOperation = "cut"
)

// ClipboardEntry is the single pending copy/cut
type ClipboardEntry struct {
	Kind       Kind               `json:"kind"`
	Item       *Item              `json:"item"`
	Operation  ClipboardOperation `json:"operation"`
	SourcePath Path               `json:"source_path"`
}

// Clipboard remembers at most one source for a later paste. A new copy or cut
// replaces the previous entry.
type Clipboard struct {
	store *Store
	mu    sync.Mutex
	entry *ClipboardEntry
}

// NewClipboard creates a clipboard bound to store
func NewClipboard(store *Store) *Clipboard {
	return &Clipboard{store: store}
}

// Copy remembers path for a later copy-paste
func (c *Clipboard) Copy(path Path) Result {
	return c.remember(path, ClipboardCopy)
}

// Cut remembers path for a later move-paste
func (c *Clipboard) Cut(path Path) Result {
	return c.remember(path, ClipboardCut)
}

func (c *Clipboard) remember(path Path, op ClipboardOperation) Result {
	it := c.store.GetItemByPath(path)
	if it == nil || path.IsRoot() {
		return failure(ErrNotFound)
	}

	c.mu.Lock()
	c.entry = &ClipboardEntry{
		Kind:       it.Kind,
		Item:       it,
		Operation:  op,
		SourcePath: path.Clone(),
	}
	c.mu.Unlock()

	return success(it.Clone())
}

// Paste copies or moves the remembered source into the folder at toPath.
// A cut entry is cleared only when the move succeeds.
func (c *Clipboard) Paste(toPath Path) Result {
	c.mu.Lock()
	entry := c.entry
	c.mu.Unlock()

	if entry == nil {
		return failure(ErrClipboardEmpty)
	}

	// The store notifies subscribers synchronously, so it is called without
	// holding the clipboard lock.
	if entry.Operation == ClipboardCut {
		res := c.store.MoveItem(entry.SourcePath, toPath)
		if res.Success {
			c.mu.Lock()
			if c.entry == entry {
				c.entry = nil
			}
			c.mu.Unlock()
		}
		return res
	}
	return c.store.CopyItem(entry.SourcePath, toPath)
}

// Clear drops the pending entry
func (c *Clipboard) Clear() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

// Entry returns a copy of the pending entry
func (c *Clipboard) Entry() (ClipboardEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return ClipboardEntry{}, false
	}
	e := *c.entry
	e.Item = e.Item.Clone()
	e.SourcePath = e.SourcePath.Clone()
	return e, true
}
