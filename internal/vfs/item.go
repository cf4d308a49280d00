package vfs

import (
	"strings"
	"time"
)

// Kind discriminates files from folders
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	return k == KindFile || k == KindFolder
}

// Permissions are informational flags. The store never rejects an operation
// because of them.
type Permissions struct {
	Read    bool `json:"read" yaml:"read" toml:"read"`
	Write   bool `json:"write" yaml:"write" toml:"write"`
	Execute bool `json:"execute" yaml:"execute" toml:"execute"`
}

// String renders the flags as an ls-style "rwx" triple
func (p Permissions) String() string {
	b := []byte("---")
	if p.Read {
		b[0] = 'r'
	}
	if p.Write {
		b[1] = 'w'
	}
	if p.Execute {
		b[2] = 'x'
	}
	return string(b)
}

// DefaultPermissions returns the flags a new item of the given kind starts with
func DefaultPermissions(kind Kind) Permissions {
	return Permissions{Read: true, Write: true, Execute: kind == KindFolder}
}

// Item is a node in the filesystem tree.
//
// A folder always has a non-nil Children slice and empty Content; a file has
// nil Children and Size equal to len(Content).
type Item struct {
	ID          string      `json:"id" yaml:"id" toml:"id"`
	Name        string      `json:"name" yaml:"name" toml:"name"`
	Kind        Kind        `json:"kind" yaml:"kind" toml:"kind"`
	Content     string      `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
	Children    []*Item     `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
	Size        int64       `json:"size" yaml:"size" toml:"size"`
	Created     time.Time   `json:"created" yaml:"created" toml:"created"`
	Modified    time.Time   `json:"modified" yaml:"modified" toml:"modified"`
	Permissions Permissions `json:"permissions" yaml:"permissions" toml:"permissions"`
}

// IsFolder reports whether the item is a folder
func (it *Item) IsFolder() bool {
	return it.Kind == KindFolder
}

// IsFile reports whether the item is a file
func (it *Item) IsFile() bool {
	return it.Kind == KindFile
}

// Child returns the direct child with the given id
func (it *Item) Child(id string) *Item {
	for _, c := range it.Children {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ChildByName returns the direct child with the given display name
func (it *Item) ChildByName(name string) *Item {
	for _, c := range it.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of the item and its subtree
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	cp := *it
	if it.Children != nil {
		cp.Children = make([]*Item, len(it.Children))
		for i, c := range it.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return &cp
}

// setContent overwrites the payload and recomputes size
func (it *Item) setContent(content string) {
	it.Content = content
	it.Size = int64(len(content))
}

// Walk visits the item and every descendant depth-first, in child order.
// rel is the id-path relative to the starting item (empty for the item itself).
// Returning a non-nil error stops the walk.
func Walk(it *Item, fn func(rel Path, item *Item) error) error {
	return walk(it, nil, fn)
}

func walk(it *Item, rel Path, fn func(Path, *Item) error) error {
	if err := fn(rel, it); err != nil {
		return err
	}
	for _, c := range it.Children {
		if err := walk(c, rel.Append(c.ID), fn); err != nil {
			return err
		}
	}
	return nil
}

// Path is the ordered sequence of item ids from the root to a target.
// The empty path addresses the root folder itself.
type Path []string

// ParsePath splits a slash-separated id path, ignoring empty segments
func ParsePath(s string) Path {
	var p Path
	for _, seg := range strings.Split(s, "/") {
		if seg != "" {
			p = append(p, seg)
		}
	}
	return p
}

// Append returns a new path with id added; the receiver is never aliased
func (p Path) Append(id string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, id)
}

// Parent returns the path of the containing folder (empty for root-level items)
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p)-1)
	copy(out, p[:len(p)-1])
	return out
}

// Last returns the final id, or "" for the root
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// IsRoot reports whether the path addresses the root folder
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// HasPrefix reports whether prefix is an ancestor-or-self of p
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two paths address the same node
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}

// Clone returns an independent copy
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// String renders the path with a leading slash ("/" for root)
func (p Path) String() string {
	return "/" + strings.Join(p, "/")
}
