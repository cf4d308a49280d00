package vfs

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shared/id"
)

// rootID is the id of the virtual root folder. It never appears in a Path.
const rootID = "root"

// Event is delivered to subscribers after every committed mutation.
type Event struct {
	Op        OpType    `json:"op"`
	Path      Path      `json:"path"`
	Undo      bool      `json:"undo"`
	Timestamp time.Time `json:"timestamp"`
}

// Listener receives change notifications. It runs synchronously on the
// goroutine that performed the mutation and must not call mutating methods.
type Listener func(Event)

// Recorder receives operation outcomes (implemented by monitoring.Metrics)
type Recorder interface {
	RecordOperation(op string, ok bool)
	RecordUndo(ok bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, bool) {}
func (nopRecorder) RecordUndo(bool)              {}

// Stats summarizes the tree
type Stats struct {
	Items      int   `json:"items"`
	Files      int   `json:"files"`
	Folders    int   `json:"folders"`
	Bytes      int64 `json:"bytes"`
	Operations int   `json:"operations"`
}

// ParentRef locates an item inside its containing folder
type ParentRef struct {
	Parent *Item // snapshot of the containing folder (the root for top-level items)
	Index  int
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for mutation tracing
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithIDGenerator overrides item id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store owns the mutable item tree, the operation log and the subscriber list.
//
// Every method is safe for concurrent use: mutations are serialized by a
// single write lock and lookups share a read lock. Lookups return deep
// snapshots, so callers can never edit the tree except through the mutation
// API.
type Store struct {
	mu   sync.RWMutex
	root *Item
	log  oplog

	listenersMu  sync.Mutex
	listeners    []subscription
	nextListener int

	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

type subscription struct {
	id int
	fn Listener
}

// NewStore builds a store from seed nodes placed at the root.
func NewStore(seed []SeedNode, opts ...Option) *Store {
	s := &Store{
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
		now:      time.Now,
		newID:    func() string { return id.NewItemID().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	now := s.now()
	s.root = &Item{
		ID:          rootID,
		Name:        "/",
		Kind:        KindFolder,
		Children:    []*Item{},
		Created:     now,
		Modified:    now,
		Permissions: DefaultPermissions(KindFolder),
	}
	for _, node := range seed {
		s.root.Children = append(s.root.Children, node.build(now))
	}
	return s
}

// GetItemByPath walks ids level by level. It returns nil on any missing segment.
func (s *Store) GetItemByPath(path Path) *Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolve(path).Clone()
}

// GetParentByPath resolves the folder that contains path and the item's index in it.
func (s *Store) GetParentByPath(path Path) (*ParentRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parent, idx := s.locate(path)
	if parent == nil {
		return nil, false
	}
	return &ParentRef{Parent: parent.Clone(), Index: idx}, true
}

// Root returns a snapshot of the whole tree
func (s *Store) Root() *Item {
	return s.GetItemByPath(nil)
}

// Names maps an id-path to the display names along it
func (s *Store) Names(path Path) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(path))
	cur := s.root
	for _, seg := range path {
		cur = cur.Child(seg)
		if cur == nil {
			return nil, false
		}
		names = append(names, cur.Name)
	}
	return names, true
}

// Operations returns a copy of the operation log, oldest first
func (s *Store) Operations() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.snapshot()
}

// Stats counts items and bytes in the tree
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	_ = Walk(s.root, func(rel Path, it *Item) error {
		if rel.IsRoot() {
			return nil
		}
		st.Items++
		if it.IsFolder() {
			st.Folders++
		} else {
			st.Files++
			st.Bytes += it.Size
		}
		return nil
	})
	st.Operations = s.log.len()
	return st
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	s.nextListener++
	subID := s.nextListener
	s.listeners = append(s.listeners, subscription{id: subID, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == subID {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// CreateItem appends a new file or folder to the folder at parentPath.
func (s *Store) CreateItem(kind Kind, name string, parentPath Path, content string) Result {
	return s.apply(OpCreate, func() (Result, *Record) {
		return s.createLocked(kind, name, parentPath, content)
	})
}

// DeleteItem removes the item (and its subtree) at path.
func (s *Store) DeleteItem(path Path) Result {
	return s.apply(OpDelete, func() (Result, *Record) {
		return s.deleteLocked(path)
	})
}

// RenameItem changes the display name. The id, and therefore every path, is unchanged.
// The new name is checked against all current siblings including the item itself,
// so renaming to the current name is rejected.
func (s *Store) RenameItem(path Path, newName string) Result {
	return s.apply(OpRename, func() (Result, *Record) {
		return s.renameLocked(path, newName)
	})
}

// MoveItem re-parents the item at fromPath under the folder at toPath.
func (s *Store) MoveItem(fromPath, toPath Path) Result {
	return s.apply(OpMove, func() (Result, *Record) {
		return s.moveLocked(fromPath, toPath)
	})
}

// CopyItem deep-clones the subtree at fromPath into the folder at toPath.
// Every node of the copy gets a fresh id and the top node is named "<name> (Copy)".
func (s *Store) CopyItem(fromPath, toPath Path) Result {
	return s.apply(OpCopy, func() (Result, *Record) {
		return s.copyLocked(fromPath, toPath)
	})
}

// UpdateFileContent overwrites a file's content and recomputes its size.
func (s *Store) UpdateFileContent(path Path, content string) Result {
	return s.apply(OpUpdate, func() (Result, *Record) {
		return s.updateLocked(path, content)
	})
}

// apply runs fn under the write lock, logs the record it produces, then
// notifies subscribers after the lock is released.
func (s *Store) apply(op OpType, fn func() (Result, *Record)) Result {
	s.mu.Lock()
	res, rec := fn()
	if rec != nil {
		s.log.append(*rec)
	}
	s.mu.Unlock()

	s.recorder.RecordOperation(string(op), res.Success)
	if !res.Success {
		s.logger.Debug("fs operation rejected", zap.String("op", string(op)), zap.String("error", res.Message()))
		return res
	}

	s.logger.Debug("fs operation committed", zap.String("op", string(op)), zap.Stringer("path", rec.path()))
	s.notify(Event{Op: op, Path: rec.path().Clone(), Timestamp: rec.Timestamp})
	return res
}

func (s *Store) notify(ev Event) {
	s.listenersMu.Lock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.listenersMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// resolve returns the live node at path, nil when any segment is missing
func (s *Store) resolve(path Path) *Item {
	cur := s.root
	for _, seg := range path {
		if !cur.IsFolder() {
			return nil
		}
		cur = cur.Child(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// locate returns the live parent folder of path and the index within it
func (s *Store) locate(path Path) (*Item, int) {
	if path.IsRoot() {
		return nil, -1
	}
	parent := s.resolve(path[:len(path)-1])
	if parent == nil || !parent.IsFolder() {
		return nil, -1
	}
	for i, c := range parent.Children {
		if c.ID == path.Last() {
			return parent, i
		}
	}
	return nil, -1
}

func nameAvailable(folder *Item, name string) bool {
	return name != "" && folder.ChildByName(name) == nil
}

func (s *Store) newItem(kind Kind, name, content string, now time.Time) *Item {
	it := &Item{
		ID:          s.newID(),
		Name:        name,
		Kind:        kind,
		Created:     now,
		Modified:    now,
		Permissions: DefaultPermissions(kind),
	}
	if kind == KindFolder {
		it.Children = []*Item{}
	} else {
		it.setContent(content)
	}
	return it
}

// cloneFresh deep-copies it giving every node a new id and fresh timestamps
func (s *Store) cloneFresh(it *Item, now time.Time) *Item {
	cp := it.Clone()
	_ = Walk(cp, func(_ Path, n *Item) error {
		n.ID = s.newID()
		n.Created = now
		n.Modified = now
		return nil
	})
	return cp
}

func (s *Store) createLocked(kind Kind, name string, parentPath Path, content string) (Result, *Record) {
	if !kind.Valid() {
		return failure(ErrInvalidKind), nil
	}
	parent := s.resolve(parentPath)
	if parent == nil || !parent.IsFolder() {
		return failure(ErrParentNotFound), nil
	}
	if !nameAvailable(parent, name) {
		return failure(ErrNameInvalid), nil
	}

	now := s.now()
	it := s.newItem(kind, name, content, now)
	parent.Children = append(parent.Children, it)
	parent.Modified = now

	return success(it.Clone()), &Record{
		Type:      OpCreate,
		Item:      it.Clone(),
		NewPath:   parentPath.Append(it.ID),
		Timestamp: now,
	}
}

func (s *Store) deleteLocked(path Path) (Result, *Record) {
	parent, idx := s.locate(path)
	if parent == nil {
		return failure(ErrNotFound), nil
	}

	now := s.now()
	removed := parent.Children[idx]
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	parent.Modified = now

	return success(removed.Clone()), &Record{
		Type:      OpDelete,
		Item:      removed,
		OldPath:   path.Clone(),
		Timestamp: now,
	}
}

func (s *Store) renameLocked(path Path, newName string) (Result, *Record) {
	parent, idx := s.locate(path)
	if parent == nil {
		return failure(ErrNotFound), nil
	}
	if !nameAvailable(parent, newName) {
		return failure(ErrNameInvalid), nil
	}

	now := s.now()
	it := parent.Children[idx]
	before := it.Clone()
	it.Name = newName
	it.Modified = now

	return success(it.Clone()), &Record{
		Type:      OpRename,
		Item:      before,
		OldPath:   path.Clone(),
		NewPath:   path.Clone(),
		Timestamp: now,
	}
}

func (s *Store) moveLocked(fromPath, toPath Path) (Result, *Record) {
	srcParent, idx := s.locate(fromPath)
	if srcParent == nil {
		return failure(ErrNotFound), nil
	}
	dest := s.resolve(toPath)
	if dest == nil || !dest.IsFolder() {
		return failure(ErrDestinationNotFound), nil
	}
	if toPath.HasPrefix(fromPath) {
		return failure(ErrMoveIntoSelf), nil
	}
	it := srcParent.Children[idx]
	if !nameAvailable(dest, it.Name) {
		return failure(ErrNameInvalid), nil
	}

	now := s.now()
	srcParent.Children = append(srcParent.Children[:idx], srcParent.Children[idx+1:]...)
	srcParent.Modified = now
	dest.Children = append(dest.Children, it)
	dest.Modified = now
	it.Modified = now

	return success(it.Clone()), &Record{
		Type:      OpMove,
		Item:      it.Clone(),
		OldPath:   fromPath.Clone(),
		NewPath:   toPath.Append(it.ID),
		Timestamp: now,
	}
}

func (s *Store) copyLocked(fromPath, toPath Path) (Result, *Record) {
	src := s.resolve(fromPath)
	if src == nil || fromPath.IsRoot() {
		return failure(ErrNotFound), nil
	}
	dest := s.resolve(toPath)
	if dest == nil || !dest.IsFolder() {
		return failure(ErrDestinationNotFound), nil
	}
	name := src.Name + " (Copy)"
	if !nameAvailable(dest, name) {
		return failure(ErrNameInvalid), nil
	}

	now := s.now()
	cp := s.cloneFresh(src, now)
	cp.Name = name
	dest.Children = append(dest.Children, cp)
	dest.Modified = now

	return success(cp.Clone()), &Record{
		Type:      OpCopy,
		Item:      cp.Clone(),
		OldPath:   fromPath.Clone(),
		NewPath:   toPath.Append(cp.ID),
		Timestamp: now,
	}
}

func (s *Store) updateLocked(path Path, content string) (Result, *Record) {
	it := s.resolve(path)
	if it == nil || path.IsRoot() || !it.IsFile() {
		return failure(ErrFileNotFound), nil
	}

	now := s.now()
	before := it.Clone()
	it.setContent(content)
	it.Modified = now

	return success(it.Clone()), &Record{
		Type:      OpUpdate,
		Item:      before,
		OldPath:   path.Clone(),
		NewPath:   path.Clone(),
		Timestamp: now,
	}
}
