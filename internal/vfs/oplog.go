package vfs

import "time"

// OpType names a structural mutation
type OpType string

const (
	OpCreate OpType = "create"
	OpDelete OpType = "delete"
	OpRename OpType = "rename"
	OpMove   OpType = "move"
	OpCopy   OpType = "copy"
	OpUpdate OpType = "update"
)

// Record describes one committed mutation with enough information to reverse it.
//
// Item is a deep snapshot taken at record time:
//   - create, copy: the new item
//   - delete: the removed subtree
//   - rename, update: the item before the change
//   - move: the item after the move
type Record struct {
	Type      OpType    `json:"type"`
	Item      *Item     `json:"item"`
	OldPath   Path      `json:"old_path,omitempty"`
	NewPath   Path      `json:"new_path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (r Record) clone() Record {
	r.Item = r.Item.Clone()
	r.OldPath = r.OldPath.Clone()
	r.NewPath = r.NewPath.Clone()
	return r
}

// path returns the most specific location the record refers to
func (r Record) path() Path {
	if r.NewPath != nil {
		return r.NewPath
	}
	return r.OldPath
}

// oplog is the append-only history. Only undo removes entries, newest first.
// Callers hold the store lock.
type oplog struct {
	records []Record
}

func (l *oplog) append(r Record) {
	l.records = append(l.records, r)
}

func (l *oplog) last() (Record, bool) {
	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[len(l.records)-1], true
}

func (l *oplog) pop() {
	if len(l.records) > 0 {
		l.records[len(l.records)-1] = Record{}
		l.records = l.records[:len(l.records)-1]
	}
}

func (l *oplog) len() int {
	return len(l.records)
}

func (l *oplog) snapshot() []Record {
	out := make([]Record, len(l.records))
	for i, r := range l.records {
		out[i] = r.clone()
	}
	return out
}
