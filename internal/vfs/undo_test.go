package vfs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Folder timestamps move forward on every child change, undo included, and
// re-inserted children land at the end of their folder.
var (
	ignoreModified = cmpopts.IgnoreFields(Item{}, "Modified")
	anyChildOrder  = cmpopts.SortSlices(func(a, b *Item) bool { return a.ID < b.ID })
)

func TestUndoNothing(t *testing.T) {
	s := newTestStore(t)

	res := s.UndoLastOperation()
	assert.False(t, res.Success)
	assert.Equal(t, "Nothing to undo", res.Message())
}

func TestUndoCreateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	before := s.Root()

	require.True(t, s.CreateItem(KindFile, "a.txt", nil, "x").Success)
	require.True(t, s.UndoLastOperation().Success)

	assert.Empty(t, cmp.Diff(before, s.Root(), ignoreModified))
	assert.Empty(t, s.Operations())
}

func TestUndoInverses(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Store) Result
		check  func(t *testing.T, s *Store)
	}{
		{
			name:   "rename",
			mutate: func(s *Store) Result { return s.RenameItem(notes, "renamed.txt") },
			check: func(t *testing.T, s *Store) {
				assert.Equal(t, "notes.txt", s.GetItemByPath(notes).Name)
			},
		},
		{
			name:   "move",
			mutate: func(s *Store) Result { return s.MoveItem(notes, downloads) },
			check: func(t *testing.T, s *Store) {
				require.NotNil(t, s.GetItemByPath(notes))
				assert.Empty(t, s.GetItemByPath(downloads).Children)
			},
		},
		{
			name:   "copy",
			mutate: func(s *Store) Result { return s.CopyItem(documents, downloads) },
			check: func(t *testing.T, s *Store) {
				assert.Empty(t, s.GetItemByPath(downloads).Children)
				assert.Len(t, s.GetItemByPath(documents).Children, 2)
			},
		},
		{
			name:   "update",
			mutate: func(s *Store) Result { return s.UpdateFileContent(notes, "overwritten") },
			check: func(t *testing.T, s *Store) {
				it := s.GetItemByPath(notes)
				assert.Equal(t, "This is a note inside a text file.", it.Content)
				assert.Equal(t, int64(len(it.Content)), it.Size)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			before := s.Root()

			require.True(t, tt.mutate(s).Success)
			res := s.UndoLastOperation()
			require.True(t, res.Success, res.Message())

			tt.check(t, s)
			assert.Empty(t, cmp.Diff(before, s.Root(), ignoreModified, anyChildOrder))
		})
	}
}

// Undo of delete recreates the subtree under fresh ids. Paths captured before
// the delete no longer resolve; this is documented behavior.
func TestUndoDeleteAssignsNewIDs(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.DeleteItem(documents).Success)
	res := s.UndoLastOperation()
	require.True(t, res.Success)

	assert.Nil(t, s.GetItemByPath(documents))
	assert.Equal(t, "Documents", res.Item.Name)
	assert.NotEqual(t, "Documents", res.Item.ID)

	restored := s.GetItemByPath(home).ChildByName("Documents")
	require.NotNil(t, restored)
	assert.Equal(t, []string{"notes.txt", "todo.md"}, childNames(restored))
	assert.Equal(t, "This is a note inside a text file.", restored.ChildByName("notes.txt").Content)
}

func TestUndoFailureKeepsRecord(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.UpdateFileContent(notes, "v2").Success)
	require.True(t, s.DeleteItem(documents).Success)
	require.True(t, s.UndoLastOperation().Success)

	// The update record still addresses the pre-delete id
	res := s.UndoLastOperation()
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err(), ErrFileNotFound)
	assert.Len(t, s.Operations(), 1)

	res = s.UndoLastOperation()
	assert.ErrorIs(t, res.Err(), ErrFileNotFound)
}

func TestUndoWalksBack(t *testing.T) {
	s := newTestStore(t)

	s.CreateItem(KindFolder, "a", downloads, "")
	s.CreateItem(KindFolder, "b", downloads, "")
	s.CreateItem(KindFolder, "c", downloads, "")

	for _, want := range [][]string{{"a", "b"}, {"a"}, {}} {
		require.True(t, s.UndoLastOperation().Success)
		assert.Equal(t, want, childNames(s.GetItemByPath(downloads)))
	}
	assert.False(t, s.UndoLastOperation().Success)
}

func TestInvertIncompleteRecord(t *testing.T) {
	s := newTestStore(t)

	for _, rec := range []Record{
		{Type: OpCreate},
		{Type: OpDelete, OldPath: notes},
		{Type: OpRename, Item: &Item{Name: "x"}},
		{Type: OpMove, OldPath: notes},
		{Type: OpUpdate, NewPath: notes},
		{Type: OpType("chmod")},
	} {
		res, _ := s.invertLocked(rec)
		assert.ErrorIs(t, res.Err(), ErrUndoUnsupported, "record %s", rec.Type)
	}
}
