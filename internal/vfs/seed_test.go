package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
- name: srv
  kind: folder
  children:
    - id: motd
      name: motd.txt
      kind: file
      content: hello
- name: tmp
  kind: folder
`

func TestLoadSeed(t *testing.T) {
	nodes, err := LoadSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	s := NewStore(nodes)
	it := s.GetItemByPath(Path{"srv", "motd"})
	require.NotNil(t, it)
	assert.Equal(t, "motd.txt", it.Name)
	assert.Equal(t, int64(5), it.Size)

	tmp := s.GetItemByPath(Path{"tmp"})
	require.NotNil(t, tmp)
	assert.NotNil(t, tmp.Children)
}

func TestLoadSeedInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "- kind: file\n", "has no name"},
		{"bad kind", "- name: x\n  kind: link\n", "invalid kind"},
		{"file with children", "- name: x\n  kind: file\n  children:\n    - name: y\n      kind: file\n", "has children"},
		{"duplicate", "- name: x\n  kind: file\n- name: x\n  kind: folder\n", "duplicate"},
		{"duplicate sibling id", "- name: a\n  id: x\n  kind: file\n- name: b\n  id: x\n  kind: file\n", `duplicate seed id "x"`},
		{"duplicate id across folders", "- name: a\n  kind: folder\n  children:\n    - name: f\n      id: dup\n      kind: file\n- name: b\n  kind: folder\n  children:\n    - name: g\n      id: dup\n      kind: file\n", `duplicate seed id "dup" at /b/g (already used by /a/f)`},
		{"defaulted id across folders", "- name: a\n  kind: folder\n  children:\n    - name: readme.md\n      kind: file\n- name: b\n  kind: folder\n  children:\n    - name: readme.md\n      kind: file\n", `duplicate seed id "readme.md"`},
		{"not yaml list", "name: x\n", "failed to parse seed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	nodes, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, "srv", nodes[0].Name)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultSeedUser(t *testing.T) {
	s := NewStore(DefaultSeed("alice"))
	assert.NotNil(t, s.GetItemByPath(Path{"Users", "alice", "Documents", "todo.md"}))
	assert.Equal(t, Path{"Users", "alice"}, Home("alice"))
}
