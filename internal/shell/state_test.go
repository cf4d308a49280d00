package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

func TestNewState(t *testing.T) {
	s := NewState(vfs.Home("alice"), "alice", "box", "/Users/alice")

	assert.Equal(t, vfs.Path{"Users", "alice"}, s.CurrentDirectory)
	assert.Equal(t, "alice", s.Environment["USER"])
	assert.Equal(t, "/Users/alice", s.Environment["PWD"])
	assert.Equal(t, "box", s.Environment["HOSTNAME"])
	assert.Equal(t, "ls -l", s.Aliases["ll"])
	assert.NotNil(t, s.Jobs)
}

func TestStateClone(t *testing.T) {
	s := NewState(vfs.Home("alice"), "alice", "box", "/Users/alice")
	cp := s.Clone()

	cp.Environment["USER"] = "mallory"
	cp.Aliases["x"] = "y"
	cp.CurrentDirectory[0] = "Windows"

	assert.Equal(t, "alice", s.Environment["USER"])
	assert.NotContains(t, s.Aliases, "x")
	assert.Equal(t, "Users", s.CurrentDirectory[0])

	empty := State{}.Clone()
	assert.NotNil(t, empty.Environment)
	assert.NotNil(t, empty.Aliases)
}

func TestEffectApply(t *testing.T) {
	s := State{}
	dir := vfs.Path{"Windows"}

	(&Effect{
		Chdir:    &dir,
		SetEnv:   map[string]string{"A": "1", "B": "2"},
		SetAlias: map[string]string{"g": "grep"},
	}).Apply(&s)

	assert.Equal(t, dir, s.CurrentDirectory)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, s.Environment)
	assert.Equal(t, "grep", s.Aliases["g"])

	(&Effect{UnsetEnv: []string{"A"}, UnsetAlias: []string{"g"}}).Apply(&s)
	assert.Equal(t, map[string]string{"B": "2"}, s.Environment)
	assert.Empty(t, s.Aliases)

	var none *Effect
	none.Apply(&s)
	assert.Equal(t, dir, s.CurrentDirectory)
}
