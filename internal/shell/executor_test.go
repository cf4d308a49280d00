package shell

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

type harness struct {
	t     *testing.T
	sh    *Shell
	state State
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	store := vfs.NewStore(vfs.DefaultSeed("Durgas"))
	sh := New(store, nil, opts...)
	return &harness{t: t, sh: sh, state: sh.NewState()}
}

// run executes line and applies its effect, the way a session would
func (h *harness) run(line string) Result {
	h.t.Helper()
	res := h.sh.Execute(context.Background(), line, h.state)
	res.Effect.Apply(&h.state)
	return res
}

func (h *harness) mustRun(line string) string {
	h.t.Helper()
	res := h.run(line)
	require.Equal(h.t, 0, res.ExitCode, "%s: %s", line, res.Output)
	return res.Output
}

type mockRecorder struct {
	mu    sync.Mutex
	calls map[string][]int
}

func (m *mockRecorder) RecordCommand(command string, exitCode int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[command] = append(m.calls[command], exitCode)
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := DefaultRegistry()
	require.NoError(t, r.Register(Command{
		Name: "boom", Category: CategoryUtility,
		Run: func(context.Context, *Shell, []string, State) (Result, error) {
			panic("kaboom")
		},
	}))
	require.NoError(t, r.Register(Command{
		Name: "broken", Category: CategoryUtility,
		Run: func(context.Context, *Shell, []string, State) (Result, error) {
			return Result{}, errors.New("disk on fire")
		},
	}))
	require.NoError(t, r.Register(Command{
		Name: "slow", Category: CategoryUtility,
		Run: func(context.Context, *Shell, []string, State) (Result, error) {
			time.Sleep(5 * time.Millisecond)
			return ok("done"), nil
		},
	}))
	require.NoError(t, r.Register(Command{
		Name: "meddle", Category: CategoryUtility,
		Run: func(_ context.Context, _ *Shell, _ []string, state State) (Result, error) {
			state.Environment["USER"] = "mallory"
			state.CurrentDirectory = vfs.Path{"Windows"}
			return ok(""), nil
		},
	}))
	return r
}

func TestExecuteCommandNotFound(t *testing.T) {
	rec := &mockRecorder{calls: map[string][]int{}}
	h := newHarness(t, WithRecorder(rec))

	res := h.sh.ExecuteCommand(context.Background(), ParseCommand("lsx"), h.state)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Output, "Command not found")
	assert.Equal(t, "Command not found: lsx", res.Output)
	assert.Equal(t, []int{1}, rec.calls[notFoundLabel])
}

func TestExecuteCommandEmpty(t *testing.T) {
	h := newHarness(t)
	res := h.run("   ")
	assert.Equal(t, 0, res.ExitCode)
	assert.Empty(t, res.Output)
}

func TestExecuteCommandFailuresBecomeExitCodes(t *testing.T) {
	h := newHarness(t, WithRegistry(testRegistry(t)))

	res := h.run("boom")
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "boom: kaboom", res.Output)

	res = h.run("broken")
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "broken: disk on fire", res.Output)

	// The shell keeps working after a panic
	assert.Equal(t, "/Users/Durgas", h.mustRun("pwd"))
}

func TestExecuteCommandDuration(t *testing.T) {
	h := newHarness(t, WithRegistry(testRegistry(t)))

	res := h.run("slow")
	assert.Equal(t, "done", res.Output)
	assert.GreaterOrEqual(t, res.Duration, 5*time.Millisecond)

	assert.Positive(t, h.run("boom").Duration)
	assert.Positive(t, h.run("nope").Duration)
}

func TestExecuteCommandDoesNotMutateState(t *testing.T) {
	h := newHarness(t, WithRegistry(testRegistry(t)))
	before := h.state.Clone()

	h.sh.ExecuteCommand(context.Background(), ParseCommand("meddle"), h.state)
	h.sh.ExecuteCommand(context.Background(), ParseCommand("cd /Windows"), h.state)

	assert.Equal(t, before, h.state)
}

func TestExecuteCommandCancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := h.sh.ExecuteCommand(ctx, ParseCommand("mkdir x"), h.state)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Output, "context canceled")
	assert.Equal(t, "Desktop Documents Downloads Pictures", h.mustRun("ls"))
}

func TestExecuteCommandAlias(t *testing.T) {
	h := newHarness(t)
	h.mustRun("cd Documents")

	out := h.mustRun("ll")
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "-rw-")

	h.mustRun(`alias g="grep -i"`)
	assert.Equal(t, "notes.txt:1:This is a note inside a text file.", h.mustRun("g NOTE notes.txt"))

	// Aliases resolve one level only
	h.mustRun("alias lsx=lsx")
	assert.Contains(t, h.run("lsx").Output, "Command not found: lsx")
}

func TestExecuteAsync(t *testing.T) {
	h := newHarness(t)

	ch := h.sh.ExecuteAsync(context.Background(), ParseCommand("whoami"), h.state)
	res, open := <-ch
	require.True(t, open)
	assert.Equal(t, "Durgas", res.Output)

	_, open = <-ch
	assert.False(t, open)
}

func TestResolveTarget(t *testing.T) {
	h := newHarness(t)
	cwd := vfs.Path{"Users", "Durgas"}

	tests := []struct {
		arg  string
		want vfs.Path
	}{
		{"", cwd},
		{".", cwd},
		{"..", vfs.Path{"Users"}},
		{"~", cwd},
		{"/", vfs.Path{}},
		{"/Windows/System32", vfs.Path{"Windows", "System32"}},
		{"Documents", vfs.Path{"Users", "Durgas", "Documents"}},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			p, it := h.sh.resolveTarget(cwd, tt.arg)
			require.NotNil(t, it)
			assert.True(t, tt.want.Equal(p), "got %v", p)
		})
	}

	for _, miss := range []string{"nope", "/Users/nope", "Documents/notes.txt"} {
		_, it := h.sh.resolveTarget(cwd, miss)
		assert.Nil(t, it, miss)
	}
}

func TestResolveChildByName(t *testing.T) {
	h := newHarness(t)
	store := h.sh.Store()
	docs := vfs.Path{"Users", "Durgas", "Documents"}

	require.True(t, store.RenameItem(docs.Append("notes.txt"), "renamed.txt").Success)

	// The seed item keeps id "notes.txt" but that name is free now
	_, it := h.sh.resolveChild(docs, "notes.txt")
	assert.Nil(t, it)

	res := store.CreateItem(vfs.KindFile, "notes.txt", docs, "")
	require.True(t, res.Success)

	p, it := h.sh.resolveChild(docs, "notes.txt")
	require.NotNil(t, it)
	assert.Equal(t, docs.Append(res.Item.ID), p)

	p, it = h.sh.resolveChild(docs, res.Item.ID)
	require.NotNil(t, it)
	assert.Equal(t, docs.Append(res.Item.ID), p)

	_, it = h.sh.resolveChild(docs, "renamed.txt")
	require.NotNil(t, it)
	assert.Equal(t, "notes.txt", it.ID)
}

func TestOldNameAfterRenameIsFree(t *testing.T) {
	h := newHarness(t)
	h.mustRun("cd Documents")
	h.mustRun("mv notes.txt old.txt")

	assert.Equal(t, "cat: notes.txt: No such file or directory", h.run("cat notes.txt").Output)

	h.mustRun("touch notes.txt")
	assert.Equal(t, "old.txt todo.md notes.txt", h.mustRun("ls"))

	h.mustRun("write notes.txt hello")
	assert.Equal(t, "hello", h.mustRun("cat notes.txt"))
	assert.Equal(t, "This is a note inside a text file.", h.mustRun("cat old.txt"))

	h.mustRun("rm notes.txt")
	assert.Equal(t, "old.txt todo.md", h.mustRun("ls"))
	assert.Equal(t, "This is a note inside a text file.", h.mustRun("cat old.txt"))
	assert.Equal(t, 1, h.run("rm notes.txt").ExitCode)
}
