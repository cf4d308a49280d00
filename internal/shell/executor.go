package shell

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

// CommandRecorder receives command outcomes (implemented by monitoring.Metrics)
type CommandRecorder interface {
	RecordCommand(command string, exitCode int, duration time.Duration)
}

type nopCommandRecorder struct{}

func (nopCommandRecorder) RecordCommand(string, int, time.Duration) {}

// notFoundLabel is the metrics label for unknown commands
const notFoundLabel = "not_found"

// Option configures a Shell
type Option func(*Shell)

// WithRegistry replaces the built-in command registry
func WithRegistry(r *Registry) Option {
	return func(sh *Shell) {
		if r != nil {
			sh.registry = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(sh *Shell) {
		if logger != nil {
			sh.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r CommandRecorder) Option {
	return func(sh *Shell) {
		if r != nil {
			sh.recorder = r
		}
	}
}

// WithUser sets the default user and home folder
func WithUser(user string) Option {
	return func(sh *Shell) {
		if user != "" {
			sh.user = user
			sh.home = vfs.Home(user)
		}
	}
}

// WithHostname sets the reported hostname
func WithHostname(hostname string) Option {
	return func(sh *Shell) {
		if hostname != "" {
			sh.hostname = hostname
		}
	}
}

// WithCalcTimeout bounds calc evaluation
func WithCalcTimeout(d time.Duration) Option {
	return func(sh *Shell) {
		if d > 0 {
			sh.calcTimeout = d
		}
	}
}

// WithClock overrides the time source used by date and uptime
func WithClock(now func() time.Time) Option {
	return func(sh *Shell) {
		if now != nil {
			sh.now = now
		}
	}
}

// Shell executes parsed commands against a filesystem store.
// It holds no session state and is safe for concurrent use.
type Shell struct {
	store     *vfs.Store
	clipboard *vfs.Clipboard
	registry  *Registry
	logger    *zap.Logger
	recorder  CommandRecorder

	user        string
	home        vfs.Path
	hostname    string
	calcTimeout time.Duration
	now         func() time.Time
	started     time.Time
}

// New creates a shell over store. A nil clipboard gets a private one.
func New(store *vfs.Store, clipboard *vfs.Clipboard, opts ...Option) *Shell {
	if clipboard == nil {
		clipboard = vfs.NewClipboard(store)
	}
	sh := &Shell{
		store:       store,
		clipboard:   clipboard,
		logger:      zap.NewNop(),
		recorder:    nopCommandRecorder{},
		user:        "Durgas",
		home:        vfs.Home("Durgas"),
		hostname:    "webos",
		calcTimeout: 2 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(sh)
	}
	if sh.registry == nil {
		sh.registry = DefaultRegistry()
	}
	sh.started = sh.now()
	return sh
}

// Registry returns the command registry
func (sh *Shell) Registry() *Registry { return sh.registry }

// Store returns the filesystem store
func (sh *Shell) Store() *vfs.Store { return sh.store }

// Clipboard returns the clipboard used by copy, cut and paste
func (sh *Shell) Clipboard() *vfs.Clipboard { return sh.clipboard }

// Home returns the default home folder path
func (sh *Shell) Home() vfs.Path { return sh.home.Clone() }

// NewState returns a fresh session state positioned at the home folder
func (sh *Shell) NewState() State {
	return NewState(sh.home, sh.user, sh.hostname, sh.DisplayPath(sh.home))
}

// DisplayPath renders an id-path with display names ("/Users/Durgas").
// Unresolvable paths fall back to their ids.
func (sh *Shell) DisplayPath(p vfs.Path) string {
	names, ok := sh.store.Names(p)
	if !ok {
		return p.String()
	}
	return "/" + strings.Join(names, "/")
}

// ExecuteCommand runs one parsed command. It never returns an error: unknown
// commands, command failures and panics all become a non-zero exit code.
// Duration is always set.
func (sh *Shell) ExecuteCommand(ctx context.Context, parsed ParsedCommand, state State) (res Result) {
	start := time.Now()
	name := parsed.Command
	label := name

	defer func() {
		if r := recover(); r != nil {
			sh.logger.Error("command panicked", zap.String("command", name), zap.Any("panic", r))
			res = fail("%s: %v", name, r)
		}
		res.Duration = time.Since(start)
		sh.recorder.RecordCommand(label, res.ExitCode, res.Duration)
		sh.logger.Debug("command executed",
			zap.String("command", name),
			zap.Int("exit_code", res.ExitCode),
			zap.Duration("duration", res.Duration))
	}()

	if name == "" {
		label = "empty"
		return ok("")
	}
	if err := ctx.Err(); err != nil {
		return fail("%s: %v", name, err)
	}

	args := parsed.Args
	if alias, found := state.Aliases[name]; found {
		expanded := ParseCommand(alias)
		if expanded.Command != "" {
			name = expanded.Command
			args = append(expanded.Args, args...)
		}
	}

	cmd, found := sh.registry.Get(name)
	if !found {
		label = notFoundLabel
		return fail("Command not found: %s", name)
	}
	label = cmd.Name

	state = state.Clone()
	out, err := cmd.Run(ctx, sh, args, state)
	if err != nil {
		return fail("%s: %v", cmd.Name, err)
	}
	return out
}

// ExecuteAsync runs the command on its own goroutine and delivers the result
// on the returned channel, which is closed afterwards.
func (sh *Shell) ExecuteAsync(ctx context.Context, parsed ParsedCommand, state State) <-chan Result {
	ch := make(chan Result, 1)
	state = state.Clone()
	go func() {
		defer close(ch)
		ch <- sh.ExecuteCommand(ctx, parsed, state)
	}()
	return ch
}

// Execute parses and runs a raw input line
func (sh *Shell) Execute(ctx context.Context, input string, state State) Result {
	return sh.ExecuteCommand(ctx, ParseCommand(input), state)
}

// resolveChild finds a direct child of dir by display name. A generated
// item id (item_<ULID>) is accepted when no sibling carries that name; seed
// ids are never matched, since a renamed seed item keeps its old name as id.
func (sh *Shell) resolveChild(dir vfs.Path, arg string) (vfs.Path, *vfs.Item) {
	folder := sh.store.GetItemByPath(dir)
	if folder == nil || !folder.IsFolder() {
		return nil, nil
	}
	child := folder.ChildByName(arg)
	if child == nil && id.IsGenerated(arg) {
		child = folder.Child(arg)
	}
	if child == nil {
		return nil, nil
	}
	return dir.Append(child.ID), child
}

// resolveTarget applies cd-style navigation from cwd: "" and "." stay put,
// ".." pops one segment, a leading "/" restarts at the root and splits on "/",
// anything else is a single child segment.
func (sh *Shell) resolveTarget(cwd vfs.Path, arg string) (vfs.Path, *vfs.Item) {
	switch {
	case arg == "" || arg == ".":
		return cwd.Clone(), sh.store.GetItemByPath(cwd)
	case arg == "..":
		parent := cwd.Parent()
		return parent, sh.store.GetItemByPath(parent)
	case arg == "~":
		return sh.home.Clone(), sh.store.GetItemByPath(sh.home)
	case strings.HasPrefix(arg, "/"):
		var p vfs.Path
		var it *vfs.Item
		for _, seg := range strings.Split(arg, "/") {
			if seg == "" {
				continue
			}
			if p, it = sh.resolveChild(p, seg); it == nil {
				return nil, nil
			}
		}
		if p == nil {
			return vfs.Path{}, sh.store.Root()
		}
		return p, it
	default:
		return sh.resolveChild(cwd, arg)
	}
}

// missingOperand is the standard complaint for commands run without arguments
func missingOperand(cmd string) Result {
	return fail("%s: missing operand", cmd)
}

// joinLines joins non-empty outputs, one per line
func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
