package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
)

func utilityCommands() []Command {
	return []Command{
		{Name: "help", Description: "List commands, or show usage for one", Usage: "help [command]", Category: CategoryUtility, Run: runHelp},
		{Name: "calc", Description: "Evaluate an arithmetic expression", Usage: "calc <expression>", Category: CategoryUtility, Run: runCalc},
		{Name: "which", Description: "Show how a command name is resolved", Usage: "which <command...>", Category: CategoryUtility, Run: runWhich},
		{Name: "history", Description: "Show command history", Usage: "history", Category: CategoryUtility, Run: runHistory},
	}
}

func runHelp(_ context.Context, sh *Shell, args []string, _ State) (Result, error) {
	if len(args) > 0 {
		cmd, found := sh.registry.Get(args[0])
		if !found {
			return fail("help: no help topics match '%s'", args[0]), nil
		}
		return ok(fmt.Sprintf("Usage: %s\n  %s", cmd.Usage, cmd.Description)), nil
	}

	var b strings.Builder
	b.WriteString("Available commands:")
	for _, cat := range Categories {
		cmds := sh.registry.List(&cat)
		if len(cmds) == 0 {
			continue
		}
		title := string(cat)
		fmt.Fprintf(&b, "\n\n%s:", strings.ToUpper(title[:1])+title[1:])
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "\n  %-10s %s", cmd.Name, cmd.Description)
		}
	}
	b.WriteString("\n\nType 'help <command>' for usage.")
	return ok(b.String()), nil
}

var errCalcTimeout = errors.New("evaluation timed out")

// runCalc evaluates the joined arguments as a JavaScript expression in a
// fresh goja runtime with module globals removed. Evaluation is interrupted
// after the shell's calc timeout or when ctx is cancelled.
func runCalc(ctx context.Context, sh *Shell, args []string, _ State) (Result, error) {
	expr := unquote(strings.Join(args, " "))
	if strings.TrimSpace(expr) == "" {
		return fail("calc: usage: calc <expression>"), nil
	}

	vm := goja.New()
	vm.SetMaxCallStackSize(256)
	for _, name := range []string{"require", "process", "module", "exports"} {
		vm.Set(name, goja.Undefined())
	}

	timer := time.NewTimer(sh.calcTimeout)
	defer timer.Stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-timer.C:
			vm.Interrupt(errCalcTimeout)
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := vm.RunString(expr)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return fail("calc: %v", interrupted.Value()), nil
		}
		var exception *goja.Exception
		if errors.As(err, &exception) {
			return fail("calc: %s", exception.Value().String()), nil
		}
		return fail("calc: %v", err), nil
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return fail("calc: expression has no value"), nil
	}
	return ok(val.String()), nil
}

func runWhich(_ context.Context, sh *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return missingOperand("which"), nil
	}

	var r report
	for _, name := range args {
		if alias, found := state.Aliases[name]; found {
			r.add(fmt.Sprintf("%s: aliased to %s", name, alias))
			continue
		}
		if _, found := sh.registry.Get(name); found {
			r.add(fmt.Sprintf("%s: shell built-in command", name))
			continue
		}
		r.errorf("%s not found", name)
	}
	return r.result(), nil
}

func runHistory(_ context.Context, _ *Shell, _ []string, state State) (Result, error) {
	lines := make([]string, 0, len(state.History))
	for i, line := range state.History {
		lines = append(lines, fmt.Sprintf("%5d  %s", i+1, line))
	}
	return ok(joinLines(lines)), nil
}
