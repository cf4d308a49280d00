package shell

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

const (
	systemName    = "WebOS"
	systemRelease = "1.0.0"
)

func systemCommands() []Command {
	return []Command{
		{Name: "whoami", Description: "Print the current user", Usage: "whoami", Category: CategorySystem, Run: runWhoami},
		{Name: "hostname", Description: "Print the host name", Usage: "hostname", Category: CategorySystem, Run: runHostname},
		{Name: "uname", Description: "Print system information", Usage: "uname [-a]", Category: CategorySystem, Run: runUname},
		{Name: "date", Description: "Print the current date and time", Usage: "date", Category: CategorySystem, Run: runDate},
		{Name: "uptime", Description: "Show how long the shell has been running", Usage: "uptime", Category: CategorySystem, Run: runUptime},
		{Name: "jobs", Description: "List background jobs", Usage: "jobs", Category: CategorySystem, Run: runJobs},
		{Name: "clear", Description: "Clear the terminal screen", Usage: "clear", Category: CategorySystem, Run: runClear},
	}
}

func runWhoami(_ context.Context, sh *Shell, _ []string, state State) (Result, error) {
	if user := state.Environment["USER"]; user != "" {
		return ok(user), nil
	}
	return ok(sh.user), nil
}

func runHostname(_ context.Context, sh *Shell, _ []string, _ State) (Result, error) {
	return ok(sh.hostname), nil
}

func runUname(_ context.Context, sh *Shell, args []string, _ State) (Result, error) {
	flags, _ := splitFlags(args)
	if flags["-a"] || flags["--all"] {
		return ok(fmt.Sprintf("%s %s %s %s", systemName, sh.hostname, systemRelease, runtime.GOARCH)), nil
	}
	return ok(systemName), nil
}

func runDate(_ context.Context, sh *Shell, _ []string, _ State) (Result, error) {
	return ok(sh.now().Format(time.UnixDate)), nil
}

func runUptime(_ context.Context, sh *Shell, _ []string, _ State) (Result, error) {
	up := sh.now().Sub(sh.started).Truncate(time.Second)
	return ok(fmt.Sprintf("up %s", up)), nil
}

func runJobs(_ context.Context, _ *Shell, _ []string, state State) (Result, error) {
	lines := make([]string, 0, len(state.Jobs))
	for _, j := range state.Jobs {
		lines = append(lines, fmt.Sprintf("[%d]  %-8s %s", j.Number, j.Status, j.Command))
	}
	return ok(joinLines(lines)), nil
}

func runClear(_ context.Context, _ *Shell, _ []string, _ State) (Result, error) {
	return okWith("", &Effect{ClearScreen: true}), nil
}
