package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/server"
)

const clearScreen = "\033[H\033[2J"

// runREPL reads lines from in and runs them in one terminal session until
// EOF or "exit". Prompts and screen clearing are only written when
// interactive.
func runREPL(ctx context.Context, core *server.Core, in io.Reader, out io.Writer, interactive bool) error {
	info, err := core.Sessions.Create()
	if err != nil {
		return err
	}
	defer core.Sessions.Kill(info.ID)

	user := core.Shell.NewState().Environment["USER"]
	hostname := core.Shell.NewState().Environment["HOSTNAME"]
	cwd := info.CurrentDirectory

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprintf(out, "%s@%s:%s$ ", user, hostname, cwd)
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "logout" {
			break
		}

		exec, err := core.Sessions.Execute(ctx, info.ID, line)
		if err != nil {
			return err
		}
		cwd = exec.CurrentDirectory

		if e := exec.Result.Effect; e != nil && e.ClearScreen && interactive {
			fmt.Fprint(out, clearScreen)
		}
		if exec.Result.Output != "" {
			fmt.Fprintln(out, exec.Result.Output)
		}
	}
	return scanner.Err()
}
