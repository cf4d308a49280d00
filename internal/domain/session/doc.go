// Package session manages terminal sessions for the virtual filesystem shell.
//
// Each session carries its own shell.State (current directory, environment,
// aliases, jobs, history). The Manager is the only place that state changes:
// it runs a line through the shell, then applies the returned Effect.
//
// Sessions serialize their own commands with a per-session mutex, so two
// requests for the same terminal never interleave. Different sessions run
// concurrently against the shared store.
//
// Example Usage:
//
//	mgr := session.NewManager(sh, session.WithLimits(64, 500))
//	info, _ := mgr.Create()
//	exec, err := mgr.Execute(ctx, info.ID, "cd Documents")
package session
