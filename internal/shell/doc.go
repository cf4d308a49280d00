// Package shell implements the terminal command language over a vfs.Store.
//
// A line is split by ParseCommand into a command name and flat arguments.
// Shell.ExecuteCommand resolves aliases, dispatches to the Registry and
// always returns a Result: unknown commands, failures and panics become a
// non-zero exit code with a familiar message.
//
// Commands read the session State but never change it. Directory changes,
// environment and alias updates are returned as an Effect, and the caller
// (the terminal session manager) decides when to apply them.
package shell
