// Command vfsd serves an in-memory virtual filesystem and shell.
//
// Subcommands:
//
//	vfsd serve [--port 8000] [--host 0.0.0.0] [--dev]
//	    HTTP API under /api, terminal sessions, /stream WebSocket, /metrics.
//	vfsd shell
//	    Interactive shell on a fresh filesystem; reads a script from stdin
//	    when it is not a terminal.
//	vfsd tree [--format json|yaml|toml] [--path /Users]
//	    Print the seeded tree.
//
// Configuration comes from environment variables (optionally a .env file);
// see internal/infrastructure/config. SIGINT and SIGTERM trigger a graceful
// shutdown of serve.
package main
