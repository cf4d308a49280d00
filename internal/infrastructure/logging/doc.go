// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for humans
//
// Components take a *zap.Logger obtained from Logger.Component so log lines
// carry the subsystem name ("vfs", "shell", "session", "http", "ws").
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	store := vfs.NewStore(vfs.DefaultSeed("Durgas"), vfs.WithLogger(logger.Component("vfs")))
//	logger.Info("Server starting", zap.String("port", "8000"))
package logging
