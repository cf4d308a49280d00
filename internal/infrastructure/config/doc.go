// Package config provides 12-factor configuration management for the filesystem service.
//
// Configuration is loaded from environment variables (after an optional .env file)
// with sensible defaults and validated before use.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, shutdown timeout)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - FS: Seed user, hostname and optional YAML seed file
//   - Shell: calc timeout, history and session limits
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - VFS_USER, VFS_HOSTNAME, VFS_SEED_PATH
//   - SHELL_CALC_TIMEOUT, SHELL_MAX_HISTORY, SHELL_MAX_SESSIONS
package config
