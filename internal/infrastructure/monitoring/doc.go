/*
Package monitoring provides Prometheus metrics for the filesystem service.

# Overview

Metrics tracks HTTP requests, filesystem mutations, undo attempts, shell
command executions, terminal sessions and WebSocket traffic. It satisfies the
recorder interfaces declared by the vfs and shell packages, so the domain code
never imports Prometheus directly.

# Usage

	metrics := monitoring.NewMetrics()
	store := vfs.NewStore(seed, vfs.WithRecorder(metrics))
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
