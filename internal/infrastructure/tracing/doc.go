/*
Package tracing provides lightweight request tracing.

Spans carry a trace id and a parent span id through context.Context. Finished
spans are queued to a collector goroutine that writes them to the zap logger,
so tracing never blocks a request.

# Usage

	tracer := tracing.New("vfsd", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "terminal.exec")
	span.SetTag("command", "ls")
	defer tracer.Submit(span)

# Trace Format

Traces use HTTP headers for propagation:
  - X-Trace-ID: Unique identifier for entire request flow
  - X-Span-ID: Identifier for current operation
*/
package tracing
