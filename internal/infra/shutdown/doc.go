// Package shutdown turns SIGINT and SIGTERM into context cancellation
// and runs cleanup hooks once the work bound to that context returns.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx, stop := h.Context(context.Background())
//	defer stop()
//	h.OnShutdown(flushMetrics)
//	err := run(ctx)
//	return errors.Join(err, h.Shutdown())
package shutdown
