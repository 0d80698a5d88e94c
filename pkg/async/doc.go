// Package async provides bounded concurrent execution with panic recovery.
//
// Map runs a function over a slice with a fixed number of workers. Every call
// gets its own timeout-bound context, and a panicking call is reported as an
// error for its item instead of crashing the process:
//
//	results := async.Map(ctx, checkers, 4, 5*time.Second, func(ctx context.Context, c Checker) (bool, error) {
//		return c.HealthCheck(ctx)
//	})
//
// Results keep the order of the input slice.
package async
