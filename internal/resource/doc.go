// Package resource limits the work the repository runs on behalf of callers.
//
//   - Memory: track and cap decoded filter memory (non-blocking, fail-fast)
//   - Workers: bound the number of concurrent loads
//   - IO: token-bucket rate limit on blob bytes read
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    MaxWorkers:         4,
//	    IOLimitBytesPerSec: 100 << 20,
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
//	if err := rc.AcquireIO(ctx, len(buf)); err != nil {
//	    return err
//	}
//
// All methods are safe for concurrent use and are no-ops on a nil Controller.
package resource
