// File: fdcore/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Config holds the immutable-per-run parameters for Core. Grounded on
// the teacher's facade/hioload.go Config/DefaultConfig pair.

package fdcore

import "time"

// Config parameterizes a Core. All fields influence construction; after
// Start, tuning changes flow through Core.Control instead.
type Config struct {
	FDCapacity      int           // size of the fixed FD table (typically RLIMIT_NOFILE)
	NumWorkers      int           // number of dispatch-loop goroutines
	PollTimeout     time.Duration // each blocking Wait's deadline is now + PollTimeout; scheduled timers do not shorten it
	CPUAffinity     bool          // pin each dispatcher goroutine to CPU `tid`
	EnableMetrics   bool          // publish each worker's per-tick counters (ticks, cache admissions/evictions, update-list high-water mark) through Control.Stats
	EnableDebug     bool          // register FD-table/cache introspection probes
	ShutdownTimeout time.Duration // bound on Shutdown waiting for dispatchers to exit
	CloseQueueDepth uint64        // capacity of the deferred-close ring (rounded to pow2)
}

// DefaultConfig returns sane defaults for a single-process deployment.
func DefaultConfig() *Config {
	return &Config{
		FDCapacity:      65536,
		NumWorkers:      4,
		PollTimeout:     1 * time.Second,
		CPUAffinity:     true,
		EnableMetrics:   true,
		EnableDebug:     true,
		ShutdownTimeout: 10 * time.Second,
		CloseQueueDepth: 1024,
	}
}
