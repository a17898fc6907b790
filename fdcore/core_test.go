// File: fdcore/core_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Facade lifecycle test, grounded on the teacher's
// tests/facade_lifecycle_test.go: construct with small defaults, start,
// exercise the public surface, then shut down cleanly.

package fdcore

import (
	"context"
	"os"
	"testing"
	"time"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.FDCapacity = 256
	cfg.NumWorkers = 2
	cfg.PollTimeout = 50 * time.Millisecond
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestCoreStartAndShutdown(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestCoreStartTwiceIsNoOp(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
}

func TestCoreShutdownWithoutStartIsNoOp(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Shutdown(); err != nil {
		t.Errorf("Shutdown without Start: %v", err)
	}
}

func TestNewRejectsInvalidWorkerCount(t *testing.T) {
	cfg := testConfig()
	cfg.NumWorkers = 0
	if _, err := New(cfg); err == nil {
		t.Errorf("New with NumWorkers=0 succeeded, want error")
	}

	cfg.NumWorkers = 65
	if _, err := New(cfg); err == nil {
		t.Errorf("New with NumWorkers=65 succeeded, want error")
	}
}

func TestCoreUsesDefaultConfigWhenNil(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	if c.Table().Capacity() != DefaultConfig().FDCapacity {
		t.Errorf("Table().Capacity() = %d, want default %d", c.Table().Capacity(), DefaultConfig().FDCapacity)
	}
}

func TestCoreInsertAndRemoveRoundTrip(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	r, w, perr := os.Pipe()
	if perr != nil {
		t.Fatalf("os.Pipe: %v", perr)
	}
	defer r.Close()

	fired := make(chan struct{})
	fd := int(r.Fd())
	if err := c.Insert(fd, "conn", func(int) { close(fired) }, 0x1); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := c.Remove(fd); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if got := c.Table().Record(fd).Owner(); got != nil {
		t.Errorf("Owner() after Remove = %v, want nil", got)
	}
	w.Close()
}

func TestCoreControlExposesConfiguredCapacity(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	cfg := c.Control().GetConfig()
	if cfg["fd.capacity"] != 256 {
		t.Errorf("Control().GetConfig()[fd.capacity] = %v, want 256", cfg["fd.capacity"])
	}
}

func TestCoreRegistryListsActiveBackendAfterStart(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Shutdown()

	if len(c.Registry().Names()) == 0 {
		t.Errorf("Registry().Names() is empty after a successful Start")
	}
}

func TestCoreSchedulerIsUsable(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()

	fired := make(chan struct{})
	if _, err := c.Scheduler().Schedule(int64(10*time.Millisecond), func() { close(fired) }); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("scheduled callback did not fire")
	}
}
