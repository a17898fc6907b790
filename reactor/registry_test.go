// File: reactor/registry_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"testing"

	"github.com/momentics/hioload-fdcore/api"
)

func TestInitPollersAdoptsFirstSuccessfulBackend(t *testing.T) {
	r := NewRegistry()
	r.Register(func() api.Backend {
		return &api.MockBackend{
			NameFunc: func() string { return "bad" },
			InitFunc: func() error { return api.ErrBackendInitFailed },
		}
	})
	r.Register(func() api.Backend {
		return &api.MockBackend{NameFunc: func() string { return "good" }}
	})

	if err := r.InitPollers(); err != nil {
		t.Fatalf("InitPollers: %v", err)
	}
	if r.Active().Name() != "good" {
		t.Errorf("Active().Name() = %q, want %q", r.Active().Name(), "good")
	}
}

func TestInitPollersReturnsErrWhenAllFail(t *testing.T) {
	r := NewRegistry()
	r.Register(func() api.Backend {
		return &api.MockBackend{InitFunc: func() error { return api.ErrBackendInitFailed }}
	})
	if err := r.InitPollers(); err != api.ErrNoBackendAvailable {
		t.Errorf("InitPollers() = %v, want ErrNoBackendAvailable", err)
	}
}

func TestInitPollersSkipsDisabledBackend(t *testing.T) {
	r := NewRegistry()
	r.Disable("skip-me")
	calledSkipped := false
	r.Register(func() api.Backend {
		return &api.MockBackend{
			NameFunc: func() string { return "skip-me" },
			InitFunc: func() error { calledSkipped = true; return nil },
		}
	})
	r.Register(func() api.Backend {
		return &api.MockBackend{NameFunc: func() string { return "fallback" }}
	})

	if err := r.InitPollers(); err != nil {
		t.Fatalf("InitPollers: %v", err)
	}
	if calledSkipped {
		t.Errorf("Init called on a disabled backend's factory")
	}
	if r.Active().Name() != "fallback" {
		t.Errorf("Active().Name() = %q, want fallback", r.Active().Name())
	}
}

func TestForkPollerFallsBackWhenRecoverFails(t *testing.T) {
	r := NewRegistry()
	r.Register(func() api.Backend {
		return &api.MockBackend{
			NameFunc:        func() string { return "flaky" },
			ForkRecoverFunc: func() error { return api.ErrNotSupported },
		}
	})
	r.Register(func() api.Backend {
		return &api.MockBackend{NameFunc: func() string { return "stable" }}
	})

	if err := r.InitPollers(); err != nil {
		t.Fatalf("InitPollers: %v", err)
	}
	if r.Active().Name() != "flaky" {
		t.Fatalf("setup: expected 'flaky' to be active first, got %q", r.Active().Name())
	}

	if err := r.ForkPoller(); err != nil {
		t.Fatalf("ForkPoller: %v", err)
	}
	if r.Active().Name() != "stable" {
		t.Errorf("Active().Name() after ForkPoller = %q, want stable", r.Active().Name())
	}

	history := r.DisabledHistory()
	if len(history) != 1 || history[0] != "flaky" {
		t.Errorf("DisabledHistory() = %v, want [flaky]", history)
	}
}

func TestForkPollerSucceedsWhenRecoverSucceeds(t *testing.T) {
	r := NewRegistry()
	r.Register(func() api.Backend {
		return &api.MockBackend{NameFunc: func() string { return "ok" }}
	})
	if err := r.InitPollers(); err != nil {
		t.Fatalf("InitPollers: %v", err)
	}
	if err := r.ForkPoller(); err != nil {
		t.Fatalf("ForkPoller: %v", err)
	}
	if r.Active().Name() != "ok" {
		t.Errorf("Active().Name() = %q, want ok (no backend swap expected)", r.Active().Name())
	}
}

func TestDeinitPollersTermsActiveBackend(t *testing.T) {
	r := NewRegistry()
	termed := false
	r.Register(func() api.Backend {
		return &api.MockBackend{TermFunc: func() error { termed = true; return nil }}
	})
	if err := r.InitPollers(); err != nil {
		t.Fatalf("InitPollers: %v", err)
	}
	if err := r.DeinitPollers(); err != nil {
		t.Fatalf("DeinitPollers: %v", err)
	}
	if !termed {
		t.Errorf("Term not called on active backend")
	}
	if r.Active() != nil {
		t.Errorf("Active() after DeinitPollers = %v, want nil", r.Active())
	}
}

func TestDeinitPollersOnEmptyRegistryIsNoOp(t *testing.T) {
	r := NewRegistry()
	if err := r.DeinitPollers(); err != nil {
		t.Errorf("DeinitPollers on an empty registry: %v", err)
	}
}

func TestDisabledHistoryEvictsOldestPastCapacity(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < disabledHistoryCap+3; i++ {
		r.Disable(string(rune('a' + i%26)))
	}
	history := r.DisabledHistory()
	if len(history) != disabledHistoryCap {
		t.Errorf("DisabledHistory() length = %d, want %d", len(history), disabledHistoryCap)
	}
}
