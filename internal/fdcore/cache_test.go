// File: internal/fdcore/cache_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fdcore

import (
	"testing"

	"github.com/momentics/hioload-fdcore/api"
)

func TestSingleThreadedFDAdmitsToLocalCache(t *testing.T) {
	tab := newTestTable(t, 4, 2)
	tab.Insert(1, 0, "o", nil, 0x1)
	tab.WantRecv(1, 0)
	tab.MayRecv(1) // ACTIVE+READY: admission condition satisfied

	if tab.CacheMask()&0x1 == 0 {
		t.Fatalf("CacheMask() = %#x, want bit 0 set", tab.CacheMask())
	}
	drained := tab.DrainLocal(0)
	if len(drained) != 1 || drained[0] != 1 {
		t.Errorf("DrainLocal(0) = %v, want [1]", drained)
	}
	if tab.CacheMask()&0x1 != 0 {
		t.Errorf("CacheMask() still has bit 0 set after drain: %#x", tab.CacheMask())
	}
}

func TestMultiThreadedFDAdmitsToGlobalCache(t *testing.T) {
	tab := newTestTable(t, 4, 3)
	mask := uint64(0b101) // threads 0 and 2
	tab.Insert(1, 0, "o", nil, mask)
	tab.WantRecv(1, 0)
	tab.MayRecv(1)

	// Neither thread's local cache should have picked it up.
	if got := tab.DrainLocal(0); len(got) != 0 {
		t.Errorf("DrainLocal(0) = %v, want empty (fd should be in the global cache)", got)
	}
	got2 := tab.DrainGlobalFor(2)
	if len(got2) != 1 || got2[0] != 1 {
		t.Errorf("DrainGlobalFor(2) = %v, want [1]", got2)
	}
}

func TestDrainGlobalForOnlyReturnsAuthorizedThread(t *testing.T) {
	tab := newTestTable(t, 4, 3)
	tab.Insert(1, 0, "o", nil, 0b101) // threads 0, 2
	tab.WantRecv(1, 0)
	tab.MayRecv(1)

	got1 := tab.DrainGlobalFor(1)
	if len(got1) != 0 {
		t.Errorf("DrainGlobalFor(1) = %v, want empty: thread 1 is not in the fd's threadMask", got1)
	}
	got0 := tab.DrainGlobalFor(0)
	if len(got0) != 1 || got0[0] != 1 {
		t.Errorf("DrainGlobalFor(0) = %v, want [1]", got0)
	}
}

func TestCacheEvictsWhenReadinessClears(t *testing.T) {
	tab := newTestTable(t, 4, 1)
	tab.Insert(1, 0, "o", nil, 0x1)
	tab.WantRecv(1, 0)
	tab.MayRecv(1)
	if tab.CacheMask()&0x1 == 0 {
		t.Fatalf("fd not admitted to cache")
	}

	tab.DrainUpdates(0, func(fd int, want api.EventFlags) error { return nil })
	tab.CantRecv(1, 0) // clears READY: no longer admission-eligible

	if tab.CacheMask()&0x1 != 0 {
		t.Errorf("CacheMask() still has bit 0 set after CantRecv evicted the fd: %#x", tab.CacheMask())
	}
}

func TestCacheAdmissionIsIdempotent(t *testing.T) {
	tab := newTestTable(t, 4, 1)
	tab.Insert(1, 0, "o", nil, 0x1)
	tab.WantRecv(1, 0)
	tab.MayRecv(1)
	tab.MayRecv(1) // second call: must not double-link
	drained := tab.DrainLocal(0)
	if len(drained) != 1 {
		t.Errorf("DrainLocal(0) = %v, want exactly one entry after double MayRecv", drained)
	}
}

func TestDrainGlobalForTryLockSkipsWhenContended(t *testing.T) {
	tab := newTestTable(t, 4, 2)
	tab.Insert(1, 0, "o", nil, 0b11)
	tab.WantRecv(1, 0)
	tab.MayRecv(1)

	tab.globalMu.Lock()
	got := tab.DrainGlobalFor(0)
	tab.globalMu.Unlock()
	if got != nil {
		t.Errorf("DrainGlobalFor during contention = %v, want nil", got)
	}

	// Once released, the entry is still there for next tick.
	got2 := tab.DrainGlobalFor(0)
	if len(got2) != 1 || got2[0] != 1 {
		t.Errorf("DrainGlobalFor after release = %v, want [1]", got2)
	}
}

func TestCacheMetricsCountAdmissionsAndEvictions(t *testing.T) {
	tab := newTestTable(t, 4, 1)
	tab.Insert(1, 0, "o", nil, 0x1)

	tab.WantRecv(1, 0)
	tab.MayRecv(1) // admits: ACTIVE_R+READY_R
	admits, evicts, _ := tab.CacheMetrics()
	if admits != 1 {
		t.Errorf("CacheMetrics admits = %d, want 1", admits)
	}
	if evicts != 0 {
		t.Errorf("CacheMetrics evicts = %d, want 0", evicts)
	}

	tab.StopRecv(1, 0) // evicts
	_, evicts, _ = tab.CacheMetrics()
	if evicts != 1 {
		t.Errorf("CacheMetrics evicts after StopRecv = %d, want 1", evicts)
	}
}
