// File: internal/concurrency/affinity_linux.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux CPU pinning via sched_setaffinity, pure Go (no cgo, no
// libnuma — see DESIGN.md for why the teacher's cgo/libnuma version was
// dropped rather than adapted).

package concurrency

import "golang.org/x/sys/unix"

func platformPin(cpuID int) error {
	if cpuID < 0 {
		return nil
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(0, &set)
}

func platformUnpin() error {
	var set unix.CPUSet
	set.Zero()
	n := numCPU()
	for i := 0; i < n; i++ {
		set.Set(i)
	}
	return unix.SchedSetaffinity(0, &set)
}

func numCPU() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 1
	}
	return set.Count()
}
