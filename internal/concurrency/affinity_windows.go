// File: internal/concurrency/affinity_windows.go
//go:build windows

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows CPU pinning via SetThreadAffinityMask.

package concurrency

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
)

func platformPin(cpuID int) error {
	if cpuID < 0 {
		return nil
	}
	handle := windows.CurrentThread()
	mask := uintptr(1) << uint(cpuID)
	if _, err := windows.SetThreadAffinityMask(handle, mask); err != nil {
		return fmt.Errorf("SetThreadAffinityMask: %w", err)
	}
	return nil
}

func platformUnpin() error {
	handle := windows.CurrentThread()
	total := runtime.NumCPU()
	if total <= 0 {
		total = 1
	}
	mask := (uintptr(1) << uint(total)) - 1
	if _, err := windows.SetThreadAffinityMask(handle, mask); err != nil {
		return fmt.Errorf("SetThreadAffinityMask(unpin): %w", err)
	}
	return nil
}
