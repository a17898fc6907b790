// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// High-performance concurrency primitives backing hioload-fdcore's
// dispatch loops: CPU affinity pinning, lock-free ring/queue types, and
// the timer scheduler behind Core.Scheduler (the dispatch loops'
// NextExpire deadline does not come from it).
//
// All implementations are cross-platform compatible (Linux/Windows).
package concurrency
