// File: internal/fdcore/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package fdcore implements the file-descriptor event core: the per-FD
// state word and its lock-free transitions, the per-thread update list,
// the two-tier ready cache, the insert/delete lifecycle, and the
// per-worker dispatch loop. It is deliberately protocol-neutral: callers
// identify an FD only by its integer number, an opaque owner, and an
// api.IOCB callback.
package fdcore
