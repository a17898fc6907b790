// File: fdcore/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package fdcore is the root facade: it wires internal/fdcore's FD
// table, reactor's poller backends, and the ambient control/scheduler
// surfaces into a single Core, and selects the platform's poller
// backend preference order (backends_*.go, one file per build tag).
package fdcore
