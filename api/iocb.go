// File: api/iocb.go
// Author: momentics <momentics@gmail.com>
//
// The I/O callback signature invoked by the dispatch loop.

package api

// IOCB is invoked by the dispatch loop for an FD believed ready. The
// callback discovers its context via the FD's owner and performs the
// read/write; on EAGAIN it reports back through CantRecv/CantSend.
type IOCB func(fd int)
