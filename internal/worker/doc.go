// Package worker launches the external shader compiler and owns the channel
// it connects back on.
//
// Ownership boundary:
// - compiler install lookup
//
// - channel naming, listening and dialing (unix socket or Windows named pipe)
//
// - process start, connect wait and reaping
//
// The line protocol spoken over the channel belongs to protocol/session.
package worker
