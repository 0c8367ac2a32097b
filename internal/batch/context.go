// Package batch implements fixed-size sub-batch iteration over
// repositories, memory-aware throttling between sub-batches, progress
// reporting, and the exit-code contract the CLI layer surfaces.
package batch

import "time"

// Context is the immutable configuration of one Batch Runner invocation.
// Cancellation is carried by the context.Context passed to Run, not stored
// here.
type Context struct {
	Deadline       time.Time
	MaxConcurrency int
	BatchSize      int
	MemoryLimitMB  int
}

// ExitCode enumerates the process exit codes the CLI layer surfaces.
type ExitCode int

const (
	ExitOK            ExitCode = 0
	ExitOtherFailure  ExitCode = 1
	ExitConfigError   ExitCode = 2
	ExitRegistryError ExitCode = 3
	ExitPartialBatch  ExitCode = 4
)
