package load

import "fmt"

// Phase names the step of a full-replace write.
type Phase string

const (
	PhaseSchema Phase = "schema"
	PhaseDrop   Phase = "drop"
	PhaseCreate Phase = "create"
	PhaseInsert Phase = "insert"
)

// SinkWriteError reports a failed write to the relational sink. Chunk is
// the zero-based chunk index for PhaseInsert and -1 otherwise. Chunks
// before Chunk are committed.
type SinkWriteError struct {
	Phase Phase
	Table string
	Chunk int
	Err   error
}

// Error implements the error interface.
func (e *SinkWriteError) Error() string {
	if e.Phase == PhaseInsert {
		return fmt.Sprintf("sink write failed: %s %s chunk %d: %v", e.Phase, e.Table, e.Chunk, e.Err)
	}
	return fmt.Sprintf("sink write failed: %s %s: %v", e.Phase, e.Table, e.Err)
}

// Unwrap returns the underlying database error.
func (e *SinkWriteError) Unwrap() error {
	return e.Err
}
