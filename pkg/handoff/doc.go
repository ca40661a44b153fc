// Package handoff carries stage outputs between pipeline tasks.
//
// Each task publishes its result under a well-known name scoped by the run
// id, and the next task pulls it. Values travel as JSON, so a dataset or a
// slice of cleaned records survives a process boundary when the Redis
// exchange is used.
//
// # Basic Usage
//
//	ex := handoff.NewRedis(redisClient, 24*time.Hour)
//	key := handoff.Key{RunID: runID, Name: handoff.RawDataset}
//
//	if err := ex.Push(ctx, key, ds); err != nil {
//		return err
//	}
//
//	restored := dataset.New()
//	if err := ex.Pull(ctx, key, restored); errors.Is(err, handoff.ErrNotFound) {
//		// upstream task has not run for this run id
//	}
//
// # Metrics
//
//   - animelist_handoff_bytes{key} - Size of the last value pushed per name
//   - animelist_handoff_errors_total{operation} - Failed push or pull calls
package handoff
