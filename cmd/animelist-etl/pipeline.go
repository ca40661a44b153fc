package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/animelist-etl/pkg/config"
	"github.com/Sternrassler/animelist-etl/pkg/dag"
	"github.com/Sternrassler/animelist-etl/pkg/dataset"
	"github.com/Sternrassler/animelist-etl/pkg/extract"
	"github.com/Sternrassler/animelist-etl/pkg/handoff"
	"github.com/Sternrassler/animelist-etl/pkg/jikan"
	"github.com/Sternrassler/animelist-etl/pkg/load"
	"github.com/Sternrassler/animelist-etl/pkg/transform"
)

// pipeline binds the stages to the exchange for one run.
type pipeline struct {
	cfg      *config.Config
	exchange handoff.Exchange
	runID    string
}

func (p *pipeline) key(name string) handoff.Key {
	return handoff.Key{RunID: p.runID, Name: name}
}

func (p *pipeline) extract(ctx context.Context) (int, error) {
	client, err := jikan.New(p.cfg.JikanConfig())
	if err != nil {
		return 0, err
	}
	extractor, err := extract.New(client, p.cfg.ExtractConfig())
	if err != nil {
		return 0, err
	}

	ds, err := extractor.Extract(ctx)
	if err != nil {
		return 0, err
	}
	if err := p.exchange.Push(ctx, p.key(handoff.RawDataset), ds); err != nil {
		return 0, fmt.Errorf("publish %s: %w", handoff.RawDataset, err)
	}
	// The placeholder row is not a fetched record.
	return ds.Len() - 1, nil
}

func (p *pipeline) transform(ctx context.Context) (int, error) {
	ds := dataset.New()
	if err := p.exchange.Pull(ctx, p.key(handoff.RawDataset), ds); err != nil {
		return 0, fmt.Errorf("pull %s: %w", handoff.RawDataset, err)
	}

	records, err := transform.New().Transform(ds)
	if err != nil {
		return 0, err
	}
	if err := p.exchange.Push(ctx, p.key(handoff.CleanedRecords), records); err != nil {
		return 0, fmt.Errorf("publish %s: %w", handoff.CleanedRecords, err)
	}
	return len(records), nil
}

func (p *pipeline) load(ctx context.Context) (int, error) {
	var records []transform.CleanedRecord
	if err := p.exchange.Pull(ctx, p.key(handoff.CleanedRecords), &records); err != nil {
		return 0, fmt.Errorf("pull %s: %w", handoff.CleanedRecords, err)
	}

	db, err := load.Open(p.cfg.Sink.Driver, p.cfg.Sink.DSN)
	if err != nil {
		return 0, err
	}
	defer load.Close(db)

	loader, err := load.New(db, p.cfg.Target(), p.cfg.Sink.ChunkSize)
	if err != nil {
		return 0, err
	}
	if err := loader.Load(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// dag wires the stages into the orchestrator in pipeline order.
func (p *pipeline) dag() (*dag.DAG, error) {
	return dag.New(p.cfg.Orchestrator.DagID, p.cfg.DAGConfig(),
		dag.Task{ID: dag.TaskExtract, Run: p.extract},
		dag.Task{ID: dag.TaskTransform, Run: p.transform},
		dag.Task{ID: dag.TaskLoad, Run: p.load},
	)
}
