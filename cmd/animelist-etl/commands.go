package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/animelist-etl/pkg/dag"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run extract, transform and load in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := ctx.runID(true)
			if err != nil {
				return err
			}
			stopMetrics, err := ctx.startMetrics()
			if err != nil {
				return err
			}
			defer stopMetrics()

			exchange, closeExchange, err := ctx.exchange(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeExchange()

			p := &pipeline{cfg: ctx.config, exchange: exchange, runID: runID}
			d, err := p.dag()
			if err != nil {
				return err
			}

			reports, runErr := d.Run(cmd.Context())
			printSummary(cmd.OutOrStdout(), runID, reports)
			return runErr
		},
	}
}

// newTaskCommands builds one command per orchestrator task. Each runs in
// its own process and exchanges data through Redis.
func newTaskCommands(ctx *commandContext) []*cobra.Command {
	defs := []struct {
		use      string
		short    string
		taskID   string
		newRunID bool
	}{
		{use: "extract", short: "Fetch the seasonal catalog and publish the raw dataset", taskID: dag.TaskExtract, newRunID: true},
		{use: "transform", short: "Clean the raw dataset of a run", taskID: dag.TaskTransform},
		{use: "load", short: "Replace the sink table with the cleaned records of a run", taskID: dag.TaskLoad},
	}

	cmds := make([]*cobra.Command, 0, len(defs))
	for _, def := range defs {
		cmds = append(cmds, &cobra.Command{
			Use:   def.use,
			Short: def.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				runID, err := ctx.runID(def.newRunID)
				if err != nil {
					return err
				}
				stopMetrics, err := ctx.startMetrics()
				if err != nil {
					return err
				}
				defer stopMetrics()

				exchange, closeExchange, err := ctx.exchange(cmd.Context(), true)
				if err != nil {
					return err
				}
				defer closeExchange()

				p := &pipeline{cfg: ctx.config, exchange: exchange, runID: runID}
				d, err := p.dag()
				if err != nil {
					return err
				}

				report, taskErr := d.RunTask(cmd.Context(), def.taskID)
				printSummary(cmd.OutOrStdout(), runID, []dag.Report{report})
				return taskErr
			},
		})
	}
	return cmds
}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := ctx.config.Encode()
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
