package app

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vk/graphdeps/internal/graph"
)

// report is the machine-readable summary of one analysis run.
type report struct {
	Operations        int         `yaml:"operations"`
	MustRun           []string    `yaml:"must_run"`
	SynthesizedMerges []string    `yaml:"synthesized_merges"`
	ControlEdges      []edgeEntry `yaml:"control_edges"`
	Returns           []string    `yaml:"returns,omitempty"`
}

// edgeEntry is one inserted ordering constraint: After waits for Before.
type edgeEntry struct {
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

func (a *App) writeReport(cfg *Config, g *graph.Graph, mustRun []*graph.Operation, returns []*graph.Tensor) error {
	rep := report{Operations: g.NumOperations()}

	for _, op := range mustRun {
		rep.MustRun = append(rep.MustRun, op.Name())
	}
	for _, op := range g.Operations() {
		if op.Artificial() {
			rep.SynthesizedMerges = append(rep.SynthesizedMerges, op.Name())
		}
	}
	for _, edge := range g.ControlEdges() {
		rep.ControlEdges = append(rep.ControlEdges, edgeEntry{
			Before: edge.From.Name(),
			After:  edge.To.Name(),
		})
	}
	for _, t := range returns {
		rep.Returns = append(rep.Returns, t.Name())
	}

	if cfg.ReportFormat == "text" {
		return a.writeTextReport(rep)
	}

	encoded, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = a.outW.Write(encoded)
	return err
}

func (a *App) writeTextReport(rep report) error {
	fmt.Fprintf(a.outW, "operations: %d\n", rep.Operations)
	fmt.Fprintf(a.outW, "must run (%d):\n", len(rep.MustRun))
	for _, name := range rep.MustRun {
		fmt.Fprintf(a.outW, "  %s\n", name)
	}
	if len(rep.SynthesizedMerges) > 0 {
		fmt.Fprintf(a.outW, "synthesized merges (%d):\n", len(rep.SynthesizedMerges))
		for _, name := range rep.SynthesizedMerges {
			fmt.Fprintf(a.outW, "  %s\n", name)
		}
	}
	fmt.Fprintf(a.outW, "control edges (%d):\n", len(rep.ControlEdges))
	for _, e := range rep.ControlEdges {
		fmt.Fprintf(a.outW, "  %s -> %s\n", e.Before, e.After)
	}
	for _, r := range rep.Returns {
		fmt.Fprintf(a.outW, "return: %s\n", r)
	}
	return nil
}
