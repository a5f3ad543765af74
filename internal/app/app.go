// Package app wires the analysis pipeline together: load op-kind manifests,
// parse the program, lower it into a graph, run the dependency-insertion
// pass over the whole construction region, and report the inserted edges.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/graphdeps/internal/autodeps"
	"github.com/vk/graphdeps/internal/builder"
	"github.com/vk/graphdeps/internal/config"
	"github.com/vk/graphdeps/internal/ctxlog"
	"github.com/vk/graphdeps/internal/graph"
	hclloader "github.com/vk/graphdeps/internal/hcl"
	"github.com/vk/graphdeps/internal/registry"
)

// App is one analysis run over one program file.
type App struct {
	outW io.Writer
	errW io.Writer
}

// NewApp creates an App writing the report to outW and diagnostics to errW.
func NewApp(outW, errW io.Writer) *App {
	return &App{outW: outW, errW: errW}
}

// Run executes the full pipeline and writes the report.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg, a.errW)
	ctx = ctxlog.WithLogger(ctx, logger)

	reg := registry.New()
	if cfg.KindsPath != "" {
		if err := reg.LoadManifests(ctx, cfg.KindsPath); err != nil {
			return fmt.Errorf("loading op-kind manifests: %w", err)
		}
	}

	prog, err := hclloader.NewLoader().LoadProgram(ctx, cfg.ProgramPath)
	if err != nil {
		return err
	}

	g := graph.New(reg)
	tracker := autodeps.NewTracker(exemptionConfig(prog.Exemptions))
	if err := tracker.Begin(g); err != nil {
		return err
	}

	built, err := builder.Build(ctx, prog, g)
	if err != nil {
		return fmt.Errorf("lowering program: %w", err)
	}

	var returns []*graph.Tensor
	for _, t := range built.Returns {
		wrapped, err := tracker.MarkAsReturn(t)
		if err != nil {
			return err
		}
		returns = append(returns, wrapped.(*graph.Tensor))
	}

	mustRun, err := tracker.End(ctx, g)
	if err != nil {
		return err
	}

	if err := g.DetectCycles(); err != nil {
		return fmt.Errorf("validating analyzed graph: %w", err)
	}

	logger.Info("Analysis complete.",
		"operations", g.NumOperations(),
		"must_run", len(mustRun),
		"control_edges", len(g.ControlEdges()))

	return a.writeReport(cfg, g, mustRun, returns)
}

// exemptionConfig merges program-file overrides over the default tables.
// A nil table keeps the defaults; an explicitly empty one clears it.
func exemptionConfig(ex *config.Exemptions) autodeps.Config {
	cfg := autodeps.DefaultConfig()
	if ex == nil {
		return cfg
	}
	if ex.Async != nil {
		cfg.AsyncStatefulKinds = ex.Async
	}
	if ex.LegacyRandom != nil {
		cfg.LegacyRandomKinds = ex.LegacyRandom
	}
	if ex.OrderInsensitive != nil {
		cfg.OrderInsensitiveKinds = ex.OrderInsensitive
	}
	return cfg
}
