// Package hcl parses program and manifest files and translates them into
// the format-agnostic model in internal/config.
package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/graphdeps/internal/config"
	"github.com/vk/graphdeps/internal/ctxlog"
)

// Loader parses .hcl program files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a program loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// LoadProgram parses the program file at path into the agnostic model.
func (l *Loader) LoadProgram(ctx context.Context, path string) (*config.Program, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loader: parsing program file.", "path", path)

	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse program file %s: %w", path, diags)
	}

	prog, err := l.translateProgram(hclFile.Body)
	if err != nil {
		return nil, fmt.Errorf("program file %s: %w", path, err)
	}

	logger.Debug("Loader: program parsed.", "statements", len(prog.Statements))
	return prog, nil
}

// LoadProgramSource parses program source given directly, for tests and
// tooling that do not go through the filesystem.
func (l *Loader) LoadProgramSource(ctx context.Context, src []byte, filename string) (*config.Program, error) {
	hclFile, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse program %s: %w", filename, diags)
	}
	prog, err := l.translateProgram(hclFile.Body)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", filename, err)
	}
	return prog, nil
}
