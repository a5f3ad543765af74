package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/graphdeps/internal/ctxlog"
	"github.com/vk/graphdeps/internal/fsutil"
	"github.com/vk/graphdeps/internal/schema"
)

// LoadManifests walks kindsPath and registers every opdef block found in
// .hcl manifest files there. Built-in kinds cannot be redefined.
func (r *Registry) LoadManifests(ctx context.Context, kindsPath string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading op-kind manifests.", "path", kindsPath)

	filePaths, err := fsutil.FindFilesByExtension(kindsPath, ".hcl")
	if err != nil {
		return fmt.Errorf("failed to walk kinds directory %s: %w", kindsPath, err)
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl manifest files found in kinds path.", "path", kindsPath)
		return nil
	}

	parser := hclparse.NewParser()
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse manifest file %s: %w", filePath, diags)
		}

		var manifest schema.KindsFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &manifest); diags.HasErrors() {
			return fmt.Errorf("failed to decode manifest file %s: %w", filePath, diags)
		}

		for _, block := range manifest.OpDefs {
			def := &OpDef{
				Kind:        block.Kind,
				Stateful:    block.Stateful,
				Outputs:     block.Outputs,
				Description: block.Description,
			}
			if err := r.Register(def); err != nil {
				return fmt.Errorf("manifest %s: %w", filePath, err)
			}
			logger.Debug("Registered op kind from manifest.", "kind", def.Kind, "stateful", def.Stateful)
		}
	}

	logger.Info("Registry loaded successfully.", "kinds_registered", len(r.defs))
	return nil
}
