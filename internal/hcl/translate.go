package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/graphdeps/internal/config"
	"github.com/vk/graphdeps/internal/schema"
)

// translateProgram converts a parsed program body into the agnostic model.
// Block order is preserved: it is the program order the dependency pass
// derives all ordering from.
func (l *Loader) translateProgram(body hcl.Body) (*config.Program, error) {
	content, diags := body.Content(schema.ProgramSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid program structure: %w", diags)
	}

	prog := &config.Program{}

	if attr, ok := content.Attributes["return"]; ok {
		prog.Return = attr.Expr
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "op":
			op, err := translateOp(block.Labels[0], block.Labels[1], block.Body)
			if err != nil {
				return nil, err
			}
			prog.Statements = append(prog.Statements, config.Statement{Op: op})
		case "cond":
			cond, err := translateCond(block.Labels[0], block.Body)
			if err != nil {
				return nil, err
			}
			prog.Statements = append(prog.Statements, config.Statement{Cond: cond})
		case "exemptions":
			if prog.Exemptions != nil {
				return nil, fmt.Errorf("duplicate exemptions block")
			}
			ex, err := translateExemptions(block.Body)
			if err != nil {
				return nil, err
			}
			prog.Exemptions = ex
		}
	}

	return prog, nil
}

// translateOp converts one `op "Kind" "name"` block.
func translateOp(kind, name string, body hcl.Body) (*config.Op, error) {
	var opBody schema.OpBody
	if diags := gohcl.DecodeBody(body, nil, &opBody); diags.HasErrors() {
		return nil, fmt.Errorf("op %q: %w", name, diags)
	}
	return &config.Op{
		Kind:    kind,
		Name:    name,
		Inputs:  opBody.Inputs,
		Outputs: opBody.Outputs,
	}, nil
}

// translateCond converts one `cond "name"` block, including both arms.
func translateCond(name string, body hcl.Body) (*config.Cond, error) {
	var condBody schema.CondBody
	if diags := gohcl.DecodeBody(body, nil, &condBody); diags.HasErrors() {
		return nil, fmt.Errorf("cond %q: %w", name, diags)
	}
	cond := &config.Cond{
		Name: name,
		Pred: condBody.Pred,
		Then: translateBranch(condBody.Then),
		Else: translateBranch(condBody.Else),
	}
	if cond.Then == nil && cond.Else == nil {
		return nil, fmt.Errorf("cond %q has neither a then nor an else block", name)
	}
	return cond, nil
}

// translateBranch converts one arm of a conditional; a missing arm stays nil.
func translateBranch(branch *schema.Branch) *config.Branch {
	if branch == nil {
		return nil
	}
	out := &config.Branch{Yield: branch.Yield}
	for _, blk := range branch.Ops {
		out.Ops = append(out.Ops, &config.Op{
			Kind:    blk.Kind,
			Name:    blk.Name,
			Inputs:  blk.Inputs,
			Outputs: blk.Outputs,
		})
	}
	return out
}

// translateExemptions reads the three optional exemption tables. Attributes
// are inspected individually because an absent table keeps its defaults
// while an explicitly empty one clears the table.
func translateExemptions(body hcl.Body) (*config.Exemptions, error) {
	content, diags := body.Content(schema.ExemptionsSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid exemptions block: %w", diags)
	}

	ex := &config.Exemptions{}
	for attrName, target := range map[string]*[]string{
		"async":             &ex.Async,
		"legacy_random":     &ex.LegacyRandom,
		"order_insensitive": &ex.OrderInsensitive,
	} {
		attr, ok := content.Attributes[attrName]
		if !ok {
			continue
		}
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("exemptions.%s: %w", attrName, diags)
		}
		if val.IsNull() || !val.CanIterateElements() {
			return nil, fmt.Errorf("exemptions.%s: expected a list of kind names", attrName)
		}
		kinds := []string{}
		for _, elem := range val.AsValueSlice() {
			if elem.Type() != cty.String {
				return nil, fmt.Errorf("exemptions.%s: expected a list of kind names", attrName)
			}
			kinds = append(kinds, elem.AsString())
		}
		*target = kinds
	}
	return ex, nil
}
