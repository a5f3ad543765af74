// Package schema declares the HCL block structures understood by the loader.
// These types are HCL-specific; they are translated into the format-agnostic
// model in internal/config before anything else touches them.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Program file structures ---

// ProgramSchema describes the top level of a program file. The loader uses
// hcl.Body.Content directly (not gohcl) because the relative order of `op`
// and `cond` blocks is the program order the dependency pass relies on, and
// gohcl groups blocks by type.
var ProgramSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "return", Required: false},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "op", LabelNames: []string{"kind", "name"}},
		{Type: "cond", LabelNames: []string{"name"}},
		{Type: "exemptions"},
	},
}

// OpBody represents the body of an `op "Kind" "name"` block.
type OpBody struct {
	Inputs  hcl.Expression `hcl:"inputs,optional"`
	Outputs []string       `hcl:"outputs,optional"`
}

// CondBody represents the body of a `cond "name"` block.
type CondBody struct {
	Pred hcl.Expression `hcl:"pred"`
	Then *Branch        `hcl:"then,block"`
	Else *Branch        `hcl:"else,block"`
}

// Branch represents a `then` or `else` block inside a cond. Yield holds an
// optional tuple expression; paired then/else yields become merge outputs.
type Branch struct {
	Ops   []*OpBlock     `hcl:"op,block"`
	Yield hcl.Expression `hcl:"yield,optional"`
}

// OpBlock represents an `op` block nested inside a branch.
type OpBlock struct {
	Kind    string         `hcl:"kind,label"`
	Name    string         `hcl:"name,label"`
	Inputs  hcl.Expression `hcl:"inputs,optional"`
	Outputs []string       `hcl:"outputs,optional"`
}

// ExemptionsSchema describes the body of an `exemptions` block. Attributes
// are read individually so an absent table keeps its default members while
// an explicitly empty one clears them.
var ExemptionsSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "async", Required: false},
		{Name: "legacy_random", Required: false},
		{Name: "order_insensitive", Required: false},
	},
}

// --- Kind manifest structures ---

// KindsFile represents a manifest file declaring additional op kinds.
type KindsFile struct {
	OpDefs []*OpDefBlock `hcl:"opdef,block"`
}

// OpDefBlock represents a single `opdef "Kind"` block.
type OpDefBlock struct {
	Kind        string   `hcl:"kind,label"`
	Stateful    bool     `hcl:"stateful,optional"`
	Outputs     []string `hcl:"outputs,optional"`
	Description string   `hcl:"description,optional"`
}
