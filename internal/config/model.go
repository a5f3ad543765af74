// Package config holds the format-agnostic representation of a program
// file: an ordered statement list plus optional exemption overrides. The
// HCL loader produces this model; the builder lowers it into a graph.
package config

import "github.com/hashicorp/hcl/v2"

// Program is one parsed program file. Statement order is program order and
// must be preserved: the dependency pass derives all ordering from it.
type Program struct {
	Statements []Statement
	Exemptions *Exemptions
	// Return optionally lists the tensors the program declares as results.
	Return hcl.Expression
}

// Statement is either a plain operation or a conditional; exactly one
// field is set.
type Statement struct {
	Op   *Op
	Cond *Cond
}

// Op is the agnostic representation of an `op` block. Inputs stays an
// unevaluated HCL expression so the builder can resolve tensor references
// from its traversals.
type Op struct {
	Kind    string
	Name    string
	Inputs  hcl.Expression
	Outputs []string
}

// Cond is the agnostic representation of a `cond` block.
type Cond struct {
	Name string
	Pred hcl.Expression
	Then *Branch
	Else *Branch
}

// Branch holds one arm of a conditional. Yield optionally lists values the
// arm contributes to the conditional's merged outputs.
type Branch struct {
	Ops   []*Op
	Yield hcl.Expression
}

// Exemptions carries per-table overrides of the must-run exemption lists.
// A nil slice keeps the default table; an empty one clears it.
type Exemptions struct {
	Async            []string
	LegacyRandom     []string
	OrderInsensitive []string
}
