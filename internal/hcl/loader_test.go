package hcl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/graphdeps/internal/config"
)

func parseProgram(t *testing.T, src string) *config.Program {
	t.Helper()
	prog, err := NewLoader().LoadProgramSource(context.Background(), []byte(src), "test.hcl")
	require.NoError(t, err)
	return prog
}

func TestLoadProgram(t *testing.T) {
	t.Run("statements keep file order across block types", func(t *testing.T) {
		prog := parseProgram(t, `
op "Const" "a" {}

cond "c" {
  pred = op.a
  then {
    yield = [op.a]
  }
  else {
    yield = [op.a]
  }
}

op "Const" "b" {}
`)
		require.Len(t, prog.Statements, 3)
		require.NotNil(t, prog.Statements[0].Op)
		assert.Equal(t, "a", prog.Statements[0].Op.Name)
		require.NotNil(t, prog.Statements[1].Cond)
		assert.Equal(t, "c", prog.Statements[1].Cond.Name)
		require.NotNil(t, prog.Statements[2].Op)
		assert.Equal(t, "b", prog.Statements[2].Op.Name)
	})

	t.Run("op carries kind, outputs and inputs expression", func(t *testing.T) {
		prog := parseProgram(t, `
op "Const" "x" {
  outputs = ["bool"]
}

op "Assert" "check" {
  inputs = [op.x]
}
`)
		require.Len(t, prog.Statements, 2)
		x := prog.Statements[0].Op
		assert.Equal(t, "Const", x.Kind)
		assert.Equal(t, []string{"bool"}, x.Outputs)
		assert.Nil(t, x.Inputs, "absent inputs stay nil")
		assert.NotNil(t, prog.Statements[1].Op.Inputs)
	})

	t.Run("return attribute is optional", func(t *testing.T) {
		withReturn := parseProgram(t, `
op "Const" "x" {}
return = [op.x]
`)
		assert.NotNil(t, withReturn.Return)
		assert.Nil(t, parseProgram(t, `op "Const" "x" {}`).Return)
	})

	t.Run("cond arms and yields", func(t *testing.T) {
		prog := parseProgram(t, `
op "Const" "p" { outputs = ["bool"] }

cond "c" {
  pred = op.p
  then {
    op "Neg" "n" {
      inputs = [op.p]
    }
    yield = [op.n]
  }
}
`)
		cond := prog.Statements[1].Cond
		require.NotNil(t, cond)
		require.NotNil(t, cond.Then)
		assert.Nil(t, cond.Else, "a missing arm stays nil")
		require.Len(t, cond.Then.Ops, 1)
		assert.Equal(t, "Neg", cond.Then.Ops[0].Kind)
		assert.NotNil(t, cond.Then.Yield)
	})

	t.Run("cond without any arm is rejected", func(t *testing.T) {
		_, err := NewLoader().LoadProgramSource(context.Background(), []byte(`
op "Const" "p" {}
cond "c" {
  pred = op.p
}
`), "test.hcl")
		assert.Error(t, err)
	})

	t.Run("malformed source is rejected", func(t *testing.T) {
		_, err := NewLoader().LoadProgramSource(context.Background(), []byte(`op "Const" {`), "test.hcl")
		assert.Error(t, err)
	})
}

func TestExemptions(t *testing.T) {
	t.Run("absent block leaves exemptions nil", func(t *testing.T) {
		prog := parseProgram(t, `op "Const" "x" {}`)
		assert.Nil(t, prog.Exemptions)
	})

	t.Run("absent table stays nil, empty table is cleared", func(t *testing.T) {
		prog := parseProgram(t, `
exemptions {
  legacy_random = []
  async         = ["CollectiveReduce"]
}
`)
		require.NotNil(t, prog.Exemptions)
		assert.NotNil(t, prog.Exemptions.LegacyRandom)
		assert.Empty(t, prog.Exemptions.LegacyRandom)
		assert.Equal(t, []string{"CollectiveReduce"}, prog.Exemptions.Async)
		assert.Nil(t, prog.Exemptions.OrderInsensitive)
	})

	t.Run("duplicate block is rejected", func(t *testing.T) {
		_, err := NewLoader().LoadProgramSource(context.Background(), []byte(`
exemptions {}
exemptions {}
`), "test.hcl")
		assert.Error(t, err)
	})

	t.Run("non string members are rejected", func(t *testing.T) {
		_, err := NewLoader().LoadProgramSource(context.Background(), []byte(`
exemptions {
  async = [1, 2]
}
`), "test.hcl")
		assert.Error(t, err)
	})

	t.Run("non list table is rejected", func(t *testing.T) {
		_, err := NewLoader().LoadProgramSource(context.Background(), []byte(`
exemptions {
  async = "CollectiveReduce"
}
`), "test.hcl")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected a list of kind names")
	})

	t.Run("null table is rejected", func(t *testing.T) {
		_, err := NewLoader().LoadProgramSource(context.Background(), []byte(`
exemptions {
  legacy_random = null
}
`), "test.hcl")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected a list of kind names")
	})
}
