package registry

// builtinDefs is the set of op kinds every registry starts with. Stateless
// compute kinds default to a single float output; resource producers declare
// a resource output so programs rarely need to spell out dtypes.
var builtinDefs = []*OpDef{
	// Structural kinds used by conditional lowering and the dependency pass.
	{Kind: "Const", Outputs: []string{"float"}},
	{Kind: "NoOp", Outputs: nil},
	{Kind: "Identity", Outputs: []string{"float"}},
	{Kind: "Switch", Outputs: []string{"float", "float"}},
	{Kind: "Merge", Outputs: []string{"float", "int32"}},

	// Plain math kinds, handy in programs and tests.
	{Kind: "Add", Outputs: []string{"float"}},
	{Kind: "Mul", Outputs: []string{"float"}},
	{Kind: "Neg", Outputs: []string{"float"}},
	{Kind: "Greater", Outputs: []string{"bool"}},

	// Resource-handle kinds.
	{Kind: "VarHandleOp", Stateful: true, Outputs: []string{"resource"}},
	{Kind: "AssignVariableOp", Stateful: true, Outputs: nil},
	{Kind: "AssignAddVariableOp", Stateful: true, Outputs: nil},
	{Kind: "ReadVariableOp", Stateful: true, Outputs: []string{"float"}},
	{Kind: "DestroyResourceOp", Stateful: true, Outputs: nil},

	// Legacy stateful kinds without explicit resource handles.
	{Kind: "Assert", Stateful: true, Outputs: nil},
	{Kind: "PrintV2", Stateful: true, Outputs: nil},
	{Kind: "StackPushV2", Stateful: true, Outputs: []string{"float"}},
	{Kind: "StackPopV2", Stateful: true, Outputs: []string{"float"}},

	// Asynchronous collective kinds. Stateful, but exempt from must-run
	// promotion by default (see autodeps.DefaultConfig).
	{Kind: "CollectiveGather", Stateful: true, Outputs: []string{"float"}},
	{Kind: "CollectiveReduce", Stateful: true, Outputs: []string{"float"}},
	{Kind: "CollectiveBcastSend", Stateful: true, Outputs: []string{"float"}},
	{Kind: "CollectiveBcastRecv", Stateful: true, Outputs: []string{"float"}},
	{Kind: "NcclAllReduce", Stateful: true, Outputs: []string{"float"}},

	// Legacy random kinds with internal rng state.
	{Kind: "RandomUniform", Stateful: true, Outputs: []string{"float"}},
	{Kind: "RandomUniformInt", Stateful: true, Outputs: []string{"int32"}},
	{Kind: "RandomStandardNormal", Stateful: true, Outputs: []string{"float"}},
	{Kind: "ParameterizedTruncatedNormal", Stateful: true, Outputs: []string{"float"}},
	{Kind: "TruncatedNormal", Stateful: true, Outputs: []string{"float"}},
	{Kind: "RandomShuffle", Stateful: true, Outputs: []string{"float"}},
	{Kind: "Multinomial", Stateful: true, Outputs: []string{"int64"}},
	{Kind: "RandomGamma", Stateful: true, Outputs: []string{"float"}},
	{Kind: "RandomGammaGrad", Stateful: true, Outputs: []string{"float"}},
	{Kind: "RandomPoisson", Stateful: true, Outputs: []string{"float"}},
	{Kind: "RandomPoissonV2", Stateful: true, Outputs: []string{"float"}},

	// Stateful kinds whose internal scratch state is order-insensitive.
	{Kind: "CudnnRNNV2", Stateful: true, Outputs: []string{"float"}},
	{Kind: "CudnnRNNV3", Stateful: true, Outputs: []string{"float"}},
	{Kind: "CudnnRNNBackpropV2", Stateful: true, Outputs: []string{"float"}},
	{Kind: "CudnnRNNBackpropV3", Stateful: true, Outputs: []string{"float"}},
}
