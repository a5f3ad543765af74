package autodeps

// Config lists the stateful op kinds exempt from must-run promotion. An
// exempt kind still participates fully in resource-edge tracking when it
// declares resource inputs; it is only never forced to run for being
// stateful alone.
type Config struct {
	// AsyncStatefulKinds are multi-participant collective kinds. Forcing
	// them into program order risks deadlock, so ordering them is the
	// caller's responsibility.
	AsyncStatefulKinds []string

	// LegacyRandomKinds are pseudo-random kinds with internal rng state.
	// Serializing unrelated random draws (variable initializers, mostly)
	// would cost throughput for nothing; consumers of their outputs are
	// still ordered through ordinary data edges.
	LegacyRandomKinds []string

	// OrderInsensitiveKinds are stateful kinds whose internal state is
	// known not to depend on execution order.
	OrderInsensitiveKinds []string
}

// DefaultConfig returns the standard exemption tables.
func DefaultConfig() Config {
	return Config{
		AsyncStatefulKinds: []string{
			"CollectiveGather",
			"CollectiveReduce",
			"CollectiveBcastSend",
			"CollectiveBcastRecv",
			"NcclAllReduce",
		},
		LegacyRandomKinds: []string{
			"RandomUniform",
			"RandomUniformInt",
			"RandomStandardNormal",
			"ParameterizedTruncatedNormal",
			"TruncatedNormal",
			"RandomShuffle",
			"Multinomial",
			"RandomGamma",
			"RandomGammaGrad",
			"RandomPoisson",
			"RandomPoissonV2",
		},
		OrderInsensitiveKinds: []string{
			"CudnnRNNV2",
			"CudnnRNNV3",
			"CudnnRNNBackpropV2",
			"CudnnRNNBackpropV3",
		},
	}
}

// exemptSet flattens the three tables into one lookup set.
func (c Config) exemptSet() map[string]struct{} {
	set := make(map[string]struct{},
		len(c.AsyncStatefulKinds)+len(c.LegacyRandomKinds)+len(c.OrderInsensitiveKinds))
	for _, kind := range c.AsyncStatefulKinds {
		set[kind] = struct{}{}
	}
	for _, kind := range c.LegacyRandomKinds {
		set[kind] = struct{}{}
	}
	for _, kind := range c.OrderInsensitiveKinds {
		set[kind] = struct{}{}
	}
	return set
}
