// Package config defines the process-wide, immutable-after-init
// configuration shared by the reasoner, lifter, and layer packages:
// numeric tolerances, the symbolic-bound-tightening toggle, the softmax
// envelope family, and the propagation iteration budget.
//
// Config is never a hidden package-level variable: every component
// that depends on it receives one as a construction parameter.
package config

// SoftmaxEnvelope names a softmax relaxation family: log-sum-exp (LSE)
// or exponential-reciprocal (ER). The value is carried through lifting
// into constraint.Softmax and layer.Layer, but no bound computation
// reads it: both settings produce the same softmax bounds.
type SoftmaxEnvelope int

const (
	// EnvelopeLSE selects the log-sum-exp decomposition.
	EnvelopeLSE SoftmaxEnvelope = iota
	// EnvelopeER selects the exponential-reciprocal decomposition.
	EnvelopeER
)

// String renders the envelope family name for logging/diagnostics.
func (e SoftmaxEnvelope) String() string {
	switch e {
	case EnvelopeLSE:
		return "LSE"
	case EnvelopeER:
		return "ER"
	default:
		return "unknown"
	}
}

// Default numeric and budget constants.
const (
	// DefaultEpsilon is the comparison tolerance used for every bound
	// tightening acceptance test and every phase-fixing decision.
	DefaultEpsilon = 1e-9

	// DefaultIterationBudget bounds how many full propagation sweeps the
	// reasoner runs before giving up on reaching a fixed point.
	DefaultIterationBudget = 4

	// DefaultSoftmaxLSE2Threshold is the default of the LSE2 tie-break
	// threshold knob. Its provenance in the original source is
	// undocumented (an empirically-tuned constant). The value is stored
	// in Config, but no computation reads it and no LSE2 tie-break is
	// applied. See DESIGN.md.
	DefaultSoftmaxLSE2Threshold = 0.5
)

// Config is the immutable-after-init configuration struct. Build one
// with Default() or New(options...) and pass it explicitly to
// lifter.Lift / reasoner.New; never read it from a package-level
// variable.
type Config struct {
	// Epsilon is the comparison tolerance for bound tightening and
	// phase-fixing decisions.
	Epsilon float64

	// IterationBudget bounds the number of full propagation sweeps.
	IterationBudget int

	// SymbolicBoundTightening toggles the symbolic (affine,
	// back-to-input) propagation pass in addition to interval
	// arithmetic. When false, only interval arithmetic runs.
	SymbolicBoundTightening bool

	// SoftmaxEnvelope records the LSE or ER relaxation family; see the
	// SoftmaxEnvelope type for what reads it.
	SoftmaxEnvelope SoftmaxEnvelope

	// SoftmaxLSE2Threshold is the opaque tie-break constant described
	// above; it is stored but not read by any computation.
	SoftmaxLSE2Threshold float64

	// EnsureSameSourceLayerInNLR is the same-source-layer option for
	// lifting. lifter.Lift does not read it: Lift builds each activation
	// layer from a single constraint over its own gather layer, so every
	// activation layer has one source whatever the setting.
	EnsureSameSourceLayerInNLR bool

	// Debug enables the layer package's invariant checks, run once per
	// layer in every propagation sweep.
	Debug bool
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithEpsilon overrides the comparison tolerance. Non-positive values
// are ignored (a zero or negative epsilon would make every tightening
// test vacuously true or false).
func WithEpsilon(eps float64) Option {
	return func(c *Config) {
		if eps > 0 {
			c.Epsilon = eps
		}
	}
}

// WithIterationBudget overrides the propagation sweep budget. Values
// less than 1 are ignored.
func WithIterationBudget(n int) Option {
	return func(c *Config) {
		if n >= 1 {
			c.IterationBudget = n
		}
	}
}

// WithSymbolicBoundTightening toggles the symbolic propagation pass.
func WithSymbolicBoundTightening(on bool) Option {
	return func(c *Config) { c.SymbolicBoundTightening = on }
}

// WithSoftmaxEnvelope sets the recorded softmax relaxation family.
func WithSoftmaxEnvelope(env SoftmaxEnvelope) Option {
	return func(c *Config) { c.SoftmaxEnvelope = env }
}

// WithSoftmaxLSE2Threshold overrides the LSE2 tie-break constant.
func WithSoftmaxLSE2Threshold(t float64) Option {
	return func(c *Config) { c.SoftmaxLSE2Threshold = t }
}

// WithEnsureSameSourceLayerInNLR sets the same-source-layer option
// (not read by lifter.Lift; see the Config field).
func WithEnsureSameSourceLayerInNLR(on bool) Option {
	return func(c *Config) { c.EnsureSameSourceLayerInNLR = on }
}

// WithDebug toggles invariant checking.
func WithDebug(on bool) Option {
	return func(c *Config) { c.Debug = on }
}

// Default returns the baseline configuration, with symbolic bound
// tightening and the same-source-layer option both set to true.
func Default() Config {
	return Config{
		Epsilon:                    DefaultEpsilon,
		IterationBudget:            DefaultIterationBudget,
		SymbolicBoundTightening:    true,
		SoftmaxEnvelope:            EnvelopeLSE,
		SoftmaxLSE2Threshold:       DefaultSoftmaxLSE2Threshold,
		EnsureSameSourceLayerInNLR: true,
		Debug:                      false,
	}
}

// New builds a Config starting from Default() and applying options in
// order; later options override earlier ones.
func New(opts ...Option) Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
