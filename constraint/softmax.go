package constraint

import (
	"strconv"
	"strings"

	"github.com/katalvlaran/nlreason/config"
	"github.com/katalvlaran/nlreason/query"
)

// Softmax enforces f_i = exp(b_i) / sum_j exp(b_j) over a fixed group
// of inputs and matching outputs. Smooth-nonlinear and never case-
// splits; package layer computes the interval bounds and a
// tangent-at-center symbolic lower envelope from the interval each
// input currently holds — this constraint only carries group
// membership and the chosen envelope knob (config.SoftmaxEnvelope),
// which no bound computation reads: LSE and ER give the same bounds.
type Softmax struct {
	inputs, outputs []int
	envelope        config.SoftmaxEnvelope
	eliminated      map[int]float64
}

func NewSoftmax(inputs, outputs []int, envelope config.SoftmaxEnvelope) *Softmax {
	return &Softmax{
		inputs:     append([]int(nil), inputs...),
		outputs:    append([]int(nil), outputs...),
		envelope:   envelope,
		eliminated: make(map[int]float64),
	}
}

func (c *Softmax) Kind() query.Kind { return query.KindSoftmax }

func (c *Softmax) Envelope() config.SoftmaxEnvelope { return c.envelope }

func (c *Softmax) Inputs() []int  { return append([]int(nil), c.inputs...) }
func (c *Softmax) Outputs() []int { return append([]int(nil), c.outputs...) }

func (c *Softmax) ParticipatingVariables() []int {
	return append(append([]int(nil), c.inputs...), c.outputs...)
}

func (c *Softmax) ParticipatesIn(v int) bool { return containsVar(c.ParticipatingVariables(), v) }

func (c *Softmax) Duplicate() query.Constraint {
	cp := NewSoftmax(c.inputs, c.outputs, c.envelope)
	for k, v := range c.eliminated {
		cp.eliminated[k] = v
	}
	return cp
}

func (c *Softmax) Serialize() string {
	ins := make([]string, len(c.inputs))
	for i, v := range c.inputs {
		ins[i] = strconv.Itoa(v)
	}
	outs := make([]string, len(c.outputs))
	for i, v := range c.outputs {
		outs[i] = strconv.Itoa(v)
	}
	return "softmax," + strings.Join(ins, ";") + "," + strings.Join(outs, ";") + "," + c.envelope.String()
}

func (c *Softmax) NotifyLower(int, float64) {}
func (c *Softmax) NotifyUpper(int, float64) {}

func (c *Softmax) EntailedTightenings(*[]query.Tightening) {}

func (c *Softmax) AllCases() []query.Phase          { return nil }
func (c *Softmax) CaseSplit(query.Phase) query.PieceSplit { return query.PieceSplit{} }

func (c *Softmax) TransformToUseAux(*query.Query) {}

func (c *Softmax) CostTerm(query.Phase, *query.LinearExpr) {}

func (c *Softmax) EliminateVariable(v int, value float64) { c.eliminated[v] = value }

func (c *Softmax) IsObsolete() bool {
	for _, v := range c.ParticipatingVariables() {
		if _, ok := c.eliminated[v]; !ok {
			return false
		}
	}
	return true
}

func (c *Softmax) RestoreState(other query.Constraint) {
	o := other.(*Softmax)
	c.inputs = append([]int(nil), o.inputs...)
	c.outputs = append([]int(nil), o.outputs...)
	c.envelope = o.envelope
	c.eliminated = make(map[int]float64, len(o.eliminated))
	for k, v := range o.eliminated {
		c.eliminated[k] = v
	}
}

func (c *Softmax) Phase() query.Phase { return query.PhaseUnfixed }
