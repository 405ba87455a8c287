package constraint_test

import (
	"testing"

	"github.com/katalvlaran/nlreason/constraint"
	"github.com/katalvlaran/nlreason/query"
	"github.com/stretchr/testify/require"
)

func TestReluNotifyLowerFixesActivePhase(t *testing.T) {
	c := constraint.NewRelu(0, 1)
	require.Equal(t, query.PhaseUnfixed, c.Phase())

	c.NotifyLower(0, 0)
	require.Equal(t, constraint.PhaseReluActive, c.Phase())
}

func TestReluNotifyUpperFixesInactivePhase(t *testing.T) {
	c := constraint.NewRelu(0, 1)
	c.NotifyUpper(0, -1)
	require.Equal(t, constraint.PhaseReluInactive, c.Phase())
}

func TestReluSetPhaseAllowsSwitchBetweenFixedPhases(t *testing.T) {
	c := constraint.NewRelu(0, 1)
	c.NotifyLower(0, 0)

	require.NotPanics(t, func() {
		c.NotifyUpper(0, -1) // active -> inactive moves between fixed phases; only a move to unfixed panics
	})
}

func TestReluEntailedTighteningsActive(t *testing.T) {
	c := constraint.NewRelu(0, 1)
	c.NotifyLower(0, 0)

	var buf []query.Tightening
	c.EntailedTightenings(&buf)
	require.Len(t, buf, 1)
	require.Equal(t, 0, buf[0].Variable)
}

func TestReluCaseSplitActiveProducesEqualityEquation(t *testing.T) {
	c := constraint.NewRelu(0, 1)
	split := c.CaseSplit(constraint.PhaseReluActive)
	require.Len(t, split.Equations, 1)
	require.Equal(t, query.EquationEQ, split.Equations[0].Type)
}

func TestReluTransformToUseAuxAddsAuxVariableAndEquation(t *testing.T) {
	c := constraint.NewRelu(0, 1)
	q := query.New()
	q.SetNumVariables(2)

	c.TransformToUseAux(q)
	require.Len(t, q.Equations(), 1)

	c.TransformToUseAux(q) // idempotent: second call adds nothing
	require.Len(t, q.Equations(), 1)
}

func TestReluEliminateVariableMarksObsoleteOnlyWhenBothGone(t *testing.T) {
	c := constraint.NewRelu(0, 1)
	require.False(t, c.IsObsolete())

	c.EliminateVariable(0, 3)
	require.False(t, c.IsObsolete())

	c.EliminateVariable(1, 3)
	require.True(t, c.IsObsolete())
}

func TestReluDuplicateIsIndependent(t *testing.T) {
	c := constraint.NewRelu(0, 1)
	c.NotifyLower(0, 0)

	dup := c.Duplicate().(*constraint.Relu)
	require.Equal(t, c.Phase(), dup.Phase())

	dup.EliminateVariable(0, 1)
	require.False(t, c.IsObsolete()) // mutating the duplicate must not affect the original
}

func TestReluRestoreStateBypassesMonotoneGuard(t *testing.T) {
	fixed := constraint.NewRelu(0, 1)
	fixed.NotifyLower(0, 0)

	target := constraint.NewRelu(0, 1)
	target.NotifyUpper(0, -1) // fixed inactive

	require.NotPanics(t, func() { target.RestoreState(fixed) })
	require.Equal(t, constraint.PhaseReluActive, target.Phase())
}
