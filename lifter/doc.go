// Package lifter turns a flat query.Query into a layered
// reasoner.Reasoner by greedy topological peeling, reconstructing the
// network-level-reasoner structure a layer DAG needs from equations
// and constraints alone.
package lifter
