// Package nlreason decides satisfiability of a mixed linear /
// piecewise-linear / smooth-nonlinear constraint system derived from a
// feed-forward neural network and a user-supplied property.
//
// A query combines linear equalities/inequalities over real variables,
// explicit variable bounds, and non-linear constraints (ReLU, LeakyReLU,
// Sign, AbsoluteValue, Max, Round, Sigmoid, Softmax, Bilinear). Given a
// query, the engine answers SAT (returning a satisfying assignment on
// the network's inputs and outputs) or UNSAT, subject to an optional
// deadline.
//
// The module is organized bottom-up:
//
//	sparserow/   — unsorted-array and linked-list sparse vector rows
//	sparsematrix/ — row-major sparse matrix built on sparserow
//	query/        — the canonical feasibility problem (C2)
//	constraint/   — the polymorphic non-linear constraint protocol (C3)
//	layer/        — the typed DAG layer model and its per-kind analyses (C4)
//	reasoner/     — owns the layer graph, drives propagation sweeps (C5)
//	lifter/       — reconstructs the layer graph from a flat query (C6)
//	wire/         — query save/load and assignment export (persisted format)
//	vnnlib/       — restricted S-expression property parser
//	config/       — process-wide immutable configuration
//	nlerrors/     — error kinds shared across package boundaries
//	cmd/nlquery/  — a thin driver exercising the core end-to-end
//
// See DESIGN.md at the repository root for the grounding behind each
// package's design choices.
package nlreason
