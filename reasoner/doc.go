// Package reasoner sweeps a layer.Layer DAG to tighten a query.Query's
// variable bounds. See reasoner.go for Reasoner and Propagate.
package reasoner
