// Package constraint implements the piecewise-linear and smooth-
// nonlinear relations a query.Query carries between its linear
// variables. See common.go for the shared phase-transition guard every
// concrete type embeds.
package constraint
