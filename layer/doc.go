// Package layer implements the typed bound-propagation DAG. See
// layer.go for the Layer type and kind.go for the eleven
// structural/activation kinds.
package layer
