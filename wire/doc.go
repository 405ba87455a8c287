// Package wire persists a query.Query to and from a line-oriented
// ASCII format, and exports a satisfying assignment in a companion
// format. Grounded on the original's InputQuery::saveQuery/
// InputQuery::loadQuery framing (a flat, self-describing
// counts-then-records text file) and, for per-kind constraint tag
// naming, on iancoleman/strcase as the conversion from each
// query.Kind's Go name to its wire tag.
package wire
