// Package statement builds immutable select, delete and update statements
// for a model from equality filters, and renders them onto bun queries.
// Nothing in this package touches a session or executes SQL.
package statement
