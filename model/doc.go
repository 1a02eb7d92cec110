// Package model inspects bun models into a fixed Meta (table, ordered
// columns, single primary key) and keeps a registry of the models in use.
package model
