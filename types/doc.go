// Package types holds the values shared across crudal packages: error kinds
// and pagination envelopes.
package types
