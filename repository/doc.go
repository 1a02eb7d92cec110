// Package repository executes statements built by package statement against
// a Bun handle and materializes the results as model instances or column
// tuples.
package repository
