// Package database opens and manages Bun connections to MySQL, PostgreSQL
// and SQLite, loads their configuration, creates tables for registered
// models and classifies driver errors.
package database
