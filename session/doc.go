// Package session provides the unit of work crud operations run in: a lazily
// started transaction with explicit commit, rollback and close, plus the
// factories that create ambient sessions for calls that bring none.
package session
