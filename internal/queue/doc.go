// Package queue persists analysis jobs in SQLite and provides the status
// driven dispatch primitives the workflow manager builds on. Jobs move
// through a fixed lifecycle of stage entry and in-flight statuses; claims
// are compare-and-swap status transitions so multiple workers can poll the
// same store safely.
package queue
