// Package daemon coordinates the long-running clipcheck process.
//
// It wires configuration, queue storage, the browser session pool, the
// workflow manager, and the HTTP API into a single lifecycle with flock-based
// locking to prevent multiple instances. The browser pool is warmed before
// workers start so no job is claimed against a browser that cannot serve it.
//
// Keep orchestration logic here: individual pipeline stages live in their
// respective packages while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
