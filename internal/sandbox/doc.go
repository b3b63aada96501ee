// Package sandbox defines the capability surface the runner needs from a
// remote sandbox provider, plus an in-memory mock used by tests.
//
// A provider creates sandboxes from an image or a snapshot, executes shell
// commands inside them, clones repositories, downloads files, captures
// snapshots and deletes sandboxes. Every call blocks until the provider has
// answered.
package sandbox
