// Package testutil provides shared helpers for tests: a thread-safe log
// buffer, small module fixtures and a harness that builds an App from
// HCL files.
package testutil
