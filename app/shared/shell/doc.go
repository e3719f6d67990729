// Package shell contains the infrastructure side shared by the lending use cases:
// command and query contracts, optimistic concurrency retry, handler results and
// the observability helpers used by the command and query wrappers.
package shell
