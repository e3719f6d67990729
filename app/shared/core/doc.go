// Package core holds the pure building blocks shared by the lending use cases.
//
// Nothing in here does I/O. Decide functions take the current loan state and a command
// and return a DecisionResult describing what the shell should persist.
package core
