// Package lendingservice is the entry point of the lending core.
//
// Service composes the feature handlers with the observability wrappers and exposes plain Go methods.
// Every method is safe for concurrent use. Business outcomes are returned as the sentinel errors of package lending.
package lendingservice
