// Package main implements a load simulation for the lending service.
//
// The simulation stocks a catalog, then drives checkouts, returns, payments and loan queries
// from a bounded worker pool at a configurable request rate. A manual clock is advanced while
// it runs so that some loans come back late and go through the penalty payment path.
//
// Scenario generation is state aware: only loans the simulation knows to be active are returned,
// only loans pending payment are paid, and a loan is reserved by one worker at a time.
// Checkouts still compete for the last copies of an item, which exercises the no-copies rejection
// under contention.
//
// When the run ends the inventory of every item is checked: the available copies must equal
// the total copies minus the loans the simulation holds open.
//
// Storage is selected the same way as for the libracore server (STORAGE_ENGINE, ADAPTER_TYPE,
// DATABASE_URL), so the simulation can run against memory or any postgres adapter.
package main
