// Package catalog implements the catalog management use cases.
//
// Commands: AddItem, SetTotalCopies, RemoveItem.
// Queries: GetItem, ListItems (optionally filtered by a search term).
//
// Copy counts only change through SetTotalCopies, which shifts the available copies by the same delta.
// The lending handlers own every other change of the available copies.
package catalog
