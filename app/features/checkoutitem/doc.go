// Package checkoutitem implements the Checkout Item use case.
//
// A checkout reserves one copy of an item and creates an active loan for the borrower.
// Both happen in one storage transaction: either the copy is reserved and the loan exists,
// or neither. The due date must lie strictly after the checkout instant read from the clock.
//
// The business rules live in the pure Decide function, the CommandHandler does the I/O.
package checkoutitem
