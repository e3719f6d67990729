// Package returnloan implements the Return Loan use case.
//
// Returning an active loan evaluates the penalty policy at the return instant and freezes the result.
// Without a penalty the loan is closed and its copy goes back to the shelf in the same transaction.
// With a penalty the loan waits in pending_payment and keeps holding its copy until the payment is processed.
package returnloan
