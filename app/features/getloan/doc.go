// Package getloan implements the Get Loan query.
//
// The loan is returned as a lending.LoanView evaluated at the current clock instant.
package getloan
