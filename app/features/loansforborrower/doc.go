// Package loansforborrower implements the List Loans For Borrower query.
package loansforborrower
