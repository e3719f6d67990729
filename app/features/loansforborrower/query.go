package loansforborrower

import "strings"

const queryType = "LoansForBorrower"

// Query asks for all loans of one borrower, outstanding and closed.
type Query struct {
	BorrowerID string
}

// BuildQuery creates a new Query.
func BuildQuery(borrowerID string) Query {
	return Query{BorrowerID: strings.TrimSpace(borrowerID)}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
