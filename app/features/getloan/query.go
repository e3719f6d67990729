package getloan

import (
	"github.com/google/uuid"
)

const queryType = "GetLoan"

// Query asks for a single loan.
type Query struct {
	LoanID uuid.UUID
}

// BuildQuery creates a new Query.
func BuildQuery(loanID uuid.UUID) Query {
	return Query{LoanID: loanID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
