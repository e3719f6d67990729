package processpayment

import (
	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

const commandType = "ProcessPayment"

// Command represents the intent to settle the penalty of a loan.
type Command struct {
	LoanID uuid.UUID
}

// BuildCommand creates a new Command.
func BuildCommand(loanID uuid.UUID) Command {
	return Command{LoanID: loanID}
}

// CommandType returns the command type.
func (c Command) CommandType() string {
	return commandType
}

// Result reports the settled amount.
type Result struct {
	LoanID     uuid.UUID
	State      lending.LoanState
	AmountPaid lending.Amount
}
