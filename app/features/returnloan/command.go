package returnloan

import (
	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

const commandType = "ReturnLoan"

// Command represents the intent to hand back the copy of a loan.
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

// Result reports the state the loan ended up in and the frozen penalty.
type Result struct {
	LoanID     uuid.UUID
	State      lending.LoanState
	PenaltyDue lending.Amount
}
