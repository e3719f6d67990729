package checkoutitem

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const commandType = "CheckoutItem"

// Command represents the intent to borrow a copy of an item until DueAt.
type Command struct {
	ItemID     uuid.UUID
	BorrowerID string
	DueAt      time.Time
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(itemID uuid.UUID, borrowerID string, dueAt time.Time) Command {
	return Command{
		ItemID:     itemID,
		BorrowerID: strings.TrimSpace(borrowerID),
		DueAt:      dueAt.UTC(),
	}
}

// CommandType returns the command type.
func (c Command) CommandType() string {
	return commandType
}

// Result carries the id of the created loan.
type Result struct {
	LoanID uuid.UUID
}
