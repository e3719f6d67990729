package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	addItemCommandType        = "AddItem"
	setTotalCopiesCommandType = "SetTotalCopies"
	removeItemCommandType     = "RemoveItem"
)

// AddItemCommand represents the intent to add a new work to the catalog.
type AddItemCommand struct {
	Title       string
	Author      string
	Genre       string
	PublishedAt time.Time
	TotalCopies int
}

// BuildAddItemCommand creates a new AddItemCommand.
func BuildAddItemCommand(title, author, genre string, publishedAt time.Time, totalCopies int) AddItemCommand {
	return AddItemCommand{
		Title:       strings.TrimSpace(title),
		Author:      author,
		Genre:       genre,
		PublishedAt: publishedAt,
		TotalCopies: totalCopies,
	}
}

func (c AddItemCommand) CommandType() string {
	return addItemCommandType
}

// SetTotalCopiesCommand represents the intent to recount the copies of an item.
type SetTotalCopiesCommand struct {
	ItemID      uuid.UUID
	TotalCopies int
}

// BuildSetTotalCopiesCommand creates a new SetTotalCopiesCommand.
func BuildSetTotalCopiesCommand(itemID uuid.UUID, totalCopies int) SetTotalCopiesCommand {
	return SetTotalCopiesCommand{ItemID: itemID, TotalCopies: totalCopies}
}

func (c SetTotalCopiesCommand) CommandType() string {
	return setTotalCopiesCommandType
}

// RemoveItemCommand represents the intent to delete an item that was never lent.
type RemoveItemCommand struct {
	ItemID uuid.UUID
}

// BuildRemoveItemCommand creates a new RemoveItemCommand.
func BuildRemoveItemCommand(itemID uuid.UUID) RemoveItemCommand {
	return RemoveItemCommand{ItemID: itemID}
}

func (c RemoveItemCommand) CommandType() string {
	return removeItemCommandType
}
