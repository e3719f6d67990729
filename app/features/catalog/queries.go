package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

const (
	getItemQueryType   = "GetItem"
	listItemsQueryType = "ListItems"
)

// GetItemQuery asks for a single item.
type GetItemQuery struct {
	ItemID uuid.UUID
}

// BuildGetItemQuery creates a new GetItemQuery.
func BuildGetItemQuery(itemID uuid.UUID) GetItemQuery {
	return GetItemQuery{ItemID: itemID}
}

func (q GetItemQuery) QueryType() string {
	return getItemQueryType
}

// ListItemsQuery asks for all items, or for those whose Field contains Term when Term is not blank.
type ListItemsQuery struct {
	Field lending.SearchField
	Term  string
}

// BuildListItemsQuery creates a new ListItemsQuery. Unknown fields search by title.
func BuildListItemsQuery(field, term string) ListItemsQuery {
	return ListItemsQuery{
		Field: lending.ParseSearchField(field),
		Term:  strings.TrimSpace(term),
	}
}

func (q ListItemsQuery) QueryType() string {
	return listItemsQueryType
}

// IsSearch reports whether the query filters by a term.
func (q ListItemsQuery) IsSearch() bool {
	return q.Term != ""
}
