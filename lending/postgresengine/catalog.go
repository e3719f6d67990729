package postgresengine

import (
	"context"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"

	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/postgresengine/internal/adapters"
)

var errDuplicateItemID = errors.New("an item with this id already exists")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type catalog struct {
	s *Store
	q adapters.Queryer
}

func (c catalog) AddItem(ctx context.Context, item lending.Item) error {
	if err := lending.ValidateTitle(item.Title); err != nil {
		return err
	}

	if item.TotalCopies < 0 || item.AvailableCopies < 0 || item.AvailableCopies > item.TotalCopies {
		return lending.ErrInvalidCopyCount
	}

	_, err := c.s.exec(ctx, c.q, operationAddItem, c.s.dialect.
		Insert(tableItems).
		Rows(goqu.Record{
			colID:              item.ID.String(),
			colTitle:           item.Title,
			colAuthor:          item.Author,
			colGenre:           item.Genre,
			colPublishedAt:     nullableDate(item.PublishedAt),
			colTotalCopies:     item.TotalCopies,
			colAvailableCopies: item.AvailableCopies,
		}))
	if err != nil {
		code, constraint := sqlStateOf(err)

		switch {
		case code == pgerrcode.UniqueViolation && constraint == constraintItemsTitle:
			return lending.ErrDuplicateTitle
		case code == pgerrcode.UniqueViolation:
			return errors.Join(lending.ErrExecutingFailed, errDuplicateItemID)
		case code == pgerrcode.CheckViolation:
			return lending.ErrInvalidCopyCount
		}

		return err
	}

	return nil
}

func (c catalog) GetItem(ctx context.Context, itemID uuid.UUID) (lending.Item, error) {
	items, err := c.list(ctx, operationGetItem, goqu.C(colID).Eq(itemID.String()))
	if err != nil {
		return lending.Item{}, err
	}

	if len(items) == 0 {
		return lending.Item{}, lending.ErrItemNotFound
	}

	return items[0], nil
}

func (c catalog) ListItems(ctx context.Context) ([]lending.Item, error) {
	return c.list(ctx, operationListItems, nil)
}

// SearchItems matches a case-insensitive substring of the selected field. A blank term matches everything.
func (c catalog) SearchItems(ctx context.Context, field lending.SearchField, term string) ([]lending.Item, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return c.list(ctx, operationSearchItems, nil)
	}

	column := colTitle

	switch field {
	case lending.SearchByAuthor:
		column = colAuthor
	case lending.SearchByGenre:
		column = colGenre
	default:
	}

	return c.list(ctx, operationSearchItems, goqu.C(column).ILike("%"+likeEscaper.Replace(term)+"%"))
}

// SetTotalCopies shifts available_copies by the same delta as total_copies in one UPDATE.
func (c catalog) SetTotalCopies(ctx context.Context, itemID uuid.UUID, totalCopies int) (lending.Item, error) {
	if totalCopies < 0 {
		return lending.Item{}, lending.ErrInvalidCopyCount
	}

	rows, err := c.s.query(ctx, c.q, operationSetTotalCopies, c.s.dialect.
		Update(tableItems).
		Set(goqu.Record{
			colTotalCopies:     totalCopies,
			colAvailableCopies: goqu.L("available_copies + ? - total_copies", totalCopies),
		}).
		Where(
			goqu.C(colID).Eq(itemID.String()),
			goqu.L("available_copies + ? - total_copies >= 0", totalCopies),
		).
		Returning(itemColumns()...))
	if err != nil {
		return lending.Item{}, err
	}

	updated, err := collect(ctx, c.s, rows, scanItem)
	if err != nil {
		return lending.Item{}, err
	}

	if len(updated) > 0 {
		return updated[0], nil
	}

	found, err := c.s.itemExists(ctx, c.q, itemID.String())
	if err != nil {
		return lending.Item{}, err
	}

	if !found {
		return lending.Item{}, lending.ErrItemNotFound
	}

	return lending.Item{}, lending.ErrCopiesOnLoan
}

func (c catalog) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	rowsAffected, err := c.s.exec(ctx, c.q, operationRemoveItem, c.s.dialect.
		Delete(tableItems).
		Where(goqu.C(colID).Eq(itemID.String())))
	if err != nil {
		if code, _ := sqlStateOf(err); code == pgerrcode.ForeignKeyViolation {
			return lending.ErrItemHasLoans
		}

		return err
	}

	if rowsAffected == 0 {
		return lending.ErrItemNotFound
	}

	return nil
}

func (c catalog) list(ctx context.Context, operation string, where exp.Expression) ([]lending.Item, error) {
	ds := c.s.dialect.From(tableItems).Select(itemColumns()...)

	if where != nil {
		ds = ds.Where(where)
	}

	rows, err := c.s.query(ctx, c.q, operation, ds.Order(goqu.C(colTitle).Asc()))
	if err != nil {
		return nil, err
	}

	return collect(ctx, c.s, rows, scanItem)
}
