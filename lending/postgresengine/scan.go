package postgresengine

import (
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/postgresengine/internal/adapters"
)

// uuid columns are read as text so that every driver scans them the same way.
func textColumn(name string) any {
	return goqu.Cast(goqu.C(name), castText).As(name)
}

func itemColumns() []any {
	return []any{
		textColumn(colID),
		goqu.C(colTitle),
		goqu.C(colAuthor),
		goqu.C(colGenre),
		goqu.C(colPublishedAt),
		goqu.C(colTotalCopies),
		goqu.C(colAvailableCopies),
	}
}

func loanColumns() []any {
	return []any{
		textColumn(colID),
		textColumn(colItemID),
		goqu.C(colBorrowerID),
		goqu.C(colCheckoutAt),
		goqu.C(colDueAt),
		goqu.C(colState),
		goqu.C(colPenaltySnapshot),
		goqu.C(colClosedAt),
		goqu.C(colVersion),
	}
}

func scanItem(rows adapters.DBRows) (lending.Item, error) {
	var (
		item        lending.Item
		id          string
		publishedAt sql.NullTime
	)

	err := rows.Scan(&id, &item.Title, &item.Author, &item.Genre, &publishedAt, &item.TotalCopies, &item.AvailableCopies)
	if err != nil {
		return lending.Item{}, errors.Join(lending.ErrScanningDBRowFailed, err)
	}

	if item.ID, err = uuid.Parse(id); err != nil {
		return lending.Item{}, errors.Join(lending.ErrScanningDBRowFailed, err)
	}

	if publishedAt.Valid {
		item.PublishedAt = publishedAt.Time.UTC()
	}

	return item, nil
}

func scanLoan(rows adapters.DBRows) (lending.Loan, error) {
	var (
		loan       lending.Loan
		id, itemID string
		state      string
		penalty    sql.NullInt64
		closedAt   sql.NullTime
		version    int64
	)

	err := rows.Scan(&id, &itemID, &loan.BorrowerID, &loan.CheckoutAt, &loan.DueAt, &state, &penalty, &closedAt, &version)
	if err != nil {
		return lending.Loan{}, errors.Join(lending.ErrScanningDBRowFailed, err)
	}

	if loan.ID, err = uuid.Parse(id); err != nil {
		return lending.Loan{}, errors.Join(lending.ErrScanningDBRowFailed, err)
	}

	if loan.ItemID, err = uuid.Parse(itemID); err != nil {
		return lending.Loan{}, errors.Join(lending.ErrScanningDBRowFailed, err)
	}

	if loan.State, err = lending.ParseLoanState(state); err != nil {
		return lending.Loan{}, errors.Join(lending.ErrScanningDBRowFailed, err)
	}

	loan.CheckoutAt = loan.CheckoutAt.UTC()
	loan.DueAt = loan.DueAt.UTC()
	loan.Version = uint(version)

	if penalty.Valid {
		snapshot := lending.Cents(penalty.Int64)
		loan.PenaltySnapshot = &snapshot
	}

	if closedAt.Valid {
		closed := closedAt.Time.UTC()
		loan.ClosedAt = &closed
	}

	return loan, nil
}

func nullableCents(amount *lending.Amount) any {
	if amount == nil {
		return nil
	}

	return amount.Cents()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return t.UTC()
}

func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}

	return t.UTC()
}
