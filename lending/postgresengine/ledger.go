package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/postgresengine/internal/adapters"
)

type ledger struct {
	s *Store
	q adapters.Queryer
}

// TryReserve decrements available_copies with a single conditional UPDATE.
// The row lock it takes is held until the surrounding transaction ends.
func (l ledger) TryReserve(ctx context.Context, itemID uuid.UUID) (err error) {
	observer, ctx := l.s.startTracing(ctx, spanNameTryReserve, map[string]string{spanAttrItemID: itemID.String()})
	defer func() { observer.finish(err) }()

	rowsAffected, err := l.s.exec(ctx, l.q, operationTryReserve, l.s.dialect.
		Update(tableItems).
		Set(goqu.Record{colAvailableCopies: goqu.L(colAvailableCopies + " - 1")}).
		Where(
			goqu.C(colID).Eq(itemID.String()),
			goqu.C(colAvailableCopies).Gt(0),
		))
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		l.s.recordReservation(ctx, statusReserved)
		return nil
	}

	found, err := l.s.itemExists(ctx, l.q, itemID.String())
	if err != nil {
		return err
	}

	if !found {
		l.s.recordReservation(ctx, statusNotFound)
		return lending.ErrItemNotFound
	}

	l.s.recordReservation(ctx, statusNoCopies)

	return lending.ErrNoCopiesAvailable
}

func (l ledger) Release(ctx context.Context, itemID uuid.UUID) (err error) {
	observer, ctx := l.s.startTracing(ctx, spanNameRelease, map[string]string{spanAttrItemID: itemID.String()})
	defer func() { observer.finish(err) }()

	rowsAffected, err := l.s.exec(ctx, l.q, operationRelease, l.s.dialect.
		Update(tableItems).
		Set(goqu.Record{colAvailableCopies: goqu.L(colAvailableCopies + " + 1")}).
		Where(
			goqu.C(colID).Eq(itemID.String()),
			goqu.C(colAvailableCopies).Lt(goqu.C(colTotalCopies)),
		))
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		l.s.recordRelease(ctx, itemID.String(), statusReleased)
		return nil
	}

	found, err := l.s.itemExists(ctx, l.q, itemID.String())
	if err != nil {
		return err
	}

	if !found {
		return lending.ErrItemNotFound
	}

	l.s.recordRelease(ctx, itemID.String(), statusClamped)

	return lending.OverRelease()
}
