package memengine

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

type ledger struct {
	tx *tx
}

// TryReserve decrements AvailableCopies while holding the item lock until the transaction ends.
func (l ledger) TryReserve(ctx context.Context, itemID uuid.UUID) error {
	rec, err := l.tx.lockItem(itemID)
	if err != nil {
		l.tx.s.recordReservation(ctx, statusNotFound)
		return err
	}

	if rec.item.AvailableCopies <= 0 {
		l.tx.s.recordReservation(ctx, statusNoCopies)
		return lending.ErrNoCopiesAvailable
	}

	rec.item.AvailableCopies--
	l.tx.undo = append(l.tx.undo, func() { rec.item.AvailableCopies++ })
	l.tx.s.recordReservation(ctx, statusReserved)

	return nil
}

func (l ledger) Release(ctx context.Context, itemID uuid.UUID) error {
	rec, err := l.tx.lockItem(itemID)
	if err != nil {
		return err
	}

	if rec.item.AvailableCopies >= rec.item.TotalCopies {
		l.tx.s.recordRelease(ctx, itemID, statusClamped)
		return lending.OverRelease()
	}

	rec.item.AvailableCopies++
	l.tx.undo = append(l.tx.undo, func() { rec.item.AvailableCopies-- })
	l.tx.s.recordRelease(ctx, itemID, statusReleased)

	return nil
}
