package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"

	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/postgresengine/internal/adapters"
)

var errDuplicateLoanID = errors.New("a loan with this id already exists")

type loans struct {
	s *Store
	q adapters.Queryer
}

func (r loans) Insert(ctx context.Context, loan lending.Loan) error {
	if !loan.State.IsValid() {
		return lending.ErrUnknownLoanState
	}

	version := loan.Version
	if version == 0 {
		version = lending.InitialLoanVersion
	}

	_, err := r.s.exec(ctx, r.q, operationInsertLoan, r.s.dialect.
		Insert(tableLoans).
		Rows(goqu.Record{
			colID:              loan.ID.String(),
			colItemID:          loan.ItemID.String(),
			colBorrowerID:      loan.BorrowerID,
			colCheckoutAt:      loan.CheckoutAt.UTC(),
			colDueAt:           loan.DueAt.UTC(),
			colState:           string(loan.State),
			colPenaltySnapshot: nullableCents(loan.PenaltySnapshot),
			colClosedAt:        nullableTime(loan.ClosedAt),
			colVersion:         version,
		}))
	if err != nil {
		switch code, _ := sqlStateOf(err); code {
		case pgerrcode.ForeignKeyViolation:
			return lending.ErrItemNotFound
		case pgerrcode.UniqueViolation:
			return errors.Join(lending.ErrExecutingFailed, errDuplicateLoanID)
		}

		return err
	}

	return nil
}

func (r loans) Get(ctx context.Context, loanID uuid.UUID) (lending.Loan, error) {
	rows, err := r.s.query(ctx, r.q, operationGetLoan, r.s.dialect.
		From(tableLoans).
		Select(loanColumns()...).
		Where(goqu.C(colID).Eq(loanID.String())))
	if err != nil {
		return lending.Loan{}, err
	}

	found, err := collect(ctx, r.s, rows, scanLoan)
	if err != nil {
		return lending.Loan{}, err
	}

	if len(found) == 0 {
		return lending.Loan{}, lending.ErrLoanNotFound
	}

	return found[0], nil
}

// Update writes the mutable loan fields if the stored version still equals expectedVersion.
func (r loans) Update(ctx context.Context, loan lending.Loan, expectedVersion uint) error {
	if !loan.State.IsValid() {
		return lending.ErrUnknownLoanState
	}

	rowsAffected, err := r.s.exec(ctx, r.q, operationUpdateLoan, r.s.dialect.
		Update(tableLoans).
		Set(goqu.Record{
			colDueAt:           loan.DueAt.UTC(),
			colState:           string(loan.State),
			colPenaltySnapshot: nullableCents(loan.PenaltySnapshot),
			colClosedAt:        nullableTime(loan.ClosedAt),
			colVersion:         expectedVersion + 1,
		}).
		Where(
			goqu.C(colID).Eq(loan.ID.String()),
			goqu.C(colVersion).Eq(expectedVersion),
		))
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	found, err := r.s.exists(ctx, r.q, operationLoanExists, r.s.dialect.
		From(tableLoans).
		Select(goqu.L("1")).
		Where(goqu.C(colID).Eq(loan.ID.String())).
		Limit(1))
	if err != nil {
		return err
	}

	if !found {
		return lending.ErrLoanNotFound
	}

	r.s.logInfo(ctx, logMsgConcurrencyConflict, logAttrOperation, operationUpdateLoan)
	r.s.recordConcurrencyConflict(ctx, operationUpdateLoan)

	return lending.ErrConcurrencyConflict
}

func (r loans) ListForBorrower(ctx context.Context, borrowerID string) ([]lending.Loan, error) {
	return r.list(ctx, operationListLoans, goqu.C(colBorrowerID).Eq(borrowerID))
}

func (r loans) ListOverdue(ctx context.Context, asOf time.Time) ([]lending.Loan, error) {
	return r.list(ctx, operationListOverdue, goqu.And(
		goqu.C(colState).Eq(string(lending.LoanStateActive)),
		goqu.C(colDueAt).Lte(asOf.UTC()),
	))
}

func (r loans) CountOutstanding(ctx context.Context, itemID uuid.UUID) (int, error) {
	rows, err := r.s.query(ctx, r.q, operationCountLoans, r.s.dialect.
		From(tableLoans).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.C(colItemID).Eq(itemID.String()),
			goqu.C(colState).In(string(lending.LoanStateActive), string(lending.LoanStatePendingPayment)),
		))
	if err != nil {
		return 0, err
	}

	counts, err := collect(ctx, r.s, rows, func(rows adapters.DBRows) (int64, error) {
		var count int64
		if err := rows.Scan(&count); err != nil {
			return 0, errors.Join(lending.ErrScanningDBRowFailed, err)
		}

		return count, nil
	})
	if err != nil {
		return 0, err
	}

	if len(counts) == 0 {
		return 0, nil
	}

	return int(counts[0]), nil
}

func (r loans) list(ctx context.Context, operation string, where exp.Expression) ([]lending.Loan, error) {
	rows, err := r.s.query(ctx, r.q, operation, r.s.dialect.
		From(tableLoans).
		Select(loanColumns()...).
		Where(where).
		Order(goqu.C(colCheckoutAt).Asc(), goqu.C(colID).Asc()))
	if err != nil {
		return nil, err
	}

	return collect(ctx, r.s, rows, scanLoan)
}
