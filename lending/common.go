package lending

import (
	"errors"
)

// Validation errors are returned before any state change.
var (
	ErrInvalidDueDate   = errors.New("due date must be after the checkout instant")
	ErrInvalidBorrower  = errors.New("borrower id must not be empty")
	ErrInvalidTitle     = errors.New("title must not be empty and at most 150 characters")
	ErrInvalidAuthor    = errors.New("author must not be empty and at most 100 characters")
	ErrInvalidCopyCount = errors.New("copy count must not be negative")
)

// ErrNoCopiesAvailable is an expected business outcome under contention, not a fault.
var ErrNoCopiesAvailable = errors.New("no copies available for this item")

// State conflict errors signal a stale or misused reference.
var (
	ErrAlreadyReturned       = errors.New("loan is already returned")
	ErrAlreadyPendingPayment = errors.New("loan is already pending payment")
	ErrNotPendingPayment     = errors.New("loan is not pending payment")
	ErrDuplicateTitle        = errors.New("an item with this title already exists")
	ErrItemHasLoans          = errors.New("item is referenced by loans and cannot be removed")
	ErrCopiesOnLoan          = errors.New("total copies must not drop below the copies currently on loan")
)

// Not found errors.
var (
	ErrItemNotFound = errors.New("item not found")
	ErrLoanNotFound = errors.New("loan not found")
)

// Infrastructure errors.
var (
	ErrConcurrencyConflict       = errors.New("concurrency error, no rows were affected")
	ErrReleaseExceedsTotal       = errors.New("release would exceed the total number of copies")
	ErrNilDatabaseConnection     = errors.New("database connection must not be nil")
	ErrBuildingQueryFailed       = errors.New("building the query failed")
	ErrQueryingFailed            = errors.New("querying the database failed")
	ErrExecutingFailed           = errors.New("executing the statement failed")
	ErrScanningDBRowFailed       = errors.New("scanning the database row failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
	ErrTransactionFailed         = errors.New("transaction failed")
)

var rejections = []error{
	ErrInvalidDueDate,
	ErrInvalidBorrower,
	ErrInvalidTitle,
	ErrInvalidAuthor,
	ErrInvalidCopyCount,
	ErrNoCopiesAvailable,
	ErrAlreadyReturned,
	ErrAlreadyPendingPayment,
	ErrNotPendingPayment,
	ErrDuplicateTitle,
	ErrItemHasLoans,
	ErrCopiesOnLoan,
	ErrItemNotFound,
	ErrLoanNotFound,
}

// IsRejection reports whether err is an expected business outcome rather than an infrastructure failure.
func IsRejection(err error) bool {
	for _, rejection := range rejections {
		if errors.Is(err, rejection) {
			return true
		}
	}

	return false
}
