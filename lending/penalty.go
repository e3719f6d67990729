package lending

import (
	"time"
)

const (
	defaultBaseFee    = Amount(1000)
	defaultPerDiemFee = Amount(50)
	day               = 24 * time.Hour
)

// PenaltyPolicy maps a due instant and an evaluation instant to an overdue penalty.
type PenaltyPolicy struct {
	BaseFee    Amount
	PerDiemFee Amount
}

// DefaultPenaltyPolicy charges 10.00 once the loan is overdue plus 0.50 per full overdue day.
func DefaultPenaltyPolicy() PenaltyPolicy {
	return PenaltyPolicy{
		BaseFee:    defaultBaseFee,
		PerDiemFee: defaultPerDiemFee,
	}
}

// Compute returns the penalty for a loan due at dueAt, evaluated at evaluatedAt.
//
//	evaluatedAt <  dueAt: 0
//	evaluatedAt >= dueAt: BaseFee + PerDiemFee * floor((evaluatedAt - dueAt) / 24h)
//
// It is a pure function and non-decreasing in evaluatedAt.
func (p PenaltyPolicy) Compute(dueAt, evaluatedAt time.Time) Amount {
	if evaluatedAt.Before(dueAt) {
		return 0
	}

	overdueDays := int64(evaluatedAt.Sub(dueAt) / day)

	return p.BaseFee + p.PerDiemFee*Amount(overdueDays)
}
