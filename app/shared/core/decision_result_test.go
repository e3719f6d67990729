package core_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrMariodude/LibraCore/app/shared/core"
	"github.com/MrMariodude/LibraCore/lending"
)

func Test_SuccessDecision(t *testing.T) {
	loan := lending.Loan{ID: uuid.New(), State: lending.LoanStateReturned}

	result := core.SuccessDecision(loan, true)

	assert.True(t, result.HasLoanToPersist())
	assert.NoError(t, result.HasError())
	assert.True(t, result.ReleaseCopy)
	assert.Equal(t, loan, result.Loan)
}

func Test_ErrorDecision(t *testing.T) {
	result := core.ErrorDecision(lending.ErrAlreadyReturned)

	assert.False(t, result.HasLoanToPersist())
	assert.ErrorIs(t, result.HasError(), lending.ErrAlreadyReturned)
	assert.False(t, result.ReleaseCopy)
}
