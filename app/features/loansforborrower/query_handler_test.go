package loansforborrower_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrMariodude/LibraCore/app/features/loansforborrower"
	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/memengine"
	"github.com/MrMariodude/LibraCore/testutil/helper"
)

func Test_QueryHandler_Handle(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, err := memengine.NewStore()
	require.NoError(t, err)
	handler := loansforborrower.NewQueryHandler(store.Loans(), lending.NewManualClock(fakeClock.Add(10*24*time.Hour)))

	// arrange
	first := helper.GivenItemInCatalog(ctx, t, store.Catalog(), 1)
	second := helper.GivenItemInCatalog(ctx, t, store.Catalog(), 1)
	early := helper.GivenActiveLoan(ctx, t, store, first.ID, "reader-1", fakeClock)
	late := helper.GivenActiveLoan(ctx, t, store, second.ID, "reader-1", fakeClock.Add(5*24*time.Hour))
	helper.GivenActiveLoan(ctx, t, store, helper.GivenItemInCatalog(ctx, t, store.Catalog(), 1).ID, "reader-2", fakeClock)

	t.Run("lists the loans of the borrower", func(t *testing.T) {
		// act
		views, err := handler.Handle(ctx, loansforborrower.BuildQuery("reader-1"))

		// assert
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, early.ID, views[0].ID)
		assert.True(t, views[0].Overdue)
		assert.Equal(t, "11.50", views[0].AccruedPenalty.String())
		assert.Equal(t, late.ID, views[1].ID)
		assert.False(t, views[1].Overdue)
	})

	t.Run("unknown borrower", func(t *testing.T) {
		// act
		views, err := handler.Handle(ctx, loansforborrower.BuildQuery("nobody"))

		// assert
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("blank borrower", func(t *testing.T) {
		// act
		views, err := handler.Handle(ctx, loansforborrower.BuildQuery("  "))

		// assert
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}
