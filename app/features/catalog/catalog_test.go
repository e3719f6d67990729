package catalog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrMariodude/LibraCore/app/features/catalog"
	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/memengine"
	"github.com/MrMariodude/LibraCore/testutil/helper"
)

func Test_AddItemHandler_Handle(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memengine.NewStore()
	require.NoError(t, err)
	handler := catalog.NewAddItemHandler(store.Catalog())
	published := time.Date(2021, 10, 1, 0, 0, 0, 0, time.UTC)

	t.Run("adds an item with all copies available", func(t *testing.T) {
		// act
		item, result, err := handler.Handle(ctx, catalog.BuildAddItemCommand(
			"  Domain-Driven Design  ", "Eric Evans", "Software", published, 3))

		// assert
		require.NoError(t, err)
		assert.False(t, result.Rejected)
		assert.Equal(t, "Domain-Driven Design", item.Title)
		assert.Equal(t, 3, item.AvailableCopies)

		stored, err := store.Catalog().GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item, stored)
	})

	t.Run("rejects a duplicate title", func(t *testing.T) {
		// act
		_, result, err := handler.Handle(ctx, catalog.BuildAddItemCommand("Domain-Driven Design", "Eric Evans", "", time.Time{}, 1))

		// assert
		assert.ErrorIs(t, err, lending.ErrDuplicateTitle)
		assert.True(t, result.Rejected)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		testCases := []struct {
			name   string
			title  string
			author string
			copies int
			err    error
		}{
			{"blank title", "   ", "Martin Fowler", 1, lending.ErrInvalidTitle},
			{"title too long", strings.Repeat("x", lending.MaxTitleLength+1), "Martin Fowler", 1, lending.ErrInvalidTitle},
			{"blank author", "Refactoring", "   ", 1, lending.ErrInvalidAuthor},
			{"author too long", "Refactoring", strings.Repeat("x", lending.MaxAuthorLength+1), 1, lending.ErrInvalidAuthor},
			{"negative copies", "Refactoring", "Martin Fowler", -1, lending.ErrInvalidCopyCount},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				// act
				_, result, err := handler.Handle(ctx, catalog.BuildAddItemCommand(tc.title, tc.author, "", time.Time{}, tc.copies))

				// assert
				assert.ErrorIs(t, err, tc.err)
				assert.True(t, result.Rejected)
			})
		}
	})
}

func Test_SetTotalCopiesHandler_Handle(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, err := memengine.NewStore()
	require.NoError(t, err)
	handler := catalog.NewSetTotalCopiesHandler(store.Catalog())

	// arrange
	item := helper.GivenItemInCatalog(ctx, t, store.Catalog(), 2)
	helper.GivenActiveLoan(ctx, t, store, item.ID, "reader-1", fakeClock)

	t.Run("shifts the available copies by the same delta", func(t *testing.T) {
		// act
		updated, _, err := handler.Handle(ctx, catalog.BuildSetTotalCopiesCommand(item.ID, 4))

		// assert
		require.NoError(t, err)
		assert.Equal(t, 4, updated.TotalCopies)
		assert.Equal(t, 3, updated.AvailableCopies)
	})

	t.Run("cannot drop below the copies on loan", func(t *testing.T) {
		// act
		_, result, err := handler.Handle(ctx, catalog.BuildSetTotalCopiesCommand(item.ID, 0))

		// assert
		assert.ErrorIs(t, err, lending.ErrCopiesOnLoan)
		assert.True(t, result.Rejected)
	})

	t.Run("rejects a negative total", func(t *testing.T) {
		// act
		_, _, err := handler.Handle(ctx, catalog.BuildSetTotalCopiesCommand(item.ID, -1))

		// assert
		assert.ErrorIs(t, err, lending.ErrInvalidCopyCount)
	})

	t.Run("unknown item", func(t *testing.T) {
		// act
		_, _, err := handler.Handle(ctx, catalog.BuildSetTotalCopiesCommand(helper.GivenUniqueID(t), 1))

		// assert
		assert.ErrorIs(t, err, lending.ErrItemNotFound)
	})
}

func Test_RemoveItemHandler_Handle(t *testing.T) {
	// setup
	ctx := context.Background()
	fakeClock := time.Unix(0, 0).UTC()
	store, err := memengine.NewStore()
	require.NoError(t, err)
	handler := catalog.NewRemoveItemHandler(store.Catalog())

	t.Run("removes an item never lent", func(t *testing.T) {
		// arrange
		item := helper.GivenItemInCatalog(ctx, t, store.Catalog(), 1)

		// act
		removedID, _, err := handler.Handle(ctx, catalog.BuildRemoveItemCommand(item.ID))

		// assert
		require.NoError(t, err)
		assert.Equal(t, item.ID, removedID)
		_, err = store.Catalog().GetItem(ctx, item.ID)
		assert.ErrorIs(t, err, lending.ErrItemNotFound)
	})

	t.Run("keeps an item referenced by loans", func(t *testing.T) {
		// arrange
		item := helper.GivenItemInCatalog(ctx, t, store.Catalog(), 1)
		helper.GivenActiveLoan(ctx, t, store, item.ID, "reader-1", fakeClock)

		// act
		_, result, err := handler.Handle(ctx, catalog.BuildRemoveItemCommand(item.ID))

		// assert
		assert.ErrorIs(t, err, lending.ErrItemHasLoans)
		assert.True(t, result.Rejected)
	})

	t.Run("unknown item", func(t *testing.T) {
		// act
		_, _, err := handler.Handle(ctx, catalog.BuildRemoveItemCommand(helper.GivenUniqueID(t)))

		// assert
		assert.ErrorIs(t, err, lending.ErrItemNotFound)
	})
}

func Test_QueryHandlers(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memengine.NewStore()
	require.NoError(t, err)
	add := catalog.NewAddItemHandler(store.Catalog())

	// arrange
	ddd, _, err := add.Handle(ctx, catalog.BuildAddItemCommand("Domain-Driven Design", "Eric Evans", "Software", time.Time{}, 1))
	require.NoError(t, err)
	_, _, err = add.Handle(ctx, catalog.BuildAddItemCommand("Dune", "Frank Herbert", "Science Fiction", time.Time{}, 2))
	require.NoError(t, err)

	t.Run("get item", func(t *testing.T) {
		// act
		item, err := catalog.NewGetItemHandler(store.Catalog()).Handle(ctx, catalog.BuildGetItemQuery(ddd.ID))

		// assert
		require.NoError(t, err)
		assert.Equal(t, ddd, item)
	})

	t.Run("list items ordered by title", func(t *testing.T) {
		// act
		items, err := catalog.NewListItemsHandler(store.Catalog()).Handle(ctx, catalog.BuildListItemsQuery("", ""))

		// assert
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Domain-Driven Design", items[0].Title)
		assert.Equal(t, "Dune", items[1].Title)
	})

	t.Run("search by field", func(t *testing.T) {
		testCases := []struct {
			field    string
			term     string
			expected string
		}{
			{"author", "herbert", "Dune"},
			{"genre", "SOFTWARE", "Domain-Driven Design"},
			{"unknown", "driven", "Domain-Driven Design"},
		}

		for _, tc := range testCases {
			t.Run(tc.field, func(t *testing.T) {
				// act
				items, err := catalog.NewListItemsHandler(store.Catalog()).Handle(ctx, catalog.BuildListItemsQuery(tc.field, tc.term))

				// assert
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.Equal(t, tc.expected, items[0].Title)
			})
		}
	})
}
