package memengine

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/lending"
)

type catalog struct {
	tx *tx
}

// AddItem makes the item visible immediately but keeps it locked until the transaction ends.
func (c catalog) AddItem(_ context.Context, item lending.Item) error {
	if err := lending.ValidateTitle(item.Title); err != nil {
		return err
	}

	if item.TotalCopies < 0 || item.AvailableCopies < 0 || item.AvailableCopies > item.TotalCopies {
		return lending.ErrInvalidCopyCount
	}

	rec := &itemRecord{item: item}
	rec.mu.Lock()

	s := c.tx.s
	s.mu.Lock()

	if _, taken := s.titles[item.Title]; taken {
		s.mu.Unlock()
		rec.mu.Unlock()

		return lending.ErrDuplicateTitle
	}

	if _, exists := s.items[item.ID]; exists {
		s.mu.Unlock()
		rec.mu.Unlock()

		return errors.Join(lending.ErrExecutingFailed, errDuplicateItemID)
	}

	s.items[item.ID] = rec
	s.titles[item.Title] = item.ID
	s.mu.Unlock()

	c.tx.held[item.ID] = rec
	c.tx.undo = append(c.tx.undo, func() {
		s.mu.Lock()
		delete(s.items, item.ID)
		delete(s.titles, item.Title)
		s.mu.Unlock()
		rec.removed = true
	})

	return nil
}

func (c catalog) GetItem(_ context.Context, itemID uuid.UUID) (lending.Item, error) {
	return c.tx.readItem(itemID)
}

func (c catalog) ListItems(_ context.Context) ([]lending.Item, error) {
	return c.filter(func(lending.Item) bool { return true }), nil
}

// SearchItems matches a case-insensitive substring of the selected field. A blank term matches everything.
func (c catalog) SearchItems(_ context.Context, field lending.SearchField, term string) ([]lending.Item, error) {
	term = strings.ToLower(strings.TrimSpace(term))

	return c.filter(func(item lending.Item) bool {
		var value string

		switch field {
		case lending.SearchByAuthor:
			value = item.Author
		case lending.SearchByGenre:
			value = item.Genre
		default:
			value = item.Title
		}

		return strings.Contains(strings.ToLower(value), term)
	}), nil
}

func (c catalog) SetTotalCopies(_ context.Context, itemID uuid.UUID, totalCopies int) (lending.Item, error) {
	if totalCopies < 0 {
		return lending.Item{}, lending.ErrInvalidCopyCount
	}

	rec, err := c.tx.lockItem(itemID)
	if err != nil {
		return lending.Item{}, err
	}

	newAvailable := rec.item.AvailableCopies + totalCopies - rec.item.TotalCopies
	if newAvailable < 0 {
		return lending.Item{}, lending.ErrCopiesOnLoan
	}

	previous := rec.item
	rec.item.TotalCopies = totalCopies
	rec.item.AvailableCopies = newAvailable
	c.tx.undo = append(c.tx.undo, func() {
		rec.item.TotalCopies = previous.TotalCopies
		rec.item.AvailableCopies = previous.AvailableCopies
	})

	return rec.item, nil
}

// RemoveItem is applied at commit, the title stays taken until then.
func (c catalog) RemoveItem(_ context.Context, itemID uuid.UUID) error {
	rec, err := c.tx.lockItem(itemID)
	if err != nil {
		return err
	}

	for _, loan := range c.tx.loanInserts {
		if loan.ItemID == itemID {
			return lending.ErrItemHasLoans
		}
	}

	s := c.tx.s
	s.mu.RLock()
	for _, loan := range s.loans {
		if loan.ItemID == itemID {
			s.mu.RUnlock()
			return lending.ErrItemHasLoans
		}
	}
	s.mu.RUnlock()

	c.tx.itemRemovals[itemID] = rec

	return nil
}

func (c catalog) filter(keep func(lending.Item) bool) []lending.Item {
	result := make([]lending.Item, 0)

	for _, id := range c.tx.s.itemIDs() {
		item, err := c.tx.readItem(id)
		if err != nil {
			continue
		}

		if keep(item) {
			result = append(result, item)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Title < result[j].Title
	})

	return result
}
