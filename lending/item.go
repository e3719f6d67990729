package lending

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum number of characters of an item title.
const MaxTitleLength = 150

// MaxAuthorLength is the maximum number of characters of an item author.
const MaxAuthorLength = 100

// Item is a catalog entry with a finite number of lendable copies.
type Item struct {
	ID              uuid.UUID
	Title           string
	Author          string
	Genre           string
	PublishedAt     time.Time // zero if unknown
	TotalCopies     int
	AvailableCopies int
}

// BuildItem creates a new Item with all copies available.
func BuildItem(
	id uuid.UUID,
	title string,
	author string,
	genre string,
	publishedAt time.Time,
	totalCopies int,
) (Item, error) {

	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if err := ValidateTitle(title); err != nil {
		return Item{}, err
	}

	if err := ValidateAuthor(author); err != nil {
		return Item{}, err
	}

	if totalCopies < 0 {
		return Item{}, ErrInvalidCopyCount
	}

	return Item{
		ID:              id,
		Title:           title,
		Author:          author,
		Genre:           strings.TrimSpace(genre),
		PublishedAt:     publishedAt,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}, nil
}

// ValidateTitle checks that a title is not blank and not longer than MaxTitleLength.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" || utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrInvalidTitle
	}

	return nil
}

// ValidateAuthor checks that an author is not blank and not longer than MaxAuthorLength.
func ValidateAuthor(author string) error {
	if strings.TrimSpace(author) == "" || utf8.RuneCountInString(author) > MaxAuthorLength {
		return ErrInvalidAuthor
	}

	return nil
}

// CopiesOnLoan is the number of copies held by outstanding loans.
func (i Item) CopiesOnLoan() int {
	return i.TotalCopies - i.AvailableCopies
}

// SearchField selects the item attribute a catalog search matches against.
type SearchField string

const (
	SearchByTitle  SearchField = "title"
	SearchByAuthor SearchField = "author"
	SearchByGenre  SearchField = "genre"
)

// ParseSearchField maps user input to a SearchField. Unknown values search by title.
func ParseSearchField(s string) SearchField {
	switch SearchField(strings.ToLower(strings.TrimSpace(s))) {
	case SearchByAuthor:
		return SearchByAuthor
	case SearchByGenre:
		return SearchByGenre
	default:
		return SearchByTitle
	}
}

// OverRelease is called by an InventoryLedger when a Release would push AvailableCopies above TotalCopies.
// Builds with the lendingdebug tag fail with ErrReleaseExceedsTotal, all others clamp.
func OverRelease() error {
	if StrictRelease {
		return ErrReleaseExceedsTotal
	}

	return nil
}
