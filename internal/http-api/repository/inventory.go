package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoCopiesAvailable is returned when a decrement finds no free copy.
var ErrNoCopiesAvailable = errors.New("no copies available")

// InventoryRepository is the only writer of books.copies_available and
// books.copies_total. Every mutation takes a SELECT ... FOR UPDATE on the
// book row, so concurrent borrows/returns for the same book serialize while
// different books proceed independently. Callers are expected to run these
// inside a transaction together with the borrowing row changes.
type InventoryRepository interface {
	WithTx(tx *gorm.DB) InventoryRepository
	Decrement(ctx context.Context, bookID int64) (*models.Book, error)
	Increment(ctx context.Context, bookID int64) (*models.Book, error)
	AdjustTotal(ctx context.Context, bookID int64, newTotal int) (*models.Book, error)
}

type inventoryRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewInventoryRepository(db *gorm.DB, logger *slog.Logger) InventoryRepository {
	return &inventoryRepository{db: db, logger: logger}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *inventoryRepository) WithTx(tx *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: tx, logger: r.logger}
}

// lockBook loads the book row under FOR UPDATE.
func (r *inventoryRepository) lockBook(ctx context.Context, bookID int64) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, bookID).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Decrement takes one copy off the shelf. Fails with ErrNoCopiesAvailable
// when every copy is out, leaving the row untouched.
func (r *inventoryRepository) Decrement(ctx context.Context, bookID int64) (*models.Book, error) {
	book, err := r.lockBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.CopiesAvailable <= 0 {
		return nil, ErrNoCopiesAvailable
	}

	book.CopiesAvailable--
	if err := r.db.WithContext(ctx).
		Model(&models.Book{ID: book.ID}).
		Update("copies_available", book.CopiesAvailable).Error; err != nil {
		return nil, fmt.Errorf("decrement copies_available: %w", err)
	}
	return book, nil
}

// Increment puts one copy back, clamped at copies_total. The clamp firing
// means the counts were corrupted upstream, so it is logged loudly instead
// of being hidden.
func (r *inventoryRepository) Increment(ctx context.Context, bookID int64) (*models.Book, error) {
	book, err := r.lockBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.CopiesAvailable >= book.CopiesTotal {
		r.logger.Warn("increment would exceed copies_total, clamping",
			"book_id", book.ID,
			"copies_available", book.CopiesAvailable,
			"copies_total", book.CopiesTotal,
		)
		return book, nil
	}

	book.CopiesAvailable++
	if err := r.db.WithContext(ctx).
		Model(&models.Book{ID: book.ID}).
		Update("copies_available", book.CopiesAvailable).Error; err != nil {
		return nil, fmt.Errorf("increment copies_available: %w", err)
	}
	return book, nil
}

// AdjustTotal changes copies_total and applies the same delta to
// copies_available, floored at 0. Since copies_available never exceeded the
// old total, the new value can never exceed the new total either.
func (r *inventoryRepository) AdjustTotal(ctx context.Context, bookID int64, newTotal int) (*models.Book, error) {
	book, err := r.lockBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	delta := newTotal - book.CopiesTotal
	book.CopiesTotal = newTotal
	book.CopiesAvailable += delta
	if book.CopiesAvailable < 0 {
		book.CopiesAvailable = 0
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Book{ID: book.ID}).
		Updates(map[string]interface{}{
			"copies_total":     book.CopiesTotal,
			"copies_available": book.CopiesAvailable,
		}).Error; err != nil {
		return nil, fmt.Errorf("adjust copies_total: %w", err)
	}
	return book, nil
}
