package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBorrowingNotFound = errors.New("borrowing not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrNoCopiesAvailable = errors.New("no copies available")
)

type BorrowingService interface {
	Borrow(ctx context.Context, actorID, actorRole string, bookID int64, dueDays int) (*models.Borrowing, error)
	Return(ctx context.Context, actorID, actorRole string, borrowingID int64) (*models.Borrowing, error)
	List(ctx context.Context, actorID, actorRole string, filter repository.BorrowingFilter) ([]models.Borrowing, int64, error)
}

// borrowingService drives the borrowing lifecycle. Each borrow/return runs
// as one transaction: eligibility checks, the borrowing row and the
// availability change commit together or not at all.
type borrowingService struct {
	tx         repository.TxRunner
	borrowings repository.BorrowingRepository
	inventory  repository.InventoryRepository
	cache      repository.BookCache
	policy     *Policy
	logger     *slog.Logger
	now        func() time.Time
}

func NewBorrowingService(
	tx repository.TxRunner,
	borrowings repository.BorrowingRepository,
	inventory repository.InventoryRepository,
	cache repository.BookCache,
	policy *Policy,
	logger *slog.Logger,
) BorrowingService {
	return &borrowingService{
		tx:         tx,
		borrowings: borrowings,
		inventory:  inventory,
		cache:      cache,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

// Borrow creates an active borrowing and takes one copy off the shelf.
// Lock order inside the transaction is user row first, then book row; Return
// locks borrowing then book and never the user, so the two cannot deadlock.
func (s *borrowingService) Borrow(ctx context.Context, actorID, actorRole string, bookID int64, dueDays int) (*models.Borrowing, error) {
	days, err := s.policy.ResolveDueDays(dueDays)
	if err != nil {
		return nil, err
	}

	var out *models.Borrowing
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		borrowings := s.borrowings.WithTx(tx)
		inventory := s.inventory.WithTx(tx)

		// The user row lock makes the active count below safe against a
		// second borrow by the same member racing on a different book.
		if err := borrowings.LockUser(ctx, actorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		activeCount, err := borrowings.CountActiveByUser(ctx, actorID)
		if err != nil {
			return err
		}
		if err := s.policy.CheckBorrowEligibility(actorRole, activeCount); err != nil {
			return err
		}

		book, err := inventory.Decrement(ctx, bookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			if errors.Is(err, repository.ErrNoCopiesAvailable) {
				return ErrNoCopiesAvailable
			}
			return err
		}

		now := s.now()
		b := &models.Borrowing{
			UserID:     actorID,
			BookID:     bookID,
			BorrowedAt: now,
			DueDate:    s.policy.DueDate(now, days),
		}
		if err := borrowings.Create(ctx, b); err != nil {
			return err
		}

		b.Book = book
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, bookID); err != nil {
		s.logger.Warn("failed to invalidate book cache after borrow", "book_id", bookID, "error", err)
	}

	s.logger.Info("book borrowed",
		"borrowing_id", out.ID,
		"user_id", actorID,
		"book_id", bookID,
		"due_date", out.DueDate,
	)
	return out, nil
}

// Return closes an active borrowing: sets the return date, computes the late
// fee once from the two dates and puts the copy back on the shelf. Returning
// an already-returned borrowing is an idempotent success, the stored fee and
// the availability stay untouched.
func (s *borrowingService) Return(ctx context.Context, actorID, actorRole string, borrowingID int64) (*models.Borrowing, error) {
	var out *models.Borrowing
	var alreadyReturned bool

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		borrowings := s.borrowings.WithTx(tx)
		inventory := s.inventory.WithTx(tx)

		// Row lock so two racing returns of the same borrowing serialize
		// and the loser sees returned_at already set.
		b, err := borrowings.GetByIDForUpdate(ctx, borrowingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowingNotFound
			}
			return err
		}

		if err := s.policy.AuthorizeReturn(actorID, actorRole, b); err != nil {
			return err
		}

		if b.ReturnedAt != nil {
			alreadyReturned = true
			out = b
			return nil
		}

		now := s.now()
		b.ReturnedAt = &now
		b.LateFee = s.policy.LateFee(b.DueDate, now)
		if err := borrowings.Update(ctx, b); err != nil {
			return err
		}

		book, err := inventory.Increment(ctx, b.BookID)
		if err != nil {
			return err
		}

		b.Book = book
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alreadyReturned {
		return out, nil
	}

	if err := s.cache.Invalidate(ctx, out.BookID); err != nil {
		s.logger.Warn("failed to invalidate book cache after return", "book_id", out.BookID, "error", err)
	}

	s.logger.Info("book returned",
		"borrowing_id", out.ID,
		"user_id", out.UserID,
		"book_id", out.BookID,
		"late_fee", out.LateFee,
	)
	return out, nil
}

// List returns a page of borrowings. Actors without manage_borrowings only
// ever see their own, whatever user filter they asked for.
func (s *borrowingService) List(ctx context.Context, actorID, actorRole string, filter repository.BorrowingFilter) ([]models.Borrowing, int64, error) {
	if !RoleHas(actorRole, PermManageBorrowings) {
		filter.UserID = actorID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.borrowings.List(ctx, filter)
}
