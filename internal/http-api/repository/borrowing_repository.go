package repository

import (
	"context"
	"fmt"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BorrowingFilter narrows List results. A zero UserID means all users.
type BorrowingFilter struct {
	OnlyActive bool
	UserID     string
	BookID     int64
	Page       int
	Limit      int
}

type BorrowingRepository interface {
	WithTx(tx *gorm.DB) BorrowingRepository
	Create(ctx context.Context, b *models.Borrowing) error
	GetByID(ctx context.Context, id int64) (*models.Borrowing, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Borrowing, error)
	Update(ctx context.Context, b *models.Borrowing) error
	LockUser(ctx context.Context, userID string) error
	CountActiveByUser(ctx context.Context, userID string) (int64, error)
	CountActiveByBook(ctx context.Context, bookID int64) (int64, error)
	List(ctx context.Context, filter BorrowingFilter) ([]models.Borrowing, int64, error)
}

type borrowingRepository struct {
	db *gorm.DB
}

func NewBorrowingRepository(db *gorm.DB) BorrowingRepository {
	return &borrowingRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *borrowingRepository) WithTx(tx *gorm.DB) BorrowingRepository {
	return &borrowingRepository{db: tx}
}

func (r *borrowingRepository) Create(ctx context.Context, b *models.Borrowing) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create borrowing: %w", err)
	}
	return nil
}

func (r *borrowingRepository) GetByID(ctx context.Context, id int64) (*models.Borrowing, error) {
	var b models.Borrowing
	if err := r.db.WithContext(ctx).Preload("Book").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDForUpdate locks the borrowing row so a racing double-return
// serializes against it. No preloads here, FOR UPDATE does not mix with joins.
func (r *borrowingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Borrowing, error) {
	var b models.Borrowing
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Update persists the return fields. returned_at and late_fee are the only
// columns a borrowing ever changes after creation.
func (r *borrowingRepository) Update(ctx context.Context, b *models.Borrowing) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Borrowing{ID: b.ID}).
		Select("returned_at", "late_fee").
		Updates(map[string]interface{}{
			"returned_at": b.ReturnedAt,
			"late_fee":    b.LateFee,
		}).Error; err != nil {
		return fmt.Errorf("update borrowing: %w", err)
	}
	return nil
}

// LockUser takes FOR UPDATE on the member's user row. Locking the book row
// is not enough for the borrow limit: two borrows of different books by the
// same member would otherwise both read the active count before either
// insert lands. The user row is the serialization point for that count.
func (r *borrowingRepository) LockUser(ctx context.Context, userID string) error {
	var user models.User
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	return nil
}

func (r *borrowingRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Borrowing{}).
		Where("user_id = ? AND returned_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count active borrowings by user: %w", err)
	}
	return count, nil
}

func (r *borrowingRepository) CountActiveByBook(ctx context.Context, bookID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Borrowing{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count active borrowings by book: %w", err)
	}
	return count, nil
}

func (r *borrowingRepository) List(ctx context.Context, filter BorrowingFilter) ([]models.Borrowing, int64, error) {
	var list []models.Borrowing
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Borrowing{})
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.BookID != 0 {
		db = db.Where("book_id = ?", filter.BookID)
	}
	if filter.OnlyActive {
		db = db.Where("returned_at IS NULL")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count borrowings: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.
		Preload("Book").
		Order("borrowed_at desc").
		Limit(filter.Limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list borrowings: %w", err)
	}

	return list, total, nil
}
