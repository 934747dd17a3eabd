package repository

import (
	"context"
	"fmt"
	"strings"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
)

// BookRepository covers catalog reads and attribute writes. Copy counts are
// off limits here: copies_available and copies_total are written through the
// InventoryRepository only (Create initializes them, nothing else touches them).
type BookRepository interface {
	WithTx(tx *gorm.DB) BookRepository
	GetAll(ctx context.Context, search, category string, page, pageSize int) ([]models.Book, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Create(ctx context.Context, b *models.Book) error
	UpdateAttributes(ctx context.Context, b *models.Book) error
	SetCoverURL(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *bookRepository) WithTx(tx *gorm.DB) BookRepository {
	return &bookRepository{db: tx}
}

// GetAll performs case-insensitive partial match on title and author plus an
// optional category filter, with pagination.
// Splits search into tokens and requires each token to appear in at least one field.
func (r *bookRepository) GetAll(ctx context.Context, search, category string, page, pageSize int) ([]models.Book, int64, error) {
	var list []models.Book
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Book{})

	for _, t := range strings.Fields(search) {
		p := "%" + t + "%"
		db = db.Where("(title ILIKE ? OR author ILIKE ?)", p, p)
	}
	if category != "" {
		// COALESCE to avoid NULL category breaking ILIKE
		db = db.Where("COALESCE(category,'') ILIKE ?", "%"+category+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := db.
		Order("title asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	return list, total, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepository) Create(ctx context.Context, b *models.Book) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	// GORM populates b.ID and b.CreatedAt
	return nil
}

// UpdateAttributes writes the catalog columns only; copy counts stay with the
// inventory repository.
func (r *bookRepository) UpdateAttributes(ctx context.Context, b *models.Book) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Book{ID: b.ID}).
		Select("title", "author", "isbn", "category", "cover_url").
		Updates(map[string]interface{}{
			"title":     b.Title,
			"author":    b.Author,
			"isbn":      b.ISBN,
			"category":  b.Category,
			"cover_url": b.CoverURL,
		}).Error; err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

func (r *bookRepository) SetCoverURL(ctx context.Context, id int64, url string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Book{ID: id}).
		Update("cover_url", url).Error; err != nil {
		return fmt.Errorf("set cover url: %w", err)
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Book{}, id).Error; err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}
