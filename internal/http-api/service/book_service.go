package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrBookHasActiveBorrowings = errors.New("book has active borrowings")
	ErrInvalidCopies           = errors.New("copies_available cannot exceed copies_total")
	ErrUnsupportedImage        = errors.New("unsupported image format")
)

type BookService interface {
	List(ctx context.Context, search, category string, page, pageSize int) ([]models.Book, int64, error)
	Get(ctx context.Context, id int64) (*models.Book, error)
	Create(ctx context.Context, b *models.Book) error
	Update(ctx context.Context, id int64, b *models.Book, newTotal *int) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
	SaveCover(ctx context.Context, id int64, filename string, r io.Reader) (string, error)
}

type bookService struct {
	tx         repository.TxRunner
	books      repository.BookRepository
	borrowings repository.BorrowingRepository
	inventory  repository.InventoryRepository
	cache      repository.BookCache
	coverPath  string
	logger     *slog.Logger
}

func NewBookService(
	tx repository.TxRunner,
	books repository.BookRepository,
	borrowings repository.BorrowingRepository,
	inventory repository.InventoryRepository,
	cache repository.BookCache,
	coverPath string,
	logger *slog.Logger,
) BookService {
	return &bookService{
		tx:         tx,
		books:      books,
		borrowings: borrowings,
		inventory:  inventory,
		cache:      cache,
		coverPath:  coverPath,
		logger:     logger,
	}
}

func (s *bookService) List(ctx context.Context, search, category string, page, pageSize int) ([]models.Book, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.books.GetAll(ctx, search, category, page, pageSize)
}

// Get serves book details through the cache.
func (s *bookService) Get(ctx context.Context, id int64) (*models.Book, error) {
	if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, book); err != nil {
		s.logger.Warn("failed to cache book", "book_id", id, "error", err)
	}
	return book, nil
}

func (s *bookService) Create(ctx context.Context, b *models.Book) error {
	if b.CopiesTotal < 0 || b.CopiesAvailable < 0 || b.CopiesAvailable > b.CopiesTotal {
		return ErrInvalidCopies
	}
	return s.books.Create(ctx, b)
}

// Update writes catalog attributes and, when newTotal is set, routes the
// copy-count change through the inventory so availability keeps the delta
// rule (floored at 0).
func (s *bookService) Update(ctx context.Context, id int64, b *models.Book, newTotal *int) (*models.Book, error) {
	if newTotal != nil && *newTotal < 0 {
		return nil, ErrInvalidCopies
	}

	var out *models.Book
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		books := s.books.WithTx(tx)
		inventory := s.inventory.WithTx(tx)

		current, err := books.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		b.ID = id
		if err := books.UpdateAttributes(ctx, b); err != nil {
			return err
		}
		current.Title = b.Title
		current.Author = b.Author
		current.ISBN = b.ISBN
		current.Category = b.Category
		current.CoverURL = b.CoverURL

		if newTotal != nil && *newTotal != current.CopiesTotal {
			adjusted, err := inventory.AdjustTotal(ctx, id, *newTotal)
			if err != nil {
				return err
			}
			current.CopiesTotal = adjusted.CopiesTotal
			current.CopiesAvailable = adjusted.CopiesAvailable
		}

		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate book cache after update", "book_id", id, "error", err)
	}
	return out, nil
}

// Delete removes a book from the catalog. Rejected while copies are out on
// loan, history rows of returned borrowings are kept.
func (s *bookService) Delete(ctx context.Context, id int64) error {
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		books := s.books.WithTx(tx)
		borrowings := s.borrowings.WithTx(tx)

		if _, err := books.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		active, err := borrowings.CountActiveByBook(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrBookHasActiveBorrowings
		}

		return books.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate book cache after delete", "book_id", id, "error", err)
	}
	return nil
}

var coverExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SaveCover stores an uploaded cover image on disk and records its URL.
func (s *bookService) SaveCover(ctx context.Context, id int64, filename string, r io.Reader) (string, error) {
	if _, err := s.books.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrBookNotFound
		}
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !coverExtensions[ext] {
		return "", ErrUnsupportedImage
	}

	if err := os.MkdirAll(s.coverPath, 0o755); err != nil {
		return "", fmt.Errorf("create cover dir: %w", err)
	}

	name := fmt.Sprintf("book_%d%s", id, ext)
	dst, err := os.Create(filepath.Join(s.coverPath, name))
	if err != nil {
		return "", fmt.Errorf("create cover file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write cover file: %w", err)
	}

	url := "/covers/" + name
	if err := s.books.SetCoverURL(ctx, id, url); err != nil {
		return "", err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate book cache after cover upload", "book_id", id, "error", err)
	}
	return url, nil
}
