package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
)

// CreateBookDTO used for POST /api/books
type CreateBookDTO struct {
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author" binding:"required"`
	ISBN            *string `json:"isbn,omitempty"`
	Category        *string `json:"category,omitempty"`
	CoverURL        *string `json:"cover_url,omitempty"`
	CopiesTotal     int     `json:"copies_total" binding:"required,min=0"`
	CopiesAvailable *int    `json:"copies_available,omitempty"`
}

// UpdateBookDTO used for PUT /api/books/:id (partial updates allowed)
type UpdateBookDTO struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	ISBN        *string `json:"isbn,omitempty"`
	Category    *string `json:"category,omitempty"`
	CoverURL    *string `json:"cover_url,omitempty"`
	CopiesTotal *int    `json:"copies_total,omitempty"`
}

// BookResponse DTO for responses
type BookResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn,omitempty"`
	Category        *string   `json:"category,omitempty"`
	CoverURL        *string   `json:"cover_url,omitempty"`
	CopiesTotal     int       `json:"copies_total"`
	CopiesAvailable int       `json:"copies_available"`
	CreatedAt       time.Time `json:"created_at"`
}

// BookListResponse wraps a page of books.
type BookListResponse struct {
	Items []BookResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// Converters
func (d CreateBookDTO) ToModel() models.Book {
	available := d.CopiesTotal
	if d.CopiesAvailable != nil {
		available = *d.CopiesAvailable
	}
	return models.Book{
		Title:           d.Title,
		Author:          d.Author,
		ISBN:            d.ISBN,
		Category:        d.Category,
		CoverURL:        d.CoverURL,
		CopiesTotal:     d.CopiesTotal,
		CopiesAvailable: available,
	}
}

// ApplyTo merges the partial update onto the current attributes. The copy
// counts are not touched here, the service routes those separately.
func (d UpdateBookDTO) ApplyTo(b *models.Book) {
	if d.Title != nil {
		b.Title = *d.Title
	}
	if d.Author != nil {
		b.Author = *d.Author
	}
	if d.ISBN != nil {
		b.ISBN = d.ISBN
	}
	if d.Category != nil {
		b.Category = d.Category
	}
	if d.CoverURL != nil {
		b.CoverURL = d.CoverURL
	}
}

func FromBookModel(b models.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Category:        b.Category,
		CoverURL:        b.CoverURL,
		CopiesTotal:     b.CopiesTotal,
		CopiesAvailable: b.CopiesAvailable,
		CreatedAt:       b.CreatedAt,
	}
}
