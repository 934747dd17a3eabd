package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
)

// BorrowRequest: payload for POST /api/borrowings
type BorrowRequest struct {
	BookID  int64 `json:"book_id" binding:"required"`
	DueDays int   `json:"due_days" binding:"omitempty,min=1"`
}

// BorrowingResponse DTO for responses
type BorrowingResponse struct {
	ID         int64         `json:"id"`
	UserID     string        `json:"user_id"`
	BookID     int64         `json:"book_id"`
	BorrowedAt time.Time     `json:"borrowed_at"`
	DueDate    time.Time     `json:"due_date"`
	ReturnedAt *time.Time    `json:"returned_at,omitempty"`
	LateFee    int64         `json:"late_fee"`
	Book       *BookResponse `json:"book,omitempty"`
}

// BorrowingListResponse wraps a page of borrowings.
type BorrowingListResponse struct {
	Items []BorrowingResponse `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

func FromBorrowingModel(b models.Borrowing) BorrowingResponse {
	resp := BorrowingResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		BookID:     b.BookID,
		BorrowedAt: b.BorrowedAt,
		DueDate:    b.DueDate,
		ReturnedAt: b.ReturnedAt,
		LateFee:    b.LateFee,
	}
	if b.Book != nil {
		book := FromBookModel(*b.Book)
		resp.Book = &book
	}
	return resp
}
