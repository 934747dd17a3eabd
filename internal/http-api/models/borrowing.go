package models

import "time"

// Borrowing records one copy of a book on loan to one user. A borrowing is
// active while ReturnedAt is null; returning sets ReturnedAt and LateFee
// exactly once. Rows are never deleted, they are the borrowing history.
type Borrowing struct {
	ID         int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     string     `json:"user_id" gorm:"type:uuid;not null;index"`
	BookID     int64      `json:"book_id" gorm:"not null;index"`
	BorrowedAt time.Time  `json:"borrowed_at" gorm:"not null"`
	DueDate    time.Time  `json:"due_date" gorm:"not null"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	LateFee    int64      `json:"late_fee" gorm:"not null;default:0"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

// Active reports whether the borrowing has not been returned yet.
func (b *Borrowing) Active() bool {
	return b.ReturnedAt == nil
}

func (Borrowing) TableName() string {
	return "borrowings"
}
