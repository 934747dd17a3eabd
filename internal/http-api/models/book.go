package models

import "time"

// Book carries catalog attributes plus the copy counts. CopiesAvailable is
// written only through the inventory repository so that it always equals
// CopiesTotal minus the number of active borrowings.
type Book struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string    `json:"title" gorm:"not null"`
	Author          string    `json:"author" gorm:"not null"`
	ISBN            *string   `json:"isbn,omitempty" gorm:"uniqueIndex;size:50"`
	Category        *string   `json:"category,omitempty" gorm:"size:100"`
	CoverURL        *string   `json:"cover_url,omitempty"`
	CopiesTotal     int       `json:"copies_total" gorm:"not null;default:1"`
	CopiesAvailable int       `json:"copies_available" gorm:"not null;default:1"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}
