package service

import (
	"errors"
	"time"

	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"
)

var (
	ErrBorrowLimitReached = errors.New("maximum active borrowings reached")
	ErrInvalidDueDays     = errors.New("due_days out of range")
	ErrReturnForbidden    = errors.New("not allowed to return this borrowing")
)

// Permissions, granted per role. Members only view; librarians manage the
// catalog, the users and everyone's borrowings.
const (
	PermView             = "view"
	PermManageBooks      = "manage_books"
	PermManageUsers      = "manage_users"
	PermManageBorrowings = "manage_borrowings"
)

var rolePermissions = map[string]map[string]bool{
	models.RoleMember: {
		PermView: true,
	},
	models.RoleLibrarian: {
		PermView:             true,
		PermManageBooks:      true,
		PermManageUsers:      true,
		PermManageBorrowings: true,
	},
}

// RoleHas reports whether the role grants the permission.
func RoleHas(role, permission string) bool {
	return rolePermissions[role][permission]
}

// Policy holds the borrowing rules. All methods are pure: they read their
// arguments and the configured constants, nothing else.
type Policy struct {
	BorrowLimit           int
	BorrowDurationDays    int
	MaxBorrowDurationDays int
	FinePerDay            int
	ExemptLibrarian       bool
}

func NewPolicy(cfg *config.Config) *Policy {
	return &Policy{
		BorrowLimit:           cfg.BorrowLimit,
		BorrowDurationDays:    cfg.BorrowDurationDays,
		MaxBorrowDurationDays: cfg.MaxBorrowDurationDays,
		FinePerDay:            cfg.FinePerDay,
		ExemptLibrarian:       cfg.BorrowLimitExemptLibrarian,
	}
}

// CheckBorrowEligibility rejects a borrow once the member holds BorrowLimit
// active borrowings. The limit applies to librarians too unless the
// exemption flag is set.
func (p *Policy) CheckBorrowEligibility(role string, activeCount int64) error {
	if p.ExemptLibrarian && role == models.RoleLibrarian {
		return nil
	}
	if activeCount >= int64(p.BorrowLimit) {
		return ErrBorrowLimitReached
	}
	return nil
}

// ResolveDueDays validates a requested duration; zero selects the default.
func (p *Policy) ResolveDueDays(dueDays int) (int, error) {
	if dueDays == 0 {
		return p.BorrowDurationDays, nil
	}
	if dueDays < 1 || dueDays > p.MaxBorrowDurationDays {
		return 0, ErrInvalidDueDays
	}
	return dueDays, nil
}

// DueDate computes the due date for a borrow created at borrowedAt.
func (p *Policy) DueDate(borrowedAt time.Time, dueDays int) time.Time {
	return borrowedAt.AddDate(0, 0, dueDays)
}

// LateFee charges FinePerDay per full calendar day past the due date,
// computed once at return time. Early or on-time returns owe nothing.
func (p *Policy) LateFee(dueDate, returnedAt time.Time) int64 {
	daysLate := calendarDays(dueDate, returnedAt)
	if daysLate <= 0 {
		return 0
	}
	return int64(daysLate) * int64(p.FinePerDay)
}

// AuthorizeReturn allows the borrowing's own member, or anyone holding the
// manage_borrowings permission, to return it.
func (p *Policy) AuthorizeReturn(actorID, actorRole string, b *models.Borrowing) error {
	if b.UserID == actorID {
		return nil
	}
	if RoleHas(actorRole, PermManageBorrowings) {
		return nil
	}
	return ErrReturnForbidden
}

// calendarDays counts whole calendar days from a to b, ignoring the time of
// day on both ends. Returning at 23:59 on the due date is not late.
func calendarDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
