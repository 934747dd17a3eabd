package service

import (
	"testing"
	"time"

	"libraryhub/internal/http-api/models"

	"github.com/stretchr/testify/assert"
)

func testPolicy() *Policy {
	return &Policy{
		BorrowLimit:           3,
		BorrowDurationDays:    7,
		MaxBorrowDurationDays: 30,
		FinePerDay:            1000,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLateFee(t *testing.T) {
	p := testPolicy()
	due := date(2024, time.January, 10)

	tests := []struct {
		name     string
		returned time.Time
		want     int64
	}{
		{"OnTime", date(2024, time.January, 10), 0},
		{"ThreeDaysLate", date(2024, time.January, 13), 3000},
		{"EarlyReturn", date(2024, time.January, 5), 0},
		{"OneDayLate", date(2024, time.January, 11), 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.LateFee(due, tt.returned))
		})
	}
}

func TestLateFee_IgnoresTimeOfDay(t *testing.T) {
	p := testPolicy()
	due := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

	// returning late in the evening of the due date is still on time
	returned := time.Date(2024, time.January, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, int64(0), p.LateFee(due, returned))

	// one second into the next day counts as one day late
	returned = time.Date(2024, time.January, 11, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, int64(1000), p.LateFee(due, returned))
}

func TestCheckBorrowEligibility(t *testing.T) {
	p := testPolicy()

	assert.NoError(t, p.CheckBorrowEligibility(models.RoleMember, 0))
	assert.NoError(t, p.CheckBorrowEligibility(models.RoleMember, 2))
	assert.ErrorIs(t, p.CheckBorrowEligibility(models.RoleMember, 3), ErrBorrowLimitReached)
	assert.ErrorIs(t, p.CheckBorrowEligibility(models.RoleMember, 5), ErrBorrowLimitReached)

	// the limit applies to librarians too in the default configuration
	assert.ErrorIs(t, p.CheckBorrowEligibility(models.RoleLibrarian, 3), ErrBorrowLimitReached)
}

func TestCheckBorrowEligibility_LibrarianExemption(t *testing.T) {
	p := testPolicy()
	p.ExemptLibrarian = true

	assert.NoError(t, p.CheckBorrowEligibility(models.RoleLibrarian, 10))
	assert.ErrorIs(t, p.CheckBorrowEligibility(models.RoleMember, 3), ErrBorrowLimitReached)
}

func TestResolveDueDays(t *testing.T) {
	p := testPolicy()

	days, err := p.ResolveDueDays(0)
	assert.NoError(t, err)
	assert.Equal(t, 7, days)

	days, err = p.ResolveDueDays(14)
	assert.NoError(t, err)
	assert.Equal(t, 14, days)

	_, err = p.ResolveDueDays(31)
	assert.ErrorIs(t, err, ErrInvalidDueDays)

	_, err = p.ResolveDueDays(-1)
	assert.ErrorIs(t, err, ErrInvalidDueDays)
}

func TestDueDate(t *testing.T) {
	p := testPolicy()
	borrowed := date(2024, time.March, 1)
	assert.Equal(t, date(2024, time.March, 8), p.DueDate(borrowed, 7))
}

func TestAuthorizeReturn(t *testing.T) {
	p := testPolicy()
	b := &models.Borrowing{UserID: "member-1"}

	assert.NoError(t, p.AuthorizeReturn("member-1", models.RoleMember, b))
	assert.NoError(t, p.AuthorizeReturn("someone-else", models.RoleLibrarian, b))
	assert.ErrorIs(t, p.AuthorizeReturn("someone-else", models.RoleMember, b), ErrReturnForbidden)
}

func TestRoleHas(t *testing.T) {
	assert.True(t, RoleHas(models.RoleMember, PermView))
	assert.False(t, RoleHas(models.RoleMember, PermManageBooks))
	assert.False(t, RoleHas(models.RoleMember, PermManageBorrowings))

	assert.True(t, RoleHas(models.RoleLibrarian, PermView))
	assert.True(t, RoleHas(models.RoleLibrarian, PermManageBooks))
	assert.True(t, RoleHas(models.RoleLibrarian, PermManageUsers))
	assert.True(t, RoleHas(models.RoleLibrarian, PermManageBorrowings))

	assert.False(t, RoleHas("unknown", PermView))
}
