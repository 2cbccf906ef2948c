package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/chama-engine/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Transactor runs fn inside a database transaction. Repository calls made with
// the context handed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	// Create inserts a new member
	Create(ctx context.Context, member *domain.Member) error

	// GetByID retrieves a member by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)

	// List returns every member ordered by member number
	List(ctx context.Context) ([]*domain.Member, error)

	// GetActiveChairperson returns ErrNotFound when no active chairperson exists
	GetActiveChairperson(ctx context.Context) (*domain.Member, error)

	// UpdateRole changes a member's role
	UpdateRole(ctx context.Context, id uuid.UUID, role string, updatedAt time.Time) error
}

// MemberSavings is one member's regular savings for a fiscal year.
type MemberSavings struct {
	MemberID uuid.UUID       `db:"member_id"`
	Savings  decimal.Decimal `db:"savings"`
}

// ContributionRepository defines the interface for contribution data operations
type ContributionRepository interface {
	Create(ctx context.Context, contribution *domain.Contribution) error

	// SumRegularByYear totals regular contributions for a fiscal year
	SumRegularByYear(ctx context.Context, fiscalYear int) (decimal.Decimal, error)

	// RegularSavingsByMember groups regular contributions for a fiscal year by member
	RegularSavingsByMember(ctx context.Context, fiscalYear int) ([]MemberSavings, error)
}

// IncomeRepository defines the interface for income data operations
type IncomeRepository interface {
	Create(ctx context.Context, income *domain.IncomeRecord) error

	// SumDividendIncomeByYear totals income flagged as affecting dividends
	SumDividendIncomeByYear(ctx context.Context, fiscalYear int) (decimal.Decimal, error)
}

// ExpenseRepository defines the interface for expense data operations
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error

	// CreateBatch inserts all expenses atomically
	CreateBatch(ctx context.Context, expenses []*domain.Expense) error

	// CountByReference counts expenses of a category booked against a reference
	CountByReference(ctx context.Context, referenceID uuid.UUID, category string) (int, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetByIDForUpdate locks the loan row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// ListByStatuses returns loans whose status is one of statuses
	ListByStatuses(ctx context.Context, statuses ...string) ([]*domain.Loan, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedAt time.Time) error
}

// RepaymentRepository defines the interface for loan repayment data operations
type RepaymentRepository interface {
	Create(ctx context.Context, repayment *domain.LoanRepayment) error

	// ListByLoan returns repayments ordered by payment date
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanRepayment, error)
}

// DividendRepository defines the interface for dividend calculation data operations
type DividendRepository interface {
	CreateCalculation(ctx context.Context, calc *domain.DividendFundCalculation) error

	CreateAllocations(ctx context.Context, allocations []*domain.DividendAllocation) error

	ExistsForYear(ctx context.Context, fiscalYear int) (bool, error)

	GetCalculation(ctx context.Context, id uuid.UUID) (*domain.DividendFundCalculation, error)

	// GetCalculationForUpdate locks the calculation row until the surrounding transaction ends
	GetCalculationForUpdate(ctx context.Context, id uuid.UUID) (*domain.DividendFundCalculation, error)

	// ListCalculations returns calculations newest fiscal year first
	ListCalculations(ctx context.Context) ([]*domain.DividendFundCalculation, error)

	// ListAllocations returns allocations of a calculation in insertion order
	ListAllocations(ctx context.Context, calculationID uuid.UUID) ([]*domain.DividendAllocation, error)

	// UpdateCalculationStatus persists status, updated_at, approved_at and distributed_at
	UpdateCalculationStatus(ctx context.Context, calc *domain.DividendFundCalculation) error

	// MarkAllocationsPaid flips pending allocations to paid and returns how many changed
	MarkAllocationsPaid(ctx context.Context, calculationID uuid.UUID, paidAt time.Time) (int64, error)
}

// AuditRepository is the write-only audit side channel
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
}

// SettingsRepository reads engine setting overrides
type SettingsRepository interface {
	All(ctx context.Context) (map[string]string, error)
}
