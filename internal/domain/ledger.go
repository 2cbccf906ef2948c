package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ContributionTypeRegular         = "regular"
	ContributionTypeRegistrationFee = "registration_fee"
	ContributionTypeFines           = "fines"
	ContributionTypeLoanRepayment   = "loan_repayment"
	ContributionTypeSpecial         = "special"
)

const (
	ExpenseCategoryDividendPayout = "dividend_payout"
	ExpenseCategoryOperations     = "operations"
	ExpenseCategoryWelfare        = "welfare"
	ExpenseCategoryMeeting        = "meeting"
	ExpenseCategoryOther          = "other"
)

// Contribution is an append-only ledger entry of money paid in by a member.
type Contribution struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	MemberID         uuid.UUID       `json:"member_id" db:"member_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	ContributionDate time.Time       `json:"contribution_date" db:"contribution_date"`
	ContributionType string          `json:"contribution_type" db:"contribution_type"`
	FiscalYear       int             `json:"fiscal_year" db:"fiscal_year"`
	Reference        string          `json:"reference" db:"reference"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// IncomeRecord is chama income; only rows with AffectsDividends feed the dividend fund.
type IncomeRecord struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Source           string          `json:"source" db:"source"`
	Description      string          `json:"description" db:"description"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	IncomeDate       time.Time       `json:"income_date" db:"income_date"`
	FiscalYear       int             `json:"fiscal_year" db:"fiscal_year"`
	AffectsDividends bool            `json:"affects_dividends" db:"affects_dividends"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

type Expense struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Category         string          `json:"category" db:"category"`
	Description      string          `json:"description" db:"description"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	ExpenseDate      time.Time       `json:"expense_date" db:"expense_date"`
	FiscalYear       int             `json:"fiscal_year" db:"fiscal_year"`
	AffectsDividends bool            `json:"affects_dividends" db:"affects_dividends"`
	MemberID         *uuid.UUID      `json:"member_id,omitempty" db:"member_id"`
	ReferenceID      *uuid.UUID      `json:"reference_id,omitempty" db:"reference_id"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests

type RecordContributionRequest struct {
	MemberID         string          `json:"member_id" validate:"required,uuid"`
	Amount           decimal.Decimal `json:"amount" validate:"required,gt=0"`
	ContributionDate string          `json:"contribution_date" validate:"required,datetime=2006-01-02"`
	ContributionType string          `json:"contribution_type" validate:"required,oneof=regular registration_fee fines loan_repayment special"`
	FiscalYear       int             `json:"fiscal_year" validate:"omitempty,gte=2000"`
	Reference        string          `json:"reference" validate:"omitempty,max=64"`
}

type RecordIncomeRequest struct {
	Source           string          `json:"source" validate:"required,max=64"`
	Description      string          `json:"description" validate:"omitempty,max=255"`
	Amount           decimal.Decimal `json:"amount" validate:"required,gt=0"`
	IncomeDate       string          `json:"income_date" validate:"required,datetime=2006-01-02"`
	FiscalYear       int             `json:"fiscal_year" validate:"omitempty,gte=2000"`
	AffectsDividends *bool           `json:"affects_dividends"`
}

type RecordExpenseRequest struct {
	Category         string          `json:"category" validate:"required,oneof=operations welfare meeting other"`
	Description      string          `json:"description" validate:"omitempty,max=255"`
	Amount           decimal.Decimal `json:"amount" validate:"required,gt=0"`
	ExpenseDate      string          `json:"expense_date" validate:"required,datetime=2006-01-02"`
	FiscalYear       int             `json:"fiscal_year" validate:"omitempty,gte=2000"`
	AffectsDividends bool            `json:"affects_dividends"`
}
