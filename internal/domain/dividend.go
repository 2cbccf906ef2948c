package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CalculationStatusDraft       = "draft"
	CalculationStatusUnderReview = "under_review"
	CalculationStatusApproved    = "approved"
	CalculationStatusDistributed = "distributed"
	CalculationStatusCancelled   = "cancelled"
)

const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
)

// calculationTransitions lists the allowed status moves.
var calculationTransitions = map[string][]string{
	CalculationStatusDraft:       {CalculationStatusUnderReview, CalculationStatusCancelled},
	CalculationStatusUnderReview: {CalculationStatusApproved, CalculationStatusDraft, CalculationStatusCancelled},
	CalculationStatusApproved:    {CalculationStatusDistributed, CalculationStatusCancelled},
}

// CanTransition reports whether a calculation may move from one status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range calculationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// DividendPool is the read-only aggregate a calculation is based on.
type DividendPool struct {
	FiscalYear          int             `json:"fiscal_year"`
	TotalDividendIncome decimal.Decimal `json:"total_dividend_income"`
	TotalRegularSavings decimal.Decimal `json:"total_regular_savings"`
	TotalDividendsFund  decimal.Decimal `json:"total_dividends_fund"`
}

type DividendFundCalculation struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	FiscalYear          int             `json:"fiscal_year" db:"fiscal_year"`
	TotalDividendIncome decimal.Decimal `json:"total_dividend_income" db:"total_dividend_income"`
	TotalRegularSavings decimal.Decimal `json:"total_regular_savings" db:"total_regular_savings"`
	TotalDividendsFund  decimal.Decimal `json:"total_dividends_fund" db:"total_dividends_fund"`
	Status              string          `json:"status" db:"status"`
	CalculationFormula  string          `json:"calculation_formula" db:"calculation_formula"`
	AllocationMethod    string          `json:"allocation_method" db:"allocation_method"`
	MemberCount         int             `json:"member_count" db:"member_count"`
	CreatedBy           string          `json:"created_by" db:"created_by"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
	ApprovedAt          *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	DistributedAt       *time.Time      `json:"distributed_at,omitempty" db:"distributed_at"`
}

type DividendAllocation struct {
	ID                             uuid.UUID       `json:"id" db:"id"`
	CalculationID                  uuid.UUID       `json:"calculation_id" db:"calculation_id"`
	MemberID                       uuid.UUID       `json:"member_id" db:"member_id"`
	MemberContributionForDividends decimal.Decimal `json:"member_contribution_for_dividends" db:"member_contribution_for_dividends"`
	TotalContributionsForDividends decimal.Decimal `json:"total_contributions_for_dividends" db:"total_contributions_for_dividends"`
	SharePercentage                decimal.Decimal `json:"share_percentage" db:"share_percentage"`
	AllocatedAmount                decimal.Decimal `json:"allocated_amount" db:"allocated_amount"`
	PayoutStatus                   string          `json:"payout_status" db:"payout_status"`
	PaidAt                         *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt                      time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type CalculateDividendsRequest struct {
	FiscalYear int    `json:"fiscal_year" validate:"required,gte=2000"`
	CreatedBy  string `json:"created_by" validate:"omitempty,max=128"`
}

type TransitionCalculationRequest struct {
	Status string `json:"status" validate:"required,oneof=draft under_review approved cancelled"`
	Actor  string `json:"actor" validate:"omitempty,max=128"`
}

type DistributeDividendsRequest struct {
	DistributionDate string `json:"distribution_date" validate:"required,datetime=2006-01-02"`
	Actor            string `json:"actor" validate:"omitempty,max=128"`
}

type CalculationResponse struct {
	Calculation *DividendFundCalculation `json:"calculation"`
	Allocations []*DividendAllocation    `json:"allocations"`
}

type DistributionResponse struct {
	Calculation    *DividendFundCalculation `json:"calculation"`
	ExpensesBooked int                      `json:"expenses_booked"`
	TotalPaid      decimal.Decimal          `json:"total_paid"`
}
