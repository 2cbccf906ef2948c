package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/chama-engine/pkg/utils"
)

const (
	LoanStatusActive    = "active"
	LoanStatusOverdue   = "overdue"
	LoanStatusDefaulted = "defaulted"
	LoanStatusRepaid    = "repaid"
)

const (
	InterestTypeDeclining = "declining"
	InterestTypeFlat      = "flat"
)

const (
	PaymentMethodCash         = "cash"
	PaymentMethodMpesa        = "mpesa"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCheque       = "cheque"
)

// Loan represents a loan entity
type Loan struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	MemberID            uuid.UUID       `json:"member_id" db:"member_id"`
	Principal           decimal.Decimal `json:"principal" db:"principal"`
	MonthlyInterestRate decimal.Decimal `json:"monthly_interest_rate" db:"monthly_interest_rate"`
	TermMonths          int             `json:"term_months" db:"term_months"`
	IssueDate           time.Time       `json:"issue_date" db:"issue_date"`
	InterestType        string          `json:"interest_type" db:"interest_type"`
	Status              string          `json:"status" db:"status"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// MaturityDate is the date the last scheduled month ends.
func (l *Loan) MaturityDate() time.Time {
	return utils.AddMonths(l.IssueDate, l.TermMonths)
}

// LoanRepayment is an append-only repayment transaction.
type LoanRepayment struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LoanID           uuid.UUID       `json:"loan_id" db:"loan_id"`
	MemberID         uuid.UUID       `json:"member_id" db:"member_id"`
	PaymentDate      time.Time       `json:"payment_date" db:"payment_date"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	PrincipalPortion decimal.Decimal `json:"principal_portion" db:"principal_portion"`
	InterestPortion  decimal.Decimal `json:"interest_portion" db:"interest_portion"`
	PaymentMethod    string          `json:"payment_method" db:"payment_method"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	MemberID            string           `json:"member_id" validate:"required,uuid"`
	Principal           decimal.Decimal  `json:"principal" validate:"required,gt=0"`
	MonthlyInterestRate *decimal.Decimal `json:"monthly_interest_rate,omitempty" validate:"omitempty,gte=0,lt=1"`
	TermMonths          int              `json:"term_months" validate:"omitempty,gt=0,lte=120"`
	IssueDate           string           `json:"issue_date" validate:"required,datetime=2006-01-02"`
	InterestType        string           `json:"interest_type" validate:"omitempty,oneof=declining flat"`
}

type RecordRepaymentRequest struct {
	Amount           decimal.Decimal  `json:"amount" validate:"required,gt=0"`
	PaymentDate      string           `json:"payment_date" validate:"required,datetime=2006-01-02"`
	PaymentMethod    string           `json:"payment_method" validate:"required,oneof=cash mpesa bank_transfer cheque"`
	PrincipalPortion *decimal.Decimal `json:"principal_portion,omitempty"`
	InterestPortion  *decimal.Decimal `json:"interest_portion,omitempty"`
}

type LoanDetailsResponse struct {
	Loan    *Loan           `json:"loan"`
	Summary ScheduleSummary `json:"summary"`
}

type RecordRepaymentResponse struct {
	Repayment *LoanRepayment  `json:"repayment"`
	Loan      *Loan           `json:"loan"`
	Summary   ScheduleSummary `json:"summary"`
}

// RefreshResult reports one pass of the status refresh job.
type RefreshResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
