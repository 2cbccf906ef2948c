package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/chama-engine/internal/domain"
)

type DividendService interface {
	ComputePool(ctx context.Context, fiscalYear int) (*domain.DividendPool, error)
	Calculate(ctx context.Context, req *domain.CalculateDividendsRequest) (*domain.CalculationResponse, error)
	Transition(ctx context.Context, calculationID uuid.UUID, req *domain.TransitionCalculationRequest) (*domain.DividendFundCalculation, error)
	Distribute(ctx context.Context, calculationID uuid.UUID, req *domain.DistributeDividendsRequest) (*domain.DistributionResponse, error)
	GetCalculation(ctx context.Context, calculationID uuid.UUID) (*domain.CalculationResponse, error)
	ListCalculations(ctx context.Context) ([]*domain.DividendFundCalculation, error)
}

type LoanService interface {
	CreateLoan(ctx context.Context, req *domain.CreateLoanRequest) (*domain.Loan, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailsResponse, error)
	GetSchedule(ctx context.Context, loanID uuid.UUID, asOf time.Time) (*domain.ScheduleResponse, error)
	RecordRepayment(ctx context.Context, loanID uuid.UUID, req *domain.RecordRepaymentRequest) (*domain.RecordRepaymentResponse, error)
	RefreshStatus(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)
	GenerateStatement(ctx context.Context, loanID uuid.UUID) (*domain.LoanStatement, error)
}

type MemberService interface {
	Register(ctx context.Context, req *domain.RegisterMemberRequest) (*domain.Member, error)
	List(ctx context.Context) ([]*domain.Member, error)
	ChangeRole(ctx context.Context, memberID uuid.UUID, req *domain.ChangeRoleRequest) (*domain.Member, error)
}

type LedgerService interface {
	RecordContribution(ctx context.Context, req *domain.RecordContributionRequest) (*domain.Contribution, error)
	RecordIncome(ctx context.Context, req *domain.RecordIncomeRequest) (*domain.IncomeRecord, error)
	RecordExpense(ctx context.Context, req *domain.RecordExpenseRequest) (*domain.Expense, error)
}
