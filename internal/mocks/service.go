package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/chama-engine/internal/domain"
)

type MockDividendService struct {
	mock.Mock
}

func (m *MockDividendService) ComputePool(ctx context.Context, fiscalYear int) (*domain.DividendPool, error) {
	args := m.Called(ctx, fiscalYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DividendPool), args.Error(1)
}

func (m *MockDividendService) Calculate(ctx context.Context, req *domain.CalculateDividendsRequest) (*domain.CalculationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CalculationResponse), args.Error(1)
}

func (m *MockDividendService) Transition(ctx context.Context, calculationID uuid.UUID, req *domain.TransitionCalculationRequest) (*domain.DividendFundCalculation, error) {
	args := m.Called(ctx, calculationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DividendFundCalculation), args.Error(1)
}

func (m *MockDividendService) Distribute(ctx context.Context, calculationID uuid.UUID, req *domain.DistributeDividendsRequest) (*domain.DistributionResponse, error) {
	args := m.Called(ctx, calculationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionResponse), args.Error(1)
}

func (m *MockDividendService) GetCalculation(ctx context.Context, calculationID uuid.UUID) (*domain.CalculationResponse, error) {
	args := m.Called(ctx, calculationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CalculationResponse), args.Error(1)
}

func (m *MockDividendService) ListCalculations(ctx context.Context) ([]*domain.DividendFundCalculation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DividendFundCalculation), args.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, req *domain.CreateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailsResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanDetailsResponse), args.Error(1)
}

func (m *MockLoanService) GetSchedule(ctx context.Context, loanID uuid.UUID, asOf time.Time) (*domain.ScheduleResponse, error) {
	args := m.Called(ctx, loanID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

func (m *MockLoanService) RecordRepayment(ctx context.Context, loanID uuid.UUID, req *domain.RecordRepaymentRequest) (*domain.RecordRepaymentResponse, error) {
	args := m.Called(ctx, loanID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordRepaymentResponse), args.Error(1)
}

func (m *MockLoanService) RefreshStatus(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanService) GenerateStatement(ctx context.Context, loanID uuid.UUID) (*domain.LoanStatement, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanStatement), args.Error(1)
}

type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) Register(ctx context.Context, req *domain.RegisterMemberRequest) (*domain.Member, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) List(ctx context.Context) ([]*domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockMemberService) ChangeRole(ctx context.Context, memberID uuid.UUID, req *domain.ChangeRoleRequest) (*domain.Member, error) {
	args := m.Called(ctx, memberID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordContribution(ctx context.Context, req *domain.RecordContributionRequest) (*domain.Contribution, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contribution), args.Error(1)
}

func (m *MockLedgerService) RecordIncome(ctx context.Context, req *domain.RecordIncomeRequest) (*domain.IncomeRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeRecord), args.Error(1)
}

func (m *MockLedgerService) RecordExpense(ctx context.Context, req *domain.RecordExpenseRequest) (*domain.Expense, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
