package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/internal/repository"
)

// MockTransactor runs fn directly and counts how many transactions were opened.
type MockTransactor struct {
	Calls int
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) GetActiveChairperson(ctx context.Context) (*domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string, updatedAt time.Time) error {
	args := m.Called(ctx, id, role, updatedAt)
	return args.Error(0)
}

type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) Create(ctx context.Context, contribution *domain.Contribution) error {
	args := m.Called(ctx, contribution)
	return args.Error(0)
}

func (m *MockContributionRepository) SumRegularByYear(ctx context.Context, fiscalYear int) (decimal.Decimal, error) {
	args := m.Called(ctx, fiscalYear)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockContributionRepository) RegularSavingsByMember(ctx context.Context, fiscalYear int) ([]repository.MemberSavings, error) {
	args := m.Called(ctx, fiscalYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.MemberSavings), args.Error(1)
}

type MockIncomeRepository struct {
	mock.Mock
}

func (m *MockIncomeRepository) Create(ctx context.Context, income *domain.IncomeRecord) error {
	args := m.Called(ctx, income)
	return args.Error(0)
}

func (m *MockIncomeRepository) SumDividendIncomeByYear(ctx context.Context, fiscalYear int) (decimal.Decimal, error) {
	args := m.Called(ctx, fiscalYear)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) CreateBatch(ctx context.Context, expenses []*domain.Expense) error {
	args := m.Called(ctx, expenses)
	return args.Error(0)
}

func (m *MockExpenseRepository) CountByReference(ctx context.Context, referenceID uuid.UUID, category string) (int, error) {
	args := m.Called(ctx, referenceID, category)
	return args.Int(0), args.Error(1)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByStatuses(ctx context.Context, statuses ...string) ([]*domain.Loan, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedAt time.Time) error {
	args := m.Called(ctx, id, status, updatedAt)
	return args.Error(0)
}

type MockRepaymentRepository struct {
	mock.Mock
}

func (m *MockRepaymentRepository) Create(ctx context.Context, repayment *domain.LoanRepayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanRepayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRepayment), args.Error(1)
}

type MockDividendRepository struct {
	mock.Mock
}

func (m *MockDividendRepository) CreateCalculation(ctx context.Context, calc *domain.DividendFundCalculation) error {
	args := m.Called(ctx, calc)
	return args.Error(0)
}

func (m *MockDividendRepository) CreateAllocations(ctx context.Context, allocations []*domain.DividendAllocation) error {
	args := m.Called(ctx, allocations)
	return args.Error(0)
}

func (m *MockDividendRepository) ExistsForYear(ctx context.Context, fiscalYear int) (bool, error) {
	args := m.Called(ctx, fiscalYear)
	return args.Bool(0), args.Error(1)
}

func (m *MockDividendRepository) GetCalculation(ctx context.Context, id uuid.UUID) (*domain.DividendFundCalculation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DividendFundCalculation), args.Error(1)
}

func (m *MockDividendRepository) GetCalculationForUpdate(ctx context.Context, id uuid.UUID) (*domain.DividendFundCalculation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DividendFundCalculation), args.Error(1)
}

func (m *MockDividendRepository) ListCalculations(ctx context.Context) ([]*domain.DividendFundCalculation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DividendFundCalculation), args.Error(1)
}

func (m *MockDividendRepository) ListAllocations(ctx context.Context, calculationID uuid.UUID) ([]*domain.DividendAllocation, error) {
	args := m.Called(ctx, calculationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DividendAllocation), args.Error(1)
}

func (m *MockDividendRepository) UpdateCalculationStatus(ctx context.Context, calc *domain.DividendFundCalculation) error {
	args := m.Called(ctx, calc)
	return args.Error(0)
}

func (m *MockDividendRepository) MarkAllocationsPaid(ctx context.Context, calculationID uuid.UUID, paidAt time.Time) (int64, error) {
	args := m.Called(ctx, calculationID, paidAt)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) All(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

type MockScheduleCache struct {
	mock.Mock
}

func (m *MockScheduleCache) Get(ctx context.Context, loanID uuid.UUID, asOf time.Time) (*domain.ScheduleResponse, bool, error) {
	args := m.Called(ctx, loanID, asOf)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Bool(1), args.Error(2)
}

func (m *MockScheduleCache) Set(ctx context.Context, loanID uuid.UUID, asOf time.Time, schedule *domain.ScheduleResponse) error {
	args := m.Called(ctx, loanID, asOf, schedule)
	return args.Error(0)
}

func (m *MockScheduleCache) Invalidate(ctx context.Context, loanID uuid.UUID) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}
