package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/internal/mocks"
	"github.com/segyhp/chama-engine/internal/repository"
	customError "github.com/segyhp/chama-engine/pkg/errors"
)

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultSettings() domain.EngineSettings {
	return domain.EngineSettings{
		DefaultMonthlyRate: decimal.RequireFromString("0.015"),
		DefaultTermMonths:  12,
		RepaidEpsilon:      decimal.RequireFromString("0.01"),
		AllocationMethod:   domain.AllocationMethodProportional,
		MinFiscalYear:      2020,
	}
}

type repoMocks struct {
	tx            *mocks.MockTransactor
	members       *mocks.MockMemberRepository
	contributions *mocks.MockContributionRepository
	income        *mocks.MockIncomeRepository
	expenses      *mocks.MockExpenseRepository
	loans         *mocks.MockLoanRepository
	repayments    *mocks.MockRepaymentRepository
	dividends     *mocks.MockDividendRepository
	audit         *mocks.MockAuditRepository
	settings      *mocks.MockSettingsRepository
}

func newRepoMocks() *repoMocks {
	m := &repoMocks{
		tx:            &mocks.MockTransactor{},
		members:       &mocks.MockMemberRepository{},
		contributions: &mocks.MockContributionRepository{},
		income:        &mocks.MockIncomeRepository{},
		expenses:      &mocks.MockExpenseRepository{},
		loans:         &mocks.MockLoanRepository{},
		repayments:    &mocks.MockRepaymentRepository{},
		dividends:     &mocks.MockDividendRepository{},
		audit:         &mocks.MockAuditRepository{},
		settings:      &mocks.MockSettingsRepository{},
	}
	m.settings.On("All", mock.Anything).Return(map[string]string{}, nil).Maybe()
	m.audit.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

func (m *repoMocks) repositories() *repository.Repositories {
	return &repository.Repositories{
		Transactor:    m.tx,
		Members:       m.members,
		Contributions: m.contributions,
		Income:        m.income,
		Expenses:      m.expenses,
		Loans:         m.loans,
		Repayments:    m.repayments,
		Dividends:     m.dividends,
		Audit:         m.audit,
		Settings:      m.settings,
	}
}

func newDividendService(m *repoMocks) *DividendService {
	logger := discardLogger()
	svc := NewDividendService(m.repositories(), NewSettingsProvider(m.settings, defaultSettings(), logger), logger)
	svc.now = func() time.Time { return fixedNow }
	svc.audit.now = svc.now
	return svc
}

func member(number, status string) *domain.Member {
	return &domain.Member{ID: uuid.New(), MemberNumber: number, Name: "Member " + number, Status: status, Role: domain.MemberRoleMember}
}

func expectPool(m *repoMocks, year int, income, savings string) {
	m.income.On("SumDividendIncomeByYear", mock.Anything, year).Return(decimal.RequireFromString(income), nil)
	m.contributions.On("SumRegularByYear", mock.Anything, year).Return(decimal.RequireFromString(savings), nil)
}

func TestComputePool(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	expectPool(m, 2024, "50000", "100000")

	pool, err := svc.ComputePool(context.Background(), 2024)

	require.NoError(t, err)
	assert.Equal(t, 2024, pool.FiscalYear)
	assert.True(t, pool.TotalDividendsFund.Equal(decimal.NewFromInt(50000)))
	assert.True(t, pool.TotalRegularSavings.Equal(decimal.NewFromInt(100000)))
}

func TestComputePool_RejectsFiscalYear(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)

	for _, year := range []int{2019, 2026} {
		_, err := svc.ComputePool(context.Background(), year)
		assert.ErrorIs(t, err, customError.ErrValidation, "year %d", year)
		assert.ErrorIs(t, err, customError.ErrInvalidFiscalYear, "year %d", year)
	}
}

func TestCalculate_TwoMembers(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)

	a, b := member("M001", domain.MemberStatusActive), member("M002", domain.MemberStatusActive)
	expectPool(m, 2024, "50000", "100000")
	m.dividends.On("ExistsForYear", mock.Anything, 2024).Return(false, nil)
	m.members.On("List", mock.Anything).Return([]*domain.Member{b, a}, nil)
	m.contributions.On("RegularSavingsByMember", mock.Anything, 2024).Return([]repository.MemberSavings{
		{MemberID: a.ID, Savings: decimal.NewFromInt(20000)},
		{MemberID: b.ID, Savings: decimal.NewFromInt(80000)},
	}, nil)
	m.dividends.On("CreateCalculation", mock.Anything, mock.MatchedBy(func(c *domain.DividendFundCalculation) bool {
		return c.FiscalYear == 2024 && c.Status == domain.CalculationStatusDraft && c.MemberCount == 2
	})).Return(nil)
	m.dividends.On("CreateAllocations", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Calculate(context.Background(), &domain.CalculateDividendsRequest{FiscalYear: 2024, CreatedBy: "treasurer"})

	require.NoError(t, err)
	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, a.ID, resp.Allocations[0].MemberID)
	assert.Equal(t, "0.2000", resp.Allocations[0].SharePercentage.StringFixed(4))
	assert.Equal(t, "10000.00", resp.Allocations[0].AllocatedAmount.StringFixed(2))
	assert.Equal(t, "0.8000", resp.Allocations[1].SharePercentage.StringFixed(4))
	assert.Equal(t, "40000.00", resp.Allocations[1].AllocatedAmount.StringFixed(2))
	assert.Equal(t, 1, m.tx.Calls)
	m.dividends.AssertExpectations(t)
	m.audit.AssertCalled(t, "Append", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditActionDividendCalculated && e.Actor == "treasurer" &&
			strings.Contains(string(e.Metadata), `"total_allocated":"50000"`)
	}))
}

func TestCalculate_IncludesZeroSaversAndFormerMembersWithSavings(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)

	active := member("M001", domain.MemberStatusActive)
	idle := member("M002", domain.MemberStatusActive)
	former := member("M003", domain.MemberStatusInactive)
	gone := member("M004", domain.MemberStatusSuspended)

	expectPool(m, 2024, "1000", "4000")
	m.dividends.On("ExistsForYear", mock.Anything, 2024).Return(false, nil)
	m.members.On("List", mock.Anything).Return([]*domain.Member{active, idle, former, gone}, nil)
	m.contributions.On("RegularSavingsByMember", mock.Anything, 2024).Return([]repository.MemberSavings{
		{MemberID: active.ID, Savings: decimal.NewFromInt(3000)},
		{MemberID: former.ID, Savings: decimal.NewFromInt(1000)},
	}, nil)
	m.dividends.On("CreateCalculation", mock.Anything, mock.Anything).Return(nil)
	m.dividends.On("CreateAllocations", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Calculate(context.Background(), &domain.CalculateDividendsRequest{FiscalYear: 2024})

	require.NoError(t, err)
	require.Len(t, resp.Allocations, 3)
	assert.Equal(t, idle.ID, resp.Allocations[1].MemberID)
	assert.True(t, resp.Allocations[1].AllocatedAmount.IsZero())
	assert.Equal(t, former.ID, resp.Allocations[2].MemberID)
	assert.Equal(t, "250.00", resp.Allocations[2].AllocatedAmount.StringFixed(2))

	total := decimal.Zero
	for _, a := range resp.Allocations {
		total = total.Add(a.AllocatedAmount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(1000)))
}

func TestCalculate_FundNotPositive(t *testing.T) {
	tests := []struct {
		name    string
		income  string
		savings string
	}{
		{name: "zero fund", income: "0", savings: "1000"},
		{name: "zero savings", income: "1000", savings: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newRepoMocks()
			svc := newDividendService(m)
			expectPool(m, 2024, tt.income, tt.savings)

			resp, err := svc.Calculate(context.Background(), &domain.CalculateDividendsRequest{FiscalYear: 2024})

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, customError.ErrValidation)
			assert.ErrorIs(t, err, customError.ErrFundNotPositive)
			m.dividends.AssertNotCalled(t, "CreateCalculation", mock.Anything, mock.Anything)
			m.dividends.AssertNotCalled(t, "CreateAllocations", mock.Anything, mock.Anything)
			assert.Zero(t, m.tx.Calls)
		})
	}
}

func TestCalculate_ExistingYearIsConflict(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	expectPool(m, 2024, "1000", "1000")
	m.dividends.On("ExistsForYear", mock.Anything, 2024).Return(true, nil)

	_, err := svc.Calculate(context.Background(), &domain.CalculateDividendsRequest{FiscalYear: 2024})

	assert.ErrorIs(t, err, customError.ErrConflict)
	assert.ErrorIs(t, err, customError.ErrCalculationExists)
	m.dividends.AssertNotCalled(t, "CreateCalculation", mock.Anything, mock.Anything)
}

func TestCalculate_RaceOnUniqueYearIsConflict(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	a := member("M001", domain.MemberStatusActive)

	expectPool(m, 2024, "1000", "1000")
	m.dividends.On("ExistsForYear", mock.Anything, 2024).Return(false, nil)
	m.members.On("List", mock.Anything).Return([]*domain.Member{a}, nil)
	m.contributions.On("RegularSavingsByMember", mock.Anything, 2024).Return([]repository.MemberSavings{
		{MemberID: a.ID, Savings: decimal.NewFromInt(1000)},
	}, nil)
	m.dividends.On("CreateCalculation", mock.Anything, mock.Anything).
		Return(errors.Join(repository.ErrDuplicate, errors.New("dividends_fund_calculations_fiscal_year_key")))

	_, err := svc.Calculate(context.Background(), &domain.CalculateDividendsRequest{FiscalYear: 2024})

	assert.ErrorIs(t, err, customError.ErrConflict)
	m.dividends.AssertNotCalled(t, "CreateAllocations", mock.Anything, mock.Anything)
	m.audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestCalculate_AuditFailureDoesNotFail(t *testing.T) {
	m := newRepoMocks()
	m.audit = &mocks.MockAuditRepository{}
	m.audit.On("Append", mock.Anything, mock.Anything).Return(errors.New("audit table locked"))
	svc := newDividendService(m)
	a := member("M001", domain.MemberStatusActive)

	expectPool(m, 2024, "1000", "1000")
	m.dividends.On("ExistsForYear", mock.Anything, 2024).Return(false, nil)
	m.members.On("List", mock.Anything).Return([]*domain.Member{a}, nil)
	m.contributions.On("RegularSavingsByMember", mock.Anything, 2024).Return([]repository.MemberSavings{
		{MemberID: a.ID, Savings: decimal.NewFromInt(1000)},
	}, nil)
	m.dividends.On("CreateCalculation", mock.Anything, mock.Anything).Return(nil)
	m.dividends.On("CreateAllocations", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Calculate(context.Background(), &domain.CalculateDividendsRequest{FiscalYear: 2024})

	require.NoError(t, err)
	assert.NotNil(t, resp.Calculation)
	m.audit.AssertExpectations(t)
}

func calculation(status string) *domain.DividendFundCalculation {
	return &domain.DividendFundCalculation{
		ID:                 uuid.New(),
		FiscalYear:         2024,
		TotalDividendsFund: decimal.NewFromInt(50000),
		Status:             status,
	}
}

func allocations(calc *domain.DividendFundCalculation, status string, amounts ...int64) []*domain.DividendAllocation {
	out := make([]*domain.DividendAllocation, 0, len(amounts))
	for _, amount := range amounts {
		out = append(out, &domain.DividendAllocation{
			ID:              uuid.New(),
			CalculationID:   calc.ID,
			MemberID:        uuid.New(),
			AllocatedAmount: decimal.NewFromInt(amount),
			PayoutStatus:    status,
		})
	}
	return out
}

func TestDistribute_BooksOneExpensePerAllocation(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	calc := calculation(domain.CalculationStatusApproved)
	allocs := allocations(calc, domain.PayoutStatusPending, 10000, 40000, 0)

	m.dividends.On("GetCalculationForUpdate", mock.Anything, calc.ID).Return(calc, nil)
	m.dividends.On("ListAllocations", mock.Anything, calc.ID).Return(allocs, nil)
	m.dividends.On("UpdateCalculationStatus", mock.Anything, mock.MatchedBy(func(c *domain.DividendFundCalculation) bool {
		return c.Status == domain.CalculationStatusDistributed && c.DistributedAt != nil
	})).Return(nil)
	m.dividends.On("MarkAllocationsPaid", mock.Anything, calc.ID, fixedNow).Return(int64(3), nil)
	m.expenses.On("CreateBatch", mock.Anything, mock.MatchedBy(func(expenses []*domain.Expense) bool {
		if len(expenses) != 3 {
			return false
		}
		for i, e := range expenses {
			if e.Category != domain.ExpenseCategoryDividendPayout || e.AffectsDividends ||
				e.FiscalYear != 2024 || *e.ReferenceID != calc.ID || *e.MemberID != allocs[i].MemberID ||
				!e.Amount.Equal(allocs[i].AllocatedAmount) ||
				!e.ExpenseDate.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
				return false
			}
		}
		return true
	})).Return(nil)

	resp, err := svc.Distribute(context.Background(), calc.ID, &domain.DistributeDividendsRequest{DistributionDate: "2025-03-01", Actor: "chair"})

	require.NoError(t, err)
	assert.Equal(t, domain.CalculationStatusDistributed, resp.Calculation.Status)
	assert.Equal(t, 3, resp.ExpensesBooked)
	assert.True(t, resp.TotalPaid.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, 1, m.tx.Calls)
	m.dividends.AssertExpectations(t)
	m.expenses.AssertExpectations(t)
}

func TestDistribute_SecondCallIsConflict(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	calc := calculation(domain.CalculationStatusDistributed)

	m.dividends.On("GetCalculationForUpdate", mock.Anything, calc.ID).Return(calc, nil)

	_, err := svc.Distribute(context.Background(), calc.ID, &domain.DistributeDividendsRequest{DistributionDate: "2025-03-01"})

	assert.ErrorIs(t, err, customError.ErrConflict)
	assert.ErrorIs(t, err, customError.ErrAlreadyDistributed)
	m.expenses.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	m.dividends.AssertNotCalled(t, "MarkAllocationsPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestDistribute_AllPaidIsConflict(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	calc := calculation(domain.CalculationStatusApproved)

	m.dividends.On("GetCalculationForUpdate", mock.Anything, calc.ID).Return(calc, nil)
	m.dividends.On("ListAllocations", mock.Anything, calc.ID).Return(allocations(calc, domain.PayoutStatusPaid, 10, 20), nil)

	_, err := svc.Distribute(context.Background(), calc.ID, &domain.DistributeDividendsRequest{DistributionDate: "2025-03-01"})

	assert.ErrorIs(t, err, customError.ErrAlreadyDistributed)
	m.expenses.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestDistribute_RequiresApproval(t *testing.T) {
	for _, status := range []string{domain.CalculationStatusDraft, domain.CalculationStatusUnderReview, domain.CalculationStatusCancelled} {
		t.Run(status, func(t *testing.T) {
			m := newRepoMocks()
			svc := newDividendService(m)
			calc := calculation(status)

			m.dividends.On("GetCalculationForUpdate", mock.Anything, calc.ID).Return(calc, nil)
			m.dividends.On("ListAllocations", mock.Anything, calc.ID).Return(allocations(calc, domain.PayoutStatusPending, 10), nil)

			_, err := svc.Distribute(context.Background(), calc.ID, &domain.DistributeDividendsRequest{DistributionDate: "2025-03-01"})

			assert.ErrorIs(t, err, customError.ErrConflict)
			assert.ErrorIs(t, err, customError.ErrInvalidTransition)
			m.dividends.AssertNotCalled(t, "UpdateCalculationStatus", mock.Anything, mock.Anything)
		})
	}
}

func TestDistribute_NotFound(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	id := uuid.New()

	m.dividends.On("GetCalculationForUpdate", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := svc.Distribute(context.Background(), id, &domain.DistributeDividendsRequest{DistributionDate: "2025-03-01"})

	assert.ErrorIs(t, err, customError.ErrNotFound)
}

func TestDistribute_ConcurrentChangeAborts(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	calc := calculation(domain.CalculationStatusApproved)

	m.dividends.On("GetCalculationForUpdate", mock.Anything, calc.ID).Return(calc, nil)
	m.dividends.On("ListAllocations", mock.Anything, calc.ID).Return(allocations(calc, domain.PayoutStatusPending, 10, 20), nil)
	m.dividends.On("UpdateCalculationStatus", mock.Anything, mock.Anything).Return(nil)
	m.dividends.On("MarkAllocationsPaid", mock.Anything, calc.ID, fixedNow).Return(int64(1), nil)

	_, err := svc.Distribute(context.Background(), calc.ID, &domain.DistributeDividendsRequest{DistributionDate: "2025-03-01"})

	assert.ErrorIs(t, err, customError.ErrConcurrentDistributed)
	m.expenses.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestDistribute_ExpenseFailureIsPersistenceError(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	calc := calculation(domain.CalculationStatusApproved)

	m.dividends.On("GetCalculationForUpdate", mock.Anything, calc.ID).Return(calc, nil)
	m.dividends.On("ListAllocations", mock.Anything, calc.ID).Return(allocations(calc, domain.PayoutStatusPending, 10), nil)
	m.dividends.On("UpdateCalculationStatus", mock.Anything, mock.Anything).Return(nil)
	m.dividends.On("MarkAllocationsPaid", mock.Anything, calc.ID, fixedNow).Return(int64(1), nil)
	m.expenses.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := svc.Distribute(context.Background(), calc.ID, &domain.DistributeDividendsRequest{DistributionDate: "2025-03-01"})

	assert.ErrorIs(t, err, customError.ErrPersistence)
	m.audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestDistribute_InvalidDate(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)

	_, err := svc.Distribute(context.Background(), uuid.New(), &domain.DistributeDividendsRequest{DistributionDate: "03/01/2025"})

	assert.ErrorIs(t, err, customError.ErrValidation)
	assert.Zero(t, m.tx.Calls)
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		wantKind error
	}{
		{name: "submit for review", from: domain.CalculationStatusDraft, to: domain.CalculationStatusUnderReview},
		{name: "approve", from: domain.CalculationStatusUnderReview, to: domain.CalculationStatusApproved},
		{name: "send back", from: domain.CalculationStatusUnderReview, to: domain.CalculationStatusDraft},
		{name: "cancel approved", from: domain.CalculationStatusApproved, to: domain.CalculationStatusCancelled},
		{name: "skip review", from: domain.CalculationStatusDraft, to: domain.CalculationStatusApproved, wantKind: customError.ErrConflict},
		{name: "revive cancelled", from: domain.CalculationStatusCancelled, to: domain.CalculationStatusDraft, wantKind: customError.ErrConflict},
		{name: "leave distributed", from: domain.CalculationStatusDistributed, to: domain.CalculationStatusCancelled, wantKind: customError.ErrConflict},
		{name: "distribute directly", from: domain.CalculationStatusApproved, to: domain.CalculationStatusDistributed, wantKind: customError.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newRepoMocks()
			svc := newDividendService(m)
			calc := calculation(tt.from)

			m.dividends.On("GetCalculationForUpdate", mock.Anything, calc.ID).Return(calc, nil).Maybe()
			m.dividends.On("UpdateCalculationStatus", mock.Anything, mock.Anything).Return(nil).Maybe()

			got, err := svc.Transition(context.Background(), calc.ID, &domain.TransitionCalculationRequest{Status: tt.to})

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
				m.dividends.AssertNotCalled(t, "UpdateCalculationStatus", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			if tt.to == domain.CalculationStatusApproved {
				require.NotNil(t, got.ApprovedAt)
				assert.Equal(t, fixedNow, *got.ApprovedAt)
			}
		})
	}
}

func TestGetCalculation_NotFound(t *testing.T) {
	m := newRepoMocks()
	svc := newDividendService(m)
	id := uuid.New()

	m.dividends.On("GetCalculation", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := svc.GetCalculation(context.Background(), id)

	assert.ErrorIs(t, err, customError.ErrCalculationNotFound)
}
