package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/internal/repository"
	customError "github.com/segyhp/chama-engine/pkg/errors"
	"github.com/segyhp/chama-engine/pkg/utils"
)

// LedgerService records the append-only money movements the engines read.
type LedgerService struct {
	members       repository.MemberRepository
	contributions repository.ContributionRepository
	income        repository.IncomeRepository
	expenses      repository.ExpenseRepository
	logger        *slog.Logger
	now           func() time.Time
}

func NewLedgerService(repos *repository.Repositories, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		members:       repos.Members,
		contributions: repos.Contributions,
		income:        repos.Income,
		expenses:      repos.Expenses,
		logger:        logger,
		now:           time.Now,
	}
}

func fiscalYearOf(explicit int, date time.Time) int {
	if explicit > 0 {
		return explicit
	}
	return date.Year()
}

func (s *LedgerService) RecordContribution(ctx context.Context, req *domain.RecordContributionRequest) (*domain.Contribution, error) {
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		return nil, customError.WrapValidation(fmt.Sprintf("invalid member_id %q", req.MemberID))
	}

	date, err := utils.ParseDate(req.ContributionDate)
	if err != nil {
		return nil, customError.WrapValidation(fmt.Sprintf("invalid contribution_date %q", req.ContributionDate))
	}

	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapMemberNotFound(req.MemberID)
		}
		return nil, customError.WrapDatabaseError("get member", err)
	}

	contribution := &domain.Contribution{
		ID:               uuid.New(),
		MemberID:         memberID,
		Amount:           utils.RoundMoney(req.Amount),
		ContributionDate: date,
		ContributionType: req.ContributionType,
		FiscalYear:       fiscalYearOf(req.FiscalYear, date),
		Reference:        req.Reference,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.contributions.Create(ctx, contribution); err != nil {
		return nil, customError.WrapDatabaseError("create contribution", err)
	}

	s.logger.InfoContext(ctx, "Contribution recorded",
		slog.String("member_id", req.MemberID),
		slog.String("type", contribution.ContributionType),
		slog.String("amount", contribution.Amount.String()),
		slog.Int("fiscal_year", contribution.FiscalYear),
	)

	return contribution, nil
}

func (s *LedgerService) RecordIncome(ctx context.Context, req *domain.RecordIncomeRequest) (*domain.IncomeRecord, error) {
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}

	date, err := utils.ParseDate(req.IncomeDate)
	if err != nil {
		return nil, customError.WrapValidation(fmt.Sprintf("invalid income_date %q", req.IncomeDate))
	}

	affects := true
	if req.AffectsDividends != nil {
		affects = *req.AffectsDividends
	}

	income := &domain.IncomeRecord{
		ID:               uuid.New(),
		Source:           req.Source,
		Description:      req.Description,
		Amount:           utils.RoundMoney(req.Amount),
		IncomeDate:       date,
		FiscalYear:       fiscalYearOf(req.FiscalYear, date),
		AffectsDividends: affects,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.income.Create(ctx, income); err != nil {
		return nil, customError.WrapDatabaseError("create income record", err)
	}

	return income, nil
}

// RecordExpense books an operating expense. dividend_payout rows are only
// written by dividend distribution.
func (s *LedgerService) RecordExpense(ctx context.Context, req *domain.RecordExpenseRequest) (*domain.Expense, error) {
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}
	if req.Category == domain.ExpenseCategoryDividendPayout {
		return nil, customError.WrapValidation("dividend_payout expenses are booked by dividend distribution")
	}

	date, err := utils.ParseDate(req.ExpenseDate)
	if err != nil {
		return nil, customError.WrapValidation(fmt.Sprintf("invalid expense_date %q", req.ExpenseDate))
	}

	expense := &domain.Expense{
		ID:               uuid.New(),
		Category:         req.Category,
		Description:      req.Description,
		Amount:           utils.RoundMoney(req.Amount),
		ExpenseDate:      date,
		FiscalYear:       fiscalYearOf(req.FiscalYear, date),
		AffectsDividends: req.AffectsDividends,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, customError.WrapDatabaseError("create expense", err)
	}

	return expense, nil
}
