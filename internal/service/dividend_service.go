package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/chama-engine/internal/allocation"
	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/internal/repository"
	customError "github.com/segyhp/chama-engine/pkg/errors"
	"github.com/segyhp/chama-engine/pkg/utils"
)

type DividendService struct {
	tx            repository.Transactor
	members       repository.MemberRepository
	contributions repository.ContributionRepository
	income        repository.IncomeRepository
	expenses      repository.ExpenseRepository
	dividends     repository.DividendRepository
	settings      *SettingsProvider
	audit         *auditor
	logger        *slog.Logger
	now           func() time.Time
}

func NewDividendService(repos *repository.Repositories, settings *SettingsProvider, logger *slog.Logger) *DividendService {
	return &DividendService{
		tx:            repos.Transactor,
		members:       repos.Members,
		contributions: repos.Contributions,
		income:        repos.Income,
		expenses:      repos.Expenses,
		dividends:     repos.Dividends,
		settings:      settings,
		audit:         &auditor{repo: repos.Audit, logger: logger, now: time.Now},
		logger:        logger,
		now:           time.Now,
	}
}

// ComputePool aggregates the dividend income and regular savings of a fiscal year.
func (s *DividendService) ComputePool(ctx context.Context, fiscalYear int) (*domain.DividendPool, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.computePool(ctx, settings, fiscalYear)
}

func (s *DividendService) computePool(ctx context.Context, settings domain.EngineSettings, fiscalYear int) (*domain.DividendPool, error) {
	currentYear := s.now().Year()
	if fiscalYear < settings.MinFiscalYear || fiscalYear > currentYear {
		return nil, customError.WrapInvalidFiscalYear(fiscalYear, settings.MinFiscalYear, currentYear)
	}

	income, err := s.income.SumDividendIncomeByYear(ctx, fiscalYear)
	if err != nil {
		return nil, customError.WrapDatabaseError("sum dividend income", err)
	}

	savings, err := s.contributions.SumRegularByYear(ctx, fiscalYear)
	if err != nil {
		return nil, customError.WrapDatabaseError("sum regular savings", err)
	}

	return &domain.DividendPool{
		FiscalYear:          fiscalYear,
		TotalDividendIncome: income,
		TotalRegularSavings: savings,
		TotalDividendsFund:  income,
	}, nil
}

// Calculate creates the draft calculation of a fiscal year and one allocation
// per contributing member.
func (s *DividendService) Calculate(ctx context.Context, req *domain.CalculateDividendsRequest) (*domain.CalculationResponse, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	pool, err := s.computePool(ctx, settings, req.FiscalYear)
	if err != nil {
		return nil, err
	}

	if !pool.TotalDividendsFund.IsPositive() || !pool.TotalRegularSavings.IsPositive() {
		return nil, customError.WrapFundNotPositive(req.FiscalYear)
	}

	exists, err := s.dividends.ExistsForYear(ctx, req.FiscalYear)
	if err != nil {
		return nil, customError.WrapDatabaseError("check dividend calculation", err)
	}
	if exists {
		return nil, customError.WrapCalculationExists(req.FiscalYear)
	}

	contributors, err := s.contributors(ctx, req.FiscalYear)
	if err != nil {
		return nil, err
	}

	shares, err := allocation.Allocate(contributors, pool.TotalRegularSavings, pool.TotalDividendsFund, settings.AllocationMethod)
	if err != nil {
		return nil, customError.WrapValidation(err.Error())
	}

	now := s.now().UTC()
	calc := &domain.DividendFundCalculation{
		ID:                  uuid.New(),
		FiscalYear:          req.FiscalYear,
		TotalDividendIncome: pool.TotalDividendIncome,
		TotalRegularSavings: pool.TotalRegularSavings,
		TotalDividendsFund:  pool.TotalDividendsFund,
		Status:              domain.CalculationStatusDraft,
		CalculationFormula:  allocation.Formula(pool.TotalRegularSavings, pool.TotalDividendsFund, settings.AllocationMethod),
		AllocationMethod:    settings.AllocationMethod,
		MemberCount:         len(shares),
		CreatedBy:           req.CreatedBy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	allocations := make([]*domain.DividendAllocation, 0, len(shares))
	for _, share := range shares {
		allocations = append(allocations, &domain.DividendAllocation{
			ID:                             uuid.New(),
			CalculationID:                  calc.ID,
			MemberID:                       share.MemberID,
			MemberContributionForDividends: share.Savings,
			TotalContributionsForDividends: pool.TotalRegularSavings,
			SharePercentage:                share.SharePercentage,
			AllocatedAmount:                share.Amount,
			PayoutStatus:                   domain.PayoutStatusPending,
			CreatedAt:                      now,
		})
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.dividends.CreateCalculation(ctx, calc); err != nil {
			return err
		}
		return s.dividends.CreateAllocations(ctx, allocations)
	})
	if err != nil {
		// The unique fiscal_year index catches a concurrent Calculate.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, customError.WrapCalculationExists(req.FiscalYear)
		}
		return nil, customError.WrapDatabaseError("create dividend calculation", err)
	}

	allocated := allocation.Total(shares)
	s.logger.InfoContext(ctx, "Dividend calculation created",
		slog.String("calculation_id", calc.ID.String()),
		slog.Int("fiscal_year", calc.FiscalYear),
		slog.String("fund", calc.TotalDividendsFund.String()),
		slog.String("allocated", allocated.String()),
		slog.Int("member_count", calc.MemberCount),
	)

	s.audit.record(ctx, domain.AuditActionDividendCalculated, req.CreatedBy, map[string]interface{}{
		"calculation_id":       calc.ID,
		"fiscal_year":          calc.FiscalYear,
		"total_dividends_fund": calc.TotalDividendsFund,
		"total_allocated":      allocated,
		"member_count":         calc.MemberCount,
		"formula":              calc.CalculationFormula,
	})

	return &domain.CalculationResponse{Calculation: calc, Allocations: allocations}, nil
}

// contributors returns every active member plus any other member with regular
// savings in the year, ordered by member number.
func (s *DividendService) contributors(ctx context.Context, fiscalYear int) ([]allocation.Contributor, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError("list members", err)
	}

	savings, err := s.contributions.RegularSavingsByMember(ctx, fiscalYear)
	if err != nil {
		return nil, customError.WrapDatabaseError("group regular savings", err)
	}

	byMember := make(map[uuid.UUID]decimal.Decimal, len(savings))
	for _, ms := range savings {
		byMember[ms.MemberID] = ms.Savings
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].MemberNumber < members[j].MemberNumber
	})

	contributors := make([]allocation.Contributor, 0, len(members))
	for _, m := range members {
		saved, ok := byMember[m.ID]
		if !ok {
			saved = decimal.Zero
		}
		if !m.IsActive() && !saved.IsPositive() {
			continue
		}
		contributors = append(contributors, allocation.Contributor{MemberID: m.ID, Savings: saved})
	}

	return contributors, nil
}

// Transition performs the administrative status changes of a calculation.
// Moving to distributed is only possible through Distribute.
func (s *DividendService) Transition(ctx context.Context, calculationID uuid.UUID, req *domain.TransitionCalculationRequest) (*domain.DividendFundCalculation, error) {
	if req.Status == domain.CalculationStatusDistributed {
		return nil, customError.WrapValidation("use the distribute operation to distribute a calculation")
	}

	var (
		calc *domain.DividendFundCalculation
		from string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.lockCalculation(ctx, calculationID)
		if err != nil {
			return err
		}

		if !domain.CanTransition(locked.Status, req.Status) {
			return customError.WrapInvalidTransition(calculationID.String(), locked.Status, req.Status)
		}

		now := s.now().UTC()
		from = locked.Status
		locked.Status = req.Status
		locked.UpdatedAt = now
		switch req.Status {
		case domain.CalculationStatusApproved:
			locked.ApprovedAt = &now
		case domain.CalculationStatusDraft:
			locked.ApprovedAt = nil
		}

		if err := s.dividends.UpdateCalculationStatus(ctx, locked); err != nil {
			return customError.WrapDatabaseError("update dividend calculation status", err)
		}

		calc = locked
		return nil
	})
	if err != nil {
		return nil, businessError("transition dividend calculation", err)
	}

	s.logger.InfoContext(ctx, "Dividend calculation status changed",
		slog.String("calculation_id", calc.ID.String()),
		slog.String("from", from),
		slog.String("to", calc.Status),
	)

	s.audit.record(ctx, domain.AuditActionDividendTransition, req.Actor, map[string]interface{}{
		"calculation_id": calc.ID,
		"fiscal_year":    calc.FiscalYear,
		"from":           from,
		"to":             calc.Status,
	})

	return calc, nil
}

// Distribute marks an approved calculation distributed, marks its allocations
// paid and books one dividend_payout expense per allocation. All three effects
// commit together or not at all.
func (s *DividendService) Distribute(ctx context.Context, calculationID uuid.UUID, req *domain.DistributeDividendsRequest) (*domain.DistributionResponse, error) {
	distributionDate, err := utils.ParseDate(req.DistributionDate)
	if err != nil {
		return nil, customError.WrapValidation(fmt.Sprintf("invalid distribution_date %q", req.DistributionDate))
	}

	var result *domain.DistributionResponse
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		calc, err := s.lockCalculation(ctx, calculationID)
		if err != nil {
			return err
		}

		if calc.Status == domain.CalculationStatusDistributed {
			return customError.WrapAlreadyDistributed(calculationID.String())
		}

		allocations, err := s.dividends.ListAllocations(ctx, calc.ID)
		if err != nil {
			return customError.WrapDatabaseError("list dividend allocations", err)
		}

		pending := make([]*domain.DividendAllocation, 0, len(allocations))
		for _, a := range allocations {
			if a.PayoutStatus != domain.PayoutStatusPaid {
				pending = append(pending, a)
			}
		}
		if len(allocations) > 0 && len(pending) == 0 {
			return customError.WrapAlreadyDistributed(calculationID.String())
		}

		if calc.Status != domain.CalculationStatusApproved {
			return customError.WrapInvalidTransition(calculationID.String(), calc.Status, domain.CalculationStatusDistributed)
		}
		if len(allocations) == 0 {
			return customError.WrapNoAllocations(calculationID.String())
		}

		now := s.now().UTC()
		calc.Status = domain.CalculationStatusDistributed
		calc.DistributedAt = &now
		calc.UpdatedAt = now
		if err := s.dividends.UpdateCalculationStatus(ctx, calc); err != nil {
			return customError.WrapDatabaseError("update dividend calculation status", err)
		}

		paid, err := s.dividends.MarkAllocationsPaid(ctx, calc.ID, now)
		if err != nil {
			return customError.WrapDatabaseError("mark dividend allocations paid", err)
		}
		if paid != int64(len(pending)) {
			return customError.WrapConcurrentDistribution(calculationID.String())
		}

		expenses := make([]*domain.Expense, 0, len(pending))
		total := decimal.Zero
		for _, a := range pending {
			memberID, referenceID := a.MemberID, calc.ID
			expenses = append(expenses, &domain.Expense{
				ID:               uuid.New(),
				Category:         domain.ExpenseCategoryDividendPayout,
				Description:      fmt.Sprintf("Dividend payout for fiscal year %d", calc.FiscalYear),
				Amount:           a.AllocatedAmount,
				ExpenseDate:      distributionDate,
				FiscalYear:       calc.FiscalYear,
				AffectsDividends: false,
				MemberID:         &memberID,
				ReferenceID:      &referenceID,
				CreatedAt:        now,
			})
			total = total.Add(a.AllocatedAmount)
		}

		if err := s.expenses.CreateBatch(ctx, expenses); err != nil {
			return customError.WrapDatabaseError("book dividend payout expenses", err)
		}

		result = &domain.DistributionResponse{
			Calculation:    calc,
			ExpensesBooked: len(expenses),
			TotalPaid:      total,
		}
		return nil
	})
	if err != nil {
		return nil, businessError("distribute dividends", err)
	}

	s.logger.InfoContext(ctx, "Dividends distributed",
		slog.String("calculation_id", result.Calculation.ID.String()),
		slog.Int("fiscal_year", result.Calculation.FiscalYear),
		slog.Int("expenses_booked", result.ExpensesBooked),
		slog.String("total_paid", result.TotalPaid.String()),
	)

	s.audit.record(ctx, domain.AuditActionDividendDistributed, req.Actor, map[string]interface{}{
		"calculation_id":    result.Calculation.ID,
		"fiscal_year":       result.Calculation.FiscalYear,
		"distribution_date": req.DistributionDate,
		"expenses_booked":   result.ExpensesBooked,
		"total_paid":        result.TotalPaid,
	})

	return result, nil
}

func (s *DividendService) lockCalculation(ctx context.Context, id uuid.UUID) (*domain.DividendFundCalculation, error) {
	calc, err := s.dividends.GetCalculationForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapCalculationNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError("lock dividend calculation", err)
	}
	return calc, nil
}

func (s *DividendService) GetCalculation(ctx context.Context, calculationID uuid.UUID) (*domain.CalculationResponse, error) {
	calc, err := s.dividends.GetCalculation(ctx, calculationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapCalculationNotFound(calculationID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError("get dividend calculation", err)
	}

	allocations, err := s.dividends.ListAllocations(ctx, calculationID)
	if err != nil {
		return nil, customError.WrapDatabaseError("list dividend allocations", err)
	}

	return &domain.CalculationResponse{Calculation: calc, Allocations: allocations}, nil
}

func (s *DividendService) ListCalculations(ctx context.Context) ([]*domain.DividendFundCalculation, error) {
	calcs, err := s.dividends.ListCalculations(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError("list dividend calculations", err)
	}
	return calcs, nil
}
