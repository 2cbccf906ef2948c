package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/chama-engine/internal/domain"
)

const calculationColumns = `id, fiscal_year, total_dividend_income, total_regular_savings, total_dividends_fund,
	status, calculation_formula, allocation_method, member_count, created_by, created_at, updated_at,
	approved_at, distributed_at`

type dividendRepository struct {
	db *sqlx.DB
}

func NewDividendRepository(db *sqlx.DB) DividendRepository {
	return &dividendRepository{db: db}
}

func (r *dividendRepository) CreateCalculation(ctx context.Context, calc *domain.DividendFundCalculation) error {
	query := `
		INSERT INTO dividends_fund_calculations (id, fiscal_year, total_dividend_income, total_regular_savings,
			total_dividends_fund, status, calculation_formula, allocation_method, member_count, created_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		calc.ID,
		calc.FiscalYear,
		calc.TotalDividendIncome,
		calc.TotalRegularSavings,
		calc.TotalDividendsFund,
		calc.Status,
		calc.CalculationFormula,
		calc.AllocationMethod,
		calc.MemberCount,
		calc.CreatedBy,
		calc.CreatedAt,
		calc.UpdatedAt,
	)

	return mapError(err)
}

func (r *dividendRepository) CreateAllocations(ctx context.Context, allocations []*domain.DividendAllocation) error {
	query := `
		INSERT INTO dividend_allocations (id, calculation_id, member_id, member_contribution_for_dividends,
			total_contributions_for_dividends, share_percentage, allocated_amount, payout_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	return withinTx(ctx, r.db, func(ctx context.Context) error {
		exec := conn(ctx, r.db)
		for _, a := range allocations {
			_, err := exec.ExecContext(ctx, query,
				a.ID,
				a.CalculationID,
				a.MemberID,
				a.MemberContributionForDividends,
				a.TotalContributionsForDividends,
				a.SharePercentage,
				a.AllocatedAmount,
				a.PayoutStatus,
				a.CreatedAt,
			)
			if err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

func (r *dividendRepository) ExistsForYear(ctx context.Context, fiscalYear int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM dividends_fund_calculations WHERE fiscal_year = $1)`

	var exists bool
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, fiscalYear); err != nil {
		return false, mapError(err)
	}

	return exists, nil
}

func (r *dividendRepository) GetCalculation(ctx context.Context, id uuid.UUID) (*domain.DividendFundCalculation, error) {
	return r.getCalculation(ctx, `SELECT `+calculationColumns+` FROM dividends_fund_calculations WHERE id = $1`, id)
}

func (r *dividendRepository) GetCalculationForUpdate(ctx context.Context, id uuid.UUID) (*domain.DividendFundCalculation, error) {
	return r.getCalculation(ctx, `SELECT `+calculationColumns+` FROM dividends_fund_calculations WHERE id = $1 FOR UPDATE`, id)
}

func (r *dividendRepository) getCalculation(ctx context.Context, query string, id uuid.UUID) (*domain.DividendFundCalculation, error) {
	var calc domain.DividendFundCalculation
	if err := conn(ctx, r.db).GetContext(ctx, &calc, query, id); err != nil {
		return nil, mapError(err)
	}
	return &calc, nil
}

func (r *dividendRepository) ListCalculations(ctx context.Context) ([]*domain.DividendFundCalculation, error) {
	query := `SELECT ` + calculationColumns + ` FROM dividends_fund_calculations ORDER BY fiscal_year DESC`

	var calcs []*domain.DividendFundCalculation
	if err := conn(ctx, r.db).SelectContext(ctx, &calcs, query); err != nil {
		return nil, mapError(err)
	}

	return calcs, nil
}

func (r *dividendRepository) ListAllocations(ctx context.Context, calculationID uuid.UUID) ([]*domain.DividendAllocation, error) {
	query := `
		SELECT id, calculation_id, member_id, member_contribution_for_dividends, total_contributions_for_dividends,
			share_percentage, allocated_amount, payout_status, paid_at, created_at
		FROM dividend_allocations
		WHERE calculation_id = $1
		ORDER BY created_at, id
	`

	var allocations []*domain.DividendAllocation
	if err := conn(ctx, r.db).SelectContext(ctx, &allocations, query, calculationID); err != nil {
		return nil, mapError(err)
	}

	return allocations, nil
}

func (r *dividendRepository) UpdateCalculationStatus(ctx context.Context, calc *domain.DividendFundCalculation) error {
	query := `
		UPDATE dividends_fund_calculations
		SET status = $2, updated_at = $3, approved_at = $4, distributed_at = $5
		WHERE id = $1
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		calc.ID,
		calc.Status,
		calc.UpdatedAt,
		calc.ApprovedAt,
		calc.DistributedAt,
	)
	if err != nil {
		return mapError(err)
	}

	return requireAffected(result)
}

func (r *dividendRepository) MarkAllocationsPaid(ctx context.Context, calculationID uuid.UUID, paidAt time.Time) (int64, error) {
	query := `
		UPDATE dividend_allocations
		SET payout_status = $2, paid_at = $3
		WHERE calculation_id = $1 AND payout_status = $4
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		calculationID,
		domain.PayoutStatusPaid,
		paidAt,
		domain.PayoutStatusPending,
	)
	if err != nil {
		return 0, mapError(err)
	}

	return result.RowsAffected()
}
