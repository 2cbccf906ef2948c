package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/chama-engine/internal/domain"
)

type contributionRepository struct {
	db *sqlx.DB
}

func NewContributionRepository(db *sqlx.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) Create(ctx context.Context, c *domain.Contribution) error {
	query := `
		INSERT INTO contributions (id, member_id, amount, contribution_date, contribution_type, fiscal_year, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		c.ID,
		c.MemberID,
		c.Amount,
		c.ContributionDate,
		c.ContributionType,
		c.FiscalYear,
		c.Reference,
		c.CreatedAt,
	)

	return mapError(err)
}

func (r *contributionRepository) SumRegularByYear(ctx context.Context, fiscalYear int) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM contributions
		WHERE fiscal_year = $1 AND contribution_type = $2
	`

	var total decimal.Decimal
	err := conn(ctx, r.db).GetContext(ctx, &total, query, fiscalYear, domain.ContributionTypeRegular)
	if err != nil {
		return decimal.Zero, mapError(err)
	}

	return total, nil
}

func (r *contributionRepository) RegularSavingsByMember(ctx context.Context, fiscalYear int) ([]MemberSavings, error) {
	query := `
		SELECT member_id, SUM(amount) AS savings
		FROM contributions
		WHERE fiscal_year = $1 AND contribution_type = $2
		GROUP BY member_id
	`

	var savings []MemberSavings
	err := conn(ctx, r.db).SelectContext(ctx, &savings, query, fiscalYear, domain.ContributionTypeRegular)
	if err != nil {
		return nil, mapError(err)
	}

	return savings, nil
}

type incomeRepository struct {
	db *sqlx.DB
}

func NewIncomeRepository(db *sqlx.DB) IncomeRepository {
	return &incomeRepository{db: db}
}

func (r *incomeRepository) Create(ctx context.Context, income *domain.IncomeRecord) error {
	query := `
		INSERT INTO income_records (id, source, description, amount, income_date, fiscal_year, affects_dividends, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		income.ID,
		income.Source,
		income.Description,
		income.Amount,
		income.IncomeDate,
		income.FiscalYear,
		income.AffectsDividends,
		income.CreatedAt,
	)

	return mapError(err)
}

func (r *incomeRepository) SumDividendIncomeByYear(ctx context.Context, fiscalYear int) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM income_records
		WHERE fiscal_year = $1 AND affects_dividends = TRUE
	`

	var total decimal.Decimal
	if err := conn(ctx, r.db).GetContext(ctx, &total, query, fiscalYear); err != nil {
		return decimal.Zero, mapError(err)
	}

	return total, nil
}

type expenseRepository struct {
	db *sqlx.DB
}

func NewExpenseRepository(db *sqlx.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

const insertExpense = `
	INSERT INTO expenses (id, category, description, amount, expense_date, fiscal_year, affects_dividends, member_id, reference_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (r *expenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	return r.insert(ctx, conn(ctx, r.db), e)
}

func (r *expenseRepository) CreateBatch(ctx context.Context, expenses []*domain.Expense) error {
	return withinTx(ctx, r.db, func(ctx context.Context) error {
		exec := conn(ctx, r.db)
		for _, e := range expenses {
			if err := r.insert(ctx, exec, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *expenseRepository) insert(ctx context.Context, exec executor, e *domain.Expense) error {
	_, err := exec.ExecContext(ctx, insertExpense,
		e.ID,
		e.Category,
		e.Description,
		e.Amount,
		e.ExpenseDate,
		e.FiscalYear,
		e.AffectsDividends,
		e.MemberID,
		e.ReferenceID,
		e.CreatedAt,
	)
	return mapError(err)
}

func (r *expenseRepository) CountByReference(ctx context.Context, referenceID uuid.UUID, category string) (int, error) {
	query := `SELECT COUNT(*) FROM expenses WHERE reference_id = $1 AND category = $2`

	var count int
	if err := conn(ctx, r.db).GetContext(ctx, &count, query, referenceID, category); err != nil {
		return 0, mapError(err)
	}

	return count, nil
}
