package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/chama-engine/internal/domain"
)

const loanColumns = `id, member_id, principal, monthly_interest_rate, term_months, issue_date, interest_type, status, created_at, updated_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, member_id, principal, monthly_interest_rate, term_months, issue_date, interest_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		loan.ID,
		loan.MemberID,
		loan.Principal,
		loan.MonthlyInterestRate,
		loan.TermMonths,
		loan.IssueDate,
		loan.InterestType,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return mapError(err)
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id)
}

func (r *loanRepository) get(ctx context.Context, query string, id uuid.UUID) (*domain.Loan, error) {
	var loan domain.Loan
	if err := conn(ctx, r.db).GetContext(ctx, &loan, query, id); err != nil {
		return nil, mapError(err)
	}
	return &loan, nil
}

func (r *loanRepository) ListByStatuses(ctx context.Context, statuses ...string) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = ANY($1) ORDER BY issue_date, id`

	var loans []*domain.Loan
	err := conn(ctx, r.db).SelectContext(ctx, &loans, query, pq.Array(statuses))
	if err != nil {
		return nil, mapError(err)
	}

	return loans, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedAt time.Time) error {
	query := `UPDATE loans SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, status, updatedAt)
	if err != nil {
		return mapError(err)
	}

	return requireAffected(result)
}

type repaymentRepository struct {
	db *sqlx.DB
}

func NewRepaymentRepository(db *sqlx.DB) RepaymentRepository {
	return &repaymentRepository{db: db}
}

func (r *repaymentRepository) Create(ctx context.Context, p *domain.LoanRepayment) error {
	query := `
		INSERT INTO loan_repayments (id, loan_id, member_id, payment_date, amount, principal_portion, interest_portion, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		p.ID,
		p.LoanID,
		p.MemberID,
		p.PaymentDate,
		p.Amount,
		p.PrincipalPortion,
		p.InterestPortion,
		p.PaymentMethod,
		p.CreatedAt,
	)

	return mapError(err)
}

func (r *repaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanRepayment, error) {
	query := `
		SELECT id, loan_id, member_id, payment_date, amount, principal_portion, interest_portion, payment_method, created_at
		FROM loan_repayments
		WHERE loan_id = $1
		ORDER BY payment_date, created_at
	`

	var repayments []*domain.LoanRepayment
	if err := conn(ctx, r.db).SelectContext(ctx, &repayments, query, loanID); err != nil {
		return nil, mapError(err)
	}

	return repayments, nil
}
