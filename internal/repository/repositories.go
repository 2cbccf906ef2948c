package repository

import "github.com/jmoiron/sqlx"

// Repositories bundles every repository over one database handle.
type Repositories struct {
	Transactor    Transactor
	Members       MemberRepository
	Contributions ContributionRepository
	Income        IncomeRepository
	Expenses      ExpenseRepository
	Loans         LoanRepository
	Repayments    RepaymentRepository
	Dividends     DividendRepository
	Audit         AuditRepository
	Settings      SettingsRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Transactor:    NewTransactor(db),
		Members:       NewMemberRepository(db),
		Contributions: NewContributionRepository(db),
		Income:        NewIncomeRepository(db),
		Expenses:      NewExpenseRepository(db),
		Loans:         NewLoanRepository(db),
		Repayments:    NewRepaymentRepository(db),
		Dividends:     NewDividendRepository(db),
		Audit:         NewAuditRepository(db),
		Settings:      NewSettingsRepository(db),
	}
}
