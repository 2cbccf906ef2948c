// Package amortization projects month-by-month loan schedules and derives loan
// status from the resulting balance.
package amortization

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/pkg/utils"
)

// DefaultRepaidEpsilon is the outstanding balance at or below which a loan counts as repaid.
var DefaultRepaidEpsilon = decimal.New(1, -2)

// BuildSchedule projects the loan from its issue date through the month that
// contains asOf, applying recorded repayments to the month they were paid in.
//
// Row 0 records the disbursement. Every following row charges interest on the
// opening balance (declining) or on the original principal for the loan term
// (flat), then subtracts that month's repayments. Balances are not clamped.
func BuildSchedule(loan *domain.Loan, repayments []*domain.LoanRepayment, asOf time.Time) []domain.ScheduleRow {
	monthsElapsed := utils.MonthsBetween(loan.IssueDate, asOf)

	rows := make([]domain.ScheduleRow, 0, monthsElapsed+2)
	rows = append(rows, domain.ScheduleRow{
		Month:          0,
		Date:           loan.IssueDate,
		OpeningBalance: decimal.Zero,
		LoanIssued:     loan.Principal,
		Interest:       decimal.Zero,
		Repayment:      decimal.Zero,
		ClosingBalance: loan.Principal,
	})

	byMonth := groupRepayments(loan.IssueDate, repayments)

	balance := loan.Principal
	for m := 1; m <= monthsElapsed+1; m++ {
		date := utils.AddMonths(loan.IssueDate, m)
		opening := balance
		interest := monthlyInterest(loan, opening, m)
		repaid := byMonth[utils.MonthKey(date)]

		balance = opening.Add(interest).Sub(repaid)
		rows = append(rows, domain.ScheduleRow{
			Month:          m,
			Date:           date,
			OpeningBalance: opening,
			LoanIssued:     decimal.Zero,
			Interest:       interest,
			Repayment:      repaid,
			ClosingBalance: balance,
		})
	}

	return rows
}

// groupRepayments buckets repayments by the year-month of the schedule row
// they settle.
func groupRepayments(issueDate time.Time, repayments []*domain.LoanRepayment) map[string]decimal.Decimal {
	byMonth := make(map[string]decimal.Decimal)
	for _, r := range repayments {
		key := appliedMonth(issueDate, r.PaymentDate)
		byMonth[key] = byMonth[key].Add(r.Amount)
	}
	return byMonth
}

// appliedMonth is the month key of the row a payment made on paidOn lands in.
// Payments made in or before the issue month count towards month 1.
func appliedMonth(issueDate, paidOn time.Time) string {
	key := utils.MonthKey(paidOn)
	if key <= utils.MonthKey(issueDate) {
		return utils.MonthKey(utils.AddMonths(issueDate, 1))
	}
	return key
}

// monthlyInterest is booked in whole cents, matching what the member is charged.
func monthlyInterest(loan *domain.Loan, opening decimal.Decimal, month int) decimal.Decimal {
	// An overpaid loan owes the member money; the chama does not pay interest on it.
	if !opening.IsPositive() {
		return decimal.Zero
	}

	switch loan.InterestType {
	case domain.InterestTypeFlat:
		if loan.TermMonths > 0 && month > loan.TermMonths {
			return decimal.Zero
		}
		return utils.RoundMoney(loan.Principal.Mul(loan.MonthlyInterestRate))
	default:
		return utils.RoundMoney(opening.Mul(loan.MonthlyInterestRate))
	}
}

// Summarize totals a schedule. Outstanding equals the last closing balance.
func Summarize(rows []domain.ScheduleRow) domain.ScheduleSummary {
	principal := decimal.Zero
	summary := domain.ScheduleSummary{
		TotalInterest: decimal.Zero,
		TotalRepaid:   decimal.Zero,
	}
	for _, row := range rows {
		principal = principal.Add(row.LoanIssued)
		summary.TotalInterest = summary.TotalInterest.Add(row.Interest)
		summary.TotalRepaid = summary.TotalRepaid.Add(row.Repayment)
	}
	summary.Outstanding = Outstanding(principal, summary.TotalInterest, summary.TotalRepaid)
	return summary
}

// Outstanding computes principal + accrued interest - repayments.
func Outstanding(principal, accruedInterest, totalRepayments decimal.Decimal) decimal.Decimal {
	return principal.Add(accruedInterest).Sub(totalRepayments)
}

// DeriveStatus promotes a loan to repaid once the outstanding balance is within
// epsilon of zero. Any other stored status is kept, and repaid is never undone.
func DeriveStatus(current string, outstanding, epsilon decimal.Decimal) string {
	if current == domain.LoanStatusRepaid {
		return current
	}
	if outstanding.LessThanOrEqual(epsilon) {
		return domain.LoanStatusRepaid
	}
	return current
}

// ProjectionHorizonMonths is how far past maturity a schedule may be projected.
const ProjectionHorizonMonths = 60

// ProjectionLimit is the latest as-of date a schedule is built for.
func ProjectionLimit(loan *domain.Loan) time.Time {
	term := loan.TermMonths
	if term < 0 {
		term = 0
	}
	return utils.AddMonths(loan.IssueDate, term+ProjectionHorizonMonths)
}

// IsPastTerm reports whether asOf is after the loan's maturity date.
func IsPastTerm(loan *domain.Loan, asOf time.Time) bool {
	if loan.TermMonths <= 0 {
		return false
	}
	return asOf.After(loan.MaturityDate())
}

// UnpaidInterest is the interest accrued up to and including the row a payment
// made on paidOn settles, less the interest portions already recorded. Rows
// after that month are ignored: their interest has not fallen due yet.
func UnpaidInterest(rows []domain.ScheduleRow, repayments []*domain.LoanRepayment, paidOn time.Time) decimal.Decimal {
	if len(rows) == 0 {
		return decimal.Zero
	}

	through := appliedMonth(rows[0].Date, paidOn)
	accrued := decimal.Zero
	for _, row := range rows[1:] {
		if utils.MonthKey(row.Date) > through {
			break
		}
		accrued = accrued.Add(row.Interest)
	}

	paid := decimal.Zero
	for _, r := range repayments {
		paid = paid.Add(r.InterestPortion)
	}
	unpaid := accrued.Sub(paid)
	if unpaid.IsNegative() {
		return decimal.Zero
	}
	return unpaid
}
