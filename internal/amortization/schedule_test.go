package amortization

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/chama-engine/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newLoan(principal int64, rate string, issue time.Time, interestType string) *domain.Loan {
	return &domain.Loan{
		ID:                  uuid.New(),
		MemberID:            uuid.New(),
		Principal:           decimal.NewFromInt(principal),
		MonthlyInterestRate: decimal.RequireFromString(rate),
		TermMonths:          12,
		IssueDate:           issue,
		InterestType:        interestType,
		Status:              domain.LoanStatusActive,
	}
}

func repayment(loan *domain.Loan, amount int64, paid time.Time) *domain.LoanRepayment {
	return &domain.LoanRepayment{
		ID:          uuid.New(),
		LoanID:      loan.ID,
		MemberID:    loan.MemberID,
		PaymentDate: paid,
		Amount:      decimal.NewFromInt(amount),
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, actual.Equal(decimal.RequireFromString(expected)),
		append([]interface{}{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

func TestBuildSchedule_ReconcilesRepayment(t *testing.T) {
	loan := newLoan(50000, "0.015", date(2024, 1, 1), domain.InterestTypeDeclining)
	repayments := []*domain.LoanRepayment{repayment(loan, 10000, date(2024, 2, 15))}

	rows := BuildSchedule(loan, repayments, date(2024, 3, 10))

	require.Len(t, rows, 4) // disbursement + months 1..3

	issued := rows[0]
	assert.Equal(t, date(2024, 1, 1), issued.Date)
	assertDecimal(t, "0", issued.OpeningBalance)
	assertDecimal(t, "50000", issued.LoanIssued)
	assertDecimal(t, "50000", issued.ClosingBalance)

	month1 := rows[1]
	assert.Equal(t, date(2024, 2, 1), month1.Date)
	assertDecimal(t, "50000", month1.OpeningBalance)
	assertDecimal(t, "750", month1.Interest)
	assertDecimal(t, "10000", month1.Repayment)
	assertDecimal(t, "40750", month1.ClosingBalance)

	month2 := rows[2]
	assertDecimal(t, "40750", month2.OpeningBalance)
	assertDecimal(t, "611.25", month2.Interest)
	assertDecimal(t, "0", month2.Repayment)
	assertDecimal(t, "41361.25", month2.ClosingBalance)
}

func TestBuildSchedule_RowCount(t *testing.T) {
	loan := newLoan(1000, "0.01", date(2024, 1, 15), domain.InterestTypeDeclining)

	tests := []struct {
		name string
		asOf time.Time
		rows int
	}{
		{name: "issued today", asOf: date(2024, 1, 15), rows: 2},
		{name: "before a full month", asOf: date(2024, 2, 14), rows: 2},
		{name: "one full month", asOf: date(2024, 2, 15), rows: 3},
		{name: "asOf before issue", asOf: date(2023, 12, 1), rows: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, BuildSchedule(loan, nil, tt.asOf), tt.rows)
		})
	}
}

func TestBuildSchedule_OverpaymentGoesNegative(t *testing.T) {
	loan := newLoan(1000, "0.02", date(2024, 1, 1), domain.InterestTypeDeclining)
	repayments := []*domain.LoanRepayment{repayment(loan, 1500, date(2024, 2, 3))}

	rows := BuildSchedule(loan, repayments, date(2024, 3, 1))

	assertDecimal(t, "-480", rows[1].ClosingBalance) // 1000 + 20 - 1500
	// No interest accrues on a credit balance.
	assertDecimal(t, "0", rows[2].Interest)
	assertDecimal(t, "-480", rows[2].ClosingBalance)
}

func TestBuildSchedule_GroupsRepaymentsByMonth(t *testing.T) {
	loan := newLoan(10000, "0.01", date(2024, 1, 10), domain.InterestTypeDeclining)
	repayments := []*domain.LoanRepayment{
		repayment(loan, 500, date(2024, 1, 20)), // issue month, counted in month 1
		repayment(loan, 1000, date(2024, 2, 1)),
		repayment(loan, 250, date(2024, 2, 28)),
		repayment(loan, 300, date(2024, 3, 5)),
	}

	rows := BuildSchedule(loan, repayments, date(2024, 3, 12))

	require.Len(t, rows, 4)
	assertDecimal(t, "1750", rows[1].Repayment)
	assertDecimal(t, "300", rows[2].Repayment)
	assertDecimal(t, "0", rows[3].Repayment)
}

func TestBuildSchedule_FlatInterest(t *testing.T) {
	loan := newLoan(12000, "0.015", date(2024, 1, 1), domain.InterestTypeFlat)
	loan.TermMonths = 2
	repayments := []*domain.LoanRepayment{repayment(loan, 2000, date(2024, 2, 10))}

	rows := BuildSchedule(loan, repayments, date(2024, 4, 1))

	require.Len(t, rows, 5)
	// Flat interest is always charged on the original principal.
	assertDecimal(t, "180", rows[1].Interest)
	assertDecimal(t, "180", rows[2].Interest)
	// Nothing accrues after the term.
	assertDecimal(t, "0", rows[3].Interest)
	assertDecimal(t, "10360", rows[4].ClosingBalance) // 12000 + 360 - 2000
}

func TestSummarize(t *testing.T) {
	loan := newLoan(50000, "0.015", date(2024, 1, 1), domain.InterestTypeDeclining)
	repayments := []*domain.LoanRepayment{repayment(loan, 10000, date(2024, 2, 15))}

	rows := BuildSchedule(loan, repayments, date(2024, 1, 20))
	summary := Summarize(rows)

	assertDecimal(t, "750", summary.TotalInterest)
	assertDecimal(t, "10000", summary.TotalRepaid)
	assertDecimal(t, "40750", summary.Outstanding)
	assert.True(t, summary.Outstanding.Equal(rows[len(rows)-1].ClosingBalance))
}

func TestDeriveStatus(t *testing.T) {
	eps := DefaultRepaidEpsilon

	tests := []struct {
		name        string
		current     string
		outstanding string
		expected    string
	}{
		{name: "still owing", current: domain.LoanStatusActive, outstanding: "100", expected: domain.LoanStatusActive},
		{name: "within epsilon", current: domain.LoanStatusActive, outstanding: "0.01", expected: domain.LoanStatusRepaid},
		{name: "just above epsilon", current: domain.LoanStatusActive, outstanding: "0.02", expected: domain.LoanStatusActive},
		{name: "overpaid", current: domain.LoanStatusOverdue, outstanding: "-50", expected: domain.LoanStatusRepaid},
		{name: "overdue preserved", current: domain.LoanStatusOverdue, outstanding: "10", expected: domain.LoanStatusOverdue},
		{name: "defaulted preserved", current: domain.LoanStatusDefaulted, outstanding: "10", expected: domain.LoanStatusDefaulted},
		{name: "repaid never regresses", current: domain.LoanStatusRepaid, outstanding: "5000", expected: domain.LoanStatusRepaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveStatus(tt.current, decimal.RequireFromString(tt.outstanding), eps))
		})
	}
}

func TestIsPastTerm(t *testing.T) {
	loan := newLoan(1000, "0.01", date(2024, 1, 31), domain.InterestTypeDeclining)
	loan.TermMonths = 1

	assert.False(t, IsPastTerm(loan, date(2024, 2, 29)))
	assert.True(t, IsPastTerm(loan, date(2024, 3, 1)))

	loan.TermMonths = 0
	assert.False(t, IsPastTerm(loan, date(2030, 1, 1)))
}

func TestUnpaidInterest(t *testing.T) {
	loan := newLoan(50000, "0.015", date(2024, 1, 1), domain.InterestTypeDeclining)
	rows := BuildSchedule(loan, nil, date(2024, 1, 1))

	paid := repayment(loan, 1000, date(2024, 2, 1))
	paid.InterestPortion = decimal.NewFromInt(700)

	assertDecimal(t, "750", UnpaidInterest(rows, nil, date(2024, 2, 1)))
	assertDecimal(t, "50", UnpaidInterest(rows, []*domain.LoanRepayment{paid}, date(2024, 2, 1)))

	paid.InterestPortion = decimal.NewFromInt(900)
	assertDecimal(t, "0", UnpaidInterest(rows, []*domain.LoanRepayment{paid}, date(2024, 2, 1)))
}

func TestUnpaidInterest_StopsAtPaymentMonth(t *testing.T) {
	loan := newLoan(50000, "0.015", date(2024, 1, 1), domain.InterestTypeDeclining)

	tests := []struct {
		name     string
		paidOn   time.Time
		expected string
	}{
		{name: "issue month counts towards month 1", paidOn: date(2024, 1, 20), expected: "750"},
		{name: "month 1 only", paidOn: date(2024, 2, 15), expected: "750"},
		{name: "months 1 and 2", paidOn: date(2024, 3, 5), expected: "1511.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := BuildSchedule(loan, nil, tt.paidOn)
			assertDecimal(t, tt.expected, UnpaidInterest(rows, nil, tt.paidOn))
		})
	}
}

func TestUnpaidInterest_NoRows(t *testing.T) {
	assertDecimal(t, "0", UnpaidInterest(nil, nil, date(2024, 2, 15)))
}

func TestProjectionLimit(t *testing.T) {
	loan := newLoan(50000, "0.015", date(2024, 1, 31), domain.InterestTypeDeclining)
	assert.Equal(t, date(2030, 1, 31), ProjectionLimit(loan))

	loan.TermMonths = 0
	assert.Equal(t, date(2029, 1, 31), ProjectionLimit(loan))
}
