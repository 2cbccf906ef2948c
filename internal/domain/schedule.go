package domain

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleRow is one month of a projected loan schedule.
// Month 0 is the disbursement row.
type ScheduleRow struct {
	Month          int             `json:"month"`
	Date           time.Time       `json:"date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	LoanIssued     decimal.Decimal `json:"loan_issued"`
	Interest       decimal.Decimal `json:"interest"`
	Repayment      decimal.Decimal `json:"repayment"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

type ScheduleSummary struct {
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalRepaid   decimal.Decimal `json:"total_repaid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

type ScheduleResponse struct {
	LoanID   string          `json:"loan_id"`
	AsOf     time.Time       `json:"as_of"`
	Schedule []ScheduleRow   `json:"schedule"`
	Summary  ScheduleSummary `json:"summary"`
}

// LoanStatement is the two-section printable view of a loan.
type LoanStatement struct {
	Loan        *Loan            `json:"loan"`
	Member      *Member          `json:"member,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
	Schedule    []ScheduleRow    `json:"schedule"`
	Repayments  []*LoanRepayment `json:"repayments"`
	Summary     ScheduleSummary  `json:"summary"`
}

// WriteText renders the statement as plain-text tables.
func (s *LoanStatement) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "LOAN STATEMENT\t\n")
	fmt.Fprintf(tw, "Loan\t%s\t\n", s.Loan.ID)
	if s.Member != nil {
		fmt.Fprintf(tw, "Member\t%s (%s)\t\n", s.Member.Name, s.Member.MemberNumber)
	}
	fmt.Fprintf(tw, "Principal\t%s\t\n", s.Loan.Principal.StringFixed(2))
	fmt.Fprintf(tw, "Monthly rate\t%s\t\n", s.Loan.MonthlyInterestRate.String())
	fmt.Fprintf(tw, "Interest type\t%s\t\n", s.Loan.InterestType)
	fmt.Fprintf(tw, "Issued\t%s\t\n", s.Loan.IssueDate.Format("2006-01-02"))
	fmt.Fprintf(tw, "Generated\t%s\t\n\n", s.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(tw, "SCHEDULE\t\n")
	fmt.Fprintf(tw, "Month\tDate\tOpening\tIssued\tInterest\tRepayment\tClosing\t\n")
	for _, row := range s.Schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Month,
			row.Date.Format("2006-01-02"),
			row.OpeningBalance.StringFixed(2),
			row.LoanIssued.StringFixed(2),
			row.Interest.StringFixed(2),
			row.Repayment.StringFixed(2),
			row.ClosingBalance.StringFixed(2),
		)
	}

	fmt.Fprintf(tw, "\nREPAYMENTS\t\n")
	fmt.Fprintf(tw, "Date\tAmount\tPrincipal\tInterest\tMethod\t\n")
	for _, r := range s.Repayments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			r.PaymentDate.Format("2006-01-02"),
			r.Amount.StringFixed(2),
			r.PrincipalPortion.StringFixed(2),
			r.InterestPortion.StringFixed(2),
			r.PaymentMethod,
		)
	}

	fmt.Fprintf(tw, "\nTotal interest\t%s\t\n", s.Summary.TotalInterest.StringFixed(2))
	fmt.Fprintf(tw, "Total repaid\t%s\t\n", s.Summary.TotalRepaid.StringFixed(2))
	fmt.Fprintf(tw, "Outstanding\t%s\t\n", s.Summary.Outstanding.StringFixed(2))

	return tw.Flush()
}
