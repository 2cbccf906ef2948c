package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/chama-engine/internal/amortization"
	"github.com/segyhp/chama-engine/internal/cache"
	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/internal/repository"
	customError "github.com/segyhp/chama-engine/pkg/errors"
	"github.com/segyhp/chama-engine/pkg/utils"
)

type LoanService struct {
	tx         repository.Transactor
	members    repository.MemberRepository
	loans      repository.LoanRepository
	repayments repository.RepaymentRepository
	cache      cache.ScheduleCache
	settings   *SettingsProvider
	logger     *slog.Logger
	now        func() time.Time
}

func NewLoanService(repos *repository.Repositories, scheduleCache cache.ScheduleCache, settings *SettingsProvider, logger *slog.Logger) *LoanService {
	return &LoanService{
		tx:         repos.Transactor,
		members:    repos.Members,
		loans:      repos.Loans,
		repayments: repos.Repayments,
		cache:      scheduleCache,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *LoanService) today() time.Time {
	return utils.StartOfDay(s.now().UTC())
}

// CreateLoan issues a loan to an active member. Rate, term and interest type
// fall back to the engine settings when omitted.
func (s *LoanService) CreateLoan(ctx context.Context, req *domain.CreateLoanRequest) (*domain.Loan, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		return nil, customError.WrapValidation(fmt.Sprintf("invalid member_id %q", req.MemberID))
	}

	issueDate, err := utils.ParseDate(req.IssueDate)
	if err != nil {
		return nil, customError.WrapValidation(fmt.Sprintf("invalid issue_date %q", req.IssueDate))
	}

	if !req.Principal.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.Principal.String())
	}

	member, err := s.members.GetByID(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapMemberNotFound(req.MemberID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError("get member", err)
	}
	if !member.IsActive() {
		return nil, customError.WrapValidation(fmt.Sprintf("member %s is %s and cannot borrow", member.MemberNumber, member.Status))
	}

	rate := settings.DefaultMonthlyRate
	if req.MonthlyInterestRate != nil {
		rate = *req.MonthlyInterestRate
	}
	term := settings.DefaultTermMonths
	if req.TermMonths > 0 {
		term = req.TermMonths
	}
	interestType := domain.InterestTypeDeclining
	if req.InterestType != "" {
		interestType = req.InterestType
	}

	now := s.now().UTC()
	loan := &domain.Loan{
		ID:                  uuid.New(),
		MemberID:            memberID,
		Principal:           utils.RoundMoney(req.Principal),
		MonthlyInterestRate: rate,
		TermMonths:          term,
		IssueDate:           issueDate,
		InterestType:        interestType,
		Status:              domain.LoanStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError("create loan", err)
	}

	s.logger.InfoContext(ctx, "Loan issued",
		slog.String("loan_id", loan.ID.String()),
		slog.String("member_id", loan.MemberID.String()),
		slog.String("principal", loan.Principal.String()),
		slog.String("interest_type", loan.InterestType),
	)

	return loan, nil
}

func (s *LoanService) getLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError("get loan", err)
	}
	return loan, nil
}

func (s *LoanService) listRepayments(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanRepayment, error) {
	repayments, err := s.repayments.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError("list loan repayments", err)
	}
	return repayments, nil
}

// GetLoan returns the loan with its schedule summary as of today.
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailsResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	repayments, err := s.listRepayments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	rows := amortization.BuildSchedule(loan, repayments, s.today())
	return &domain.LoanDetailsResponse{Loan: loan, Summary: amortization.Summarize(rows)}, nil
}

// GetSchedule projects the loan through asOf (today when zero). Results are
// cached per loan and date until the next repayment.
func (s *LoanService) GetSchedule(ctx context.Context, loanID uuid.UUID, asOf time.Time) (*domain.ScheduleResponse, error) {
	if asOf.IsZero() {
		asOf = s.today()
	}

	cached, ok, err := s.cache.Get(ctx, loanID, asOf)
	if err != nil {
		s.logger.WarnContext(ctx, "Schedule cache read failed",
			slog.String("loan_id", loanID.String()),
			slog.String("error", err.Error()),
		)
	}
	if ok {
		return cached, nil
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if limit := amortization.ProjectionLimit(loan); asOf.After(limit) {
		return nil, customError.WrapValidation(fmt.Sprintf("as_of %s is past the projection limit %s",
			asOf.Format(utils.DateLayout), limit.Format(utils.DateLayout)))
	}

	repayments, err := s.listRepayments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	rows := amortization.BuildSchedule(loan, repayments, asOf)
	schedule := &domain.ScheduleResponse{
		LoanID:   loan.ID.String(),
		AsOf:     asOf,
		Schedule: rows,
		Summary:  amortization.Summarize(rows),
	}

	if err := s.cache.Set(ctx, loanID, asOf, schedule); err != nil {
		s.logger.WarnContext(ctx, "Schedule cache write failed",
			slog.String("loan_id", loanID.String()),
			slog.String("error", err.Error()),
		)
	}

	return schedule, nil
}

// RecordRepayment stores a repayment and re-derives the loan status in the same
// transaction. Without explicit portions the amount settles unpaid interest
// first and the rest goes to principal.
func (s *LoanService) RecordRepayment(ctx context.Context, loanID uuid.UUID, req *domain.RecordRepaymentRequest) (*domain.RecordRepaymentResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}

	paymentDate, err := utils.ParseDate(req.PaymentDate)
	if err != nil {
		return nil, customError.WrapValidation(fmt.Sprintf("invalid payment_date %q", req.PaymentDate))
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	var result *domain.RecordRepaymentResponse
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		loan, err := s.loans.GetByIDForUpdate(ctx, loanID)
		if errors.Is(err, repository.ErrNotFound) {
			return customError.WrapLoanNotFound(loanID.String())
		}
		if err != nil {
			return customError.WrapDatabaseError("lock loan", err)
		}
		if loan.Status == domain.LoanStatusRepaid {
			return customError.WrapLoanAlreadyRepaid(loanID.String())
		}

		existing, err := s.listRepayments(ctx, loanID)
		if err != nil {
			return err
		}

		unpaid := amortization.UnpaidInterest(amortization.BuildSchedule(loan, existing, paymentDate), existing, paymentDate)
		principalPortion, interestPortion, err := splitRepayment(req, unpaid)
		if err != nil {
			return err
		}

		repayment := &domain.LoanRepayment{
			ID:               uuid.New(),
			LoanID:           loan.ID,
			MemberID:         loan.MemberID,
			PaymentDate:      paymentDate,
			Amount:           req.Amount,
			PrincipalPortion: principalPortion,
			InterestPortion:  interestPortion,
			PaymentMethod:    req.PaymentMethod,
			CreatedAt:        s.now().UTC(),
		}
		if err := s.repayments.Create(ctx, repayment); err != nil {
			return customError.WrapDatabaseError("create loan repayment", err)
		}

		asOf := s.today()
		if paymentDate.After(asOf) {
			asOf = paymentDate
		}
		rows := amortization.BuildSchedule(loan, append(existing, repayment), asOf)
		summary := amortization.Summarize(rows)

		if err := s.applyStatus(ctx, loan, s.nextStatus(loan, summary, settings, asOf)); err != nil {
			return err
		}

		result = &domain.RecordRepaymentResponse{Repayment: repayment, Loan: loan, Summary: summary}
		return nil
	})
	if err != nil {
		return nil, businessError("record loan repayment", err)
	}

	s.invalidate(ctx, loanID)

	s.logger.InfoContext(ctx, "Loan repayment recorded",
		slog.String("loan_id", loanID.String()),
		slog.String("amount", req.Amount.String()),
		slog.String("outstanding", result.Summary.Outstanding.String()),
		slog.String("status", result.Loan.Status),
	)

	return result, nil
}

// splitRepayment decides the principal and interest portions of a repayment.
func splitRepayment(req *domain.RecordRepaymentRequest, unpaidInterest decimal.Decimal) (principal, interest decimal.Decimal, err error) {
	switch {
	case req.PrincipalPortion != nil && req.InterestPortion != nil:
		principal, interest = *req.PrincipalPortion, *req.InterestPortion
	case req.PrincipalPortion != nil:
		principal = *req.PrincipalPortion
		interest = req.Amount.Sub(principal)
	case req.InterestPortion != nil:
		interest = *req.InterestPortion
		principal = req.Amount.Sub(interest)
	default:
		interest = decimal.Min(req.Amount, unpaidInterest)
		principal = req.Amount.Sub(interest)
	}

	if principal.IsNegative() || interest.IsNegative() || !principal.Add(interest).Equal(req.Amount) {
		return decimal.Zero, decimal.Zero, customError.WrapValidation(fmt.Sprintf(
			"principal_portion %s and interest_portion %s must be non-negative and add up to amount %s",
			principal.String(), interest.String(), req.Amount.String()))
	}
	return principal, interest, nil
}

// nextStatus promotes to repaid within epsilon and marks active loans past
// their term as overdue. Overdue and defaulted are otherwise kept.
func (s *LoanService) nextStatus(loan *domain.Loan, summary domain.ScheduleSummary, settings domain.EngineSettings, asOf time.Time) string {
	status := amortization.DeriveStatus(loan.Status, summary.Outstanding, settings.RepaidEpsilon)
	if status == domain.LoanStatusActive && amortization.IsPastTerm(loan, asOf) {
		return domain.LoanStatusOverdue
	}
	return status
}

func (s *LoanService) applyStatus(ctx context.Context, loan *domain.Loan, status string) error {
	if status == loan.Status {
		return nil
	}

	now := s.now().UTC()
	if err := s.loans.UpdateStatus(ctx, loan.ID, status, now); err != nil {
		return customError.WrapDatabaseError("update loan status", err)
	}

	s.logger.InfoContext(ctx, "Loan status changed",
		slog.String("loan_id", loan.ID.String()),
		slog.String("from", loan.Status),
		slog.String("to", status),
	)

	loan.Status = status
	loan.UpdatedAt = now
	return nil
}

func (s *LoanService) invalidate(ctx context.Context, loanID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, loanID); err != nil {
		s.logger.WarnContext(ctx, "Schedule cache invalidation failed",
			slog.String("loan_id", loanID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// RefreshStatus re-derives and persists the status of one loan as of today.
func (s *LoanService) RefreshStatus(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	return s.refresh(ctx, loanID, settings)
}

func (s *LoanService) refresh(ctx context.Context, loanID uuid.UUID, settings domain.EngineSettings) (*domain.Loan, error) {
	var loan *domain.Loan
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.loans.GetByIDForUpdate(ctx, loanID)
		if errors.Is(err, repository.ErrNotFound) {
			return customError.WrapLoanNotFound(loanID.String())
		}
		if err != nil {
			return customError.WrapDatabaseError("lock loan", err)
		}

		repayments, err := s.listRepayments(ctx, loanID)
		if err != nil {
			return err
		}

		asOf := s.today()
		summary := amortization.Summarize(amortization.BuildSchedule(locked, repayments, asOf))
		if err := s.applyStatus(ctx, locked, s.nextStatus(locked, summary, settings, asOf)); err != nil {
			return err
		}

		loan = locked
		return nil
	})
	if err != nil {
		return nil, businessError("refresh loan status", err)
	}
	return loan, nil
}

// RefreshStatuses refreshes every loan that is not yet repaid. A failing loan
// is logged and counted; the pass continues with the next one.
func (s *LoanService) RefreshStatuses(ctx context.Context) (*domain.RefreshResult, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	loans, err := s.loans.ListByStatuses(ctx, domain.LoanStatusActive, domain.LoanStatusOverdue, domain.LoanStatusDefaulted)
	if err != nil {
		return nil, customError.WrapDatabaseError("list open loans", err)
	}

	result := &domain.RefreshResult{}
	var errs []error
	for _, l := range loans {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result.Checked++
		refreshed, err := s.refresh(ctx, l.ID, settings)
		if err != nil {
			result.Failed++
			errs = append(errs, err)
			s.logger.ErrorContext(ctx, "Failed to refresh loan status",
				slog.String("loan_id", l.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if refreshed.Status != l.Status {
			result.Updated++
		}
	}

	s.logger.InfoContext(ctx, "Loan status refresh finished",
		slog.Int("checked", result.Checked),
		slog.Int("updated", result.Updated),
		slog.Int("failed", result.Failed),
	)

	return result, errors.Join(errs...)
}

// GenerateStatement assembles the schedule and repayment history of a loan as of today.
func (s *LoanService) GenerateStatement(ctx context.Context, loanID uuid.UUID) (*domain.LoanStatement, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	repayments, err := s.listRepayments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	member, err := s.members.GetByID(ctx, loan.MemberID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapDatabaseError("get member", err)
	}

	rows := amortization.BuildSchedule(loan, repayments, s.today())
	return &domain.LoanStatement{
		Loan:        loan,
		Member:      member,
		GeneratedAt: s.now().UTC(),
		Schedule:    rows,
		Repayments:  repayments,
		Summary:     amortization.Summarize(rows),
	}, nil
}
