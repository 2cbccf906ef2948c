package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every BusinessError carries exactly one of these so callers can
// classify failures with errors.Is without knowing the specific case.
var (
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence error")
)

// Domain errors
var (
	ErrFundNotPositive       = errors.New("fund must be positive")
	ErrCalculationExists     = errors.New("calculation already exists for year")
	ErrCalculationNotFound   = errors.New("calculation not found")
	ErrAlreadyDistributed    = errors.New("already distributed")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrLoanAlreadyRepaid     = errors.New("loan is already repaid")
	ErrMemberNotFound        = errors.New("member not found")
	ErrMemberAlreadyExists   = errors.New("member already exists")
	ErrChairpersonExists     = errors.New("an active chairperson already exists")
	ErrInvalidFiscalYear     = errors.New("invalid fiscal year")
	ErrInvalidPaymentAmount  = errors.New("invalid payment amount")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrNoAllocations         = errors.New("calculation has no allocations")
	ErrConcurrentDistributed = errors.New("allocations changed during distribution")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *BusinessError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewBusinessError creates a new business error
func NewBusinessError(kind error, code, message string, err error) *BusinessError {
	return &BusinessError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeFundNotPositive       = "FUND_NOT_POSITIVE"
	ErrCodeInvalidFiscalYear     = "INVALID_FISCAL_YEAR"
	ErrCodeCalculationExists     = "CALCULATION_EXISTS"
	ErrCodeCalculationNotFound   = "CALCULATION_NOT_FOUND"
	ErrCodeAlreadyDistributed    = "ALREADY_DISTRIBUTED"
	ErrCodeInvalidTransition     = "INVALID_STATUS_TRANSITION"
	ErrCodeNoAllocations         = "NO_ALLOCATIONS"
	ErrCodeLoanNotFound          = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyRepaid     = "LOAN_ALREADY_REPAID"
	ErrCodeInvalidPaymentAmount  = "INVALID_PAYMENT_AMOUNT"
	ErrCodeMemberNotFound        = "MEMBER_NOT_FOUND"
	ErrCodeMemberAlreadyExists   = "MEMBER_ALREADY_EXISTS"
	ErrCodeChairpersonExists     = "CHAIRPERSON_EXISTS"
	ErrCodeConcurrentDistributed = "CONCURRENT_DISTRIBUTION"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// WrapValidation reports malformed or out-of-range input.
func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrValidation, ErrCodeValidation, message, ErrInvalidRequest)
}

func WrapFundNotPositive(fiscalYear int) *BusinessError {
	return NewBusinessError(
		ErrValidation,
		ErrCodeFundNotPositive,
		fmt.Sprintf("Dividend fund and regular savings for fiscal year %d must be positive", fiscalYear),
		ErrFundNotPositive,
	)
}

func WrapInvalidFiscalYear(fiscalYear, min, max int) *BusinessError {
	return NewBusinessError(
		ErrValidation,
		ErrCodeInvalidFiscalYear,
		fmt.Sprintf("Fiscal year %d must be between %d and %d", fiscalYear, min, max),
		ErrInvalidFiscalYear,
	)
}

func WrapCalculationExists(fiscalYear int) *BusinessError {
	return NewBusinessError(
		ErrConflict,
		ErrCodeCalculationExists,
		fmt.Sprintf("Dividend calculation for fiscal year %d already exists", fiscalYear),
		ErrCalculationExists,
	)
}

func WrapCalculationNotFound(calculationID string) *BusinessError {
	return NewBusinessError(
		ErrNotFound,
		ErrCodeCalculationNotFound,
		fmt.Sprintf("Dividend calculation with ID %s not found", calculationID),
		ErrCalculationNotFound,
	)
}

func WrapAlreadyDistributed(calculationID string) *BusinessError {
	return NewBusinessError(
		ErrConflict,
		ErrCodeAlreadyDistributed,
		fmt.Sprintf("Dividend calculation with ID %s is already distributed", calculationID),
		ErrAlreadyDistributed,
	)
}

func WrapInvalidTransition(calculationID, from, to string) *BusinessError {
	return NewBusinessError(
		ErrConflict,
		ErrCodeInvalidTransition,
		fmt.Sprintf("Dividend calculation %s cannot move from %s to %s", calculationID, from, to),
		ErrInvalidTransition,
	)
}

func WrapNoAllocations(calculationID string) *BusinessError {
	return NewBusinessError(
		ErrValidation,
		ErrCodeNoAllocations,
		fmt.Sprintf("Dividend calculation with ID %s has no allocations", calculationID),
		ErrNoAllocations,
	)
}

func WrapConcurrentDistribution(calculationID string) *BusinessError {
	return NewBusinessError(
		ErrConflict,
		ErrCodeConcurrentDistributed,
		fmt.Sprintf("Allocations of dividend calculation %s changed during distribution", calculationID),
		ErrConcurrentDistributed,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrNotFound,
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyRepaid(loanID string) *BusinessError {
	return NewBusinessError(
		ErrConflict,
		ErrCodeLoanAlreadyRepaid,
		fmt.Sprintf("Loan with ID %s is already repaid", loanID),
		ErrLoanAlreadyRepaid,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrValidation,
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapMemberNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		ErrNotFound,
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapMemberAlreadyExists(memberNumber string) *BusinessError {
	return NewBusinessError(
		ErrConflict,
		ErrCodeMemberAlreadyExists,
		fmt.Sprintf("Member with number %s already exists", memberNumber),
		ErrMemberAlreadyExists,
	)
}

func WrapChairpersonExists() *BusinessError {
	return NewBusinessError(
		ErrConflict,
		ErrCodeChairpersonExists,
		"An active chairperson already exists",
		ErrChairpersonExists,
	)
}

// WrapDatabaseError names the storage operation that failed.
func WrapDatabaseError(op string, err error) *BusinessError {
	return NewBusinessError(
		ErrPersistence,
		ErrCodeDatabaseError,
		fmt.Sprintf("database operation %q failed", op),
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrPersistence,
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
