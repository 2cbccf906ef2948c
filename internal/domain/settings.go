package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AllocationMethodProportional     = "proportional"
	AllocationMethodLargestRemainder = "largest_remainder"
)

// Keys of the settings table that override configuration defaults.
const (
	SettingDefaultMonthlyRate = "default_monthly_interest_rate"
	SettingDefaultTermMonths  = "default_loan_term_months"
	SettingRepaidEpsilon      = "repaid_epsilon"
	SettingAllocationMethod   = "allocation_method"
	SettingMinFiscalYear      = "min_fiscal_year"
)

// EngineSettings is loaded once per operation and passed to the engines.
type EngineSettings struct {
	DefaultMonthlyRate decimal.Decimal
	DefaultTermMonths  int
	RepaidEpsilon      decimal.Decimal
	AllocationMethod   string
	MinFiscalYear      int
}

const (
	AuditActionDividendCalculated  = "dividend_calculation_created"
	AuditActionDividendTransition  = "dividend_calculation_status_changed"
	AuditActionDividendDistributed = "dividend_calculation_distributed"
	AuditActionMemberRoleChanged   = "member_role_changed"
)

// AuditEntry is one row of the append-only audit log.
type AuditEntry struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Action    string          `json:"action" db:"action"`
	Actor     string          `json:"actor" db:"actor"`
	Metadata  json.RawMessage `json:"metadata" db:"metadata"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
