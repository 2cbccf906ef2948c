// Package allocation splits a dividend fund across members in proportion to
// their regular savings.
package allocation

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/pkg/utils"
)

var cent = decimal.New(1, -2)

// Contributor is one member's regular savings for the fiscal year.
type Contributor struct {
	MemberID uuid.UUID
	Savings  decimal.Decimal
}

// Share is the computed allocation for one contributor.
type Share struct {
	MemberID        uuid.UUID
	Savings         decimal.Decimal
	SharePercentage decimal.Decimal
	Amount          decimal.Decimal
}

// Allocate computes one share per contributor, in input order.
//
// SharePercentage is savings/totalSavings rounded to 4 places. Amount is
// savings/totalSavings × fund rounded to the cent (proportional), or floored
// to the cent with the leftover cents handed to the largest remainders
// (largest_remainder), which makes the amounts sum to the fund exactly.
func Allocate(contributors []Contributor, totalSavings, fund decimal.Decimal, method string) ([]Share, error) {
	switch method {
	case domain.AllocationMethodProportional, "":
		return proportional(contributors, totalSavings, fund), nil
	case domain.AllocationMethodLargestRemainder:
		return largestRemainder(contributors, totalSavings, fund), nil
	default:
		return nil, fmt.Errorf("unknown allocation method %q", method)
	}
}

func proportional(contributors []Contributor, totalSavings, fund decimal.Decimal) []Share {
	shares := make([]Share, 0, len(contributors))
	for _, c := range contributors {
		ratio := utils.SafeRatio(c.Savings, totalSavings)
		shares = append(shares, Share{
			MemberID:        c.MemberID,
			Savings:         c.Savings,
			SharePercentage: utils.RoundShare(ratio),
			Amount:          utils.RoundMoney(utils.SafeRatio(c.Savings.Mul(fund), totalSavings)),
		})
	}
	return shares
}

func largestRemainder(contributors []Contributor, totalSavings, fund decimal.Decimal) []Share {
	shares := make([]Share, len(contributors))
	remainders := make([]decimal.Decimal, len(contributors))
	allocated := decimal.Zero

	for i, c := range contributors {
		ratio := utils.SafeRatio(c.Savings, totalSavings)
		exact := utils.SafeRatio(c.Savings.Mul(fund), totalSavings)
		floored := exact.Truncate(2)

		shares[i] = Share{
			MemberID:        c.MemberID,
			Savings:         c.Savings,
			SharePercentage: utils.RoundShare(ratio),
			Amount:          floored,
		}
		remainders[i] = exact.Sub(floored)
		allocated = allocated.Add(floored)
	}

	if totalSavings.IsZero() || len(shares) == 0 {
		return shares
	}

	leftover := utils.RoundMoney(fund).Sub(allocated).Div(cent).IntPart()
	if leftover <= 0 {
		return shares
	}

	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := remainders[order[a]], remainders[order[b]]
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return shares[order[a]].Savings.GreaterThan(shares[order[b]].Savings)
	})

	for i := int64(0); i < leftover; i++ {
		idx := order[int(i)%len(order)]
		shares[idx].Amount = shares[idx].Amount.Add(cent)
	}

	return shares
}

// Total sums the allocated amounts.
func Total(shares []Share) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(shares))
	for i, s := range shares {
		amounts[i] = s.Amount
	}
	return utils.SumDecimals(amounts...)
}

// Formula describes how the amounts were derived, for the calculation record.
func Formula(totalSavings, fund decimal.Decimal, method string) string {
	if method == "" {
		method = domain.AllocationMethodProportional
	}
	return fmt.Sprintf("allocated_amount = (member regular savings / %s) x %s [%s]",
		totalSavings.StringFixed(2), fund.StringFixed(2), method)
}
