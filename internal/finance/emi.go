// Package finance holds the pure loan arithmetic: equated installment
// calculation, schedule generation and the shared currency formatter.
package finance

import (
	"time"

	"github.com/jls/financesuite/finance-backend/internal/domain"
	"github.com/jls/financesuite/finance-backend/internal/util"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)
)

// CalculateEMI returns the equated monthly installment for a principal,
// annual rate in percent and tenure in months, rounded to whole rupees.
//
// EMI = P*r*(1+r)^N / ((1+r)^N - 1) with r the monthly rate. A zero rate
// degenerates to P/N; the annuity formula would divide by zero there.
func CalculateEMI(principal, annualRatePct decimal.Decimal, tenureMonths int32) decimal.Decimal {
	if tenureMonths < 1 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(tenureMonths))
	if annualRatePct.IsZero() {
		return principal.Div(n).Round(0)
	}
	r := annualRatePct.Div(twelve).Div(hundred)
	factor := one.Add(r).Pow(n)
	emi := principal.Mul(r).Mul(factor).Div(factor.Sub(one))
	return emi.Round(0)
}

// TotalInterest returns EMI x tenure minus principal, never negative
func TotalInterest(principal, emi decimal.Decimal, tenureMonths int32) decimal.Decimal {
	interest := emi.Mul(decimal.NewFromInt(int64(tenureMonths))).Sub(principal)
	if interest.IsNegative() {
		return decimal.Zero
	}
	return interest
}

// ProcessingFee returns the fee charged at disbursal, rounded to whole rupees
func ProcessingFee(principal, feePct decimal.Decimal) decimal.Decimal {
	return principal.Mul(feePct).Div(hundred).Round(0)
}

// GenerateSchedule builds the repayment schedule for a loan disbursed on
// the given date: one installment per month starting the month after
// disbursal, each of the quoted EMI. The last installment absorbs the
// rounding remainder so the amounts sum exactly to principal plus total
// interest.
func GenerateSchedule(principal, annualRatePct decimal.Decimal, tenureMonths int32, disbursalDate time.Time) []domain.Installment {
	if tenureMonths < 1 {
		return nil
	}
	emi := CalculateEMI(principal, annualRatePct, tenureMonths)
	target := principal.Add(TotalInterest(principal, emi, tenureMonths))

	schedule := make([]domain.Installment, 0, tenureMonths)
	for i := int32(1); i <= tenureMonths; i++ {
		amount := emi
		if i == tenureMonths {
			amount = target.Sub(emi.Mul(decimal.NewFromInt(int64(i - 1))))
		}
		schedule = append(schedule, domain.Installment{
			EMINumber: i,
			Amount:    amount,
			DueDate:   util.AddMonthsClamped(disbursalDate, int(i)),
			Status:    domain.InstallmentStatusPending,
		})
	}
	return schedule
}
