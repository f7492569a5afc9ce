package service

import (
	"github.com/shopspring/decimal"

	"github.com/FirstLeaseAgent/template-pdf/model"
)

// Monetary arithmetic runs on decimals, never binary floats: the figures go
// straight into customer-facing totals. Division carries 28 decimal digits.
func init() {
	if decimal.DivisionPrecision < 28 {
		decimal.DivisionPrecision = 28
	}
}

// IVA is fixed at 16%.
var (
	ivaRate   = decimal.RequireFromString("0.16")
	ivaFactor = decimal.RequireFromString("1.16")
	one       = decimal.NewFromInt(1)
	hundred   = decimal.NewFromInt(100)
)

// round2 rounds half away from zero to two decimals. Every published figure
// goes through this exactly once, at the end.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Calculate produces the fourteen figures for one asset under one scenario.
// Pure arithmetic, no error conditions; the fixed scenario catalog guarantees
// term_months > 0.
//
// Amounts are pre-tax ("net") unless the name says otherwise. The deposit is
// deliberately excluded from the initial tax base.
func Calculate(a model.Asset, s model.Scenario) model.CalculationResult {
	netPrice := a.Precio.Div(ivaFactor)
	presentValue := netPrice.Mul(one.Sub(a.EnganchePct.Div(hundred)))
	residualValue := netPrice.Mul(s.ResidualPct).Div(hundred)
	monthlyRate := a.TasaAnualPct.Div(decimal.NewFromInt(1200))
	term := decimal.NewFromInt(int64(s.TermMonths))

	// Annuity amortizing presentValue down to residualValue. The non-zero
	// branch is ((pv·f − rv)·i)/(f − 1) with f = (1+i)^n, which keeps the
	// exponent a positive integer so Pow stays exact.
	var payment decimal.Decimal
	if monthlyRate.IsZero() {
		payment = presentValue.Sub(residualValue).Neg().Div(term)
	} else {
		factor := one.Add(monthlyRate).Pow(term)
		payment = presentValue.Mul(factor).Sub(residualValue).Mul(monthlyRate).Div(factor.Sub(one))
	}

	commission := a.ComisionPct.Div(hundred).Mul(presentValue)
	downPayment := a.EnganchePct.Div(hundred).Mul(a.Precio).Div(ivaFactor)
	deposit := a.MesesDeposito.Mul(payment).Mul(ivaFactor)
	residual := a.Precio.Div(ivaFactor).Mul(s.ResidualPct).Div(hundred)

	initialSubtotal := downPayment.Add(commission).Add(deposit).Add(payment)
	initialTax := downPayment.Add(commission).Add(payment).Mul(ivaRate)
	initialTotal := initialSubtotal.Add(initialTax)

	monthlyTax := payment.Mul(ivaRate)
	monthlyTotal := payment.Mul(ivaFactor)
	residualTax := residual.Mul(ivaRate)
	residualTotal := residual.Mul(ivaFactor)
	finalTotal := residualTotal.Sub(deposit)

	return model.CalculationResult{
		Enganche:            round2(downPayment),
		Comision:            round2(commission),
		RentaEnDeposito:     round2(deposit),
		SubtotalPagoInicial: round2(initialSubtotal),
		IVAPagoInicial:      round2(initialTax),
		TotalInicial:        round2(initialTotal),
		RentaMensual:        round2(payment),
		IVARentaMensual:     round2(monthlyTax),
		TotalRentaMensual:   round2(monthlyTotal),
		Residual:            round2(residual),
		IVAResidual:         round2(residualTax),
		TotalResidual:       round2(residualTotal),
		ReembolsoDeposito:   round2(deposit.Neg()),
		TotalFinal:          round2(finalTotal),
	}
}
