package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/FirstLeaseAgent/template-pdf/model"
)

func testAsset(price string) model.Asset {
	return model.Asset{
		Nombre:        "Montacargas",
		Precio:        decimal.RequireFromString(price),
		EnganchePct:   decimal.NewFromInt(10),
		TasaAnualPct:  decimal.NewFromInt(30),
		ComisionPct:   decimal.NewFromInt(3),
		MesesDeposito: decimal.NewFromInt(1),
	}
}

func scenario(term int, residual int64) model.Scenario {
	return model.Scenario{TermMonths: term, ResidualPct: decimal.NewFromInt(residual)}
}

func assertFields(t *testing.T, got model.CalculationResult, want map[string]string) {
	t.Helper()
	for _, f := range got.Fields() {
		expected, ok := want[f.Name]
		if !ok {
			continue
		}
		if !f.Value.Equal(decimal.RequireFromString(expected)) {
			t.Errorf("%s: expected %s, got %s", f.Name, expected, f.Value)
		}
	}
}

// Reference case: price 116000 (net 100000), 10% down, 30% annual, 3%
// commission, one month deposit. Figures verified by hand at full precision.
func TestCalculateReferenceScenario36(t *testing.T) {
	res := Calculate(testAsset("116000"), scenario(36, 30))

	assertFields(t, res, map[string]string{
		"Enganche":              "10000",
		"Comision":              "2700",
		"Renta_en_Deposito":     "3824.63",
		"Subtotal_Pago_Inicial": "19821.72",
		"IVA_Pago_Inicial":      "2559.54",
		"Total_Inicial":         "22381.26",
		"Renta_Mensual":         "3297.09",
		"IVA_Renta_Mensual":     "527.54",
		"Total_Renta_Mensual":   "3824.63",
		"Residual":              "30000",
		"IVA_Residual":          "4800",
		"Total_Residual":        "34800",
		"Reembolso_Deposito":    "-3824.63",
		"Total_Final":           "30975.37",
	})
}

func TestCalculateCatalogScenarios(t *testing.T) {
	tests := []struct {
		name         string
		scenario     model.Scenario
		rentaMensual string
		totalFinal   string
	}{
		{"24 months 40% residual", scenario(24, 40), "3795.64", "41997.06"},
		{"36 months 30% residual", scenario(36, 30), "3297.09", "30975.37"},
		{"48 months 25% residual", scenario(48, 25), "2965.39", "25560.15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Calculate(testAsset("116000"), tt.scenario)
			if !res.RentaMensual.Equal(decimal.RequireFromString(tt.rentaMensual)) {
				t.Errorf("Renta_Mensual: expected %s, got %s", tt.rentaMensual, res.RentaMensual)
			}
			if !res.TotalFinal.Equal(decimal.RequireFromString(tt.totalFinal)) {
				t.Errorf("Total_Final: expected %s, got %s", tt.totalFinal, res.TotalFinal)
			}
		})
	}
}

// Zero rate must take the linear branch exactly: -(pv - rv)/n, keeping the
// sign the annuity convention dictates.
func TestCalculateZeroRate(t *testing.T) {
	asset := testAsset("116000")
	asset.TasaAnualPct = decimal.Zero

	res := Calculate(asset, scenario(36, 30))

	// pv=90000, rv=30000 -> payment = -(90000-30000)/36 = -1666.67
	assertFields(t, res, map[string]string{
		"Renta_Mensual":      "-1666.67",
		"Renta_en_Deposito":  "-1933.33",
		"Reembolso_Deposito": "1933.33",
		"Total_Final":        "36733.33",
	})
}

func TestCalculateRateMonotonicity(t *testing.T) {
	asset := testAsset("116000")
	prev := decimal.Decimal{}
	for i, rate := range []string{"5", "12", "30", "45.5", "80"} {
		asset.TasaAnualPct = decimal.RequireFromString(rate)
		payment := Calculate(asset, scenario(36, 30)).RentaMensual
		if i > 0 && payment.LessThanOrEqual(prev) {
			t.Errorf("Renta_Mensual not strictly increasing: rate %s gave %s after %s", rate, payment, prev)
		}
		prev = payment
	}
}

// All fourteen figures carry exactly two decimals regardless of magnitude.
func TestCalculateRoundingAtExtremes(t *testing.T) {
	for _, price := range []string{"1", "116000", "1000000000"} {
		res := Calculate(testAsset(price), scenario(36, 30))
		for _, f := range res.Fields() {
			if f.Value.Exponent() < -2 {
				t.Errorf("price %s: %s has more than 2 decimals: %s", price, f.Name, f.Value)
			}
		}
	}
}

func TestCalculateExtremeValues(t *testing.T) {
	small := Calculate(testAsset("1"), scenario(36, 30))
	if !small.Residual.Equal(decimal.RequireFromString("0.26")) {
		t.Errorf("Residual for price 1: expected 0.26, got %s", small.Residual)
	}

	large := Calculate(testAsset("1000000000"), scenario(36, 30))
	if !large.RentaMensual.Equal(decimal.RequireFromString("28423229.35")) {
		t.Errorf("Renta_Mensual for price 1e9: expected 28423229.35, got %s", large.RentaMensual)
	}
	if !large.TotalFinal.Equal(decimal.RequireFromString("267029053.95")) {
		t.Errorf("Total_Final for price 1e9: expected 267029053.95, got %s", large.TotalFinal)
	}
}
