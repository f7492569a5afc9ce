package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Asset describes one leased good and its financing parameters. It is built
// from the request body and never mutated while a quotation is in flight.
type Asset struct {
	Nombre        string          `json:"nombre" binding:"required"`
	Descripcion   string          `json:"descripcion"`
	Precio        decimal.Decimal `json:"precio"`
	EnganchePct   decimal.Decimal `json:"enganche_pct"`
	TasaAnualPct  decimal.Decimal `json:"tasa_anual_pct"`
	ComisionPct   decimal.Decimal `json:"comision_pct"`
	MesesDeposito decimal.Decimal `json:"meses_deposito"`
}

var oneHundred = decimal.NewFromInt(100)

// Validate checks the financing parameters against their allowed ranges.
func (a *Asset) Validate() error {
	if a.Nombre == "" {
		return errors.New("nombre requerido")
	}
	if !a.Precio.IsPositive() {
		return errors.New("precio inválido")
	}
	if a.EnganchePct.IsNegative() || a.EnganchePct.GreaterThan(oneHundred) {
		return errors.New("enganche_pct fuera de rango")
	}
	if a.TasaAnualPct.IsNegative() {
		return errors.New("tasa_anual_pct inválida")
	}
	if a.ComisionPct.IsNegative() || a.ComisionPct.GreaterThan(oneHundred) {
		return errors.New("comision_pct fuera de rango")
	}
	if a.MesesDeposito.IsNegative() {
		return errors.New("meses_deposito inválido")
	}
	return nil
}

// Scenario is one term/residual financing configuration. The catalog is fixed
// by policy, never taken from user input.
type Scenario struct {
	TermMonths  int             `json:"term_months"`
	ResidualPct decimal.Decimal `json:"residual_pct"`
}

// Scenarios is the catalog every quotation evaluates, one result per entry.
var Scenarios = []Scenario{
	{TermMonths: 24, ResidualPct: decimal.NewFromInt(40)},
	{TermMonths: 36, ResidualPct: decimal.NewFromInt(30)},
	{TermMonths: 48, ResidualPct: decimal.NewFromInt(25)},
}
