package model

import "github.com/shopspring/decimal"

// CalculationResult holds the fourteen figures of one (asset, scenario)
// amortization, each rounded to two decimals. Field names are the canonical
// ones the template token derivation works from.
type CalculationResult struct {
	Enganche            decimal.Decimal `json:"Enganche"`
	Comision            decimal.Decimal `json:"Comision"`
	RentaEnDeposito     decimal.Decimal `json:"Renta_en_Deposito"`
	SubtotalPagoInicial decimal.Decimal `json:"Subtotal_Pago_Inicial"`
	IVAPagoInicial      decimal.Decimal `json:"IVA_Pago_Inicial"`
	TotalInicial        decimal.Decimal `json:"Total_Inicial"`
	RentaMensual        decimal.Decimal `json:"Renta_Mensual"`
	IVARentaMensual     decimal.Decimal `json:"IVA_Renta_Mensual"`
	TotalRentaMensual   decimal.Decimal `json:"Total_Renta_Mensual"`
	Residual            decimal.Decimal `json:"Residual"`
	IVAResidual         decimal.Decimal `json:"IVA_Residual"`
	TotalResidual       decimal.Decimal `json:"Total_Residual"`
	ReembolsoDeposito   decimal.Decimal `json:"Reembolso_Deposito"`
	TotalFinal          decimal.Decimal `json:"Total_Final"`
}

// ResultField pairs a figure with its canonical name.
type ResultField struct {
	Name  string
	Value decimal.Decimal
}

// Fields returns the figures with their canonical names in a stable order.
func (r CalculationResult) Fields() []ResultField {
	return []ResultField{
		{"Enganche", r.Enganche},
		{"Comision", r.Comision},
		{"Renta_en_Deposito", r.RentaEnDeposito},
		{"Subtotal_Pago_Inicial", r.SubtotalPagoInicial},
		{"IVA_Pago_Inicial", r.IVAPagoInicial},
		{"Total_Inicial", r.TotalInicial},
		{"Renta_Mensual", r.RentaMensual},
		{"IVA_Renta_Mensual", r.IVARentaMensual},
		{"Total_Renta_Mensual", r.TotalRentaMensual},
		{"Residual", r.Residual},
		{"IVA_Residual", r.IVAResidual},
		{"Total_Residual", r.TotalResidual},
		{"Reembolso_Deposito", r.ReembolsoDeposito},
		{"Total_Final", r.TotalFinal},
	}
}

// ScenarioResult is one catalog entry's outcome, returned verbatim in the
// quotation response for programmatic consumers.
type ScenarioResult struct {
	TermMonths  int               `json:"term_months"`
	ResidualPct decimal.Decimal   `json:"residual_pct"`
	Result      CalculationResult `json:"result"`
}

// AssetQuote groups one asset's folio, generated files and raw results.
type AssetQuote struct {
	Nombre    string           `json:"nombre"`
	Folio     string           `json:"folio"`
	WordFile  string           `json:"word_file"`
	PDFFile   string           `json:"pdf_file,omitempty"`
	PDFError  string           `json:"pdf_error,omitempty"`
	WordURL   string           `json:"word_url,omitempty"`
	PDFURL    string           `json:"pdf_url,omitempty"`
	Archived  bool             `json:"archived,omitempty"`
	Scenarios []ScenarioResult `json:"scenarios"`
}
