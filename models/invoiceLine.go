package models

import "github.com/shopspring/decimal"

// InvoiceLine is one line item, keyed by LineId. InvoiceId is a weak
// reference (many lines to one header); LineNumber orders lines within an
// invoice and is not globally unique.
type InvoiceLine struct {
	LineId     string `json:"line_id" binding:"required"`
	InvoiceId  string `json:"invoice_id"`
	LineNumber int    `json:"line_number"`

	ItemName        string          `json:"item_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Discount        decimal.Decimal `json:"discount"`
	LineNet         decimal.Decimal `json:"line_net"`
	LineVAT         decimal.Decimal `json:"line_vat"`
	TaxCategoryCode string          `json:"tax_category_code"`
}
