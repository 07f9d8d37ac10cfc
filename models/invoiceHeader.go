package models

import "github.com/shopspring/decimal"

// InvoiceHeader is one invoice document, keyed by InvoiceId (unique within a
// dataset). Monetary fields are caller-coerced decimals; date fields stay raw
// strings because conformance checks validate their representation, not their
// calendar value. Other strings arrive as-is from the ERP extract; the
// engine tolerates raw casing and whitespace.
type InvoiceHeader struct {
	InvoiceId     string `json:"invoice_id" binding:"required"`
	InvoiceNumber string `json:"invoice_number"`

	// SupplierId is the payables-side vendor reference. Mandatory on AP
	// datasets only; AR headers normally leave it blank.
	SupplierId              string `json:"supplier_id"`
	SellerName              string `json:"seller_name"`
	SellerTRN               string `json:"seller_trn"`
	SellerElectronicAddress string `json:"seller_electronic_address"`
	SellerCountry           string `json:"seller_country"`
	SellerCity              string `json:"seller_city"`
	SellerSubdivision       string `json:"seller_subdivision"`

	// BuyerId is a weak reference resolved via DataContext.BuyerMap.
	BuyerId string `json:"buyer_id"`

	Currency    string `json:"currency"`
	InvoiceDate string `json:"invoice_date"`
	DueDate     string `json:"due_date"`

	TotalExclVAT decimal.Decimal `json:"total_excl_vat"`
	VATTotal     decimal.Decimal `json:"vat_total"`
	TotalInclVAT decimal.Decimal `json:"total_incl_vat"`
	AmountDue    decimal.Decimal `json:"amount_due"`

	TaxCategoryCode string          `json:"tax_category_code"`
	TaxCategoryRate decimal.Decimal `json:"tax_category_rate"`

	InvoiceTypeCode  string `json:"invoice_type_code"`
	PaymentMeansCode string `json:"payment_means_code"`
	PaymentTerms     string `json:"payment_terms"`
}
