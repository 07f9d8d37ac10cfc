package registry

// LegacyField is the pre-registry field shape kept for consumers that still
// read the flat mandatory/optional table. Registry mode is authoritative;
// this table only backs the legacy coverage numbers.
type LegacyField struct {
	FieldName string `json:"field_name"`
	Label     string `json:"label"`
	Required  bool   `json:"required"`
}

var legacyUC1Fields = []LegacyField{
	{FieldName: "invoice_number", Label: "Invoice Number", Required: true},
	{FieldName: "invoice_issue_date", Label: "Invoice Date", Required: true},
	{FieldName: "invoice_type_code", Label: "Invoice Type Code", Required: true},
	{FieldName: "invoice_currency_code", Label: "Currency", Required: true},
	{FieldName: "seller_name", Label: "Seller Name", Required: true},
	{FieldName: "seller_trn", Label: "Seller TRN", Required: true},
	{FieldName: "seller_country_code", Label: "Seller Country", Required: true},
	{FieldName: "seller_electronic_address", Label: "Seller Electronic Address", Required: true},
	{FieldName: "buyer_name", Label: "Buyer Name", Required: true},
	{FieldName: "buyer_trn", Label: "Buyer TRN", Required: true},
	{FieldName: "buyer_country_code", Label: "Buyer Country", Required: true},
	{FieldName: "buyer_electronic_address", Label: "Buyer Electronic Address", Required: true},
	{FieldName: "payment_means_code", Label: "Payment Means", Required: true},
	{FieldName: "total_excluding_vat", Label: "Total Excl. VAT", Required: true},
	{FieldName: "total_vat_amount", Label: "VAT Total", Required: true},
	{FieldName: "total_including_vat", Label: "Total Incl. VAT", Required: true},
	{FieldName: "amount_due_for_payment", Label: "Amount Due", Required: true},
	{FieldName: "vat_category_code", Label: "VAT Category", Required: true},
	{FieldName: "vat_category_rate", Label: "VAT Rate", Required: true},
	{FieldName: "item_name", Label: "Item Name", Required: true},
	{FieldName: "invoiced_quantity", Label: "Quantity", Required: true},
	{FieldName: "item_net_price", Label: "Unit Price", Required: true},
	{FieldName: "invoice_line_net_amount", Label: "Line Net", Required: true},
	{FieldName: "payment_due_date", Label: "Due Date", Required: false},
	{FieldName: "payment_terms", Label: "Payment Terms", Required: false},
	{FieldName: "buyer_reference", Label: "Buyer Reference", Required: false},
	{FieldName: "purchase_order_reference", Label: "PO Reference", Required: false},
	{FieldName: "seller_city", Label: "Seller City", Required: false},
	{FieldName: "seller_subdivision", Label: "Seller Emirate", Required: false},
	{FieldName: "buyer_city", Label: "Buyer City", Required: false},
	{FieldName: "buyer_subdivision", Label: "Buyer Emirate", Required: false},
	{FieldName: "delivery_date", Label: "Delivery Date", Required: false},
}

// LegacyUC1Fields returns the flat legacy table. Read-only for callers.
func LegacyUC1Fields() []LegacyField {
	return legacyUC1Fields
}
