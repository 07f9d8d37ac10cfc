package registry

import "sync"

// RegistryVersion labels the data-requirement registry coverage is computed
// against. Bump only when the field table itself changes.
const RegistryVersion = "PINT AE UC1 v1.0"

// DataType classifies the conformant representation of a registry field.
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeDate    DataType = "date"
	DataTypeBoolean DataType = "boolean"
)

// Field is one PINT-AE data requirement (DR). The table below is the
// authoritative UC1 registry: 50 fields, loaded once, never mutated.
type Field struct {
	Id            string   `json:"id" yaml:"id"`
	IBTReference  string   `json:"ibt_reference" yaml:"ibt_reference"`
	Name          string   `json:"name" yaml:"name"`
	Mandatory     bool     `json:"mandatory" yaml:"mandatory"`
	DataType      DataType `json:"data_type" yaml:"data_type"`
	Format        string   `json:"format,omitempty" yaml:"format,omitempty"`
	AllowedValues []string `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`
}

const (
	trnFormat      = `^[0-9]{15}$`
	countryFormat  = `^[A-Z]{2}$`
	currencyFormat = `^[A-Z]{3}$`
	// PEPPOL endpoint id: electronic address scheme prefix + identifier.
	endpointFormat = `^[0-9]{4}:[A-Za-z0-9]+$`
)

var emirates = []string{"AE-AZ", "AE-AJ", "AE-DU", "AE-FU", "AE-RK", "AE-SH", "AE-UQ"}

var uc1Fields = []Field{
	// Document level.
	{Id: "specification_identifier", IBTReference: "IBT-024", Name: "Specification identifier", Mandatory: true, DataType: DataTypeString,
		AllowedValues: []string{"urn:peppol:pint:billing-1@ae-1"}},
	{Id: "business_process_type", IBTReference: "IBT-023", Name: "Business process type", Mandatory: false, DataType: DataTypeString},
	{Id: "invoice_number", IBTReference: "IBT-001", Name: "Invoice number", Mandatory: true, DataType: DataTypeString},
	{Id: "invoice_issue_date", IBTReference: "IBT-002", Name: "Invoice issue date", Mandatory: true, DataType: DataTypeDate},
	{Id: "invoice_type_code", IBTReference: "IBT-003", Name: "Invoice type code", Mandatory: true, DataType: DataTypeString,
		AllowedValues: []string{"380", "381", "383", "384", "389"}},
	{Id: "invoice_currency_code", IBTReference: "IBT-005", Name: "Invoice currency code", Mandatory: true, DataType: DataTypeString, Format: currencyFormat},
	{Id: "vat_accounting_currency", IBTReference: "IBT-006", Name: "VAT accounting currency code", Mandatory: false, DataType: DataTypeString, Format: currencyFormat},
	{Id: "payment_due_date", IBTReference: "IBT-009", Name: "Payment due date", Mandatory: false, DataType: DataTypeDate},
	{Id: "buyer_reference", IBTReference: "IBT-010", Name: "Buyer reference", Mandatory: false, DataType: DataTypeString},
	{Id: "contract_reference", IBTReference: "IBT-012", Name: "Contract reference", Mandatory: false, DataType: DataTypeString},
	{Id: "purchase_order_reference", IBTReference: "IBT-013", Name: "Purchase order reference", Mandatory: false, DataType: DataTypeString},
	{Id: "preceding_invoice_reference", IBTReference: "IBT-025", Name: "Preceding invoice reference", Mandatory: false, DataType: DataTypeString},

	// Seller party.
	{Id: "seller_name", IBTReference: "IBT-027", Name: "Seller name", Mandatory: true, DataType: DataTypeString},
	{Id: "seller_legal_registration_id", IBTReference: "IBT-030", Name: "Seller legal registration identifier", Mandatory: false, DataType: DataTypeString},
	{Id: "seller_trn", IBTReference: "IBT-031", Name: "Seller tax registration number", Mandatory: true, DataType: DataTypeString, Format: trnFormat},
	{Id: "seller_electronic_address", IBTReference: "IBT-034", Name: "Seller electronic address", Mandatory: true, DataType: DataTypeString, Format: endpointFormat},
	{Id: "seller_address_line1", IBTReference: "IBT-035", Name: "Seller address line 1", Mandatory: false, DataType: DataTypeString},
	{Id: "seller_city", IBTReference: "IBT-037", Name: "Seller city", Mandatory: false, DataType: DataTypeString},
	{Id: "seller_subdivision", IBTReference: "IBT-039", Name: "Seller country subdivision", Mandatory: false, DataType: DataTypeString, AllowedValues: emirates},
	{Id: "seller_country_code", IBTReference: "IBT-040", Name: "Seller country code", Mandatory: true, DataType: DataTypeString, Format: countryFormat},

	// Buyer party.
	{Id: "buyer_name", IBTReference: "IBT-044", Name: "Buyer name", Mandatory: true, DataType: DataTypeString},
	{Id: "buyer_identifier", IBTReference: "IBT-046", Name: "Buyer identifier", Mandatory: false, DataType: DataTypeString},
	{Id: "buyer_trn", IBTReference: "IBT-048", Name: "Buyer tax registration number", Mandatory: true, DataType: DataTypeString, Format: trnFormat},
	{Id: "buyer_electronic_address", IBTReference: "IBT-049", Name: "Buyer electronic address", Mandatory: true, DataType: DataTypeString, Format: endpointFormat},
	{Id: "buyer_address_line1", IBTReference: "IBT-050", Name: "Buyer address line 1", Mandatory: false, DataType: DataTypeString},
	{Id: "buyer_city", IBTReference: "IBT-052", Name: "Buyer city", Mandatory: false, DataType: DataTypeString},
	{Id: "buyer_subdivision", IBTReference: "IBT-054", Name: "Buyer country subdivision", Mandatory: false, DataType: DataTypeString, AllowedValues: emirates},
	{Id: "buyer_country_code", IBTReference: "IBT-055", Name: "Buyer country code", Mandatory: true, DataType: DataTypeString, Format: countryFormat},

	// Delivery and payment.
	{Id: "delivery_date", IBTReference: "IBT-072", Name: "Actual delivery date", Mandatory: false, DataType: DataTypeDate},
	{Id: "payment_means_code", IBTReference: "IBT-081", Name: "Payment means type code", Mandatory: true, DataType: DataTypeString,
		AllowedValues: []string{"10", "20", "30", "42", "48", "58", "97"}},
	{Id: "payment_terms", IBTReference: "IBT-020", Name: "Payment terms", Mandatory: false, DataType: DataTypeString},

	// Document totals.
	{Id: "sum_of_line_net_amounts", IBTReference: "IBT-106", Name: "Sum of invoice line net amounts", Mandatory: true, DataType: DataTypeNumber},
	{Id: "allowance_total_amount", IBTReference: "IBT-107", Name: "Document allowance total amount", Mandatory: false, DataType: DataTypeNumber},
	{Id: "charge_total_amount", IBTReference: "IBT-108", Name: "Document charge total amount", Mandatory: false, DataType: DataTypeNumber},
	{Id: "total_excluding_vat", IBTReference: "IBT-109", Name: "Invoice total amount without VAT", Mandatory: true, DataType: DataTypeNumber},
	{Id: "total_vat_amount", IBTReference: "IBT-110", Name: "Invoice total VAT amount", Mandatory: true, DataType: DataTypeNumber},
	{Id: "total_including_vat", IBTReference: "IBT-112", Name: "Invoice total amount with VAT", Mandatory: true, DataType: DataTypeNumber},
	{Id: "prepaid_amount", IBTReference: "IBT-113", Name: "Paid amount", Mandatory: false, DataType: DataTypeNumber},
	{Id: "amount_due_for_payment", IBTReference: "IBT-115", Name: "Amount due for payment", Mandatory: true, DataType: DataTypeNumber},

	// VAT breakdown.
	{Id: "vat_category_taxable_amount", IBTReference: "IBT-116", Name: "VAT category taxable amount", Mandatory: true, DataType: DataTypeNumber},
	{Id: "vat_category_tax_amount", IBTReference: "IBT-117", Name: "VAT category tax amount", Mandatory: true, DataType: DataTypeNumber},
	{Id: "vat_category_code", IBTReference: "IBT-118", Name: "VAT category code", Mandatory: true, DataType: DataTypeString,
		AllowedValues: []string{"S", "Z", "E", "O", "AE"}},
	{Id: "vat_category_rate", IBTReference: "IBT-119", Name: "VAT category rate", Mandatory: true, DataType: DataTypeNumber},

	// Invoice line.
	{Id: "invoice_line_identifier", IBTReference: "IBT-126", Name: "Invoice line identifier", Mandatory: true, DataType: DataTypeString},
	{Id: "invoiced_quantity", IBTReference: "IBT-129", Name: "Invoiced quantity", Mandatory: true, DataType: DataTypeNumber},
	{Id: "invoiced_quantity_uom", IBTReference: "IBT-130", Name: "Invoiced quantity unit of measure", Mandatory: false, DataType: DataTypeString},
	{Id: "invoice_line_net_amount", IBTReference: "IBT-131", Name: "Invoice line net amount", Mandatory: true, DataType: DataTypeNumber},
	{Id: "item_net_price", IBTReference: "IBT-146", Name: "Item net price", Mandatory: true, DataType: DataTypeNumber},
	{Id: "line_vat_category_code", IBTReference: "IBT-151", Name: "Invoiced item VAT category code", Mandatory: true, DataType: DataTypeString,
		AllowedValues: []string{"S", "Z", "E", "O", "AE"}},
	{Id: "item_name", IBTReference: "IBT-153", Name: "Item name", Mandatory: true, DataType: DataTypeString},
}

var (
	fieldsByIBT  map[string]*Field
	fieldsById   map[string]*Field
	fieldIdxOnce sync.Once
)

// UC1Fields returns the full registry table. Callers must treat it as
// read-only.
func UC1Fields() []Field {
	return uc1Fields
}

func buildFieldIndex() {
	fieldsByIBT = make(map[string]*Field, len(uc1Fields))
	fieldsById = make(map[string]*Field, len(uc1Fields))
	for i := range uc1Fields {
		fieldsByIBT[uc1Fields[i].IBTReference] = &uc1Fields[i]
		fieldsById[uc1Fields[i].Id] = &uc1Fields[i]
	}
}

// FieldByIBT resolves a DR by its IBT reference, e.g. "IBT-031".
func FieldByIBT(ref string) (*Field, bool) {
	fieldIdxOnce.Do(buildFieldIndex)
	f, ok := fieldsByIBT[ref]
	return f, ok
}

// FieldById resolves a DR by its canonical field id, e.g. "seller_trn".
func FieldById(id string) (*Field, bool) {
	fieldIdxOnce.Do(buildFieldIndex)
	f, ok := fieldsById[id]
	return f, ok
}

// MandatoryDRCount is used by coverage reporting and its tests.
func MandatoryDRCount() int {
	n := 0
	for i := range uc1Fields {
		if uc1Fields[i].Mandatory {
			n++
		}
	}
	return n
}
