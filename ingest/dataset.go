package ingest

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/veritaxlabs/pintae_backend/models"
	"github.com/veritaxlabs/pintae_backend/utils"
)

// Extract file names inside a dataset directory.
const (
	BuyersFile  = "buyers.csv"
	HeadersFile = "invoice_headers.csv"
	LinesFile   = "invoice_lines.csv"
)

// Dataset is one fully coerced extract, ready to become a DataContext.
type Dataset struct {
	Buyers  []models.Buyer
	Headers []models.InvoiceHeader
	Lines   []models.InvoiceLine
}

// Context builds the indexed view the engine evaluates against.
func (d *Dataset) Context() *models.DataContext {
	return models.NewDataContext(d.Buyers, d.Headers, d.Lines)
}

// LoadDataset reads buyers.csv, invoice_headers.csv and invoice_lines.csv
// from dir and coerces numeric fields. The engine never sees raw strings for
// money; coercion problems fail here with the offending row named.
func LoadDataset(dir string) (*Dataset, error) {
	_, buyerRows, err := ReadCSVFile(filepath.Join(dir, BuyersFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", BuyersFile, err)
	}
	_, headerRows, err := ReadCSVFile(filepath.Join(dir, HeadersFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", HeadersFile, err)
	}
	_, lineRows, err := ReadCSVFile(filepath.Join(dir, LinesFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", LinesFile, err)
	}

	ds := &Dataset{Buyers: BuyersFromRows(buyerRows)}
	if ds.Headers, err = HeadersFromRows(headerRows); err != nil {
		return nil, err
	}
	if ds.Lines, err = LinesFromRows(lineRows); err != nil {
		return nil, err
	}
	return ds, nil
}

// BuyersFromRows maps buyer extract rows onto the model. All columns are
// strings; nothing can fail.
func BuyersFromRows(rows []map[string]string) []models.Buyer {
	out := make([]models.Buyer, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Buyer{
			BuyerId:           row["buyer_id"],
			BuyerName:         row["buyer_name"],
			BuyerTRN:          row["buyer_trn"],
			AddressLine1:      row["address_line1"],
			AddressLine2:      row["address_line2"],
			Country:           row["country"],
			City:              row["city"],
			Subdivision:       row["subdivision"],
			ElectronicAddress: row["electronic_address"],
		})
	}
	return out
}

// HeadersFromRows maps header extract rows, coercing the monetary columns.
func HeadersFromRows(rows []map[string]string) ([]models.InvoiceHeader, error) {
	out := make([]models.InvoiceHeader, 0, len(rows))
	for i, row := range rows {
		h := models.InvoiceHeader{
			InvoiceId:               row["invoice_id"],
			InvoiceNumber:           row["invoice_number"],
			SupplierId:              row["supplier_id"],
			SellerName:              row["seller_name"],
			SellerTRN:               row["seller_trn"],
			SellerElectronicAddress: row["seller_electronic_address"],
			SellerCountry:           row["seller_country"],
			SellerCity:              row["seller_city"],
			SellerSubdivision:       row["seller_subdivision"],
			BuyerId:                 row["buyer_id"],
			Currency:                row["currency"],
			InvoiceDate:             row["invoice_date"],
			DueDate:                 row["due_date"],
			TaxCategoryCode:         row["tax_category_code"],
			InvoiceTypeCode:         row["invoice_type_code"],
			PaymentMeansCode:        row["payment_means_code"],
			PaymentTerms:            row["payment_terms"],
		}

		var err error
		if h.TotalExclVAT, err = money(row, "total_excl_vat"); err != nil {
			return nil, headerRowError(i, "total_excl_vat", err)
		}
		if h.VATTotal, err = money(row, "vat_total"); err != nil {
			return nil, headerRowError(i, "vat_total", err)
		}
		if h.TotalInclVAT, err = money(row, "total_incl_vat"); err != nil {
			return nil, headerRowError(i, "total_incl_vat", err)
		}
		if h.AmountDue, err = money(row, "amount_due"); err != nil {
			return nil, headerRowError(i, "amount_due", err)
		}
		if h.TaxCategoryRate, err = money(row, "tax_category_rate"); err != nil {
			return nil, headerRowError(i, "tax_category_rate", err)
		}
		out = append(out, h)
	}
	return out, nil
}

// LinesFromRows maps line extract rows, coercing amounts and line numbers.
func LinesFromRows(rows []map[string]string) ([]models.InvoiceLine, error) {
	out := make([]models.InvoiceLine, 0, len(rows))
	for i, row := range rows {
		l := models.InvoiceLine{
			LineId:          row["line_id"],
			InvoiceId:       row["invoice_id"],
			ItemName:        row["item_name"],
			TaxCategoryCode: row["tax_category_code"],
		}

		if n := strings.TrimSpace(row["line_number"]); n != "" {
			parsed, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("invoice_lines row %d: line_number %q: %w", i+1, n, err)
			}
			l.LineNumber = parsed
		}

		var err error
		if l.Quantity, err = money(row, "quantity"); err != nil {
			return nil, lineRowError(i, "quantity", err)
		}
		if l.UnitPrice, err = money(row, "unit_price"); err != nil {
			return nil, lineRowError(i, "unit_price", err)
		}
		if l.Discount, err = money(row, "discount"); err != nil {
			return nil, lineRowError(i, "discount", err)
		}
		if l.LineNet, err = money(row, "line_net"); err != nil {
			return nil, lineRowError(i, "line_net", err)
		}
		if l.LineVAT, err = money(row, "line_vat"); err != nil {
			return nil, lineRowError(i, "line_vat", err)
		}
		out = append(out, l)
	}
	return out, nil
}

// money coerces one amount column; absent or blank means zero.
func money(row map[string]string, column string) (decimal.Decimal, error) {
	v := strings.TrimSpace(row[column])
	if v == "" {
		return decimal.Zero, nil
	}
	return utils.ParseDecimal(v)
}

func headerRowError(row int, column string, err error) error {
	return fmt.Errorf("invoice_headers row %d: %s: %w", row+1, column, err)
}

func lineRowError(row int, column string, err error) error {
	return fmt.Errorf("invoice_lines row %d: %s: %w", row+1, column, err)
}
