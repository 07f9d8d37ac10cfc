package models

// DataContext is a read-only indexed view over one loaded dataset. Checks
// evaluate against it without mutating it, so a single context is safe for
// concurrent readers. References between entities are string keys with no
// enforced integrity: lookups return an optional result and dangling keys
// surface as exceptions downstream, never as faults.
type DataContext struct {
	Buyers  []Buyer
	Headers []InvoiceHeader
	Lines   []InvoiceLine

	BuyerMap  map[string]*Buyer
	HeaderMap map[string]*InvoiceHeader
	// LinesByInvoice preserves source row order per invoice.
	LinesByInvoice map[string][]*InvoiceLine
}

// NewDataContext copies the input slices and builds the lookup indices.
// Duplicate keys keep the last occurrence (matching upsert-style extracts);
// ordered slices keep every row.
func NewDataContext(buyers []Buyer, headers []InvoiceHeader, lines []InvoiceLine) *DataContext {
	dc := &DataContext{
		Buyers:         make([]Buyer, len(buyers)),
		Headers:        make([]InvoiceHeader, len(headers)),
		Lines:          make([]InvoiceLine, len(lines)),
		BuyerMap:       make(map[string]*Buyer, len(buyers)),
		HeaderMap:      make(map[string]*InvoiceHeader, len(headers)),
		LinesByInvoice: make(map[string][]*InvoiceLine),
	}
	copy(dc.Buyers, buyers)
	copy(dc.Headers, headers)
	copy(dc.Lines, lines)

	for i := range dc.Buyers {
		dc.BuyerMap[dc.Buyers[i].BuyerId] = &dc.Buyers[i]
	}
	for i := range dc.Headers {
		dc.HeaderMap[dc.Headers[i].InvoiceId] = &dc.Headers[i]
	}
	for i := range dc.Lines {
		l := &dc.Lines[i]
		dc.LinesByInvoice[l.InvoiceId] = append(dc.LinesByInvoice[l.InvoiceId], l)
	}
	return dc
}

// BuyerById resolves a buyer reference. ok is false for dangling keys.
func (dc *DataContext) BuyerById(id string) (*Buyer, bool) {
	b, ok := dc.BuyerMap[id]
	return b, ok
}

// HeaderById resolves an invoice reference. ok is false for dangling keys.
func (dc *DataContext) HeaderById(id string) (*InvoiceHeader, bool) {
	h, ok := dc.HeaderMap[id]
	return h, ok
}

// LinesFor returns the invoice's lines in source row order. Nil when the
// invoice has no lines.
func (dc *DataContext) LinesFor(invoiceId string) []*InvoiceLine {
	return dc.LinesByInvoice[invoiceId]
}
