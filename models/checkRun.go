package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckRun is the per-run aggregate handed to dashboards and evidence packs.
// The engine itself never persists these; the caller owns their lifecycle.
type CheckRun struct {
	Id              string    `json:"id"`
	Direction       Direction `json:"direction"`
	CorrelationId   string    `json:"correlation_id,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	TotalInvoices   int       `json:"total_invoices"`
	TotalExceptions int       `json:"total_exceptions"`
	CriticalCount   int       `json:"critical_count"`
	HighCount       int       `json:"high_count"`
	MediumCount     int       `json:"medium_count"`
	LowCount        int       `json:"low_count"`
	Score           int       `json:"score"`
}

// CalculateScore turns severity counts into a 0-100 compliance score:
// 100 - (25*critical + 15*high + 8*medium + 3*low), clamped to [0,100].
func CalculateScore(critical, high, medium, low int) int {
	score := 100 -
		(critical*SeverityCritical.Weight() +
			high*SeverityHigh.Weight() +
			medium*SeverityMedium.Weight() +
			low*SeverityLow.Weight())
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// NewCheckRun aggregates a finished run. startedAt is kept from the caller so
// duration covers the whole evaluation, not just aggregation.
func NewCheckRun(direction Direction, totalInvoices int, exceptions []Exception, startedAt time.Time) *CheckRun {
	critical, high, medium, low := CountBySeverity(exceptions)
	return &CheckRun{
		Id:              uuid.NewString(),
		Direction:       direction,
		StartedAt:       startedAt,
		CompletedAt:     time.Now().UTC(),
		TotalInvoices:   totalInvoices,
		TotalExceptions: len(exceptions),
		CriticalCount:   critical,
		HighCount:       high,
		MediumCount:     medium,
		LowCount:        low,
		Score:           CalculateScore(critical, high, medium, low),
	}
}

// EntityScore applies the run scoring weights to one seller, buyer or
// invoice, so dashboards can rank counterparties by exception pressure.
type EntityScore struct {
	EntityKind      EntityKind `json:"entity_kind"`
	EntityId        string     `json:"entity_id"`
	EntityName      string     `json:"entity_name,omitempty"`
	ExceptionCount  int        `json:"exception_count"`
	CriticalCount   int        `json:"critical_count"`
	HighCount       int        `json:"high_count"`
	MediumCount     int        `json:"medium_count"`
	LowCount        int        `json:"low_count"`
	Score           int        `json:"score"`
	InvoicesCovered int        `json:"invoices_covered"`
}

type entityAccumulator struct {
	kind     EntityKind
	id       string
	name     string
	invoices map[string]bool
	excs     []Exception
}

// BuildEntityScores attributes invoice-tagged exceptions to the invoice
// itself, its seller (by seller TRN) and its resolved buyer. Output order is
// deterministic: invoices in header order, then sellers and buyers in
// first-seen header order. Exceptions without an invoice id are dataset-level
// and are not attributed.
func BuildEntityScores(dc *DataContext, exceptions []Exception) []EntityScore {
	byInvoice := make(map[string][]Exception)
	for _, ex := range exceptions {
		if ex.InvoiceId == "" {
			continue
		}
		byInvoice[ex.InvoiceId] = append(byInvoice[ex.InvoiceId], ex)
	}

	var order []*entityAccumulator
	index := make(map[string]*entityAccumulator)
	track := func(kind EntityKind, id, name, invoiceId string, excs []Exception) {
		if id == "" {
			return
		}
		key := string(kind) + "|" + id
		acc, ok := index[key]
		if !ok {
			acc = &entityAccumulator{kind: kind, id: id, name: name, invoices: map[string]bool{}}
			index[key] = acc
			order = append(order, acc)
		}
		acc.invoices[invoiceId] = true
		acc.excs = append(acc.excs, excs...)
	}

	for i := range dc.Headers {
		h := &dc.Headers[i]
		excs := byInvoice[h.InvoiceId]
		track(EntityKindInvoice, h.InvoiceId, h.InvoiceNumber, h.InvoiceId, excs)
		track(EntityKindSeller, h.SellerTRN, h.SellerName, h.InvoiceId, excs)
		if buyer, ok := dc.BuyerById(h.BuyerId); ok {
			track(EntityKindBuyer, buyer.BuyerId, buyer.BuyerName, h.InvoiceId, excs)
		}
	}

	out := make([]EntityScore, 0, len(order))
	for _, acc := range order {
		critical, high, medium, low := CountBySeverity(acc.excs)
		out = append(out, EntityScore{
			EntityKind:      acc.kind,
			EntityId:        acc.id,
			EntityName:      acc.name,
			ExceptionCount:  len(acc.excs),
			CriticalCount:   critical,
			HighCount:       high,
			MediumCount:     medium,
			LowCount:        low,
			Score:           CalculateScore(critical, high, medium, low),
			InvoicesCovered: len(acc.invoices),
		})
	}
	return out
}
