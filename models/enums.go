package models

import (
	"errors"
	"strings"
)

// Direction is the transaction direction a dataset is validated under.
// AR: invoices we issue. AP: invoices we receive.
type Direction string

const (
	DirectionAR Direction = "AR"
	DirectionAP Direction = "AP"
)

// DefaultDirection applies when the caller does not select one.
const DefaultDirection = DirectionAR

func (d Direction) Valid() bool {
	return d == DirectionAR || d == DirectionAP
}

// ParseDirection accepts raw caller input, case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AR":
		return DirectionAR, nil
	case "AP":
		return DirectionAP, nil
	case "":
		return DefaultDirection, nil
	default:
		return "", errors.New("invalid direction, expected AR or AP")
	}
}

// Severity ranks an exception for scoring and display.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Weight is the score deduction per exception of this severity.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 25
	case SeverityHigh:
		return 15
	case SeverityMedium:
		return 8
	case SeverityLow:
		return 3
	}
	return 0
}

// EntityKind identifies what an EntityScore is aggregated over.
type EntityKind string

const (
	EntityKindSeller  EntityKind = "seller"
	EntityKindBuyer   EntityKind = "buyer"
	EntityKindInvoice EntityKind = "invoice"
)
