package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/veritaxlabs/pintae_backend/registry"
)

// ErrorDateParse is returned when date_parse cannot make sense of a value.
// Row-level callers catch it and fall back to the raw value.
var ErrorDateParse = errors.New("unable to parse date value")

type TransformType string

const (
	TransformNone         TransformType = "none"
	TransformTrim         TransformType = "trim"
	TransformUppercase    TransformType = "uppercase"
	TransformLowercase    TransformType = "lowercase"
	TransformDateParse    TransformType = "date_parse"
	TransformStaticValue  TransformType = "static_value"
	TransformCombine      TransformType = "combine"
	TransformLookup       TransformType = "lookup"
	TransformSplit        TransformType = "split"
	TransformRegexExtract TransformType = "regex_extract"
)

// Config carries the per-type parameters. Only the fields the transform type
// reads are meaningful; the rest stay at their zero value.
type Config struct {
	Value        string            `json:"value,omitempty" yaml:"value,omitempty"`
	Separator    string            `json:"separator,omitempty" yaml:"separator,omitempty"`
	Index        int               `json:"index,omitempty" yaml:"index,omitempty"`
	Pattern      string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Group        int               `json:"group,omitempty" yaml:"group,omitempty"`
	InputFormat  string            `json:"input_format,omitempty" yaml:"input_format,omitempty"`
	OutputFormat string            `json:"output_format,omitempty" yaml:"output_format,omitempty"`
	Columns      []string          `json:"columns,omitempty" yaml:"columns,omitempty"`
	Mappings     map[string]string `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	DefaultValue *string           `json:"default_value,omitempty" yaml:"default_value,omitempty"`
}

type Transformation struct {
	Type   TransformType `json:"type" yaml:"type"`
	Config Config        `json:"config,omitempty" yaml:"config,omitempty"`
}

// Apply runs the chain left to right over the value. Only date_parse can
// fail; every other transform degrades in place (regex_extract swallows bad
// patterns, unknown types pass the value through).
func Apply(value string, transformations []Transformation, row map[string]string) (string, error) {
	current := value
	for _, tr := range transformations {
		switch tr.Type {
		case TransformNone:
		case TransformTrim:
			current = strings.TrimSpace(current)
		case TransformUppercase:
			current = strings.ToUpper(current)
		case TransformLowercase:
			current = strings.ToLower(current)
		case TransformDateParse:
			parsed, err := parseDate(current, tr.Config)
			if err != nil {
				return "", err
			}
			current = parsed
		case TransformStaticValue:
			current = tr.Config.Value
		case TransformCombine:
			current = combine(tr.Config, row)
		case TransformLookup:
			current = lookup(current, tr.Config)
		case TransformSplit:
			current = splitPart(current, tr.Config)
		case TransformRegexExtract:
			current = regexExtract(current, tr.Config)
		default:
			// Forward compatible: unknown types pass through.
		}
	}
	return current, nil
}

func combine(cfg Config, row map[string]string) string {
	sep := cfg.Separator
	if sep == "" {
		sep = " "
	}
	parts := make([]string, len(cfg.Columns))
	for i, col := range cfg.Columns {
		parts[i] = row[col]
	}
	return strings.Join(parts, sep)
}

func lookup(value string, cfg Config) string {
	for k, v := range cfg.Mappings {
		if strings.EqualFold(k, value) {
			return v
		}
	}
	if cfg.DefaultValue != nil {
		return *cfg.DefaultValue
	}
	return value
}

func splitPart(value string, cfg Config) string {
	sep := cfg.Separator
	if sep == "" {
		sep = " "
	}
	parts := strings.Split(value, sep)
	if cfg.Index < 0 || cfg.Index >= len(parts) {
		return ""
	}
	return parts[cfg.Index]
}

func regexExtract(value string, cfg Config) string {
	re, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return value
	}
	match := re.FindStringSubmatch(value)
	if match == nil {
		return ""
	}
	if cfg.Group < 0 || cfg.Group >= len(match) {
		return ""
	}
	return match[cfg.Group]
}

var (
	isoLikeDate   = regexp.MustCompile(`^[0-9]{4}[-/][0-9]{1,2}[-/][0-9]{1,2}$`)
	dayFirstDate  = regexp.MustCompile(`^[0-9]{1,2}[-/][0-9]{1,2}[-/][0-9]{2,4}$`)
	dateSeparator = func(r rune) bool { return r == '/' || r == '-' }
)

func parseDate(value string, cfg Config) (string, error) {
	raw := strings.TrimSpace(value)

	format := cfg.InputFormat
	if format == "" {
		switch {
		case isoLikeDate.MatchString(raw):
			format = "YYYY-MM-DD"
		case dayFirstDate.MatchString(raw):
			format = "DD/MM/YYYY"
		default:
			return "", fmt.Errorf("%w: %q", ErrorDateParse, value)
		}
	}

	parts := strings.FieldsFunc(raw, dateSeparator)
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %q", ErrorDateParse, value)
	}

	var day, month, year string
	switch format {
	case "YYYY-MM-DD":
		year, month, day = parts[0], parts[1], parts[2]
	case "DD/MM/YYYY", "DD-MM-YYYY":
		day, month, year = parts[0], parts[1], parts[2]
	case "MM/DD/YYYY", "MM-DD-YYYY":
		month, day, year = parts[0], parts[1], parts[2]
	default:
		return "", fmt.Errorf("%w: unsupported input format %q", ErrorDateParse, format)
	}

	day = zeroPad2(day)
	month = zeroPad2(month)

	switch cfg.OutputFormat {
	case "DD/MM/YYYY":
		return day + "/" + month + "/" + year, nil
	case "ISO":
		return year + "-" + month + "-" + day + "T00:00:00Z", nil
	default:
		return year + "-" + month + "-" + day, nil
	}
}

func zeroPad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

var isoDateExact = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)

// ValidateTransformedValue reports whether a post-transform value conforms to
// the target field's data type. Empty values always pass; presence is the
// mandatory-field checks' concern, not this one's.
func ValidateTransformedValue(value string, dataType registry.DataType, format string) bool {
	if value == "" {
		return true
	}
	switch dataType {
	case registry.DataTypeNumber:
		clean := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
		_, err := decimal.NewFromString(clean)
		return err == nil
	case registry.DataTypeDate:
		return isoDateExact.MatchString(value)
	case registry.DataTypeBoolean:
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no":
			return true
		}
		return false
	case registry.DataTypeString:
		if format == "" {
			return true
		}
		matched, err := regexp.MatchString(format, value)
		if err != nil {
			return true
		}
		return matched
	default:
		return true
	}
}
