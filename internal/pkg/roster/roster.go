package roster

import (
	"errors"
	"time"
)

var (
	// ErrNotFound means no table on the page matched the identifier or the fallback.
	ErrNotFound = errors.New("target table not found")
	// ErrAbort means the located table produced no usable data.
	ErrAbort = errors.New("extraction aborted")
	// ErrEmptyInput means the normalizer was handed no records.
	ErrEmptyInput = errors.New("no records to normalize")
)

// Table is a located table: its header texts and the text of every body row.
type Table struct {
	Headers []string
	Rows    [][]string
}

// FieldHeader ties a logical field name to the exact header text expected on the page.
type FieldHeader struct {
	Field  string
	Header string
}

// FieldSpec is ordered; mapping and warnings follow its order.
type FieldSpec []FieldHeader

// Column is a logical field resolved to a physical column position.
type Column struct {
	Field string
	Index int
}

type ColumnMapping []Column

func (m ColumnMapping) Index(field string) (int, bool) {
	for _, c := range m {
		if c.Field == field {
			return c.Index, true
		}
	}
	return 0, false
}

// MaxIndex returns the largest mapped index, or -1 for an empty mapping.
func (m ColumnMapping) MaxIndex() int {
	highest := -1
	for _, c := range m {
		if c.Index > highest {
			highest = c.Index
		}
	}
	return highest
}

// RawRecord holds the trimmed cell text of one body row keyed by logical field.
type RawRecord map[string]string

type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// Value is a typed, nullable field value.
type Value struct {
	Kind  Kind
	Valid bool
	Text  string
	Int   int64
	Date  time.Time
}

func Null(kind Kind) Value { return Value{Kind: kind} }

func TextValue(s string) Value { return Value{Kind: KindText, Valid: true, Text: s} }

func IntValue(i int64) Value { return Value{Kind: KindInteger, Valid: true, Int: i} }

func DateValue(t time.Time) Value { return Value{Kind: KindDate, Valid: true, Date: t} }

// Interface returns the Go value for storage, nil when the value is null.
func (v Value) Interface() interface{} {
	if !v.Valid {
		return nil
	}
	switch v.Kind {
	case KindInteger:
		return v.Int
	case KindDate:
		return v.Date
	default:
		return v.Text
	}
}

// SchemaColumn is one field of the final output schema.
type SchemaColumn struct {
	Name string
	Kind Kind
}

type Schema []SchemaColumn

func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

type Field struct {
	Name  string
	Value Value
}

// NormalizedRecord carries exactly the schema's fields, in schema order.
type NormalizedRecord []Field

func (r NormalizedRecord) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Map returns the record as column name to storage value.
func (r NormalizedRecord) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for _, f := range r {
		out[f.Name] = f.Value.Interface()
	}
	return out
}
