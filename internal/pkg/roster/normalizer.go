package roster

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type RuleKind int

const (
	// RuleDate strips [..] citation markers and parses a calendar date.
	RuleDate RuleKind = iota
	// RuleYear takes the first standalone four digit number.
	RuleYear
	// RuleLocation splits "City, State" into two targets.
	RuleLocation
	// RuleIdentifier keeps only digits and parses an integer.
	RuleIdentifier
)

func (k RuleKind) String() string {
	switch k {
	case RuleDate:
		return "date"
	case RuleYear:
		return "year"
	case RuleLocation:
		return "location"
	case RuleIdentifier:
		return "identifier"
	}
	return "unknown"
}

// Rule parses one raw field into one or more output fields. RuleLocation
// writes the city to Targets[0] and the state to Targets[1]; the other kinds
// write Targets[0], or Source itself when Targets is empty.
type Rule struct {
	Kind    RuleKind
	Source  string
	Targets []string
}

func (r Rule) target(i int) string {
	if i < len(r.Targets) {
		return r.Targets[i]
	}
	if i == 0 {
		return r.Source
	}
	return ""
}

type Rules []Rule

var (
	reCitation = regexp.MustCompile(`\[.*?\]`)
	reYear     = regexp.MustCompile(`\b(\d{4})\b`)
	reNonDigit = regexp.MustCompile(`\D`)
)

// CleanDate removes bracketed citation markers and parses what remains.
// Returns nil when nothing parseable is left.
func CleanDate(s string) *time.Time {
	s = strings.TrimSpace(reCitation.ReplaceAllString(s, ""))
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

// CleanYear returns the first standalone four digit number in s.
func CleanYear(s string) *int64 {
	m := reYear.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// SplitLocation splits on the first comma. Without a comma the whole text is
// the city. Empty parts are nil. The state deliberately keeps everything after
// the first comma, so "Dublin, Leinster, Ireland" yields "Leinster, Ireland"
// rather than dropping the country.
func SplitLocation(s string) (city, state *string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	before, after, found := strings.Cut(s, ",")
	city = nonEmpty(before)
	if found {
		state = nonEmpty(after)
	}
	return city, state
}

// CleanIdentifier strips every non-digit and parses the rest. "0000320193"
// gives 320193; "N/A" gives nil.
func CleanIdentifier(s string) *int64 {
	digits := reNonDigit.ReplaceAllString(s, "")
	if digits == "" {
		return nil
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Normalize applies rules to every record and completes each one against
// schema. Every input record yields exactly one output record. An empty input
// returns ErrEmptyInput.
func Normalize(records []RawRecord, rules Rules, schema Schema, diag *Diagnostics) ([]NormalizedRecord, error) {
	if len(records) == 0 {
		diag.add(LevelWarn, StageNormalize, CodeEmptyInput, Warning{}, "no records to normalize")
		return nil, ErrEmptyInput
	}

	present := map[string]bool{}
	for _, rec := range records {
		for k := range rec {
			present[k] = true
		}
	}
	for _, r := range rules {
		if !present[r.Source] {
			diag.add(LevelWarn, StageNormalize, CodeMissingSource, Warning{Field: r.Source},
				"field %q not extracted, %s rule skipped", r.Source, r.Kind)
		}
	}

	out := make([]NormalizedRecord, 0, len(records))
	produced := map[string]bool{}
	for i, rec := range records {
		values := normalizeRecord(i+1, rec, rules, diag)
		for k := range values {
			produced[k] = true
		}
		out = append(out, complete(values, schema))
	}

	for _, col := range schema {
		if !produced[col.Name] {
			diag.add(LevelWarn, StageNormalize, CodeNullFilledColumn, Warning{Field: col.Name},
				"column %q not produced, filled with %s nulls", col.Name, col.Kind)
		}
	}
	return out, nil
}

func normalizeRecord(row int, rec RawRecord, rules Rules, diag *Diagnostics) map[string]Value {
	values := make(map[string]Value, len(rec)+len(rules))
	for k, v := range rec {
		values[k] = TextValue(strings.TrimSpace(v))
	}

	for _, r := range rules {
		raw, ok := rec[r.Source]
		if !ok {
			continue
		}
		switch r.Kind {
		case RuleDate:
			if t := CleanDate(raw); t != nil {
				values[r.target(0)] = DateValue(*t)
			} else {
				values[r.target(0)] = Null(KindDate)
				unparsed(diag, row, r, raw)
			}
		case RuleYear:
			if y := CleanYear(raw); y != nil {
				values[r.target(0)] = IntValue(*y)
			} else {
				values[r.target(0)] = Null(KindInteger)
				unparsed(diag, row, r, raw)
			}
		case RuleIdentifier:
			if id := CleanIdentifier(raw); id != nil {
				values[r.target(0)] = IntValue(*id)
			} else {
				values[r.target(0)] = Null(KindInteger)
				unparsed(diag, row, r, raw)
			}
		case RuleLocation:
			city, state := SplitLocation(raw)
			values[r.target(0)] = textOrNull(city)
			if t := r.target(1); t != "" {
				values[t] = textOrNull(state)
			}
			if city != nil && state == nil {
				diag.add(LevelDebug, StageNormalize, CodeUnparsedField, Warning{Field: r.Source, Row: row},
					"location %q has no comma, state left null", raw)
			}
		}
	}
	return values
}

func unparsed(diag *Diagnostics, row int, r Rule, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	diag.add(LevelDebug, StageNormalize, CodeUnparsedField, Warning{Field: r.Source, Row: row},
		"could not parse %s from %q in row %d", r.Kind, raw, row)
}

func textOrNull(s *string) Value {
	if s == nil {
		return Null(KindText)
	}
	return TextValue(*s)
}

func complete(values map[string]Value, schema Schema) NormalizedRecord {
	rec := make(NormalizedRecord, len(schema))
	for i, col := range schema {
		v, ok := values[col.Name]
		if !ok {
			v = Null(col.Kind)
		}
		rec[i] = Field{Name: col.Name, Value: v}
	}
	return rec
}
