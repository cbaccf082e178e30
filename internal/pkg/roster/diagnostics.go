package roster

import "fmt"

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "debug"
	}
}

// Stage names the pipeline step a warning came from.
type Stage string

const (
	StageLocate    Stage = "locate"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
)

// Warning codes.
const (
	CodeIdentifierMatch   = "identifier_match"
	CodeMissingClasses    = "missing_classes"
	CodeFallback          = "fallback"
	CodeFallbackCandidate = "fallback_candidate"
	CodeFallbackMatch     = "fallback_match"
	CodeNoCandidates      = "no_candidates"
	CodeNoDiscriminator   = "no_discriminator"
	CodeMissingHeader     = "missing_header"
	CodeNoMappedColumns   = "no_mapped_columns"
	CodePartialMapping    = "partial_mapping"
	CodeFullMapping       = "full_mapping"
	CodeShortRow          = "short_row"
	CodeCellOutOfRange    = "cell_out_of_range"
	CodeNoRows            = "no_rows"
	CodeMissingSource     = "missing_source"
	CodeUnparsedField     = "unparsed_field"
	CodeNullFilledColumn  = "null_filled_column"
	CodeEmptyInput        = "empty_input"
)

// Warning is one recoverable decision taken during a run.
type Warning struct {
	Level   Level  `json:"level"`
	Stage   Stage  `json:"stage"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Row     int    `json:"row,omitempty"`
	Message string `json:"message"`
}

// Diagnostics accumulates warnings for a run. A nil *Diagnostics discards them.
type Diagnostics struct {
	Warnings []Warning
}

func (d *Diagnostics) add(level Level, stage Stage, code string, w Warning, format string, args ...interface{}) {
	if d == nil {
		return
	}
	w.Level = level
	w.Stage = stage
	w.Code = code
	w.Message = fmt.Sprintf(format, args...)
	d.Warnings = append(d.Warnings, w)
}

// Count returns how many warnings carry the given code.
func (d *Diagnostics) Count(code string) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, w := range d.Warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}

func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Warnings)
}
