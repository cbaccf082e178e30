package roster

import "fmt"

// Extraction is the result of mapping and reading a located table.
type Extraction struct {
	Mapping  ColumnMapping
	Records  []RawRecord
	Mapped   int
	Expected int
	// Missing lists the fields whose header was not on the page, in field spec order.
	Missing []string
}

// Degraded reports whether fewer than all field spec entries were mapped.
func (e *Extraction) Degraded() bool {
	return e.Mapped < e.Expected
}

// MapColumns resolves each field spec entry to the position of its header text.
// Fields whose header is absent are left out of the mapping.
func MapColumns(headers []string, spec FieldSpec, diag *Diagnostics) (ColumnMapping, []string) {
	positions := make(map[string]int, len(headers))
	for i, h := range headers {
		positions[h] = i
	}

	mapping := ColumnMapping{}
	var missing []string
	for _, fh := range spec {
		idx, ok := positions[fh.Header]
		if !ok {
			missing = append(missing, fh.Field)
			diag.add(LevelWarn, StageExtract, CodeMissingHeader, Warning{Field: fh.Field},
				"header %q (for field %q) not found in table; headers: %q", fh.Header, fh.Field, headers)
			continue
		}
		mapping = append(mapping, Column{Field: fh.Field, Index: idx})
	}
	return mapping, missing
}

// Extract maps field spec entries onto the table's headers and reads every body row
// wide enough to cover the mapping. It fails with ErrAbort when no header
// matches or when no row survives.
func Extract(table *Table, spec FieldSpec, diag *Diagnostics) (*Extraction, error) {
	mapping, missing := MapColumns(table.Headers, spec, diag)
	ex := &Extraction{
		Mapping:  mapping,
		Mapped:   len(mapping),
		Expected: len(spec),
		Missing:  missing,
	}

	switch {
	case ex.Mapped == 0:
		diag.add(LevelError, StageExtract, CodeNoMappedColumns, Warning{},
			"mapped 0 of %d columns; headers in table: %q", ex.Expected, table.Headers)
		return ex, fmt.Errorf("%w: no field spec header found in table", ErrAbort)
	case ex.Degraded():
		diag.add(LevelWarn, StageExtract, CodePartialMapping, Warning{},
			"mapped %d/%d columns, proceeding without %q", ex.Mapped, ex.Expected, missing)
	default:
		diag.add(LevelInfo, StageExtract, CodeFullMapping, Warning{}, "mapped all %d columns", ex.Mapped)
	}

	maxIndex := mapping.MaxIndex()
	for i, cells := range table.Rows {
		row := i + 1
		if len(cells) <= maxIndex {
			if !blank(cells) {
				diag.add(LevelDebug, StageExtract, CodeShortRow, Warning{Row: row},
					"skipping row %d: %d cells, need more than %d: %q", row, len(cells), maxIndex, cells)
			}
			continue
		}

		rec := make(RawRecord, len(mapping))
		for _, c := range mapping {
			if c.Index < 0 || c.Index >= len(cells) {
				diag.add(LevelError, StageExtract, CodeCellOutOfRange, Warning{Field: c.Field, Row: row},
					"column %d for field %q out of range in row %d", c.Index, c.Field, row)
				rec[c.Field] = ""
				continue
			}
			rec[c.Field] = cells[c.Index]
		}
		ex.Records = append(ex.Records, rec)
	}

	if len(ex.Records) == 0 {
		diag.add(LevelWarn, StageExtract, CodeNoRows, Warning{}, "no data rows extracted from %d body rows", len(table.Rows))
		return ex, fmt.Errorf("%w: no data rows", ErrAbort)
	}
	return ex, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
