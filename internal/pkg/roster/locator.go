package roster

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LocatorOptions identifies the target table on a page.
type LocatorOptions struct {
	// TableID is the id attribute that selects the table directly.
	TableID string
	// Classes must all be present on a table for it to be a fallback candidate.
	Classes []string
	// Discriminator is a header label only the target table carries.
	Discriminator string
}

// Locate parses raw markup and finds the target table.
func Locate(raw []byte, opts LocatorOptions, diag *Diagnostics) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return LocateDocument(doc, opts, diag)
}

// LocateDocument finds the table carrying opts.TableID, or failing that the
// first class-matching table whose headers contain opts.Discriminator.
func LocateDocument(doc *goquery.Document, opts LocatorOptions, diag *Diagnostics) (*Table, error) {
	if opts.TableID != "" {
		byID := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
			id, ok := s.Attr("id")
			return ok && id == opts.TableID
		}).First()

		if byID.Length() > 0 {
			diag.add(LevelInfo, StageLocate, CodeIdentifierMatch, Warning{}, "found table by id=%q", opts.TableID)
			if !hasClasses(byID, opts.Classes) {
				diag.add(LevelWarn, StageLocate, CodeMissingClasses, Warning{},
					"table with id=%q lacks expected classes %q", opts.TableID, strings.Join(opts.Classes, " "))
			}
			return tableFrom(byID), nil
		}

		diag.add(LevelWarn, StageLocate, CodeFallback, Warning{},
			"no table with id=%q, falling back to class and header search", opts.TableID)
	}

	candidates := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClasses(s, opts.Classes)
	})
	if candidates.Length() == 0 {
		diag.add(LevelError, StageLocate, CodeNoCandidates, Warning{},
			"no tables with classes %q", strings.Join(opts.Classes, " "))
		return nil, fmt.Errorf("%w: no tables with classes %q", ErrNotFound, strings.Join(opts.Classes, " "))
	}

	var found *goquery.Selection
	candidates.EachWithBreak(func(i int, s *goquery.Selection) bool {
		headers := headerTexts(s)
		diag.add(LevelDebug, StageLocate, CodeFallbackCandidate, Warning{}, "candidate %d headers: %q", i, headers)
		for _, h := range headers {
			if h == opts.Discriminator {
				found = s
				diag.add(LevelInfo, StageLocate, CodeFallbackMatch, Warning{},
					"identified table via fallback (candidate %d) by header %q", i, opts.Discriminator)
				return false
			}
		}
		return true
	})

	if found == nil {
		diag.add(LevelError, StageLocate, CodeNoDiscriminator, Warning{},
			"no candidate table has header %q", opts.Discriminator)
		return nil, fmt.Errorf("%w: no candidate with header %q", ErrNotFound, opts.Discriminator)
	}
	return tableFrom(found), nil
}

func hasClasses(s *goquery.Selection, classes []string) bool {
	for _, c := range classes {
		if !s.HasClass(c) {
			return false
		}
	}
	return true
}

func headerTexts(table *goquery.Selection) []string {
	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})
	return headers
}

func tableFrom(table *goquery.Selection) *Table {
	t := &Table{Headers: headerTexts(table)}
	table.ChildrenFiltered("tbody").ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := []string{}
		tr.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		t.Rows = append(t.Rows, cells)
	})
	return t
}
