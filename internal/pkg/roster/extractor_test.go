package roster_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"roster/internal/pkg/roster"
)

var _ = Describe("Extract", func() {
	spec := roster.FieldSpec{
		{Field: "Symbol", Header: "Symbol"},
		{Field: "GICS_Sector", Header: "GICS Sector"},
		{Field: "CIK", Header: "CIK"},
	}

	var diag *roster.Diagnostics

	BeforeEach(func() {
		diag = &roster.Diagnostics{}
	})

	It("aborts when no header matches", func() {
		table := &roster.Table{
			Headers: []string{"Ticker", "Name"},
			Rows:    [][]string{{"A", "Agilent"}},
		}

		ex, err := roster.Extract(table, spec, diag)
		Expect(err).To(MatchError(roster.ErrAbort))
		Expect(ex.Mapped).To(BeZero())
		Expect(ex.Records).To(BeEmpty())
		Expect(diag.Count(roster.CodeMissingHeader)).To(Equal(3))
		Expect(diag.Count(roster.CodeNoMappedColumns)).To(Equal(1))
	})

	It("maps every field when all headers are present", func() {
		table := &roster.Table{
			Headers: []string{"Symbol", "Security", "GICS Sector", "CIK"},
			Rows:    [][]string{{"A", "Agilent", "Health Care", "0001090872"}},
		}

		ex, err := roster.Extract(table, spec, diag)
		Expect(err).NotTo(HaveOccurred())
		Expect(ex.Degraded()).To(BeFalse())
		Expect(ex.Mapping).To(Equal(roster.ColumnMapping{
			{Field: "Symbol", Index: 0},
			{Field: "GICS_Sector", Index: 2},
			{Field: "CIK", Index: 3},
		}))
		Expect(ex.Records).To(Equal([]roster.RawRecord{
			{"Symbol": "A", "GICS_Sector": "Health Care", "CIK": "0001090872"},
		}))
		Expect(diag.Count(roster.CodeFullMapping)).To(Equal(1))
	})

	It("proceeds in degraded mode with a partial mapping", func() {
		table := &roster.Table{
			Headers: []string{"Symbol", "GICS Sector"},
			Rows:    [][]string{{"A", "Health Care"}, {"B", "Energy"}},
		}

		ex, err := roster.Extract(table, spec, diag)
		Expect(err).NotTo(HaveOccurred())
		Expect(ex.Degraded()).To(BeTrue())
		Expect(ex.Mapped).To(Equal(2))
		Expect(ex.Expected).To(Equal(3))
		Expect(ex.Missing).To(Equal([]string{"CIK"}))
		_, mapped := ex.Mapping.Index("CIK")
		Expect(mapped).To(BeFalse())
		idx, _ := ex.Mapping.Index("GICS_Sector")
		Expect(idx).To(Equal(1))
		Expect(ex.Records).To(HaveLen(2))
		Expect(ex.Records[0]).NotTo(HaveKey("CIK"))
		Expect(diag.Count(roster.CodePartialMapping)).To(Equal(1))
	})

	It("skips rows too short for the highest mapped index and keeps order", func() {
		table := &roster.Table{
			Headers: []string{"Symbol", "Security", "GICS Sector"},
			Rows: [][]string{
				{},
				{"A", "Agilent", "Health Care"},
				{"footnote"},
				{"", ""},
				{"B", "Baker", "Energy", "extra"},
				{"C", "Cisco"},
				{"D", "Dover", "Industrials"},
			},
		}

		ex, err := roster.Extract(table, spec[:2], diag)
		Expect(err).NotTo(HaveOccurred())
		Expect(ex.Records).To(Equal([]roster.RawRecord{
			{"Symbol": "A", "GICS_Sector": "Health Care"},
			{"Symbol": "B", "GICS_Sector": "Energy"},
			{"Symbol": "D", "GICS_Sector": "Industrials"},
		}))
		// blank rows are skipped silently
		Expect(diag.Count(roster.CodeShortRow)).To(Equal(2))
	})

	It("only guards the highest mapped index", func() {
		table := &roster.Table{
			Headers: []string{"Symbol", "GICS Sector"},
			Rows:    [][]string{{"", "Energy"}},
		}

		ex, err := roster.Extract(table, spec, diag)
		Expect(err).NotTo(HaveOccurred())
		Expect(ex.Records).To(Equal([]roster.RawRecord{{"Symbol": "", "GICS_Sector": "Energy"}}))
	})

	It("maps a duplicated header to its last column", func() {
		table := &roster.Table{
			Headers: []string{"Symbol", "Symbol"},
			Rows:    [][]string{{"old", "new"}},
		}

		ex, err := roster.Extract(table, spec[:1], nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(ex.Records[0]["Symbol"]).To(Equal("new"))
	})

	It("aborts when every row is skipped", func() {
		table := &roster.Table{
			Headers: []string{"Symbol", "GICS Sector"},
			Rows:    [][]string{{"A"}, {}},
		}

		ex, err := roster.Extract(table, spec, diag)
		Expect(err).To(MatchError(roster.ErrAbort))
		Expect(ex.Records).To(BeEmpty())
		Expect(diag.Count(roster.CodeNoRows)).To(Equal(1))
	})
})
