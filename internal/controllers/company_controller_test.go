package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"roster/internal/config"
	"roster/internal/db"
	"roster/internal/models"
	"roster/internal/pkg/roster"
	"roster/internal/routes"
	"roster/internal/testhelpers"
)

func company(schema roster.Schema, values map[string]roster.Value) roster.NormalizedRecord {
	rec := make(roster.NormalizedRecord, len(schema))
	for i, col := range schema {
		v, ok := values[col.Name]
		if !ok {
			v = roster.Null(col.Kind)
		}
		rec[i] = roster.Field{Name: col.Name, Value: v}
	}
	return rec
}

func get(router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var body map[string]interface{}
	Expect(json.Unmarshal(resp.Body.Bytes(), &body)).To(Succeed())
	return resp, body
}

var _ = Describe("CompanyController", func() {
	var (
		dbConn *gorm.DB
		cfg    *config.Config
		router *gin.Engine
	)

	BeforeEach(func() {
		dbConn = testhelpers.NewTestDB()
		cfg = testhelpers.NewTestConfig("https://roster.test/")
		router = routes.SetupRouter(dbConn, cfg)
	})

	It("reports health", func() {
		resp, body := get(router, "/health")
		Expect(resp.Code).To(Equal(http.StatusOK))
		Expect(body).To(HaveKeyWithValue("status", "UP"))
	})

	It("answers 503 before the first load", func() {
		resp, _ := get(router, "/api/v1/companies")
		Expect(resp.Code).To(Equal(http.StatusServiceUnavailable))
	})

	Context("with a loaded roster", func() {
		BeforeEach(func() {
			_, err := db.ReplaceTable(context.Background(), dbConn, cfg.TableName, cfg.FinalSchema, []roster.NormalizedRecord{
				company(cfg.FinalSchema, map[string]roster.Value{
					"Symbol":      roster.TextValue("MMM"),
					"GICS_Sector": roster.TextValue("Industrials"),
					"CIK":         roster.IntValue(66740),
				}),
				company(cfg.FinalSchema, map[string]roster.Value{
					"Symbol":      roster.TextValue("ABT"),
					"GICS_Sector": roster.TextValue("Health Care"),
				}),
				company(cfg.FinalSchema, map[string]roster.Value{
					"Symbol":      roster.TextValue("AOS"),
					"GICS_Sector": roster.TextValue("Industrials"),
				}),
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists companies in page order", func() {
			resp, body := get(router, "/api/v1/companies")
			Expect(resp.Code).To(Equal(http.StatusOK))

			companies := body["companies"].([]interface{})
			Expect(companies).To(HaveLen(3))
			Expect(companies[0]).To(HaveKeyWithValue("Symbol", "MMM"))
			Expect(companies[0]).To(HaveKeyWithValue("CIK", BeNumerically("==", 66740)))
			Expect(companies[1]).To(HaveKeyWithValue("CIK", BeNil()))
		})

		It("filters by schema columns and honours the limit", func() {
			_, body := get(router, "/api/v1/companies?GICS_Sector=Industrials&limit=1")
			companies := body["companies"].([]interface{})
			Expect(companies).To(HaveLen(1))
			Expect(companies[0]).To(HaveKeyWithValue("Symbol", "MMM"))
		})

		It("looks a company up by its key column", func() {
			resp, body := get(router, "/api/v1/companies/ABT")
			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(body["company"]).To(HaveKeyWithValue("GICS_Sector", "Health Care"))
		})

		It("answers 404 for an unknown key", func() {
			resp, body := get(router, "/api/v1/companies/NOPE")
			Expect(resp.Code).To(Equal(http.StatusNotFound))
			Expect(body).To(HaveKeyWithValue("error", "Company not found"))
		})
	})

	It("lists pipeline runs newest first", func() {
		ctx := context.Background()
		for _, status := range []string{models.RunStatusFailed, models.RunStatusSucceeded} {
			run := models.PipelineRun{SourceURL: cfg.SourceURL, TargetTable: cfg.TableName, Status: status}
			Expect(gorm.G[models.PipelineRun](dbConn).Create(ctx, &run)).To(Succeed())
		}

		resp, body := get(router, "/api/v1/runs?limit=5")
		Expect(resp.Code).To(Equal(http.StatusOK))

		runs := body["runs"].([]interface{})
		Expect(runs).To(HaveLen(2))
		Expect(runs[0]).To(HaveKeyWithValue("Status", models.RunStatusSucceeded))
	})
})
