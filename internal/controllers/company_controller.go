package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"roster/internal/models"
	"roster/internal/pkg/roster"
)

// CompanyController serves the persisted roster table and the run log.
type CompanyController struct {
	DB        *gorm.DB
	Table     string
	KeyColumn string
	Schema    roster.Schema
}

// GetCompanies returns roster rows in page order. Any schema column given as
// a query parameter filters by equality.
func (cc *CompanyController) GetCompanies(c *gin.Context) {
	ctx := c.Request.Context()
	if !cc.DB.WithContext(ctx).Migrator().HasTable(cc.Table) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Roster not loaded yet"})
		return
	}

	limit := getLimitWithDefault(c, 100)
	query := cc.DB.WithContext(ctx).Table(cc.Table)
	for _, col := range cc.Schema {
		if v, ok := c.GetQuery(col.Name); ok {
			query = query.Where(cc.DB.Statement.Quote(col.Name)+" = ?", v)
		}
	}

	companies := []map[string]interface{}{}
	if err := query.Order("rowid").Limit(limit).Find(&companies).Error; err != nil {
		log.Error().Err(err).Msg("failed to get companies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"companies": companies,
	})
}

// GetCompany returns the roster row whose key column equals :key
func (cc *CompanyController) GetCompany(c *gin.Context) {
	ctx := c.Request.Context()
	if !cc.DB.WithContext(ctx).Migrator().HasTable(cc.Table) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Roster not loaded yet"})
		return
	}

	var found []map[string]interface{}
	err := cc.DB.WithContext(ctx).Table(cc.Table).
		Where(cc.DB.Statement.Quote(cc.KeyColumn)+" = ?", c.Param("key")).
		Limit(1).Find(&found).Error
	if err != nil {
		log.Error().Err(err).Str("key", c.Param("key")).Msg("failed to get company")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	if len(found) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company": found[0],
	})
}

// GetRuns returns the most recent pipeline runs, newest first
func (cc *CompanyController) GetRuns(c *gin.Context) {
	ctx := c.Request.Context()
	limit := getLimitWithDefault(c, 10)

	runs, err := gorm.G[models.PipelineRun](cc.DB).Order("id DESC").Limit(limit).Find(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get pipeline runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs": runs,
	})
}

func getLimitWithDefault(c *gin.Context, defaultValue int) int {
	if c.Query("limit") == "" {
		return defaultValue
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		log.Debug().Str("limit", c.Query("limit")).Int("default", defaultValue).Msg("invalid limit, using default")
		return defaultValue
	}
	return limit
}
