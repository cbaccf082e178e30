package testhelpers

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	g "github.com/onsi/gomega"
	"gorm.io/gorm"

	"roster/internal/config"
	"roster/internal/db"
)

// NewTestDB opens a fresh SQLite database in a per-spec temp directory.
// The nested path exercises directory creation.
func NewTestDB() *gorm.DB {
	GinkgoHelper()

	path := filepath.Join(GinkgoT().TempDir(), "data", "roster_test.db")
	conn, err := db.InitDB(path)
	g.Expect(err).NotTo(g.HaveOccurred())

	DeferCleanup(func() {
		g.Expect(db.Close(conn)).To(g.Succeed())
	})
	return conn
}

// NewTestConfig returns the default configuration pointed at a test source URL.
func NewTestConfig(sourceURL string) *config.Config {
	GinkgoHelper()

	cfg, err := config.LoadConfig()
	g.Expect(err).NotTo(g.HaveOccurred())
	cfg.SourceURL = sourceURL
	cfg.TableName = "companies"
	return cfg
}

// TableRows reads every row of table in insertion order.
func TableRows(conn *gorm.DB, table string) []map[string]interface{} {
	GinkgoHelper()

	var rows []map[string]interface{}
	g.Expect(conn.Table(table).Order("rowid").Find(&rows).Error).To(g.Succeed())
	return rows
}
