package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"roster/internal/pkg/roster"
)

const insertBatchSize = 100

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ReplaceTable drops table and recreates it from schema with records as its
// only rows, all in one transaction. An empty record set leaves the table
// untouched.
func ReplaceTable(ctx context.Context, db *gorm.DB, table string, schema roster.Schema, records []roster.NormalizedRecord) (int64, error) {
	if len(records) == 0 {
		log.Warn().Str("table", table).Msg("no records, table left unchanged")
		return 0, nil
	}

	ddl, err := createTableSQL(db, table, schema)
	if err != nil {
		return 0, err
	}

	rows := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		rows[i] = rec.Map()
	}

	var inserted int64
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
		if err := tx.Exec(ddl).Error; err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		result := tx.Table(table).CreateInBatches(rows, insertBatchSize)
		if result.Error != nil {
			return fmt.Errorf("insert into %s: %w", table, result.Error)
		}
		inserted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Str("table", table).Int64("rows", inserted).Msg("table replaced")
	return inserted, nil
}

func createTableSQL(db *gorm.DB, table string, schema roster.Schema) (string, error) {
	if !reIdentifier.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	if len(schema) == 0 {
		return "", fmt.Errorf("empty schema for table %s", table)
	}

	cols := make([]string, len(schema))
	for i, col := range schema {
		if !reIdentifier.MatchString(col.Name) {
			return "", fmt.Errorf("invalid column name %q", col.Name)
		}
		cols[i] = db.Statement.Quote(col.Name) + " " + columnType(col.Kind)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", db.Statement.Quote(table), strings.Join(cols, ", ")), nil
}

func columnType(k roster.Kind) string {
	switch k {
	case roster.KindInteger:
		return "INTEGER"
	case roster.KindDate:
		return "DATE"
	default:
		return "TEXT"
	}
}
