package models

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Column report usage:

Set GENERATE_COLUMN_REPORT=true and start the server binary. It prints, per table,
the database columns no field of the Go model maps to, then exits.

=== COLUMN MISMATCH REPORT ===
--- Table: video_entries ---
Found 1 columns not accounted for in model:
  - legacy_views

=== SUMMARY ===
Total mismatched columns across all tables: 1

GENERATE_MODELS=true migrates the schema and writes typed query helpers to ./generated.
*/

// Tables lists every persisted model keyed by table name.
func Tables() map[string]any {
	return map[string]any{
		"video_entries": VideoEntry{},
	}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&VideoEntry{})
}

func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	verbose := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			LogLevel: logger.Info,
			Colorful: true,
		},
	)
	migrateDB := db.Session(&gorm.Session{
		Logger:                 verbose,
		SkipDefaultTransaction: true,
	})

	if err := Migrate(migrateDB); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}

	if _, err := GenerateColumnMismatchReport(db, os.Stdout); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(VideoEntry{})
	g.Execute()

	return nil
}

// GenerateColumnMismatchReport writes the report to out and returns the number
// of unmapped columns across all tables.
func GenerateColumnMismatchReport(db *gorm.DB, out io.Writer) (int, error) {
	fmt.Fprintln(out, "=== COLUMN MISMATCH REPORT ===")

	tables := Tables()
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, tableName := range names {
		fmt.Fprintf(out, "\n--- Table: %s ---\n", tableName)

		if !db.Migrator().HasTable(tableName) {
			fmt.Fprintln(out, "Table does not exist yet (will be created during migration)")
			continue
		}

		dbColumns, err := getTableColumns(db, tableName)
		if err != nil {
			return total, err
		}
		modelFields, err := getModelColumns(db, tables[tableName])
		if err != nil {
			return total, err
		}

		mismatches := findColumnMismatches(dbColumns, modelFields)
		if len(mismatches) == 0 {
			fmt.Fprintln(out, "All columns are accounted for in the model.")
			continue
		}
		fmt.Fprintf(out, "Found %d columns not accounted for in model:\n", len(mismatches))
		for _, col := range mismatches {
			fmt.Fprintf(out, "  - %s\n", col)
		}
		total += len(mismatches)
	}

	fmt.Fprintf(out, "\n=== SUMMARY ===\n")
	fmt.Fprintf(out, "Total mismatched columns across all tables: %d\n", total)
	return total, nil
}

func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	types, err := db.Migrator().ColumnTypes(tableName)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	columns := make([]string, 0, len(types))
	for _, ct := range types {
		columns = append(columns, ct.Name())
	}
	return columns, nil
}

// getModelColumns resolves column names through gorm's own schema parser so
// naming strategy and column tags are honored.
func getModelColumns(db *gorm.DB, model any) ([]string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("parse model %T: %w", model, err)
	}
	return stmt.Schema.DBNames, nil
}

func findColumnMismatches(dbColumns, modelFields []string) []string {
	known := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		known[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !known[col] {
			mismatches = append(mismatches, col)
		}
	}
	return mismatches
}
