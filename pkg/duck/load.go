package duck

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// flushEvery bounds how many buffered rows the staging CSV writer holds before
// flushing to disk, independent of table size.
const flushEvery = 5000

// TableConfig describes a warehouse table: its name and its columns in DDL
// order. Each column is a "name:TYPE" pair, e.g. "city_id:VARCHAR",
// "price:DECIMAL(12,2)". Constraints are appended verbatim to the CREATE
// statement (primary keys, foreign keys).
type TableConfig struct {
	Name        string
	Columns     []string
	Constraints []string
}

// ColumnNames returns the column names in DDL order.
func (c TableConfig) ColumnNames() ([]string, error) {
	names := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		parts := strings.SplitN(col, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid column definition %q: expected format 'name:type'", col)
		}
		names = append(names, strings.TrimSpace(parts[0]))
	}
	return names, nil
}

func (c TableConfig) columnDefs() ([]string, error) {
	defs := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		parts := strings.SplitN(col, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid column definition %q: expected format 'name:type'", col)
		}
		defs = append(defs, fmt.Sprintf("%s %s", strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])))
	}
	return defs, nil
}

// Execer is the subset of ExecContext shared by transactions and connections.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateTable creates the table described by cfg if it does not exist.
func CreateTable(ctx context.Context, ex Execer, cfg TableConfig) error {
	if len(cfg.Columns) == 0 {
		return fmt.Errorf("columns cannot be empty")
	}
	defs, err := cfg.columnDefs()
	if err != nil {
		return err
	}
	defs = append(defs, cfg.Constraints...)
	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", cfg.Name, strings.Join(defs, ",\n\t"))
	if _, err := ex.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", cfg.Name, err)
	}
	return nil
}

// DropTable drops the table described by cfg if it exists.
func DropTable(ctx context.Context, ex Execer, cfg TableConfig) error {
	if _, err := ex.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", cfg.Name)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", cfg.Name, err)
	}
	return nil
}

// InsertRowsViaCSV loads count rows into cfg's table on the caller's
// transaction:
//   - writes the rows to a temp CSV (empty field = NULL)
//   - COPYs the CSV into a VARCHAR staging temp table
//   - INSERT .. SELECTs from the stage into the target, letting the target
//     column types drive conversion
//
// The caller owns commit/rollback, so one transaction can cover every table
// of a run.
func InsertRowsViaCSV(
	ctx context.Context,
	log *slog.Logger,
	tx *sql.Tx,
	cfg TableConfig,
	count int,
	writeRow func(*csv.Writer, int) error,
) error {
	loadStart := time.Now()
	defer func() {
		log.Debug("table load completed",
			"table", cfg.Name,
			"rows", count,
			"duration", time.Since(loadStart).String())
	}()

	if len(cfg.Columns) == 0 {
		return fmt.Errorf("columns cannot be empty")
	}

	if count == 0 {
		return nil
	}

	tmpFile, err := os.CreateTemp("", fmt.Sprintf("%s_rows_*.csv", cfg.Name))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	csvWriter := csv.NewWriter(tmpFile)
	csvWriter.Comma = ','

	for i := range count {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during CSV writing: %w", ctx.Err())
		default:
		}

		if err := writeRow(csvWriter, i); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
		if i > 0 && i%flushEvery == 0 {
			csvWriter.Flush()
			if err := csvWriter.Error(); err != nil {
				return fmt.Errorf("failed to flush CSV: %w", err)
			}
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	colNames, err := cfg.ColumnNames()
	if err != nil {
		return err
	}

	// Staging columns are all VARCHAR; the INSERT below converts to the
	// target types.
	stageTableName := fmt.Sprintf("%s_stage", cfg.Name)
	stageDefs := make([]string, 0, len(colNames))
	for _, name := range colNames {
		stageDefs = append(stageDefs, fmt.Sprintf("%s VARCHAR", name))
	}
	createStageSQL := fmt.Sprintf("CREATE TEMP TABLE %s (\n\t%s\n)", stageTableName, strings.Join(stageDefs, ",\n\t"))
	if _, err := tx.ExecContext(ctx, createStageSQL); err != nil {
		return fmt.Errorf("failed to create stage table: %w", err)
	}

	copySQL := fmt.Sprintf("COPY %s FROM '%s' (FORMAT CSV, HEADER false, NULLSTR '')", stageTableName, tmpFile.Name())
	if _, err := tx.ExecContext(ctx, copySQL); err != nil {
		return fmt.Errorf("failed to COPY FROM CSV: %w", err)
	}

	colList := strings.Join(colNames, ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s)\n\tSELECT %s FROM %s", cfg.Name, colList, colList, stageTableName)
	if _, err := tx.ExecContext(ctx, insertSQL); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", cfg.Name, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", stageTableName)); err != nil {
		return fmt.Errorf("failed to drop stage table: %w", err)
	}

	return nil
}
