// Package export loads the output relation into Postgres for downstream
// matching jobs.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/engine"
)

const batchSize = 1000

// Stats summarises an export.
type Stats struct {
	Rows     int
	Batches  int
	Duration time.Duration
}

// Exporter writes address variants into a Postgres table.
type Exporter struct {
	db    *sql.DB
	table string
	log   *zap.Logger
}

func New(db *sql.DB, table string, log *zap.Logger) *Exporter {
	return &Exporter{db: db, table: table, log: log}
}

// Export recreates the target table and inserts every variant in batched
// transactions.
func (e *Exporter) Export(ctx context.Context, variants []engine.AddressVariant) (*Stats, error) {
	start := time.Now()

	if err := e.createTable(ctx); err != nil {
		return nil, err
	}

	stats := &Stats{}
	for offset := 0; offset < len(variants); offset += batchSize {
		end := offset + batchSize
		if end > len(variants) {
			end = len(variants)
		}
		if err := e.insertBatch(ctx, variants[offset:end]); err != nil {
			return nil, errors.Wrapf(err, "insert batch at row %d", offset)
		}
		stats.Rows += end - offset
		stats.Batches++
		e.log.Debug("batch inserted", zap.Int("rows", stats.Rows), zap.Int("total", len(variants)))
	}

	stats.Duration = time.Since(start)
	e.log.Info("export complete",
		zap.String("table", e.table),
		zap.Int("rows", stats.Rows),
		zap.Int("batches", stats.Batches),
		zap.Duration("elapsed", stats.Duration))
	return stats, nil
}

func (e *Exporter) createTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", e.table)); err != nil {
		return errors.Wrap(err, "drop existing table")
	}
	ddl := fmt.Sprintf(`CREATE TABLE %s (
		uprn BIGINT NOT NULL,
		postcode TEXT,
		address TEXT NOT NULL,
		classification_code TEXT,
		logical_status SMALLINT,
		blpu_state TEXT,
		postal_address_code TEXT,
		udprn BIGINT,
		parent_uprn BIGINT,
		hierarchy_level TEXT,
		source TEXT NOT NULL,
		variant_label TEXT NOT NULL,
		is_primary BOOLEAN NOT NULL
	)`, e.table)
	if _, err := e.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "create table")
	}
	return nil
}

func (e *Exporter) insertBatch(ctx context.Context, batch []engine.AddressVariant) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (uprn, postcode, address, classification_code, logical_status,
			blpu_state, postal_address_code, udprn, parent_uprn, hierarchy_level,
			source, variant_label, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, e.table))
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, v := range batch {
		if _, err := stmt.ExecContext(ctx,
			v.UPRN,
			nullString(v.Postcode),
			v.Address,
			nullString(v.ClassificationCode),
			nullStatus(v.LogicalStatus),
			nullString(v.State),
			nullString(v.PostalCode),
			nullInt64(v.UDPRN),
			nullInt64(v.ParentUPRN),
			nullString(string(v.Hierarchy)),
			string(v.Source),
			string(v.Label),
			v.IsPrimary,
		); err != nil {
			return errors.Wrapf(err, "insert uprn %d", v.UPRN)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit batch")
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullStatus(s *engine.LogicalStatus) any {
	if s == nil {
		return nil
	}
	return int(*s)
}
