package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Tyorden/svustats/internal/report"
)

// ErrReportNotFound is returned when no snapshot has the requested id.
var ErrReportNotFound = errors.New("report not found in database")

// ReportMetadata summarizes a stored report without decoding it.
type ReportMetadata struct {
	ID          string
	Dataset     string
	GeneratedAt time.Time
	Fingerprint string
	Selected    int
}

// SaveReport stores doc as a snapshot. Saving the same document twice
// replaces the earlier copy.
func (d *DB) SaveReport(ctx context.Context, doc *report.Document) error {
	if d.readOnly {
		return ErrReadOnly
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO reports (id, dataset, generated_at, fingerprint, selected, report_json)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		generated_at = excluded.generated_at,
		fingerprint = excluded.fingerprint,
		selected = excluded.selected,
		report_json = excluded.report_json
	`
	if _, err := d.db.ExecContext(ctx, query,
		doc.ID,
		doc.Dataset.Name,
		formatTimestamp(doc.GeneratedAt),
		doc.Dataset.Fingerprint,
		doc.Dataset.Selected,
		string(data),
	); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReport returns the snapshot with the given id.
func (d *DB) GetReport(ctx context.Context, id string) (*report.Document, error) {
	var data string
	err := d.db.QueryRowContext(ctx, `SELECT report_json FROM reports WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var doc report.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &doc, nil
}

// ReportHistory lists the snapshots of a dataset, newest first. An empty
// dataset name lists every snapshot.
func (d *DB) ReportHistory(ctx context.Context, dataset string) ([]ReportMetadata, error) {
	query := `
	SELECT id, dataset, generated_at, fingerprint, selected
	FROM reports
	WHERE 1=1
	`
	args := make([]any, 0, 1)
	if dataset != "" {
		query += " AND dataset = ?"
		args = append(args, dataset)
	}
	query += " ORDER BY generated_at DESC, id"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var generatedAt string
		if err := rows.Scan(&meta.ID, &meta.Dataset, &generatedAt, &meta.Fingerprint, &meta.Selected); err != nil {
			return nil, fmt.Errorf("failed to scan report metadata: %w", err)
		}
		meta.GeneratedAt = parseTimestamp(generatedAt)
		results = append(results, meta)
	}
	return results, rows.Err()
}
