package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/donorql/internal/report"
)

// ErrReportNotFound is returned by GetReport for an unknown id or an id
// that belongs to another organization.
var ErrReportNotFound = errors.New("report not found")

// createdLayout is fixed width so created_at sorts as text.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveReport persists an artifact and returns its id.
// A UUIDv7 is generated when a.ID is empty.
func (s *Store) SaveReport(ctx context.Context, a report.Artifact) (string, error) {
	id := a.ID
	if id == "" {
		id = newID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports
		(id, organization_id, title, query, summary, content, row_count, byte_size, plan_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		a.OrganizationID,
		a.Title,
		a.Query,
		a.Summary,
		a.Content,
		a.RowCount,
		a.ByteSize,
		a.PlanHash,
		a.CreatedAt.UTC().Format(createdLayout),
	)
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return id, nil
}

// ListReports returns an organization's reports, oldest first, without
// their content. Returns an empty slice (not nil) when there are none.
func (s *Store) ListReports(ctx context.Context, orgID string) ([]report.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organization_id, title, query, summary, '', row_count, byte_size, plan_hash, created_at
		FROM reports
		WHERE organization_id = ?
		ORDER BY created_at ASC, id ASC COLLATE BINARY
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	out := []report.Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

// GetReport returns one report of an organization, with content.
func (s *Store) GetReport(ctx context.Context, orgID, id string) (report.Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, organization_id, title, query, summary, content, row_count, byte_size, plan_hash, created_at
		FROM reports
		WHERE organization_id = ? AND id = ?
	`, orgID, id)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Artifact{}, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	return a, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row scanner) (report.Artifact, error) {
	var a report.Artifact
	var created string
	err := row.Scan(&a.ID, &a.OrganizationID, &a.Title, &a.Query, &a.Summary, &a.Content,
		&a.RowCount, &a.ByteSize, &a.PlanHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.Artifact{}, err
		}
		return report.Artifact{}, fmt.Errorf("scan report: %w", err)
	}
	a.CreatedAt, err = time.Parse(createdLayout, created)
	if err != nil {
		return report.Artifact{}, fmt.Errorf("parse report created_at: %w", err)
	}
	return a, nil
}
