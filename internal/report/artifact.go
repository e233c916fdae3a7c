package report

import (
	"context"
	"time"
)

// Artifact is one generated report. It is created once per successful
// run and never modified.
type Artifact struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Title          string    `json:"title"`
	Query          string    `json:"query"`
	Summary        string    `json:"summary"`
	Content        string    `json:"content"`
	RowCount       int       `json:"row_count"`
	ByteSize       int       `json:"byte_size"`
	PlanHash       string    `json:"plan_hash"`
	CreatedAt      time.Time `json:"created_at"`
}

// Saver persists artifacts. It returns the stored artifact's id.
type Saver interface {
	SaveReport(ctx context.Context, a Artifact) (string, error)
}
