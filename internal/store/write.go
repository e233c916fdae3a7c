package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/donorql/internal/ir"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertDonor inserts a donor and returns its id.
// A UUIDv7 is generated when d.ID is empty. Empty optional text fields
// are stored as NULL.
func (s *Store) InsertDonor(ctx context.Context, d ir.Donor) (string, error) {
	return insertDonor(ctx, s.db, d)
}

// InsertDonation inserts a donation and returns its id.
// The referenced donor must exist (foreign key constraint).
func (s *Store) InsertDonation(ctx context.Context, d ir.Donation) (string, error) {
	return insertDonation(ctx, s.db, d)
}

// Seed inserts a dataset in one transaction: donors first, then
// donations. Nothing is written if any row fails.
func (s *Store) Seed(ctx context.Context, ds ir.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	for i, d := range ds.Donors {
		if _, err := insertDonor(ctx, tx, d); err != nil {
			return fmt.Errorf("seed: donor %d: %w", i, err)
		}
	}
	for i, d := range ds.Donations {
		if _, err := insertDonation(ctx, tx, d); err != nil {
			return fmt.Errorf("seed: donation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	return nil
}

func insertDonor(ctx context.Context, db execer, d ir.Donor) (string, error) {
	if d.OrganizationID == "" {
		return "", fmt.Errorf("insert donor: organization_id is required")
	}
	id := d.ID
	if id == "" {
		id = newID()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO donors
		(id, organization_id, display_name, first_name, last_name, email, phone,
		 billing_address, city, state, postal_code, total_lifetime_value,
		 last_donation_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		d.OrganizationID,
		d.DisplayName,
		nullable(d.FirstName),
		nullable(d.LastName),
		nullable(d.Email),
		nullable(d.Phone),
		nullable(d.BillingAddress),
		nullable(d.City),
		nullable(d.State),
		nullable(d.PostalCode),
		d.TotalLifetimeValue,
		nullable(d.LastDonationDate),
		nullable(d.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert donor: %w", err)
	}
	return id, nil
}

func insertDonation(ctx context.Context, db execer, d ir.Donation) (string, error) {
	id := d.ID
	if id == "" {
		id = newID()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO donations
		(id, donor_id, amount, date, payment_method, campaign, memo, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		d.DonorID,
		d.Amount,
		nullable(d.Date),
		nullable(d.PaymentMethod),
		nullable(d.Campaign),
		nullable(d.Memo),
		nullable(d.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert donation: %w", err)
	}
	return id, nil
}

// nullable maps "" to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
