// Package catalog defines the two reportable tables and the columns a
// report statement may reference.
//
// The allow-lists are the closure of what the compiler accepts: a column
// that is not listed here can never reach a query plan, a pushdown filter,
// or the backing store. Storage-only columns such as the tenant column are
// deliberately absent.
package catalog

import (
	"fmt"
	"strings"
)

// Table names a reportable base table.
type Table string

const (
	// Donors is the primary, donor-like table.
	Donors Table = "donors"

	// Donations is the secondary, transaction-like table.
	Donations Table = "donations"
)

// Column roles used by the compiler and the aggregate executor.
const (
	DonorName    = "display_name"
	DonorEmail   = "email"
	DonorAddress = "billing_address"
	DonorID      = "id"

	DonationForeignKey = "donor_id"
	DonationAmount     = "amount"

	// TenantColumn scopes donors to an organization. It is never
	// selectable from a statement.
	TenantColumn = "organization_id"
)

var donorColumns = []string{
	"id",
	"display_name",
	"first_name",
	"last_name",
	"email",
	"phone",
	"billing_address",
	"city",
	"state",
	"postal_code",
	"total_lifetime_value",
	"last_donation_date",
	"created_at",
}

var donationColumns = []string{
	"id",
	"donor_id",
	"amount",
	"date",
	"payment_method",
	"campaign",
	"memo",
	"created_at",
}

var allowed = map[Table]map[string]bool{
	Donors:    setOf(donorColumns),
	Donations: setOf(donationColumns),
}

func setOf(cols []string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

// ParseTable maps a table name (any case) to a Table.
func ParseTable(name string) (Table, bool) {
	switch Table(strings.ToLower(strings.TrimSpace(name))) {
	case Donors:
		return Donors, true
	case Donations:
		return Donations, true
	default:
		return "", false
	}
}

// Valid reports whether t is one of the two reportable tables.
func (t Table) Valid() bool {
	_, ok := allowed[t]
	return ok
}

// Other returns the table on the opposite side of the single join.
func (t Table) Other() Table {
	if t == Donors {
		return Donations
	}
	return Donors
}

// Columns returns the allow-list for t in declaration order.
// The returned slice is a copy.
func Columns(t Table) []string {
	var src []string
	switch t {
	case Donors:
		src = donorColumns
	case Donations:
		src = donationColumns
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Allows reports whether column is in the allow-list for t.
// Matching is exact; callers lower-case identifiers first.
func Allows(t Table, column string) bool {
	return allowed[t][column]
}

// Check returns a descriptive error when column is not allowed on t.
func Check(t Table, column string) error {
	if !t.Valid() {
		return fmt.Errorf("unknown table %q", t)
	}
	if !Allows(t, column) {
		return fmt.Errorf("column %q is not allowed on table %s", column, t)
	}
	return nil
}

// JoinCondition is the only supported join predicate.
func JoinCondition() string {
	return string(Donations) + "." + DonationForeignKey + " = " + string(Donors) + "." + DonorID
}

// Numeric reports whether table.column is stored as a number rather than
// text. Every other allowed column is TEXT.
func Numeric(t Table, column string) bool {
	return (t == Donors && column == "total_lifetime_value") || (t == Donations && column == DonationAmount)
}

// IdentityColumns are the donor columns every aggregate fetch carries.
func IdentityColumns() []string {
	return []string{DonorName, DonorEmail, DonorAddress}
}
