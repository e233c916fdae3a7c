package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/ir"
)

// identityKey returns the grouping key of a donation row's donor.
//
// The email wins when non-empty. Otherwise the key is the case-folded
// name and address. Both blank yields "", and such rows are dropped:
// they cannot be attributed to a donor.
func identityKey(row ir.Row) string {
	email := strings.TrimSpace(row.ResolveString(catalog.Donors, catalog.DonorEmail))
	if email != "" {
		return "email:" + ir.Fold(email)
	}
	name := strings.TrimSpace(row.ResolveString(catalog.Donors, catalog.DonorName))
	addr := strings.TrimSpace(row.ResolveString(catalog.Donors, catalog.DonorAddress))
	if name == "" && addr == "" {
		return ""
	}
	return "name:" + ir.Fold(name) + "\x00" + ir.Fold(addr)
}

// donorGroup accumulates one donor's donations.
type donorGroup struct {
	key     string
	display map[string]string
	total   decimal.Decimal
	rows    int
}

// mergeFirstNonEmpty copies each column of row into display unless display
// already holds a non-empty value for it. The first non-empty value seen
// wins; later rows never overwrite it.
func mergeFirstNonEmpty(display map[string]string, row ir.Row, columns []string) {
	for _, col := range columns {
		if display[col] != "" {
			continue
		}
		if v := strings.TrimSpace(row.ResolveString(catalog.Donors, col)); v != "" {
			display[col] = v
		}
	}
}

// groupByDonor folds rows into per-donor totals, in first-encounter order.
// Amounts that do not coerce to a number contribute zero. It returns the
// groups and the number of rows dropped for lacking an identity.
func groupByDonor(rows []ir.Row, donorColumns []string) ([]*donorGroup, int) {
	index := map[string]*donorGroup{}
	var groups []*donorGroup
	dropped := 0

	for _, row := range rows {
		key := identityKey(row)
		if key == "" {
			dropped++
			continue
		}
		g, ok := index[key]
		if !ok {
			g = &donorGroup{key: key, display: map[string]string{}, total: decimal.Zero}
			index[key] = g
			groups = append(groups, g)
		}
		mergeFirstNonEmpty(g.display, row, donorColumns)
		if amount, ok := row.Resolve(catalog.Donations, catalog.DonationAmount); ok {
			if d, ok := ir.ToDecimal(amount); ok {
				g.total = g.total.Add(d)
			}
		}
		g.rows++
	}
	return groups, dropped
}

// sortByTotal orders groups by total descending. Ties keep encounter order.
func sortByTotal(groups []*donorGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].total.GreaterThan(groups[j].total)
	})
}
