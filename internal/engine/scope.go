package engine

import (
	"context"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/querysql"
)

// tenantScope returns the filter that restricts table to orgID.
//
// Donors carry the tenant column directly. Donations are scoped through
// the tenant's donor ids, looked up with one FetchIDs call. ok is false
// when the tenant has no donors, in which case nothing can match and the
// caller skips the row fetch.
func (e *Executor) tenantScope(ctx context.Context, table catalog.Table, orgID string) (querysql.Filter, bool, error) {
	donors := querysql.Eq(catalog.Donors, catalog.TenantColumn, orgID)
	if table == catalog.Donors {
		return donors, true, nil
	}

	ids, err := e.backend.FetchIDs(ctx, catalog.Donors, []querysql.Filter{donors})
	if err != nil {
		return querysql.Filter{}, false, storeError(catalog.Donors, "fetch_ids", err)
	}
	e.logger.Debug("tenant scope resolved", "organization", orgID, "donor_ids", len(ids))
	if len(ids) == 0 {
		return querysql.Filter{}, false, nil
	}
	return querysql.In(catalog.Donations, catalog.DonationForeignKey, ids), true, nil
}
