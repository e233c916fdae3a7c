package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreTypesMarshaling(t *testing.T) {
	donor := Donor{
		ID:             "d-1",
		OrganizationID: "org-1",
		DisplayName:    "Ada Lovelace",
		BillingAddress: "1 Main St, Austin, TX",
	}

	data, err := json.Marshal(donor)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"organization_id"`)
	assert.Contains(t, string(data), `"display_name"`)
	assert.Contains(t, string(data), `"billing_address"`)
	assert.Contains(t, string(data), `"total_lifetime_value"`)
	assert.NotContains(t, string(data), `"email"`, "empty optional fields are omitted")

	donation := Donation{ID: "g-1", DonorID: "d-1", Amount: 12.5}

	data, err = json.Marshal(donation)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"donor_id"`)
	assert.Contains(t, string(data), `"amount":12.5`)
}
