package ir

// NOTE: These are store-layer records used for seeding and fixtures, not
// part of a query plan. Empty optional text fields are stored as NULL.

// Donor is a row of the donors table.
type Donor struct {
	ID                 string  `json:"id" yaml:"id"`
	OrganizationID     string  `json:"organization_id" yaml:"organization_id"`
	DisplayName        string  `json:"display_name" yaml:"display_name"`
	FirstName          string  `json:"first_name,omitempty" yaml:"first_name"`
	LastName           string  `json:"last_name,omitempty" yaml:"last_name"`
	Email              string  `json:"email,omitempty" yaml:"email"`
	Phone              string  `json:"phone,omitempty" yaml:"phone"`
	BillingAddress     string  `json:"billing_address,omitempty" yaml:"billing_address"`
	City               string  `json:"city,omitempty" yaml:"city"`
	State              string  `json:"state,omitempty" yaml:"state"`
	PostalCode         string  `json:"postal_code,omitempty" yaml:"postal_code"`
	TotalLifetimeValue float64 `json:"total_lifetime_value" yaml:"total_lifetime_value"`
	LastDonationDate   string  `json:"last_donation_date,omitempty" yaml:"last_donation_date"`
	CreatedAt          string  `json:"created_at,omitempty" yaml:"created_at"`
}

// Donation is a row of the donations table.
type Donation struct {
	ID            string  `json:"id" yaml:"id"`
	DonorID       string  `json:"donor_id" yaml:"donor_id"`
	Amount        float64 `json:"amount" yaml:"amount"`
	Date          string  `json:"date,omitempty" yaml:"date"`
	PaymentMethod string  `json:"payment_method,omitempty" yaml:"payment_method"`
	Campaign      string  `json:"campaign,omitempty" yaml:"campaign"`
	Memo          string  `json:"memo,omitempty" yaml:"memo"`
	CreatedAt     string  `json:"created_at,omitempty" yaml:"created_at"`
}

// Dataset is a batch of donors and their donations, as loaded from a
// fixture file.
type Dataset struct {
	Donors    []Donor    `json:"donors" yaml:"donors"`
	Donations []Donation `json:"donations" yaml:"donations"`
}
