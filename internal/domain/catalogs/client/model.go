// Package client provides the client catalog: the companies quotes and
// invoices are addressed to.
package client

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"factura/internal/core/apperror"
	"factura/internal/core/entity"
)

var validate = validator.New()

// MaxDisplayNameLen bounds the client display name.
const MaxDisplayNameLen = 200

// Client is a billed party. Documents reference it by id only.
type Client struct {
	entity.BaseEntity

	DisplayName string `db:"display_name" json:"displayName"`

	// Email is unique across clients when present
	Email *string `db:"email" json:"email"`

	Phone *string `db:"phone" json:"phone,omitempty"`

	// Billing address
	BillingStreet *string `db:"billing_street" json:"billingStreet,omitempty"`
	BillingZip    *string `db:"billing_zip" json:"billingZip,omitempty"`
	BillingCity   *string `db:"billing_city" json:"billingCity,omitempty"`

	// VATNumber is the intra-community tax id
	VATNumber *string `db:"vat_number" json:"vatNumber,omitempty"`
	Siret     *string `db:"siret" json:"siret,omitempty"`
}

// NewClient creates a client with a generated id.
func NewClient(displayName string) *Client {
	return &Client{
		BaseEntity:  entity.NewBaseEntity(),
		DisplayName: displayName,
	}
}

// Normalize trims every text field and lower-cases the email.
func (c *Client) Normalize() {
	c.DisplayName = entity.Truncate(strings.TrimSpace(c.DisplayName), MaxDisplayNameLen)
	c.Email = entity.NormalizeText(c.Email)
	if c.Email != nil {
		v := strings.ToLower(*c.Email)
		c.Email = &v
	}
	c.Phone = entity.NormalizeText(c.Phone)
	c.BillingStreet = entity.NormalizeText(c.BillingStreet)
	c.BillingZip = entity.NormalizeText(c.BillingZip)
	c.BillingCity = entity.NormalizeText(c.BillingCity)
	c.VATNumber = entity.NormalizeText(c.VATNumber)
	if c.VATNumber != nil {
		v := strings.ToUpper(strings.ReplaceAll(*c.VATNumber, " ", ""))
		c.VATNumber = &v
	}
	c.Siret = entity.NormalizeText(c.Siret)
}

// Validate implements entity.Validatable.
func (c *Client) Validate(ctx context.Context) error {
	if c.DisplayName == "" {
		return apperror.NewValidation("display name is required").
			WithDetail("field", "displayName")
	}
	if c.Email != nil {
		if err := validate.Var(*c.Email, "email"); err != nil {
			return apperror.NewValidation("invalid email format").
				WithDetail("field", "email")
		}
	}
	return nil
}
