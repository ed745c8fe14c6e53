package dto

import (
	"time"

	"factura/internal/domain/catalogs/client"
)

// CreateClientRequest represents a request to create a client.
type CreateClientRequest struct {
	DisplayName   string  `json:"displayName" binding:"required"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	BillingStreet *string `json:"billingStreet"`
	BillingZip    *string `json:"billingZip"`
	BillingCity   *string `json:"billingCity"`
	VATNumber     *string `json:"vatNumber"`
	Siret         *string `json:"siret"`
}

// ToEntity converts request to domain entity.
func (r *CreateClientRequest) ToEntity() *client.Client {
	c := client.NewClient(r.DisplayName)
	c.Email = r.Email
	c.Phone = r.Phone
	c.BillingStreet = r.BillingStreet
	c.BillingZip = r.BillingZip
	c.BillingCity = r.BillingCity
	c.VATNumber = r.VATNumber
	c.Siret = r.Siret
	return c
}

// ClientResponse is the API view of a client.
type ClientResponse struct {
	ID            string    `json:"id"`
	Version       int       `json:"version"`
	DisplayName   string    `json:"displayName"`
	Email         *string   `json:"email"`
	Phone         *string   `json:"phone,omitempty"`
	BillingStreet *string   `json:"billingStreet,omitempty"`
	BillingZip    *string   `json:"billingZip,omitempty"`
	BillingCity   *string   `json:"billingCity,omitempty"`
	VATNumber     *string   `json:"vatNumber,omitempty"`
	Siret         *string   `json:"siret,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FromClient creates ClientResponse from the domain entity.
func FromClient(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:            c.ID.String(),
		Version:       c.Version,
		DisplayName:   c.DisplayName,
		Email:         c.Email,
		Phone:         c.Phone,
		BillingStreet: c.BillingStreet,
		BillingZip:    c.BillingZip,
		BillingCity:   c.BillingCity,
		VATNumber:     c.VATNumber,
		Siret:         c.Siret,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
