package client

import (
	"context"

	"factura/internal/core/id"
	"factura/internal/domain"
)

// Repository defines the interface for Client persistence.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, clientID id.ID) (*Client, error)

	// FindByEmail returns NotFound when no client uses the address.
	FindByEmail(ctx context.Context, email string) (*Client, error)

	Exists(ctx context.Context, clientID id.ID) (bool, error)

	// List orders clients newest first. Search matches name and email.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Client], error)
}
