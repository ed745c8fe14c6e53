package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// GetDashboard computes the counters and the recent invoices, newest first.
	GetDashboard(ctx context.Context, recent int) (*Dashboard, error)
}
