package reports

import (
	"context"
	"fmt"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetDashboard returns the dashboard figures.
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	d, err := s.repo.GetDashboard(ctx, RecentInvoicesLimit)
	if err != nil {
		return nil, fmt.Errorf("get dashboard: %w", err)
	}
	if d.RecentInvoices == nil {
		d.RecentInvoices = []InvoiceSummary{}
	}
	return d, nil
}
