package client

import (
	"context"
	"fmt"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
	"factura/internal/core/tx"
	"factura/internal/domain"
	"factura/internal/domain/audit"
	"factura/pkg/logger"
)

// Service provides business logic for the client catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a new client service. recorder may be nil.
func NewService(repo Repository, txManager tx.Manager, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		audit:     recorder,
	}
}

// Create validates and stores a new client.
// A second client with the same email fails with ConflictingUniqueField.
func (s *Service) Create(ctx context.Context, c *Client) error {
	c.Normalize()
	if err := c.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if c.Email != nil {
			if err := s.checkEmailFree(ctx, *c.Email); err != nil {
				return err
			}
		}

		if err := s.repo.Create(ctx, c); err != nil {
			return fmt.Errorf("create client: %w", err)
		}

		entry := audit.NewEntry(ctx, audit.EntityClient, c.ID, audit.ActionCreate, map[string]any{
			"displayName": c.DisplayName,
			"email":       c.Email,
		})
		return s.audit.Record(ctx, entry)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "client created", "id", c.ID, "name", c.DisplayName)
	return nil
}

// Ensure returns the client owning c.Email, creating c when none exists.
// Used by the seed tool; c must carry an email.
func (s *Service) Ensure(ctx context.Context, c *Client) (*Client, bool, error) {
	c.Normalize()
	if c.Email == nil {
		return nil, false, apperror.NewValidation("email is required").WithDetail("field", "email")
	}

	existing, err := s.repo.FindByEmail(ctx, *c.Email)
	if err == nil {
		return existing, false, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, fmt.Errorf("find client by email: %w", err)
	}

	if err := s.Create(ctx, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// GetByID retrieves a client.
func (s *Service) GetByID(ctx context.Context, clientID id.ID) (*Client, error) {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, domain.NormalizeGetErr(err, "client", clientID.String())
	}
	return c, nil
}

// List retrieves clients, newest first.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Client], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// Exists reports whether the client id resolves.
func (s *Service) Exists(ctx context.Context, clientID id.ID) (bool, error) {
	return s.repo.Exists(ctx, clientID)
}

func (s *Service) checkEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return apperror.NewConflictingUniqueField("client", "email", email)
	}
	if apperror.IsNotFound(err) {
		return nil
	}
	return fmt.Errorf("check email: %w", err)
}
