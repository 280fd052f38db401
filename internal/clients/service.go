package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
)

// Service exposes client management operations.
type Service interface {
	Create(ctx context.Context, input CreateClientInput) (*ClientDTO, error)
	Get(ctx context.Context, clientID uuid.UUID) (*ClientDTO, error)
	List(ctx context.Context) ([]ClientDTO, error)
	ToggleRegular(ctx context.Context, clientID uuid.UUID) (*ClientDTO, error)
	CreditInfo(ctx context.Context, clientID uuid.UUID) (*CreditInfoDTO, error)
	OrderHistory(ctx context.Context, clientID uuid.UUID) ([]OrderSummaryDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a client service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("client repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateClientInput) (*ClientDTO, error) {
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name must not be empty")
	}
	if strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last name must not be empty")
	}
	if input.CreditLimit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit limit must not be negative")
	}

	client, err := s.repo.Create(ctx, &models.Client{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Address:     input.Address,
		Phone:       input.Phone,
		IsRegular:   input.IsRegular,
		CreditLimit: input.CreditLimit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	return toClientDTO(client), nil
}

func (s *service) Get(ctx context.Context, clientID uuid.UUID) (*ClientDTO, error) {
	client, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toClientDTO(client), nil
}

func (s *service) List(ctx context.Context) ([]ClientDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	out := make([]ClientDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toClientDTO(&rows[i]))
	}
	return out, nil
}

// ToggleRegular flips the regular-customer flag and returns the new state.
func (s *service) ToggleRegular(ctx context.Context, clientID uuid.UUID) (*ClientDTO, error) {
	client, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRegular(ctx, clientID, !client.IsRegular); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("client", clientID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle regular flag")
	}
	return s.Get(ctx, clientID)
}

func (s *service) CreditInfo(ctx context.Context, clientID uuid.UUID) (*CreditInfoDTO, error) {
	client, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &CreditInfoDTO{
		ClientID:  client.ID,
		Balance:   client.CreditBalance,
		Limit:     client.CreditLimit,
		Available: client.CreditLimit.Sub(client.CreditBalance),
	}, nil
}

func (s *service) OrderHistory(ctx context.Context, clientID uuid.UUID) ([]OrderSummaryDTO, error) {
	if _, err := s.load(ctx, clientID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListOrders(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list client orders")
	}
	return toOrderSummaries(rows), nil
}

func (s *service) load(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("client", clientID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return client, nil
}
