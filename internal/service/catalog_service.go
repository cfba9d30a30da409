package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
)

// ServiceInput carries writable add-on fields.
type ServiceInput struct {
	Name        string
	Description string
	Price       model.Money
}

// CatalogService manages the add-on services that reservations can carry.
type CatalogService struct {
	store Store
}

func NewCatalogService(store Store) *CatalogService { return &CatalogService{store: store} }

func normalizeService(in *ServiceInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return apperror.InvalidArgument("name", "name is required")
	}
	if in.Price < 0 {
		return apperror.Unprocessable("price cannot be negative")
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, actor model.Actor, in ServiceInput) (model.Service, error) {
	if !actor.IsAdmin() {
		return model.Service{}, apperror.Forbidden("only administrators can manage services")
	}
	if err := normalizeService(&in); err != nil {
		return model.Service{}, err
	}
	svc := model.Service{Name: in.Name, Description: in.Description, Price: in.Price}
	err := s.store.InTx(ctx, func(tx Queries) error {
		taken, err := tx.ServiceNameTaken(ctx, svc.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict(fmt.Sprintf("service %q already exists", svc.Name))
		}
		return writeErr(tx.InsertService(ctx, &svc), "insert service", "service name already exists")
	})
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, actor model.Actor, id uint64, in ServiceInput) (model.Service, error) {
	if !actor.IsAdmin() {
		return model.Service{}, apperror.Forbidden("only administrators can manage services")
	}
	if id == 0 {
		return model.Service{}, apperror.InvalidArgument("serviceId", "serviceId is required")
	}
	if err := normalizeService(&in); err != nil {
		return model.Service{}, err
	}
	var svc model.Service
	err := s.store.InTx(ctx, func(tx Queries) error {
		current, err := tx.ServiceByID(ctx, id)
		if err != nil {
			return lookupErr(err, "service", id)
		}
		taken, err := tx.ServiceNameTaken(ctx, in.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict(fmt.Sprintf("service %q already exists", in.Name))
		}
		current.Name, current.Description, current.Price = in.Name, in.Description, in.Price
		if err := tx.UpdateService(ctx, &current); err != nil {
			return writeErr(err, "update service", "service name already exists")
		}
		svc = current
		return nil
	})
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

// Delete removes a service and detaches it from every reservation.
func (s *CatalogService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("only administrators can manage services")
	}
	if id == 0 {
		return apperror.InvalidArgument("serviceId", "serviceId is required")
	}
	if err := s.store.DeleteService(ctx, id); err != nil {
		return lookupErr(err, "service", id)
	}
	return nil
}

func (s *CatalogService) Get(ctx context.Context, id uint64) (model.Service, error) {
	if id == 0 {
		return model.Service{}, apperror.InvalidArgument("serviceId", "serviceId is required")
	}
	svc, err := s.store.ServiceByID(ctx, id)
	if err != nil {
		return model.Service{}, lookupErr(err, "service", id)
	}
	return svc, nil
}

func (s *CatalogService) List(ctx context.Context) ([]model.Service, error) {
	return s.store.ListServices(ctx)
}
