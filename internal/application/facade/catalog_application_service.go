package facade

import (
	"context"
	"fmt"

	"garage-dashboard/internal/domain/event"
	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/port/inbound"
	"garage-dashboard/internal/port/outbound"
)

// CatalogApplicationService manages the services and products a garage
// offers.
type CatalogApplicationService struct {
	store     outbound.Store
	publisher outbound.EventPublisher
	cache     outbound.Cache
	logger    logger.Logger
}

var _ inbound.CatalogUseCase = (*CatalogApplicationService)(nil)

func NewCatalogApplicationService(
	store outbound.Store,
	publisher outbound.EventPublisher,
	cache outbound.Cache,
	log logger.Logger,
) *CatalogApplicationService {
	return &CatalogApplicationService{
		store:     store,
		publisher: publisher,
		cache:     cache,
		logger:    log.WithField("service", "catalog"),
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func (s *CatalogApplicationService) ListServices(ctx context.Context, garageID int64) ([]model.Service, error) {
	return s.store.ListServicesByGarage(ctx, garageID)
}

func (s *CatalogApplicationService) CreateService(ctx context.Context, in inbound.CreateServiceInput) (model.Service, error) {
	if _, err := s.store.GetGarage(ctx, in.GarageID); err != nil {
		return model.Service{}, reference(err, "garage", in.GarageID)
	}

	svc, err := s.store.CreateService(ctx, model.Service{
		GarageID:    in.GarageID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Duration:    in.Duration,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
		IsActive:    boolOr(in.IsActive, true),
	})
	if err != nil {
		return model.Service{}, fmt.Errorf("create service: %w", err)
	}

	invalidateAnalytics(ctx, s.cache, s.logger, svc.GarageID)
	publish(ctx, s.publisher, event.ServiceCreated(svc))
	return svc, nil
}

func (s *CatalogApplicationService) UpdateService(ctx context.Context, id int64, patch inbound.ServicePatch) (model.Service, error) {
	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return model.Service{}, err
	}

	if patch.Name != nil {
		svc.Name = *patch.Name
	}
	if patch.Description != nil {
		svc.Description = *patch.Description
	}
	if patch.Price != nil {
		svc.Price = *patch.Price
	}
	if patch.Duration != nil {
		svc.Duration = *patch.Duration
	}
	if patch.ImageURL != nil {
		svc.ImageURL = patch.ImageURL
	}
	if patch.Category != nil {
		svc.Category = *patch.Category
	}
	svc.IsActive = boolOr(patch.IsActive, svc.IsActive)

	svc, err = s.store.UpdateService(ctx, svc)
	if err != nil {
		return model.Service{}, fmt.Errorf("update service %d: %w", id, err)
	}

	invalidateAnalytics(ctx, s.cache, s.logger, svc.GarageID)
	publish(ctx, s.publisher, event.ServiceUpdated(svc))
	return svc, nil
}

func (s *CatalogApplicationService) DeleteService(ctx context.Context, id int64) error {
	svc, err := s.store.GetService(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteService(ctx, id); err != nil {
		return fmt.Errorf("delete service %d: %w", id, err)
	}

	invalidateAnalytics(ctx, s.cache, s.logger, svc.GarageID)
	publish(ctx, s.publisher, event.ServiceDeleted(svc))
	return nil
}

func (s *CatalogApplicationService) ListProducts(ctx context.Context, garageID int64) ([]model.Product, error) {
	return s.store.ListProductsByGarage(ctx, garageID)
}

func (s *CatalogApplicationService) CreateProduct(ctx context.Context, in inbound.CreateProductInput) (model.Product, error) {
	if _, err := s.store.GetGarage(ctx, in.GarageID); err != nil {
		return model.Product{}, reference(err, "garage", in.GarageID)
	}

	p, err := s.store.CreateProduct(ctx, model.Product{
		GarageID:    in.GarageID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
		IsActive:    boolOr(in.IsActive, true),
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	publish(ctx, s.publisher, event.ProductCreated(p))
	return p, nil
}

func (s *CatalogApplicationService) UpdateProduct(ctx context.Context, id int64, patch inbound.ProductPatch) (model.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.ImageURL != nil {
		p.ImageURL = patch.ImageURL
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	p.IsActive = boolOr(patch.IsActive, p.IsActive)

	p, err = s.store.UpdateProduct(ctx, p)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}

	publish(ctx, s.publisher, event.ProductUpdated(p))
	return p, nil
}

func (s *CatalogApplicationService) DeleteProduct(ctx context.Context, id int64) error {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	publish(ctx, s.publisher, event.ProductDeleted(p))
	return nil
}
