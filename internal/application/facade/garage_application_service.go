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

type GarageApplicationService struct {
	store     outbound.Store
	publisher outbound.EventPublisher
	logger    logger.Logger
}

var _ inbound.GarageUseCase = (*GarageApplicationService)(nil)

func NewGarageApplicationService(
	store outbound.Store,
	publisher outbound.EventPublisher,
	log logger.Logger,
) *GarageApplicationService {
	return &GarageApplicationService{
		store:     store,
		publisher: publisher,
		logger:    log.WithField("service", "garage"),
	}
}

func (s *GarageApplicationService) ListGarages(ctx context.Context) ([]model.Garage, error) {
	return s.store.ListGarages(ctx)
}

func (s *GarageApplicationService) GetGarage(ctx context.Context, id int64) (model.Garage, error) {
	return s.store.GetGarage(ctx, id)
}

// CreateGarage stores a new garage. Garages start Closed unless told
// otherwise. Creation is not broadcast.
func (s *GarageApplicationService) CreateGarage(ctx context.Context, in inbound.CreateGarageInput) (model.Garage, error) {
	status := in.Status
	if status == "" {
		status = model.GarageClosed
	}
	if !status.Valid() {
		return model.Garage{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	g, err := s.store.CreateGarage(ctx, model.Garage{
		Name:    in.Name,
		Address: in.Address,
		Lat:     in.Lat,
		Lng:     in.Lng,
		Status:  status,
		Email:   in.Email,
		Phone:   in.Phone,
		Avatar:  in.Avatar,
	})
	if err != nil {
		return model.Garage{}, fmt.Errorf("create garage: %w", err)
	}

	s.logger.Infof("Garage %d created", g.ID)
	return g, nil
}

func (s *GarageApplicationService) UpdateGarage(ctx context.Context, id int64, patch inbound.GaragePatch) (model.Garage, error) {
	g, err := s.store.GetGarage(ctx, id)
	if err != nil {
		return model.Garage{}, err
	}

	if patch.Name != nil {
		g.Name = *patch.Name
	}
	if patch.Address != nil {
		g.Address = *patch.Address
	}
	if patch.Lat != nil {
		g.Lat = *patch.Lat
	}
	if patch.Lng != nil {
		g.Lng = *patch.Lng
	}
	if patch.Email != nil {
		g.Email = *patch.Email
	}
	if patch.Phone != nil {
		g.Phone = *patch.Phone
	}
	if patch.Avatar != nil {
		g.Avatar = patch.Avatar
	}

	g, err = s.store.UpdateGarage(ctx, g)
	if err != nil {
		return model.Garage{}, fmt.Errorf("update garage %d: %w", id, err)
	}

	publish(ctx, s.publisher, event.GarageUpdated(g))
	return g, nil
}

func (s *GarageApplicationService) UpdateGarageStatus(ctx context.Context, id int64, status model.GarageStatus) (model.Garage, error) {
	if !status.Valid() {
		return model.Garage{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	g, err := s.store.GetGarage(ctx, id)
	if err != nil {
		return model.Garage{}, err
	}
	g.Status = status

	g, err = s.store.UpdateGarage(ctx, g)
	if err != nil {
		return model.Garage{}, fmt.Errorf("update garage %d status: %w", id, err)
	}

	s.logger.Infof("Garage %d is now %s", g.ID, g.Status)
	publish(ctx, s.publisher, event.GarageStatusChanged(g))
	return g, nil
}
