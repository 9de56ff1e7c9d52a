package facade

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/port/inbound"
	"garage-dashboard/internal/port/outbound"
)

// DriverApplicationService manages customer records. Drivers are not a
// tracked entity, so nothing here is broadcast.
type DriverApplicationService struct {
	store    outbound.Store
	logger   logger.Logger
	now      Clock
	hashCost int
}

var _ inbound.DriverUseCase = (*DriverApplicationService)(nil)

// NewDriverApplicationService hashes passwords with bcrypt at hashCost;
// zero means bcrypt.DefaultCost.
func NewDriverApplicationService(store outbound.Store, log logger.Logger, now Clock, hashCost int) *DriverApplicationService {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &DriverApplicationService{
		store:    store,
		logger:   log.WithField("service", "driver"),
		now:      now,
		hashCost: hashCost,
	}
}

func (s *DriverApplicationService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *DriverApplicationService) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	return s.store.ListDrivers(ctx)
}

func (s *DriverApplicationService) GetDriver(ctx context.Context, id int64) (model.Driver, error) {
	return s.store.GetDriver(ctx, id)
}

func (s *DriverApplicationService) CreateDriver(ctx context.Context, in inbound.CreateDriverInput) (model.Driver, error) {
	hash, err := s.hash(in.Password)
	if err != nil {
		return model.Driver{}, err
	}

	d, err := s.store.CreateDriver(ctx, model.Driver{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Address:      in.Address,
		Zip:          in.Zip,
		VehicleMake:  in.VehicleMake,
		VehicleModel: in.VehicleModel,
		VehicleYear:  in.VehicleYear,
		Avatar:       in.Avatar,
		LastActive:   s.now(),
	})
	if err != nil {
		return model.Driver{}, fmt.Errorf("create driver: %w", err)
	}

	s.logger.Infof("Driver %d created", d.ID)
	return d, nil
}

func (s *DriverApplicationService) UpdateDriver(ctx context.Context, id int64, patch inbound.DriverPatch) (model.Driver, error) {
	d, err := s.store.GetDriver(ctx, id)
	if err != nil {
		return model.Driver{}, err
	}

	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.Email != nil {
		d.Email = *patch.Email
	}
	if patch.Phone != nil {
		d.Phone = *patch.Phone
	}
	if patch.Password != nil {
		if d.PasswordHash, err = s.hash(*patch.Password); err != nil {
			return model.Driver{}, err
		}
	}
	if patch.Address != nil {
		d.Address = patch.Address
	}
	if patch.Zip != nil {
		d.Zip = patch.Zip
	}
	if patch.VehicleMake != nil {
		d.VehicleMake = *patch.VehicleMake
	}
	if patch.VehicleModel != nil {
		d.VehicleModel = *patch.VehicleModel
	}
	if patch.VehicleYear != nil {
		d.VehicleYear = *patch.VehicleYear
	}
	if patch.Avatar != nil {
		d.Avatar = patch.Avatar
	}
	d.LastActive = s.now()

	d, err = s.store.UpdateDriver(ctx, d)
	if err != nil {
		return model.Driver{}, fmt.Errorf("update driver %d: %w", id, err)
	}
	return d, nil
}

func (s *DriverApplicationService) ListDriverBookings(ctx context.Context, driverID int64) ([]model.Booking, error) {
	if _, err := s.store.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return s.store.ListBookingsByDriver(ctx, driverID)
}
