package parkingslots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	areaRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingarea"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingslot"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots/models"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

// Service сервис управления местами парковки
type Service struct {
	slotRepo        SlotRepository
	areaRepo        AreaRepository
	reservationRepo ReservationRepository
	policyRepo      PolicyRepository
	txManager       TransactionManager
	basePolicy      domain.Policy
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса мест
func NewService(
	slotRepo SlotRepository,
	areaRepo AreaRepository,
	reservationRepo ReservationRepository,
	policyRepo PolicyRepository,
	txManager TransactionManager,
	basePolicy domain.Policy,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:        slotRepo,
		areaRepo:        areaRepo,
		reservationRepo: reservationRepo,
		policyRepo:      policyRepo,
		txManager:       txManager,
		basePolicy:      basePolicy,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// UpdateSlot меняет активность и/или ставку места.
// Смена активности повышает версию места, чтобы параллельное создание брони увидело конфликт.
// Ставка открытых броней не меняется: в брони хранится снимок ставки.
func (s *Service) UpdateSlot(ctx context.Context, slotID int64, req *models.UpdateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("UpdateSlot: slot id=%d by user=%d", slotID, req.UserID)

	if req.IsActive == nil && req.PricePerHour == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if req.PricePerHour != nil && *req.PricePerHour <= 0 {
		return nil, fmt.Errorf("%w: pricePerHour must be positive", ErrInvalidInput)
	}

	now := s.timeProvider.Now()

	var result *domain.ParkingSlot
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		slot, err := s.slotRepo.GetByID(txCtx, slotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				s.logger.Warn("UpdateSlot: slot id=%d not found", slotID)
				return ErrSlotNotFound
			}
			s.logger.Error("UpdateSlot: repository error for slot id=%d: %v", slotID, err)
			return fmt.Errorf("%w: UpdateSlot - repository error: %w", ErrInternal, err)
		}

		area, err := s.getOwnedArea(txCtx, "UpdateSlot", slot.ParkingAreaID, req.UserID)
		if err != nil {
			return err
		}

		if req.IsActive != nil && *req.IsActive != slot.IsActive {
			if *req.IsActive && !area.AcceptsBookings(now) {
				s.logger.Warn("UpdateSlot: area id=%d does not accept bookings", area.ID)
				return ErrAreaInactive
			}

			if err := s.slotRepo.SetActive(txCtx, slotID, *req.IsActive, now); err != nil {
				s.logger.Error("UpdateSlot: failed to set active for slot id=%d: %v", slotID, err)
				return fmt.Errorf("%w: UpdateSlot - set active: %w", ErrInternal, err)
			}

			version, err := s.slotRepo.BumpVersion(txCtx, slotID, slot.Version)
			if err != nil {
				if errors.Is(err, slotRepo.ErrVersionConflict) {
					s.logger.Warn("UpdateSlot: slot id=%d modified concurrently", slotID)
					return ErrConflict
				}
				s.logger.Error("UpdateSlot: failed to bump version of slot id=%d: %v", slotID, err)
				return fmt.Errorf("%w: UpdateSlot - bump version: %w", ErrInternal, err)
			}

			slot.IsActive = *req.IsActive
			slot.Version = version
		}

		if req.PricePerHour != nil {
			if err := s.slotRepo.UpdatePrice(txCtx, slotID, *req.PricePerHour, now); err != nil {
				s.logger.Error("UpdateSlot: failed to update price for slot id=%d: %v", slotID, err)
				return fmt.Errorf("%w: UpdateSlot - update price: %w", ErrInternal, err)
			}
			slot.PricePerHour = *req.PricePerHour
		}

		slot.UpdatedAt = now
		result = slot
		return nil
	})
	if errors.Is(err, txmanager.ErrSerializationFailure) {
		s.logger.Warn("UpdateSlot: slot id=%d serialization failure: %v", slotID, err)
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateSlot: successfully updated slot id=%d (active=%t, price=%.2f)", slotID, result.IsActive, result.PricePerHour)
	return models.FromDomainSlot(result), nil
}

// UpdateAreaPrices меняет ставку всех мест парковки указанного типа транспорта
func (s *Service) UpdateAreaPrices(ctx context.Context, areaID int64, req *models.UpdateAreaPricesRequest) (*models.UpdateAreaPricesResponse, error) {
	s.logger.Info("UpdateAreaPrices: area id=%d, vehicleType=%s, price=%.2f by user=%d",
		areaID, req.VehicleType, req.PricePerHour, req.UserID)

	vehicleType, err := domain.ParseVehicleType(req.VehicleType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if req.PricePerHour <= 0 {
		return nil, fmt.Errorf("%w: pricePerHour must be positive", ErrInvalidInput)
	}

	if _, err := s.getOwnedArea(ctx, "UpdateAreaPrices", areaID, req.UserID); err != nil {
		return nil, err
	}

	updated, err := s.slotRepo.UpdateAreaPriceByVehicleType(ctx, areaID, vehicleType, req.PricePerHour, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("UpdateAreaPrices: repository error for area id=%d: %v", areaID, err)
		return nil, fmt.Errorf("%w: UpdateAreaPrices - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("UpdateAreaPrices: updated %d %s slots of area id=%d", updated, vehicleType, areaID)
	return &models.UpdateAreaPricesResponse{
		ParkingAreaID: areaID,
		VehicleType:   string(vehicleType),
		PricePerHour:  req.PricePerHour,
		UpdatedSlots:  updated,
	}, nil
}

// SlotStatusBoard возвращает живое состояние каждого места парковки.
// Состояние считается тем же предикатом, что и поиск свободных мест.
func (s *Service) SlotStatusBoard(ctx context.Context, areaID int64, userID int64) (*models.StatusBoardResponse, error) {
	s.logger.Info("SlotStatusBoard: area id=%d by user=%d", areaID, userID)

	if _, err := s.getOwnedArea(ctx, "SlotStatusBoard", areaID, userID); err != nil {
		return nil, err
	}

	// Места и их брони читаем одним снимком
	var (
		slots  []domain.ParkingSlot
		bySlot map[int64][]domain.Reservation
	)
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		slots, err = s.slotRepo.ListByArea(txCtx, areaID)
		if err != nil {
			s.logger.Error("SlotStatusBoard: failed to list slots of area id=%d: %v", areaID, err)
			return fmt.Errorf("%w: SlotStatusBoard - list slots: %w", ErrInternal, err)
		}

		ids := make([]int64, len(slots))
		for i, slot := range slots {
			ids[i] = slot.ID
		}

		reservations, err := s.reservationRepo.ListOpenBySlots(txCtx, ids)
		if err != nil {
			s.logger.Error("SlotStatusBoard: failed to list reservations of area id=%d: %v", areaID, err)
			return fmt.Errorf("%w: SlotStatusBoard - list reservations: %w", ErrInternal, err)
		}
		bySlot = make(map[int64][]domain.Reservation, len(slots))
		for _, r := range reservations {
			bySlot[r.SlotID] = append(bySlot[r.SlotID], r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	policy, err := s.policyRepo.Resolve(ctx, areaID, s.basePolicy)
	if err != nil {
		s.logger.Error("SlotStatusBoard: failed to resolve policy of area id=%d: %v", areaID, err)
		return nil, fmt.Errorf("%w: SlotStatusBoard - resolve policy: %w", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	resp := &models.StatusBoardResponse{
		ParkingAreaID: areaID,
		GeneratedAt:   now,
		Counts:        make(map[string]int),
		Slots:         make([]models.SlotStatus, 0, len(slots)),
	}
	for i := range slots {
		state := domain.SlotOccupancy(bySlot[slots[i].ID], now, policy)
		resp.Slots = append(resp.Slots, models.FromSlotState(&slots[i], state))
		resp.Counts[string(state.Occupancy)]++
	}

	s.logger.Info("SlotStatusBoard: area id=%d has %d slots, %d free", areaID, len(slots), resp.Counts[string(domain.OccupancyFree)])
	return resp, nil
}

// getOwnedArea читает парковку и проверяет, что пользователь её владелец
func (s *Service) getOwnedArea(ctx context.Context, op string, areaID, userID int64) (*domain.ParkingArea, error) {
	area, err := s.areaRepo.GetByID(ctx, areaID)
	if err != nil {
		if errors.Is(err, areaRepo.ErrAreaNotFound) {
			s.logger.Warn("%s: area id=%d not found", op, areaID)
			return nil, ErrAreaNotFound
		}
		s.logger.Error("%s: repository error for area id=%d: %v", op, areaID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}

	if !area.IsOwnedBy(userID) {
		s.logger.Warn("%s: user=%d is not the owner of area id=%d", op, userID, areaID)
		return nil, ErrAccessDenied
	}
	return area, nil
}
