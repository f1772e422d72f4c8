package parkingareas

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	areaRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingarea"
	policyRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingareas/models"
)

// Service сервис управления парковками: активация и политика удержаний
type Service struct {
	areaRepo     AreaRepository
	policyRepo   PolicyRepository
	cache        AreaCache
	txManager    TransactionManager
	basePolicy   domain.Policy
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса парковок
func NewService(
	areaRepo AreaRepository,
	policyRepo PolicyRepository,
	cache AreaCache,
	txManager TransactionManager,
	basePolicy domain.Policy,
	logger Logger,
) *Service {
	return &Service{
		areaRepo:     areaRepo,
		policyRepo:   policyRepo,
		cache:        cache,
		txManager:    txManager,
		basePolicy:   basePolicy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// SetActive активирует или деактивирует парковку вместе со всеми её местами.
// Активация требует оплаченной и не истекшей подписки. Кеш геопоиска сбрасывается.
func (s *Service) SetActive(ctx context.Context, areaID int64, req *models.SetActiveRequest) (*models.AreaResponse, error) {
	if req.IsActive == nil {
		return nil, fmt.Errorf("%w: isActive is required", ErrInvalidInput)
	}
	active := *req.IsActive

	s.logger.Info("SetActive: area id=%d, active=%t by user=%d", areaID, active, req.UserID)

	now := s.timeProvider.Now()

	var result *domain.ParkingArea
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		area, err := s.getOwnedArea(txCtx, "SetActive", areaID, req.UserID)
		if err != nil {
			return err
		}

		if active {
			current, err := s.areaRepo.HasCurrentSubscription(txCtx, areaID, now)
			if err != nil {
				s.logger.Error("SetActive: failed to check subscription of area id=%d: %v", areaID, err)
				return fmt.Errorf("%w: SetActive - check subscription: %w", ErrInternal, err)
			}
			if !current {
				s.logger.Warn("SetActive: area id=%d has no current subscription", areaID)
				return ErrSubscriptionInactive
			}
		}

		if err := s.areaRepo.SetActive(txCtx, areaID, active, now); err != nil {
			if errors.Is(err, areaRepo.ErrAreaNotFound) {
				return ErrAreaNotFound
			}
			s.logger.Error("SetActive: repository error for area id=%d: %v", areaID, err)
			return fmt.Errorf("%w: SetActive - repository error: %w", ErrInternal, err)
		}

		area.IsActive = active
		area.UpdatedAt = now
		result = area
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Кеш хранит только активные парковки, поэтому сбрасываем его в обе стороны
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("SetActive: failed to invalidate candidate cache: %v", err)
	}

	s.logger.Info("SetActive: successfully set area id=%d active=%t", areaID, active)
	return models.FromDomainArea(result), nil
}

// GetPolicy возвращает действующую политику парковки
func (s *Service) GetPolicy(ctx context.Context, areaID int64, userID int64) (*models.PolicyResponse, error) {
	s.logger.Info("GetPolicy: area id=%d by user=%d", areaID, userID)

	if _, err := s.getOwnedArea(ctx, "GetPolicy", areaID, userID); err != nil {
		return nil, err
	}

	override, err := s.policyRepo.GetByArea(ctx, areaID)
	if err != nil && !errors.Is(err, policyRepo.ErrPolicyNotFound) {
		s.logger.Error("GetPolicy: repository error for area id=%d: %v", areaID, err)
		return nil, fmt.Errorf("%w: GetPolicy - repository error: %w", ErrInternal, err)
	}

	return models.FromPolicy(areaID, override.Apply(s.basePolicy), override != nil), nil
}

// UpdatePolicy задаёт политику парковки поверх глобальной.
// Запрос без полей удаляет политику парковки.
func (s *Service) UpdatePolicy(ctx context.Context, areaID int64, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("UpdatePolicy: area id=%d by user=%d", areaID, req.UserID)

	if err := validatePolicy(req); err != nil {
		s.logger.Warn("UpdatePolicy: validation failed: %v", err)
		return nil, err
	}

	if _, err := s.getOwnedArea(ctx, "UpdatePolicy", areaID, req.UserID); err != nil {
		return nil, err
	}

	override := req.ToDomainOverride(areaID)
	if override.IsEmpty() {
		err := s.policyRepo.Delete(ctx, areaID)
		if err != nil && !errors.Is(err, policyRepo.ErrPolicyNotFound) {
			s.logger.Error("UpdatePolicy: failed to delete policy of area id=%d: %v", areaID, err)
			return nil, fmt.Errorf("%w: UpdatePolicy - delete: %w", ErrInternal, err)
		}
		s.logger.Info("UpdatePolicy: area id=%d reset to global policy", areaID)
		return models.FromPolicy(areaID, s.basePolicy, false), nil
	}

	saved, err := s.policyRepo.Upsert(ctx, override, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("UpdatePolicy: repository error for area id=%d: %v", areaID, err)
		return nil, fmt.Errorf("%w: UpdatePolicy - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("UpdatePolicy: successfully saved policy id=%d for area id=%d", saved.ID, areaID)
	return models.FromPolicy(areaID, saved.Apply(s.basePolicy), true), nil
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

func validatePolicy(req *models.UpdatePolicyRequest) error {
	fields := []struct {
		name  string
		value *int
	}{
		{"arrivalGraceMinutes", req.ArrivalGraceMinutes},
		{"pendingHoldMinutes", req.PendingHoldMinutes},
		{"bookingBufferMinutes", req.BookingBufferMinutes},
	}
	for _, f := range fields {
		if f.value != nil && (*f.value < 0 || *f.value > domain.MaxPolicyWindowMinutes) {
			return fmt.Errorf("%w: %s must be between 0 and %d", ErrInvalidInput, f.name, domain.MaxPolicyWindowMinutes)
		}
	}
	return nil
}
