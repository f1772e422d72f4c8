package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	areaRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingarea"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingslot"
	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

// Options настройки сервиса броней
type Options struct {
	Policy                domain.Policy // глобальная политика, перекрывается политикой парковки
	ClockSkew             time.Duration // допуск на ранний заезд
	MaxTransitionAttempts int           // повторы при конфликте версии места
}

// Service сервис жизненного цикла броней и расчётов по ним
type Service struct {
	reservationRepo ReservationRepository
	slotRepo        SlotRepository
	areaRepo        AreaRepository
	policyRepo      PolicyRepository
	txManager       TransactionManager
	metrics         Metrics
	opts            Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса броней
func NewService(
	reservationRepo ReservationRepository,
	slotRepo SlotRepository,
	areaRepo AreaRepository,
	policyRepo PolicyRepository,
	txManager TransactionManager,
	metrics Metrics,
	opts Options,
	logger Logger,
) *Service {
	if opts.MaxTransitionAttempts <= 0 {
		opts.MaxTransitionAttempts = domain.DefaultTransitionAttempts
	}
	return &Service{
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		areaRepo:        areaRepo,
		policyRepo:      policyRepo,
		txManager:       txManager,
		metrics:         metrics,
		opts:            opts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронь по ID
// Доступно клиенту брони и владельцу парковки
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, userID)

	res, err := s.getReservation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkAccess(ctx, "GetByID", res, userID, false); err != nil {
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched reservation id=%d", id)
	return models.FromDomainReservation(res), nil
}

// GetCustomerReservations получает историю броней клиента, опционально по статусу
func (s *Service) GetCustomerReservations(ctx context.Context, req *models.GetCustomerReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetCustomerReservations: fetching reservations for user=%d, status=%v", req.UserID, req.Status)

	var status *domain.ReservationStatus
	if req.Status != nil {
		st, err := models.ToDomainReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerReservations: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &st
	}

	list, err := s.reservationRepo.ListByCustomer(ctx, req.UserID, status)
	if err != nil {
		s.logger.Error("GetCustomerReservations: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetCustomerReservations - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetCustomerReservations: successfully fetched %d reservations for user=%d", len(list), req.UserID)
	return models.FromDomainReservationList(list), nil
}

// GetAreaReservations получает брони парковки с фильтрацией
// Доступно только владельцу парковки
func (s *Service) GetAreaReservations(ctx context.Context, req *models.GetAreaReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetAreaReservations: fetching reservations for area=%d, user=%d", req.AreaID, req.UserID)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetAreaReservations: invalid filter for area=%d: %v", req.AreaID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: 'to' must not be before 'from'", ErrInvalidInput)
	}

	area, err := s.getArea(ctx, "GetAreaReservations", req.AreaID)
	if err != nil {
		return nil, err
	}
	if !area.IsOwnedBy(req.UserID) {
		s.logger.Warn("GetAreaReservations: user=%d is not the owner of area=%d", req.UserID, req.AreaID)
		return nil, ErrAccessDenied
	}

	list, err := s.reservationRepo.ListByArea(ctx, filter)
	if err != nil {
		s.logger.Error("GetAreaReservations: repository error for area=%d: %v", req.AreaID, err)
		return nil, fmt.Errorf("%w: GetAreaReservations - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetAreaReservations: successfully fetched %d reservations for area=%d", len(list), req.AreaID)
	return models.FromDomainReservationList(list), nil
}

// Вспомогательные методы

// transitionState состояние, прочитанное внутри транзакции перехода
type transitionState struct {
	reservation *domain.Reservation
	slot        *domain.ParkingSlot
	policy      domain.Policy
	now         time.Time
}

type transitionFunc func(txCtx context.Context, st *transitionState) error

// runTransition выполняет переход брони в сериализуемой транзакции.
// После fn версия места брони повышается; если место изменил конкурент,
// транзакция откатывается и переход повторяется на свежем состоянии.
func (s *Service) runTransition(ctx context.Context, op string, id, userID int64, staffOnly bool, fn transitionFunc) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			st, err := s.loadState(txCtx, op, id)
			if err != nil {
				return err
			}

			if err := s.checkAccess(txCtx, op, st.reservation, userID, staffOnly); err != nil {
				return err
			}

			if err := fn(txCtx, st); err != nil {
				return err
			}

			if _, err := s.slotRepo.BumpVersion(txCtx, st.slot.ID, st.slot.Version); err != nil {
				if errors.Is(err, slotRepo.ErrVersionConflict) {
					return err
				}
				s.logger.Error("%s: failed to bump version of slot id=%d: %v", op, st.slot.ID, err)
				return fmt.Errorf("%w: %s - bump slot version: %w", ErrInternal, op, err)
			}
			return nil
		})

		// Повторы сериализуемой транзакции уже исчерпаны менеджером транзакций
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			s.logger.Warn("%s: reservation id=%d serialization failure: %v", op, id, err)
			err = fmt.Errorf("%w: slot was modified concurrently", ErrConflict)
			break
		}
		if err == nil || !errors.Is(err, slotRepo.ErrVersionConflict) {
			break
		}
		if attempt >= s.opts.MaxTransitionAttempts {
			s.logger.Warn("%s: reservation id=%d slot version conflict after %d attempt(s)", op, id, attempt)
			err = fmt.Errorf("%w: slot was modified concurrently", ErrConflict)
			break
		}
		s.logger.Info("%s: reservation id=%d slot version conflict, retrying (attempt %d)", op, id, attempt)
	}

	s.metrics.ObserveTransition(op, resultOf(err))
	return err
}

// loadState читает бронь, её место и действующую политику парковки
func (s *Service) loadState(ctx context.Context, op string, id int64) (*transitionState, error) {
	res, err := s.getReservation(ctx, op, id)
	if err != nil {
		return nil, err
	}

	slot, err := s.getSlot(ctx, op, res.SlotID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policyRepo.Resolve(ctx, res.ParkingAreaID, s.opts.Policy)
	if err != nil {
		s.logger.Error("%s: failed to resolve policy for area id=%d: %v", op, res.ParkingAreaID, err)
		return nil, fmt.Errorf("%w: %s - resolve policy: %w", ErrInternal, op, err)
	}

	return &transitionState{
		reservation: res,
		slot:        slot,
		policy:      policy,
		now:         s.timeProvider.Now(),
	}, nil
}

func (s *Service) getReservation(ctx context.Context, op string, id int64) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return res, nil
}

func (s *Service) getSlot(ctx context.Context, op string, id int64) (*domain.ParkingSlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("%s: slot id=%d not found", op, id)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("%s: repository error for slot id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return slot, nil
}

func (s *Service) getArea(ctx context.Context, op string, id int64) (*domain.ParkingArea, error) {
	area, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, areaRepo.ErrAreaNotFound) {
			s.logger.Warn("%s: area id=%d not found", op, id)
			return nil, ErrAreaNotFound
		}
		s.logger.Error("%s: repository error for area id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return area, nil
}

// checkAccess проверяет, что пользователь клиент брони или владелец парковки.
// staffOnly оставляет доступ только владельцу.
func (s *Service) checkAccess(ctx context.Context, op string, res *domain.Reservation, userID int64, staffOnly bool) error {
	if !staffOnly && res.CustomerID != nil && *res.CustomerID == userID {
		return nil
	}

	area, err := s.getArea(ctx, op, res.ParkingAreaID)
	if err != nil {
		return err
	}
	if area.IsOwnedBy(userID) {
		return nil
	}

	s.logger.Warn("%s: access denied for user=%d to reservation id=%d", op, userID, res.ID)
	return ErrAccessDenied
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInternal):
		return "error"
	default:
		return "rejected"
	}
}
