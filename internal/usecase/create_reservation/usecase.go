package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	areaRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingarea"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingslot"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

const (
	resultOK       = "ok"
	resultConflict = "conflict"
	resultError    = "error"
)

// UseCase use case для создания брони (предварительной или заезда без брони)
type UseCase struct {
	slotRepo        SlotRepository
	areaRepo        AreaRepository
	reservationRepo ReservationRepository
	policyRepo      PolicyRepository
	userClient      UserServiceClient
	notifier        Notifier
	txManager       TransactionManager
	metrics         Metrics
	opts            Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	areaRepo AreaRepository,
	reservationRepo ReservationRepository,
	policyRepo PolicyRepository,
	userClient UserServiceClient,
	notifier Notifier,
	txManager TransactionManager,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.MaxTransitionAttempts <= 0 {
		opts.MaxTransitionAttempts = domain.DefaultTransitionAttempts
	}
	return &UseCase{
		slotRepo:        slotRepo,
		areaRepo:        areaRepo,
		reservationRepo: reservationRepo,
		policyRepo:      policyRepo,
		userClient:      userClient,
		notifier:        notifier,
		txManager:       txManager,
		metrics:         metrics,
		opts:            opts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute создает бронь.
// Проверка конфликта и запись выполняются в одной сериализуемой транзакции вместе с
// повышением версии места; при гонке версия не совпадает и попытка повторяется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: slot=%d, type=%s, vehicleType=%s", req.SlotID, req.Type, req.VehicleType)

	// 1. Валидация входных данных
	v, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}
	transition := "create_" + string(v.resType)

	// 2. Получаем текущее время и окно брони
	now := uc.timeProvider.Now()
	window, err := resolveWindow(req, v.resType, now, uc.opts.ClockSkew)
	if err != nil {
		uc.logger.Warn("CreateReservation: window validation failed: %v", err)
		return nil, err
	}

	// 3. Транзакция с повтором при конфликте версии места
	var resp *Response
	for attempt := 1; ; attempt++ {
		resp, err = uc.attempt(ctx, req, v, window, now)
		if err == nil {
			break
		}
		// Postgres уже отклонил конкурентную запись, повторы транзакции исчерпаны
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("CreateReservation: slot id=%d serialization failure: %v", req.SlotID, err)
			uc.metrics.ObserveTransition(transition, resultConflict)
			return nil, fmt.Errorf("%w: slot was modified concurrently", ErrConflict)
		}
		if !errors.Is(err, slotRepo.ErrVersionConflict) {
			uc.metrics.ObserveTransition(transition, resultOf(err))
			return nil, err
		}
		if req.SlotVersion != nil || attempt >= uc.opts.MaxTransitionAttempts {
			uc.logger.Warn("CreateReservation: slot id=%d version conflict after %d attempt(s)", req.SlotID, attempt)
			uc.metrics.ObserveTransition(transition, resultConflict)
			return nil, fmt.Errorf("%w: slot was modified concurrently", ErrConflict)
		}
		uc.logger.Info("CreateReservation: slot id=%d version conflict, retrying (attempt %d)", req.SlotID, attempt)
	}

	uc.metrics.ObserveTransition(transition, resultOK)
	uc.logger.Info("CreateReservation: successfully created reservation id=%d (status=%s, slotVersion=%d)",
		resp.Reservation.ID, resp.Reservation.Status, resp.SlotVersion)

	// 4. SMS после фиксации транзакции, ошибки не влияют на результат
	uc.notify(ctx, resp.Reservation)

	return resp, nil
}

// attempt одна попытка создания брони в сериализуемой транзакции
func (uc *UseCase) attempt(ctx context.Context, req *Request, v *validated, window domain.Window, now time.Time) (*Response, error) {
	var result *Response

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Место должно существовать, быть активным и подходить по типу транспорта
		slot, err := uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("CreateReservation: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateReservation: failed to get slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}

		if !slot.IsBookable() {
			uc.logger.Warn("CreateReservation: slot id=%d is inactive or deleted", slot.ID)
			return ErrSlotUnavailable
		}

		if slot.VehicleType != v.vehicleType {
			uc.logger.Warn("CreateReservation: slot id=%d is for %s, requested %s", slot.ID, slot.VehicleType, v.vehicleType)
			return fmt.Errorf("%w: slot is for vehicle type %s", ErrInvalidInput, slot.VehicleType)
		}

		if req.SlotVersion != nil && *req.SlotVersion != slot.Version {
			uc.logger.Warn("CreateReservation: slot id=%d version %d, expected %d", slot.ID, slot.Version, *req.SlotVersion)
			return slotRepo.ErrVersionConflict
		}

		// 3.2. Парковка должна принимать брони (активна, подписка оплачена)
		area, err := uc.areaRepo.GetByID(txCtx, slot.ParkingAreaID)
		if err != nil {
			if errors.Is(err, areaRepo.ErrAreaNotFound) {
				uc.logger.Warn("CreateReservation: area id=%d of slot id=%d not found", slot.ParkingAreaID, slot.ID)
				return ErrSlotUnavailable
			}
			uc.logger.Error("CreateReservation: failed to get area id=%d: %v", slot.ParkingAreaID, err)
			return fmt.Errorf("%w: failed to get area: %w", ErrInternal, err)
		}
		if !area.AcceptsBookings(now) {
			uc.logger.Warn("CreateReservation: area id=%d does not accept bookings", area.ID)
			return ErrSlotUnavailable
		}

		policy, err := uc.policyRepo.Resolve(txCtx, area.ID, uc.opts.Policy)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to resolve policy for area id=%d: %v", area.ID, err)
			return fmt.Errorf("%w: failed to resolve policy: %w", ErrInternal, err)
		}

		// 3.3. Повторная проверка конфликта по актуальному списку броней места
		reservations, err := uc.reservationRepo.ListOpenBySlot(txCtx, slot.ID)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to list reservations of slot id=%d: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to list reservations: %w", ErrInternal, err)
		}
		if blocking := domain.FirstBlocking(reservations, now, &window, policy, 0); blocking != nil {
			uc.logger.Warn("CreateReservation: slot id=%d is held by reservation id=%d (%s)",
				slot.ID, blocking.ID, blocking.Occupancy(now, policy))
			return fmt.Errorf("%w: slot is held by another reservation", ErrConflict)
		}

		// 3.4. Заезд без брони: у транспорта не должно быть других открытых броней
		if v.resType == domain.ReservationOnSpot {
			if err := uc.checkVehicleFree(txCtx, v.vehicleNumber, now); err != nil {
				return err
			}
		}

		// 3.5. Повышаем версию места: точка сериализации с конкурентными переходами
		version, err := uc.slotRepo.BumpVersion(txCtx, slot.ID, slot.Version)
		if err != nil {
			if errors.Is(err, slotRepo.ErrVersionConflict) {
				return err
			}
			uc.logger.Error("CreateReservation: failed to bump version of slot id=%d: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to bump slot version: %w", ErrInternal, err)
		}

		// 3.6. Создаём бронь со снимком текущей ставки места
		res := &domain.Reservation{
			ParkingAreaID:    area.ID,
			SlotID:           slot.ID,
			VehicleType:      slot.VehicleType,
			VehicleNumber:    v.vehicleNumber,
			CustomerID:       req.CustomerID,
			PerHourRate:      slot.PricePerHour,
			Status:           domain.ReservationPending,
			StartDateAndTime: window.Start,
			EndDateAndTime:   window.End,
			PaymentStatus:    domain.PaymentPending,
			Type:             v.resType,
			CreatedAt:        now,
		}
		if v.resType == domain.ReservationOnSpot {
			res.Status = domain.ReservationConfirmed
			res.IsParked = true
		}

		created, err := uc.reservationRepo.Create(txCtx, res)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		// 3.7. Предварительная бронь подтверждается сразу, если не ждём оплату
		if created.Status == domain.ReservationPending && uc.opts.AutoConfirm {
			if err := uc.reservationRepo.Confirm(txCtx, created.ID, now); err != nil {
				uc.logger.Error("CreateReservation: failed to confirm reservation id=%d: %v", created.ID, err)
				return fmt.Errorf("%w: failed to confirm reservation: %w", ErrInternal, err)
			}
			created.Status = domain.ReservationConfirmed
			created.UpdatedAt = now
		}

		result = &Response{Reservation: created, SlotVersion: version}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkVehicleFree проверяет, что транспорт не держит ни одного места
func (uc *UseCase) checkVehicleFree(ctx context.Context, vehicleNumber string, now time.Time) error {
	open, err := uc.reservationRepo.ListOpenByVehicleNumber(ctx, vehicleNumber)
	if err != nil {
		uc.logger.Error("CreateReservation: failed to list reservations of vehicle %s: %v", vehicleNumber, err)
		return fmt.Errorf("%w: failed to list vehicle reservations: %w", ErrInternal, err)
	}

	// Подтверждённая бронь держит транспорт до завершения или отмены, даже после неявки.
	// Брошенная предварительная бронь (истёкшее удержание) транспорт не держит.
	for i := range open {
		r := &open[i]
		if r.Status == domain.ReservationPending {
			policy, err := uc.policyRepo.Resolve(ctx, r.ParkingAreaID, uc.opts.Policy)
			if err != nil {
				uc.logger.Error("CreateReservation: failed to resolve policy for area id=%d: %v", r.ParkingAreaID, err)
				return fmt.Errorf("%w: failed to resolve policy: %w", ErrInternal, err)
			}
			if r.Occupancy(now, policy) == domain.OccupancyFree {
				continue
			}
		}
		uc.logger.Warn("CreateReservation: vehicle %s already has open reservation id=%d (%s)", vehicleNumber, r.ID, r.Status)
		return fmt.Errorf("%w: vehicle already has an open reservation", ErrConflict)
	}

	return nil
}

// notify отправляет клиенту SMS о брони. Недоступность сервисов только логируется.
func (uc *UseCase) notify(ctx context.Context, res *domain.Reservation) {
	if res.CustomerID == nil {
		return
	}

	customer, err := uc.userClient.GetCustomerWithGracefulDegradation(ctx, *res.CustomerID)
	if err != nil {
		uc.logger.Warn("CreateReservation: skip SMS for reservation id=%d: %v", res.ID, err)
		return
	}
	if customer.Phone == "" {
		return
	}

	notice := notificationservice.Notice{
		Phone: customer.Phone,
		Message: fmt.Sprintf("Reservation #%d %s: slot %d from %s",
			res.ID, res.Status, res.SlotID, res.StartDateAndTime.Format(domain.DateTimeFormat)),
	}
	if err := uc.notifier.Send(ctx, notice); err != nil {
		uc.logger.Warn("CreateReservation: failed to send SMS for reservation id=%d: %v", res.ID, err)
	}
}

func resultOf(err error) string {
	if errors.Is(err, ErrConflict) {
		return resultConflict
	}
	return resultError
}
