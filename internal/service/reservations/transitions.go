package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingslot"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
)

// Transition выполняет действие PATCH /reservation/{id}: confirm, arrive или reassign
func (s *Service) Transition(ctx context.Context, id int64, req *models.TransitionRequest) (*models.ReservationResponse, error) {
	switch req.Action {
	case models.ActionConfirm:
		return s.Confirm(ctx, id, req.UserID)
	case models.ActionArrive:
		return s.Arrive(ctx, id, req.UserID)
	case models.ActionReassign:
		if req.SlotID == nil {
			return nil, fmt.Errorf("%w: slotId is required for reassign", ErrInvalidInput)
		}
		return s.Reassign(ctx, id, req.UserID, *req.SlotID, req.SlotVersion)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
	}
}

// Confirm подтверждает неподтверждённую бронь (после оплаты)
// Если удержание истекло и место успели занять, возвращается ErrConflict
func (s *Service) Confirm(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("Confirm: confirming reservation id=%d by user=%d", id, userID)

	var result *domain.Reservation
	err := s.runTransition(ctx, "Confirm", id, userID, false, func(txCtx context.Context, st *transitionState) error {
		res := st.reservation
		if res.Status != domain.ReservationPending {
			s.logger.Warn("Confirm: reservation id=%d has status=%s", id, res.Status)
			return fmt.Errorf("%w: only pending reservations can be confirmed", ErrInvalidTransition)
		}

		window := res.Window()
		if err := s.ensureNoOtherBlocking(txCtx, "Confirm", st, res.SlotID, &window); err != nil {
			return err
		}

		if err := s.reservationRepo.Confirm(txCtx, id, st.now); err != nil {
			s.logger.Error("Confirm: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Confirm - repository error: %w", ErrInternal, err)
		}

		res.Status = domain.ReservationConfirmed
		res.UpdatedAt = st.now
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Confirm: successfully confirmed reservation id=%d", id)
	return models.FromDomainReservation(result), nil
}

// Arrive отмечает заезд: isParked false -> true для подтверждённой брони, чьё окно началось.
// Доступно только владельцу парковки.
func (s *Service) Arrive(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("Arrive: marking reservation id=%d as parked by user=%d", id, userID)

	var result *domain.Reservation
	err := s.runTransition(ctx, "Arrive", id, userID, true, func(txCtx context.Context, st *transitionState) error {
		res := st.reservation
		if res.Status != domain.ReservationConfirmed || res.IsParked {
			s.logger.Warn("Arrive: reservation id=%d has status=%s, isParked=%t", id, res.Status, res.IsParked)
			return fmt.Errorf("%w: only confirmed reservations not yet parked can arrive", ErrInvalidTransition)
		}

		if res.StartDateAndTime.After(st.now.Add(s.opts.ClockSkew)) {
			s.logger.Warn("Arrive: reservation id=%d starts at %s", id, res.StartDateAndTime.Format(domain.DateTimeFormat))
			return fmt.Errorf("%w: reservation window has not begun", ErrInvalidTransition)
		}

		// Бронь уже прошла проверку конфликтов при создании; при заезде место
		// должно быть физически свободно
		if err := s.ensureNoOtherParked(txCtx, st); err != nil {
			return err
		}

		if err := s.reservationRepo.MarkParked(txCtx, id, st.now); err != nil {
			s.logger.Error("Arrive: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Arrive - repository error: %w", ErrInternal, err)
		}

		res.IsParked = true
		res.UpdatedAt = st.now
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Arrive: successfully marked reservation id=%d as parked", id)
	return models.FromDomainReservation(result), nil
}

// Cancel отменяет бронь, пока транспорт не заехал. Место освобождается сразу.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", id, req.UserID)

	var reason *string
	if req.Reason != nil {
		trimmed := strings.TrimSpace(*req.Reason)
		if len(trimmed) > domain.MaxCancellationReasonLength {
			return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
		}
		if trimmed != "" {
			reason = &trimmed
		}
	}

	var result *domain.Reservation
	err := s.runTransition(ctx, "Cancel", id, req.UserID, false, func(txCtx context.Context, st *transitionState) error {
		res := st.reservation
		if !res.CanBeCancelled() {
			s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s, isParked=%t", id, res.Status, res.IsParked)
			return fmt.Errorf("%w: reservation cannot be cancelled", ErrInvalidTransition)
		}

		if err := s.reservationRepo.Cancel(txCtx, id, reason, st.now); err != nil {
			s.logger.Error("Cancel: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Cancel - repository error: %w", ErrInternal, err)
		}

		now := st.now
		res.Status = domain.ReservationCancelled
		res.CancellationReason = reason
		res.CancelledAt = &now
		res.UpdatedAt = now
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: successfully cancelled reservation id=%d", id)
	return models.FromDomainReservation(result), nil
}

// Reassign переносит бронь на другое место той же парковки и того же типа транспорта.
// Конфликт на новом месте проверяется до записи; версии обоих мест повышаются.
func (s *Service) Reassign(ctx context.Context, id int64, userID int64, destSlotID int64, expectedVersion *int64) (*models.ReservationResponse, error) {
	s.logger.Info("Reassign: moving reservation id=%d to slot id=%d by user=%d", id, destSlotID, userID)

	if destSlotID <= 0 {
		return nil, fmt.Errorf("%w: slotId must be positive", ErrInvalidInput)
	}

	var result *domain.Reservation
	err := s.runTransition(ctx, "Reassign", id, userID, true, func(txCtx context.Context, st *transitionState) error {
		res := st.reservation
		if !res.CanBeReassigned() {
			s.logger.Warn("Reassign: reservation id=%d cannot be reassigned, status=%s, isParked=%t", id, res.Status, res.IsParked)
			return fmt.Errorf("%w: only reservations not yet parked can be reassigned", ErrInvalidTransition)
		}
		if destSlotID == res.SlotID {
			return fmt.Errorf("%w: reservation is already on slot %d", ErrInvalidInput, destSlotID)
		}

		dest, err := s.getSlot(txCtx, "Reassign", destSlotID)
		if err != nil {
			return err
		}
		if dest.ParkingAreaID != res.ParkingAreaID || dest.VehicleType != res.VehicleType {
			s.logger.Warn("Reassign: slot id=%d does not match area=%d/%s", dest.ID, res.ParkingAreaID, res.VehicleType)
			return fmt.Errorf("%w: destination slot must be in the same area and for the same vehicle type", ErrInvalidInput)
		}
		if !dest.IsBookable() {
			s.logger.Warn("Reassign: slot id=%d is inactive or deleted", dest.ID)
			return fmt.Errorf("%w: destination slot does not accept reservations", ErrConflict)
		}
		if expectedVersion != nil && *expectedVersion != dest.Version {
			s.logger.Warn("Reassign: slot id=%d version %d, expected %d", dest.ID, dest.Version, *expectedVersion)
			return fmt.Errorf("%w: destination slot was modified", ErrConflict)
		}

		window := res.Window()
		if err := s.ensureNoOtherBlocking(txCtx, "Reassign", st, dest.ID, &window); err != nil {
			return err
		}

		if _, err := s.slotRepo.BumpVersion(txCtx, dest.ID, dest.Version); err != nil {
			if errors.Is(err, slotRepo.ErrVersionConflict) {
				if expectedVersion != nil {
					return fmt.Errorf("%w: destination slot was modified", ErrConflict)
				}
				return err
			}
			s.logger.Error("Reassign: failed to bump version of slot id=%d: %v", dest.ID, err)
			return fmt.Errorf("%w: Reassign - bump slot version: %w", ErrInternal, err)
		}

		if err := s.reservationRepo.MoveSlot(txCtx, id, dest.ID, st.now); err != nil {
			s.logger.Error("Reassign: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Reassign - repository error: %w", ErrInternal, err)
		}

		res.SlotID = dest.ID
		res.UpdatedAt = st.now
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reassign: successfully moved reservation id=%d to slot id=%d", id, destSlotID)
	return models.FromDomainReservation(result), nil
}

// ensureNoOtherParked проверяет, что на месте брони не стоит другой транспорт
func (s *Service) ensureNoOtherParked(ctx context.Context, st *transitionState) error {
	slotID := st.reservation.SlotID
	list, err := s.reservationRepo.ListOpenBySlot(ctx, slotID)
	if err != nil {
		s.logger.Error("Arrive: failed to list reservations of slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: Arrive - list slot reservations: %w", ErrInternal, err)
	}

	for i := range list {
		other := &list[i]
		if other.ID == st.reservation.ID {
			continue
		}
		if other.Occupancy(st.now, st.policy) == domain.OccupancyOccupied {
			s.logger.Warn("Arrive: slot id=%d is occupied by reservation id=%d", slotID, other.ID)
			return fmt.Errorf("%w: slot is occupied by reservation %d", ErrConflict, other.ID)
		}
	}
	return nil
}

// ensureNoOtherBlocking проверяет, что на месте нет другой брони, блокирующей window
func (s *Service) ensureNoOtherBlocking(ctx context.Context, op string, st *transitionState, slotID int64, window *domain.Window) error {
	list, err := s.reservationRepo.ListOpenBySlot(ctx, slotID)
	if err != nil {
		s.logger.Error("%s: failed to list reservations of slot id=%d: %v", op, slotID, err)
		return fmt.Errorf("%w: %s - list slot reservations: %w", ErrInternal, op, err)
	}

	if blocking := domain.FirstBlocking(list, st.now, window, st.policy, st.reservation.ID); blocking != nil {
		s.logger.Warn("%s: slot id=%d is held by reservation id=%d (%s)",
			op, slotID, blocking.ID, blocking.Occupancy(st.now, st.policy))
		return fmt.Errorf("%w: slot is held by reservation %d", ErrConflict, blocking.ID)
	}
	return nil
}
