package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

// Complete завершает стоянку и рассчитывает оплату.
// При положительном остатке завершение требует оплаты остатка (settlement) не меньше долга,
// иначе ErrPaymentIncomplete. Повторное завершение отклоняется, двойного списания нет.
func (s *Service) Complete(ctx context.Context, id int64, req *models.CompleteRequest) (*models.CompletionResponse, error) {
	s.logger.Info("Complete: completing reservation id=%d by user=%d", id, req.UserID)

	var method domain.SettlementMethod
	if req.Settlement != nil {
		method = domain.SettlementMethod(req.Settlement.Method)
		if !method.IsValid() {
			return nil, fmt.Errorf("%w: unsupported settlement method %q", ErrInvalidInput, req.Settlement.Method)
		}
		if req.Settlement.Amount <= 0 {
			return nil, fmt.Errorf("%w: settlement amount must be positive", ErrInvalidInput)
		}
	}

	var (
		result     *domain.Reservation
		settlement domain.Settlement
		payment    *domain.ReservationPayment
	)

	err := s.runTransition(ctx, "Complete", id, req.UserID, true, func(txCtx context.Context, st *transitionState) error {
		res := st.reservation
		if res.Status != domain.ReservationConfirmed || !res.IsParked {
			s.logger.Warn("Complete: reservation id=%d has status=%s, isParked=%t", id, res.Status, res.IsParked)
			return fmt.Errorf("%w: only parked confirmed reservations can be completed", ErrInvalidTransition)
		}

		payments, err := s.reservationRepo.ListPayments(txCtx, id)
		if err != nil {
			s.logger.Error("Complete: failed to list payments of reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Complete - list payments: %w", ErrInternal, err)
		}

		settlement = domain.Settle(res, payments, st.now)
		payment = nil

		if !settlement.IsSettled() {
			if req.Settlement == nil {
				s.logger.Warn("Complete: reservation id=%d has balance due %.2f", id, settlement.BalanceDue)
				return fmt.Errorf("%w: balance due %.2f", ErrPaymentIncomplete, settlement.BalanceDue)
			}
			if req.Settlement.Amount < settlement.BalanceDue {
				s.logger.Warn("Complete: reservation id=%d settlement %.2f is less than balance due %.2f",
					id, req.Settlement.Amount, settlement.BalanceDue)
				return fmt.Errorf("%w: settlement %.2f is less than balance due %.2f",
					ErrPaymentIncomplete, req.Settlement.Amount, settlement.BalanceDue)
			}
			if method == domain.MethodBilledToCustomer && res.CustomerID == nil {
				return fmt.Errorf("%w: reservation has no customer to bill", ErrInvalidInput)
			}

			created, err := s.reservationRepo.CreatePayment(txCtx, &domain.ReservationPayment{
				ReservationID: id,
				Reference:     uuid.NewString(),
				Amount:        req.Settlement.Amount,
				Method:        method,
				PayerID:       res.CustomerID,
				Status:        domain.PaymentRecordPaid,
				CreatedAt:     st.now,
			})
			if err != nil {
				s.logger.Error("Complete: failed to record settlement for reservation id=%d: %v", id, err)
				return fmt.Errorf("%w: Complete - create payment: %w", ErrInternal, err)
			}

			payment = created
			payments = append(payments, *created)
			res.PaymentIDs = append(res.PaymentIDs, created.ID)
			settlement = domain.Settle(res, payments, st.now)
		}

		if err := s.reservationRepo.Complete(txCtx, id, domain.PaymentPaid, st.now); err != nil {
			s.logger.Error("Complete: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Complete - repository error: %w", ErrInternal, err)
		}

		now := st.now
		res.Status = domain.ReservationCompleted
		res.PaymentStatus = domain.PaymentPaid
		res.CompletedAt = &now
		res.UpdatedAt = now
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Complete: successfully completed reservation id=%d, total=%.2f, paid=%.2f",
		id, settlement.TotalAmount, settlement.TotalPaid)

	return &models.CompletionResponse{
		Reservation: models.FromDomainReservation(result),
		Settlement:  models.FromSettlement(id, settlement),
		Payment:     models.FromDomainPayment(payment),
	}, nil
}

// CalculateFinalAmount считает сумму к оплате на текущий момент (для завершённой - на момент завершения)
func (s *Service) CalculateFinalAmount(ctx context.Context, id int64, userID int64) (*models.SettlementResponse, error) {
	s.logger.Info("CalculateFinalAmount: reservation id=%d, user=%d", id, userID)

	res, err := s.getReservation(ctx, "CalculateFinalAmount", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkAccess(ctx, "CalculateFinalAmount", res, userID, false); err != nil {
		return nil, err
	}

	if res.Status == domain.ReservationCancelled {
		return nil, fmt.Errorf("%w: reservation is cancelled", ErrInvalidTransition)
	}

	payments, err := s.reservationRepo.ListPayments(ctx, id)
	if err != nil {
		s.logger.Error("CalculateFinalAmount: failed to list payments of reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: CalculateFinalAmount - list payments: %w", ErrInternal, err)
	}

	settlement := domain.Settle(res, payments, s.timeProvider.Now())

	s.logger.Info("CalculateFinalAmount: reservation id=%d, hours=%d, total=%.2f, due=%.2f",
		id, settlement.BilledHours, settlement.TotalAmount, settlement.BalanceDue)
	return models.FromSettlement(id, settlement), nil
}

// AddPayment вносит предоплату по незавершённой брони.
// Статус брони перечитывается в той же сериализуемой транзакции, что и запись платежа,
// поэтому платёж не может пройти параллельно с завершением брони.
// Когда оплачено всё заявленное окно брони, бронь помечается оплаченной.
func (s *Service) AddPayment(ctx context.Context, id int64, req *models.AddPaymentRequest) (*models.PaymentResponse, error) {
	s.logger.Info("AddPayment: reservation id=%d, user=%d, amount=%.2f, method=%s", id, req.UserID, req.Amount, req.Method)

	method := domain.SettlementMethod(req.Method)
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, req.Method)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	var created *domain.ReservationPayment
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		res, err := s.getReservation(txCtx, "AddPayment", id)
		if err != nil {
			return err
		}

		if err := s.checkAccess(txCtx, "AddPayment", res, req.UserID, false); err != nil {
			return err
		}

		if res.IsTerminal() {
			s.logger.Warn("AddPayment: reservation id=%d has status=%s", id, res.Status)
			return fmt.Errorf("%w: reservation is %s", ErrInvalidTransition, res.Status)
		}

		payments, err := s.reservationRepo.ListPayments(txCtx, id)
		if err != nil {
			s.logger.Error("AddPayment: failed to list payments of reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: AddPayment - list payments: %w", ErrInternal, err)
		}

		now := s.timeProvider.Now()
		payerID := req.UserID
		created, err = s.reservationRepo.CreatePayment(txCtx, &domain.ReservationPayment{
			ReservationID: id,
			Reference:     uuid.NewString(),
			Amount:        req.Amount,
			Method:        method,
			PayerID:       &payerID,
			Status:        domain.PaymentRecordPaid,
			CreatedAt:     now,
		})
		if err != nil {
			s.logger.Error("AddPayment: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: AddPayment - repository error: %w", ErrInternal, err)
		}

		// Без времени окончания итоговая сумма неизвестна до завершения
		if res.EndDateAndTime == nil || res.PaymentStatus == domain.PaymentPaid {
			return nil
		}
		booked := domain.Settle(res, append(payments, *created), *res.EndDateAndTime)
		if !booked.IsSettled() {
			return nil
		}
		if err := s.reservationRepo.SetPaymentStatus(txCtx, id, domain.PaymentPaid, now); err != nil {
			s.logger.Error("AddPayment: failed to mark reservation id=%d as paid: %v", id, err)
			return fmt.Errorf("%w: AddPayment - set payment status: %w", ErrInternal, err)
		}
		s.logger.Info("AddPayment: reservation id=%d is prepaid in full (%.2f)", id, booked.TotalPaid)
		return nil
	})
	if errors.Is(err, txmanager.ErrSerializationFailure) {
		s.logger.Warn("AddPayment: reservation id=%d serialization failure: %v", id, err)
		return nil, fmt.Errorf("%w: reservation was modified concurrently", ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("AddPayment: recorded payment id=%d (%s) for reservation id=%d", created.ID, created.Reference, id)
	return models.FromDomainPayment(created), nil
}
