package add_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
)

const (
	msgInvalidReservationID = "некорректный ID брони"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронь не найдена"
	msgForbidden            = "доступ запрещен"
	msgClosed               = "бронь уже закрыта"
	msgConflict             = "бронь изменили параллельно, повторите запрос"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservation/{reservationId}/payments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathID(r, "reservationId")
	if err != nil {
		h.logger.Warn("POST /reservation/{id}/payments - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservation/{id}/payments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.AddPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservation/{id}/payments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	payment, err := h.service.AddPayment(r.Context(), reservationID, &req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("POST /reservation/{id}/payments - Invalid input: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("POST /reservation/{id}/payments - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("POST /reservation/{id}/payments - Access denied: reservation_id=%d, user_id=%d", reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("POST /reservation/{id}/payments - Reservation closed: reservation_id=%d", reservationID)
			handlers.RespondBadRequest(w, msgClosed)

		case errors.Is(err, reservations.ErrConflict):
			h.logger.Warn("POST /reservation/{id}/payments - Conflict: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgConflict)

		default:
			h.logger.Error("POST /reservation/{id}/payments - Failed to add payment: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservation/{id}/payments - Payment added: reservation_id=%d, payment_id=%d, amount=%.2f",
		reservationID, payment.ID, payment.Amount)
	handlers.RespondJSON(w, http.StatusCreated, payment)
}
