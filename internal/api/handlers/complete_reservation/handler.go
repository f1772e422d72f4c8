package complete_reservation

import (
	"errors"
	"io"
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
	msgInvalidTransition    = "завершить можно только бронь с заехавшим транспортом"
	msgPaymentIncomplete    = "бронь не оплачена полностью"
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

// Handle PATCH /api/v1/reservation/{reservationId}/complete
// Body (опционально): {"settlement": {"method": "cash", "amount": 800}}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathID(r, "reservationId")
	if err != nil {
		h.logger.Warn("PATCH /reservation/{id}/complete - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservation/{id}/complete - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Тело опционально: без settlement бронь должна быть оплачена заранее
	var req models.CompleteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("PATCH /reservation/{id}/complete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.Complete(r.Context(), reservationID, &req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("PATCH /reservation/{id}/complete - Invalid input: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservation/{id}/complete - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservation/{id}/complete - Access denied: reservation_id=%d, user_id=%d", reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservation/{id}/complete - Invalid transition: reservation_id=%d", reservationID)
			handlers.RespondBadRequest(w, msgInvalidTransition)

		case errors.Is(err, reservations.ErrPaymentIncomplete):
			h.logger.Warn("PATCH /reservation/{id}/complete - Payment incomplete: reservation_id=%d", reservationID)
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentIncomplete)

		case errors.Is(err, reservations.ErrConflict):
			h.logger.Warn("PATCH /reservation/{id}/complete - Conflict: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgConflict)

		default:
			h.logger.Error("PATCH /reservation/{id}/complete - Failed to complete reservation: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservation/{id}/complete - Reservation completed: reservation_id=%d, total=%.2f",
		reservationID, result.Settlement.TotalAmount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
