package calculate_final_amount

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations"
)

const (
	msgInvalidReservationID = "некорректный ID брони"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронь не найдена"
	msgForbidden            = "доступ запрещен"
	msgCancelled            = "бронь отменена"
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

// Handle GET /api/v1/reservation/{reservationId}/calculate-final-amount
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathID(r, "reservationId")
	if err != nil {
		h.logger.Warn("GET /reservation/{id}/calculate-final-amount - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /reservation/{id}/calculate-final-amount - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	settlement, err := h.service.CalculateFinalAmount(r.Context(), reservationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("GET /reservation/{id}/calculate-final-amount - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /reservation/{id}/calculate-final-amount - Access denied: reservation_id=%d, user_id=%d",
				reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("GET /reservation/{id}/calculate-final-amount - Reservation cancelled: reservation_id=%d", reservationID)
			handlers.RespondBadRequest(w, msgCancelled)

		default:
			h.logger.Error("GET /reservation/{id}/calculate-final-amount - Failed to calculate: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /reservation/{id}/calculate-final-amount - Calculated: reservation_id=%d, total=%.2f, balance=%.2f",
		reservationID, settlement.TotalAmount, settlement.BalanceDue)
	handlers.RespondJSON(w, http.StatusOK, settlement)
}
