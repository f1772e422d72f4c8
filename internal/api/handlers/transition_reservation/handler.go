package transition_reservation

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
	msgSlotNotFound         = "место не найдено"
	msgForbidden            = "доступ запрещен"
	msgInvalidTransition    = "действие недопустимо в текущем состоянии брони"
	msgConflict             = "место занято другой бронью"
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

// Handle PATCH /api/v1/reservation/{reservationId}
// Body: {"action": "confirm" | "arrive" | "reassign", "slotId": 0, "slotVersion": 0}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathID(r, "reservationId")
	if err != nil {
		h.logger.Warn("PATCH /reservation/{id} - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservation/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.TransitionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /reservation/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	reservation, err := h.service.Transition(r.Context(), reservationID, &req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("PATCH /reservation/{id} - Invalid input: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservation/{id} - Reservation not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrSlotNotFound):
			h.logger.Warn("PATCH /reservation/{id} - Slot not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservation/{id} - Access denied: reservation_id=%d, user_id=%d", reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("PATCH /reservation/{id} - Invalid transition: reservation_id=%d, action=%s", reservationID, req.Action)
			handlers.RespondBadRequest(w, msgInvalidTransition)

		case errors.Is(err, reservations.ErrConflict):
			h.logger.Warn("PATCH /reservation/{id} - Conflict: reservation_id=%d, action=%s", reservationID, req.Action)
			handlers.RespondConflict(w, msgConflict)

		default:
			h.logger.Error("PATCH /reservation/{id} - Failed to %s reservation: reservation_id=%d, error=%v",
				req.Action, reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservation/{id} - Action %s applied: reservation_id=%d, user_id=%d",
		req.Action, reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
