package get_area_reservations

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations"
)

const (
	msgInvalidAreaID = "некорректный ID парковки"
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidParams = "некорректные параметры запроса"
	msgNotFound      = "парковка не найдена"
	msgForbidden     = "доступ запрещен"
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

// Handle GET /api/v1/parking-area/{areaId}/reservations
// Query params: slotId, status, from, to, includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	areaID, err := handlers.PathID(r, "areaId")
	if err != nil {
		h.logger.Warn("GET /parking-area/{id}/reservations - Invalid area ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAreaID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /parking-area/{id}/reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	query := r.URL.Query()
	serviceReq, err := ToServiceRequest(areaID, userID,
		query.Get("slotId"), query.Get("status"), query.Get("from"), query.Get("to"), query.Get("includeInactive"))
	if err != nil {
		h.logger.Warn("GET /parking-area/{id}/reservations - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetAreaReservations(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("GET /parking-area/{id}/reservations - Invalid filter: area_id=%d, error=%v", areaID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, reservations.ErrAreaNotFound):
			h.logger.Warn("GET /parking-area/{id}/reservations - Area not found: area_id=%d", areaID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /parking-area/{id}/reservations - Access denied: area_id=%d, user_id=%d", areaID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /parking-area/{id}/reservations - Failed to get reservations: area_id=%d, error=%v",
				areaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /parking-area/{id}/reservations - Reservations retrieved successfully: area_id=%d, count=%d",
		areaID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result.Reservations)
}
