package update_area_prices

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots/models"
)

const (
	msgInvalidAreaID      = "некорректный ID парковки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "парковка не найдена"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/parking-slot/parking-area/{areaId}
// Body: {"vehicleType": "car", "pricePerHour": 200}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	areaID, err := handlers.PathID(r, "areaId")
	if err != nil {
		h.logger.Warn("PATCH /parking-slot/parking-area/{id} - Invalid area ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAreaID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /parking-slot/parking-area/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateAreaPricesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /parking-slot/parking-area/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.UpdateAreaPrices(r.Context(), areaID, &req)
	if err != nil {
		switch {
		case errors.Is(err, parkingslots.ErrInvalidInput):
			h.logger.Warn("PATCH /parking-slot/parking-area/{id} - Invalid input: area_id=%d, error=%v", areaID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, parkingslots.ErrAreaNotFound):
			h.logger.Warn("PATCH /parking-slot/parking-area/{id} - Area not found: area_id=%d", areaID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, parkingslots.ErrAccessDenied):
			h.logger.Warn("PATCH /parking-slot/parking-area/{id} - Access denied: area_id=%d, user_id=%d", areaID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("PATCH /parking-slot/parking-area/{id} - Failed to update prices: area_id=%d, error=%v", areaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /parking-slot/parking-area/{id} - Prices updated: area_id=%d, vehicle_type=%s, slots=%d",
		areaID, result.VehicleType, result.UpdatedSlots)
	handlers.RespondJSON(w, http.StatusOK, result)
}
