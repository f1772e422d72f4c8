package update_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots/models"
)

const (
	msgInvalidSlotID      = "некорректный ID места"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotNotFound       = "место не найдено"
	msgAreaNotFound       = "парковка не найдена"
	msgForbidden          = "доступ запрещен"
	msgAreaInactive       = "парковка не активна"
	msgConflict           = "место изменили параллельно, повторите запрос"
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

// Handle PATCH /api/v1/parking-slot/{slotId}
// Body: {"isActive": false, "pricePerHour": 150}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathID(r, "slotId")
	if err != nil {
		h.logger.Warn("PATCH /parking-slot/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /parking-slot/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /parking-slot/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	slot, err := h.service.UpdateSlot(r.Context(), slotID, &req)
	if err != nil {
		switch {
		case errors.Is(err, parkingslots.ErrInvalidInput):
			h.logger.Warn("PATCH /parking-slot/{id} - Invalid input: slot_id=%d, error=%v", slotID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, parkingslots.ErrSlotNotFound):
			h.logger.Warn("PATCH /parking-slot/{id} - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, parkingslots.ErrAreaNotFound):
			h.logger.Warn("PATCH /parking-slot/{id} - Area not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgAreaNotFound)

		case errors.Is(err, parkingslots.ErrAccessDenied):
			h.logger.Warn("PATCH /parking-slot/{id} - Access denied: slot_id=%d, user_id=%d", slotID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, parkingslots.ErrAreaInactive):
			h.logger.Warn("PATCH /parking-slot/{id} - Area inactive: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgAreaInactive)

		case errors.Is(err, parkingslots.ErrConflict):
			h.logger.Warn("PATCH /parking-slot/{id} - Conflict: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgConflict)

		default:
			h.logger.Error("PATCH /parking-slot/{id} - Failed to update slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /parking-slot/{id} - Slot updated: slot_id=%d, active=%t, price=%.2f",
		slotID, slot.IsActive, slot.PricePerHour)
	handlers.RespondJSON(w, http.StatusOK, slot)
}
