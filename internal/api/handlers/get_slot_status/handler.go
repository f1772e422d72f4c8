package get_slot_status

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots"
)

const (
	msgInvalidAreaID = "некорректный ID парковки"
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotFound      = "парковка не найдена"
	msgForbidden     = "доступ запрещен"
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

// Handle GET /api/v1/parking-slot/parking-area/{areaId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	areaID, err := handlers.PathID(r, "areaId")
	if err != nil {
		h.logger.Warn("GET /parking-slot/parking-area/{id}/status - Invalid area ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAreaID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /parking-slot/parking-area/{id}/status - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	board, err := h.service.SlotStatusBoard(r.Context(), areaID, userID)
	if err != nil {
		switch {
		case errors.Is(err, parkingslots.ErrAreaNotFound):
			h.logger.Warn("GET /parking-slot/parking-area/{id}/status - Area not found: area_id=%d", areaID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, parkingslots.ErrAccessDenied):
			h.logger.Warn("GET /parking-slot/parking-area/{id}/status - Access denied: area_id=%d, user_id=%d", areaID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /parking-slot/parking-area/{id}/status - Failed to build status board: area_id=%d, error=%v",
				areaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /parking-slot/parking-area/{id}/status - Status board built: area_id=%d, slots=%d",
		areaID, len(board.Slots))
	handlers.RespondJSON(w, http.StatusOK, board)
}
