package get_area_policy

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingareas"
)

const (
	msgInvalidAreaID = "некорректный ID парковки"
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotFound      = "парковка не найдена"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service AreaService
	logger  Logger
}

func NewHandler(service AreaService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/parking-area/{areaId}/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	areaID, err := handlers.PathID(r, "areaId")
	if err != nil {
		h.logger.Warn("GET /parking-area/{id}/policy - Invalid area ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAreaID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /parking-area/{id}/policy - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	policy, err := h.service.GetPolicy(r.Context(), areaID, userID)
	if err != nil {
		switch {
		case errors.Is(err, parkingareas.ErrAreaNotFound):
			h.logger.Warn("GET /parking-area/{id}/policy - Area not found: area_id=%d", areaID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, parkingareas.ErrAccessDenied):
			h.logger.Warn("GET /parking-area/{id}/policy - Access denied: area_id=%d, user_id=%d", areaID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /parking-area/{id}/policy - Failed to get policy: area_id=%d, error=%v", areaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /parking-area/{id}/policy - Policy retrieved: area_id=%d, overridden=%t", areaID, policy.Overridden)
	handlers.RespondJSON(w, http.StatusOK, policy)
}
