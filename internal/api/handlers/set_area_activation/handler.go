package set_area_activation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingareas"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingareas/models"
)

const (
	msgInvalidAreaID        = "некорректный ID парковки"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "парковка не найдена"
	msgForbidden            = "доступ запрещен"
	msgSubscriptionInactive = "подписка парковки не оплачена или истекла"
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

// Handle PATCH /api/v1/parking-area/{areaId}/activation
// Body: {"isActive": true}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	areaID, err := handlers.PathID(r, "areaId")
	if err != nil {
		h.logger.Warn("PATCH /parking-area/{id}/activation - Invalid area ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAreaID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /parking-area/{id}/activation - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.SetActiveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /parking-area/{id}/activation - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	area, err := h.service.SetActive(r.Context(), areaID, &req)
	if err != nil {
		switch {
		case errors.Is(err, parkingareas.ErrInvalidInput):
			h.logger.Warn("PATCH /parking-area/{id}/activation - Invalid input: area_id=%d, error=%v", areaID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, parkingareas.ErrAreaNotFound):
			h.logger.Warn("PATCH /parking-area/{id}/activation - Area not found: area_id=%d", areaID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, parkingareas.ErrAccessDenied):
			h.logger.Warn("PATCH /parking-area/{id}/activation - Access denied: area_id=%d, user_id=%d", areaID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, parkingareas.ErrSubscriptionInactive):
			h.logger.Warn("PATCH /parking-area/{id}/activation - Subscription inactive: area_id=%d", areaID)
			handlers.RespondError(w, http.StatusPaymentRequired, msgSubscriptionInactive)

		default:
			h.logger.Error("PATCH /parking-area/{id}/activation - Failed to update area: area_id=%d, error=%v", areaID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /parking-area/{id}/activation - Area updated: area_id=%d, active=%t", areaID, area.IsActive)
	handlers.RespondJSON(w, http.StatusOK, area)
}
