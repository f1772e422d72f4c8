package find_nearest_spots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	findNearestSpots "github.com/m04kA/SMC-ParkingService/internal/usecase/find_nearest_spots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidParams      = "некорректные координаты или время, ожидается RFC3339"
	msgUpstream           = "поиск парковок временно недоступен"
)

type Handler struct {
	useCase FindNearestSpotsUseCase
	logger  Logger
}

func NewHandler(useCase FindNearestSpotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/parking-area/nearest-parking-spots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req FindNearestSpotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /parking-area/nearest-parking-spots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /parking-area/nearest-parking-spots - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, findNearestSpots.ErrInvalidInput):
			h.logger.Warn("POST /parking-area/nearest-parking-spots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, findNearestSpots.ErrUpstream):
			h.logger.Error("POST /parking-area/nearest-parking-spots - Geo index unavailable: %v", err)
			handlers.RespondError(w, http.StatusBadGateway, msgUpstream)

		default:
			h.logger.Error("POST /parking-area/nearest-parking-spots - Failed to search: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /parking-area/nearest-parking-spots - Found %d areas near (%.5f, %.5f)",
		len(result.Areas), useCaseReq.Origin.Lat, useCaseReq.Origin.Lng)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
