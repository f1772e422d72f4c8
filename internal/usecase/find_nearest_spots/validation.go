package find_nearest_spots

import (
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// validateRequest валидирует запрос и возвращает разобранный тип транспорта и радиус
func validateRequest(req *Request, defaultRadius int) (domain.VehicleType, int, error) {
	if err := req.Origin.Validate(); err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	radius := defaultRadius
	if req.RadiusMeters != nil {
		radius = *req.RadiusMeters
	}
	if radius < domain.MinSearchRadiusMeters || radius > domain.MaxSearchRadiusMeters {
		return "", 0, fmt.Errorf("%w: radius must be between %d and %d meters",
			ErrInvalidInput, domain.MinSearchRadiusMeters, domain.MaxSearchRadiusMeters)
	}

	vehicleType, err := domain.ParseVehicleType(req.VehicleType)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if req.StartTime.IsZero() {
		return "", 0, fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return "", 0, fmt.Errorf("%w: endTime must be after startTime", ErrInvalidInput)
	}

	return vehicleType, radius, nil
}
