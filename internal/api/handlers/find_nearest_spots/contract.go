package find_nearest_spots

import (
	"context"

	findNearestSpots "github.com/m04kA/SMC-ParkingService/internal/usecase/find_nearest_spots"
)

type FindNearestSpotsUseCase interface {
	Execute(ctx context.Context, req *findNearestSpots.Request) (*findNearestSpots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
